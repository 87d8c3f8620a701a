package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

var (
	_ driven.HostStore        = hostStore{}
	_ driven.ServiceStore     = serviceStore{}
	_ driven.AuthAppStore     = authAppStore{}
	_ driven.ContentSetStore  = contentSetStore{}
	_ driven.ContentFileStore = contentFileStore{}
	_ driven.AuthVendorStore  = vendorStore{}
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ==================== Host Store ====================

type hostStore struct{ t *tx }

func (s hostStore) GetByName(ctx context.Context, name string) (*domain.URLHost, error) {
	var h domain.URLHost
	err := s.t.queryRow(ctx, "SELECT id, name FROM url_host WHERE LOWER(name) = LOWER(?)", name).Scan(&h.ID, &h.Name)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("host %q", name))
	}
	return &h, nil
}

func (s hostStore) Insert(ctx context.Context, host domain.URLHost) error {
	return s.t.insertRow(ctx, "url_host", row{"id": host.ID, "name": host.Name})
}

// ==================== Service Store ====================

type serviceStore struct{ t *tx }

const serviceColumns = `s.id, s.url_host_id, h.name, s.url_context_root, s.url_protocol,
	s.enabled, s.is_default, s.comments, s.options, s.auth_path, s.auth_completed_url,
	s.auth_completed_url_validation, s.auth_completed_page_content
	FROM service s JOIN url_host h ON h.id = s.url_host_id`

func scanService(sc scanner) (*domain.Service, error) {
	var (
		svc       domain.Service
		protocols string
		options   []byte
	)
	err := sc.Scan(&svc.ID, &svc.HostID, &svc.HostName, &svc.ContextRoot, &protocols,
		&svc.Enabled, &svc.IsDefault, &svc.Comments, &options, &svc.AuthPath, &svc.AuthCompletedURL,
		&svc.AuthCompletedURLValidation, &svc.AuthCompletedPageContent)
	if err != nil {
		return nil, err
	}
	if protocols != "" {
		if svc.Protocols, err = domain.ParseProtocols(protocols); err != nil {
			return nil, fmt.Errorf("service %s: %w", svc.ID, err)
		}
	}
	if svc.Options, err = decodeOptions(options); err != nil {
		return nil, fmt.Errorf("service %s: %w", svc.ID, err)
	}
	return &svc, nil
}

func (s serviceStore) Get(ctx context.Context, id domain.ID) (*domain.Service, error) {
	svc, err := scanService(s.t.queryRow(ctx, "SELECT "+serviceColumns+" WHERE s.id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("service %s", id))
	}
	return svc, nil
}

func (s serviceStore) GetByHostCtx(ctx context.Context, host, contextRoot string) (*domain.Service, error) {
	svc, err := scanService(s.t.queryRow(ctx,
		"SELECT "+serviceColumns+" WHERE LOWER(h.name) = LOWER(?) AND s.url_context_root = ?", host, contextRoot))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("service %s%s", host, contextRoot))
	}
	return svc, nil
}

func (s serviceStore) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.t.query(ctx, "SELECT "+serviceColumns+" ORDER BY h.name, s.url_context_root")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *svc)
	}
	return result, rows.Err()
}

func serviceRow(svc domain.Service) (row, error) {
	options, err := encodeOptions(svc.Options)
	if err != nil {
		return nil, err
	}
	return row{
		"url_host_id":                   svc.HostID,
		"url_context_root":              svc.ContextRoot,
		"url_protocol":                  svc.Protocols.String(),
		"enabled":                       svc.Enabled,
		"comments":                      svc.Comments,
		"options":                       options,
		"auth_path":                     svc.AuthPath,
		"auth_completed_url":            svc.AuthCompletedURL,
		"auth_completed_url_validation": svc.AuthCompletedURLValidation,
		"auth_completed_page_content":   svc.AuthCompletedPageContent,
	}, nil
}

func (s serviceStore) Insert(ctx context.Context, svc domain.Service) error {
	values, err := serviceRow(svc)
	if err != nil {
		return err
	}
	values["id"] = svc.ID
	values["is_default"] = svc.IsDefault
	return s.t.insertRow(ctx, "service", values)
}

func (s serviceStore) Update(ctx context.Context, svc domain.Service) error {
	values, err := serviceRow(svc)
	if err != nil {
		return err
	}
	return s.t.updateRow(ctx, "service", svc.ID, values)
}

// Delete removes a service; auth apps and content sets cascade.
func (s serviceStore) Delete(ctx context.Context, id domain.ID) error {
	return s.t.deleteRow(ctx, "service", id)
}

func (s serviceStore) SetDefault(ctx context.Context, id domain.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.t.exec(ctx, "UPDATE service SET is_default = (id = ?)", id)
	return err
}

// ==================== Auth App Store ====================

type authAppStore struct{ t *tx }

const authAppColumns = `a.id, a.service_id, a.auth_vendor_id, v.name, a.name, a.description,
	a.url, a.url_direct_auth, a.access_token, a.app_id, a.enabled,
	a.use_built_in_authorization, a.limit_to_registered_users, a.default_role_id
	FROM auth_app a JOIN auth_vendor v ON v.id = a.auth_vendor_id`

func scanAuthApp(sc scanner) (*domain.AuthApp, error) {
	var (
		app  domain.AuthApp
		role nullID
	)
	err := sc.Scan(&app.ID, &app.ServiceID, &app.AuthVendorID, &app.AuthVendorName, &app.Name,
		&app.Description, &app.URL, &app.URLDirectAuth, &app.AccessToken, &app.AppID, &app.Enabled,
		&app.UseBuiltInAuthorization, &app.LimitToRegisteredUsers, &role)
	if err != nil {
		return nil, err
	}
	app.DefaultRoleID = role.ptr()
	return &app, nil
}

func (s authAppStore) Get(ctx context.Context, id domain.ID) (*domain.AuthApp, error) {
	app, err := scanAuthApp(s.t.queryRow(ctx, "SELECT "+authAppColumns+" WHERE a.id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("auth app %s", id))
	}
	return app, nil
}

func (s authAppStore) ListByService(ctx context.Context, serviceID domain.ID) ([]domain.AuthApp, error) {
	rows, err := s.t.query(ctx, "SELECT "+authAppColumns+" WHERE a.service_id = ? ORDER BY a.name, a.id", serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AuthApp, 0)
	for rows.Next() {
		app, err := scanAuthApp(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

func authAppRow(app domain.AuthApp) row {
	return row{
		"service_id":                 app.ServiceID,
		"auth_vendor_id":             app.AuthVendorID,
		"name":                       app.Name,
		"description":                app.Description,
		"url":                        app.URL,
		"url_direct_auth":            app.URLDirectAuth,
		"access_token":               app.AccessToken,
		"app_id":                     app.AppID,
		"enabled":                    app.Enabled,
		"use_built_in_authorization": app.UseBuiltInAuthorization,
		"limit_to_registered_users":  app.LimitToRegisteredUsers,
		"default_role_id":            newNullID(app.DefaultRoleID),
	}
}

func (s authAppStore) Insert(ctx context.Context, app domain.AuthApp) error {
	values := authAppRow(app)
	values["id"] = app.ID
	return s.t.insertRow(ctx, "auth_app", values)
}

func (s authAppStore) Update(ctx context.Context, app domain.AuthApp) error {
	return s.t.updateRow(ctx, "auth_app", app.ID, authAppRow(app))
}

func (s authAppStore) Delete(ctx context.Context, id domain.ID) error {
	return s.t.deleteRow(ctx, "auth_app", id)
}

// ==================== Content Set Store ====================

type contentSetStore struct{ t *tx }

const contentSetColumns = `c.id, c.service_id, c.request_path, c.requires_auth, c.enabled,
	c.comments, c.options, h.name, s.url_context_root
	FROM content_set c
	JOIN service s ON s.id = c.service_id
	JOIN url_host h ON h.id = s.url_host_id`

func scanContentSet(sc scanner) (*domain.ContentSet, error) {
	var (
		cs          domain.ContentSet
		options     []byte
		host, ctxRt string
	)
	err := sc.Scan(&cs.ID, &cs.ServiceID, &cs.RequestPath, &cs.RequiresAuth, &cs.Enabled,
		&cs.Comments, &options, &host, &ctxRt)
	if err != nil {
		return nil, err
	}
	cs.HostCtx = host + ctxRt
	if cs.Options, err = decodeOptions(options); err != nil {
		return nil, fmt.Errorf("content set %s: %w", cs.ID, err)
	}
	return &cs, nil
}

func (s contentSetStore) Get(ctx context.Context, id domain.ID) (*domain.ContentSet, error) {
	cs, err := scanContentSet(s.t.queryRow(ctx, "SELECT "+contentSetColumns+" WHERE c.id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("content set %s", id))
	}
	return cs, nil
}

func (s contentSetStore) GetByPath(ctx context.Context, serviceID domain.ID, requestPath string) (*domain.ContentSet, error) {
	cs, err := scanContentSet(s.t.queryRow(ctx,
		"SELECT "+contentSetColumns+" WHERE c.service_id = ? AND c.request_path = ?", serviceID, requestPath))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("content set %s", requestPath))
	}
	return cs, nil
}

func (s contentSetStore) List(ctx context.Context, serviceID *domain.ID) ([]domain.ContentSet, error) {
	var (
		rows *sql.Rows
		err  error
	)
	const order = " ORDER BY h.name, s.url_context_root, c.request_path"
	if serviceID == nil {
		rows, err = s.t.query(ctx, "SELECT "+contentSetColumns+order)
	} else {
		rows, err = s.t.query(ctx, "SELECT "+contentSetColumns+" WHERE c.service_id = ?"+order, *serviceID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ContentSet, 0)
	for rows.Next() {
		cs, err := scanContentSet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cs)
	}
	return result, rows.Err()
}

func contentSetRow(cs domain.ContentSet) (row, error) {
	options, err := encodeOptions(cs.Options)
	if err != nil {
		return nil, err
	}
	return row{
		"service_id":    cs.ServiceID,
		"request_path":  cs.RequestPath,
		"requires_auth": cs.RequiresAuth,
		"enabled":       cs.Enabled,
		"comments":      cs.Comments,
		"options":       options,
	}, nil
}

func (s contentSetStore) Insert(ctx context.Context, cs domain.ContentSet) error {
	values, err := contentSetRow(cs)
	if err != nil {
		return err
	}
	values["id"] = cs.ID
	return s.t.insertRow(ctx, "content_set", values)
}

func (s contentSetStore) Update(ctx context.Context, cs domain.ContentSet) error {
	values, err := contentSetRow(cs)
	if err != nil {
		return err
	}
	return s.t.updateRow(ctx, "content_set", cs.ID, values)
}

// Delete removes a content set; its files cascade.
func (s contentSetStore) Delete(ctx context.Context, id domain.ID) error {
	return s.t.deleteRow(ctx, "content_set", id)
}

// ==================== Content File Store ====================

type contentFileStore struct{ t *tx }

// List returns file metadata without content.
func (s contentFileStore) List(ctx context.Context, contentSetID domain.ID) ([]domain.ContentFile, error) {
	rows, err := s.t.query(ctx, `SELECT id, content_set_id, request_path, requires_auth, enabled, size
		FROM content_file WHERE content_set_id = ? ORDER BY request_path`, contentSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ContentFile, 0)
	for rows.Next() {
		var f domain.ContentFile
		if err := rows.Scan(&f.ID, &f.ContentSetID, &f.RequestPath, &f.RequiresAuth, &f.Enabled, &f.Size); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (s contentFileStore) Insert(ctx context.Context, file domain.ContentFile) error {
	content := file.Content
	if content == nil {
		content = []byte{}
	}
	return s.t.insertRow(ctx, "content_file", row{
		"id":             file.ID,
		"content_set_id": file.ContentSetID,
		"request_path":   file.RequestPath,
		"requires_auth":  file.RequiresAuth,
		"enabled":        file.Enabled,
		"size":           file.Size,
		"content":        content,
	})
}

func (s contentFileStore) DeleteAll(ctx context.Context, contentSetID domain.ID) (int, error) {
	res, err := s.t.exec(ctx, "DELETE FROM content_file WHERE content_set_id = ?", contentSetID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ==================== Auth Vendor Store ====================

type vendorStore struct{ t *tx }

const vendorColumns = "id, name, validation_url, enabled, comments FROM auth_vendor"

func scanVendor(sc scanner) (*domain.AuthVendor, error) {
	var v domain.AuthVendor
	if err := sc.Scan(&v.ID, &v.Name, &v.ValidationURL, &v.Enabled, &v.Comments); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s vendorStore) Get(ctx context.Context, id domain.ID) (*domain.AuthVendor, error) {
	v, err := scanVendor(s.t.queryRow(ctx, "SELECT "+vendorColumns+" WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("auth vendor %s", id))
	}
	return v, nil
}

func (s vendorStore) GetByName(ctx context.Context, name string) (*domain.AuthVendor, error) {
	v, err := scanVendor(s.t.queryRow(ctx, "SELECT "+vendorColumns+" WHERE LOWER(name) = LOWER(?)", name))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("auth vendor %q", name))
	}
	return v, nil
}

func (s vendorStore) List(ctx context.Context) ([]domain.AuthVendor, error) {
	rows, err := s.t.query(ctx, "SELECT "+vendorColumns+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AuthVendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}
