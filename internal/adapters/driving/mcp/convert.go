package mcp

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// ServiceRef names a service. An empty reference selects the current
// service, or the only one there is.
type ServiceRef struct {
	ServiceID   string `json:"service_id,omitempty" jsonschema:"ID of the service (0x followed by 32 hex digits)"`
	HostName    string `json:"url_host_name,omitempty" jsonschema:"host name the service is bound to, empty for any host"`
	ContextRoot string `json:"url_context_root,omitempty" jsonschema:"context root of the service, e.g. /api"`
}

func (r ServiceRef) selector() (domain.ServiceSelector, error) {
	if r.ServiceID != "" {
		id, err := domain.ParseID(r.ServiceID)
		if err != nil {
			return domain.ServiceSelector{}, err
		}
		return domain.ByID(id), nil
	}
	if r.ContextRoot != "" {
		return domain.ByHostCtx(r.HostName, r.ContextRoot), nil
	}
	if r.HostName != "" {
		return domain.ServiceSelector{}, fmt.Errorf("%w: url_context_root is required with url_host_name", domain.ErrValidation)
	}
	return domain.ServiceSelector{UseCurrent: true, AutoSelectSingle: true}, nil
}

// ContentSetRef names a content set by ID or by request path within a
// service.
type ContentSetRef struct {
	ServiceID    string `json:"service_id,omitempty" jsonschema:"ID of the owning service"`
	HostName     string `json:"url_host_name,omitempty" jsonschema:"host name of the owning service"`
	ContextRoot  string `json:"url_context_root,omitempty" jsonschema:"context root of the owning service"`
	ContentSetID string `json:"content_set_id,omitempty" jsonschema:"ID of the content set"`
	RequestPath  string `json:"request_path,omitempty" jsonschema:"request path of the content set within the service, e.g. /static"`
}

func (r ContentSetRef) selector() (domain.ContentSetSelector, error) {
	if r.ContentSetID != "" {
		id, err := domain.ParseID(r.ContentSetID)
		if err != nil {
			return domain.ContentSetSelector{}, err
		}
		return domain.ContentSetSelector{ID: &id}, nil
	}
	svc, err := ServiceRef{ServiceID: r.ServiceID, HostName: r.HostName, ContextRoot: r.ContextRoot}.selector()
	if err != nil {
		return domain.ContentSetSelector{}, err
	}
	return domain.ContentSetSelector{Service: svc, RequestPath: r.RequestPath, AutoSelectSingle: true}, nil
}

// ServiceInfo is a service as returned by the tools.
type ServiceInfo struct {
	ID                         string         `json:"id"`
	HostName                   string         `json:"url_host_name"`
	ContextRoot                string         `json:"url_context_root"`
	HostCtx                    string         `json:"host_ctx"`
	Protocols                  string         `json:"url_protocol"`
	Enabled                    bool           `json:"enabled"`
	IsDefault                  bool           `json:"is_default"`
	Comments                   string         `json:"comments"`
	Options                    map[string]any `json:"options,omitempty"`
	AuthPath                   string         `json:"auth_path"`
	AuthCompletedURL           string         `json:"auth_completed_url,omitempty"`
	AuthCompletedURLValidation string         `json:"auth_completed_url_validation,omitempty"`
	AuthCompletedPageContent   string         `json:"auth_completed_page_content,omitempty"`
	AuthApps                   []AuthAppInfo  `json:"auth_apps,omitempty"`
}

func toServiceInfo(s *domain.Service) ServiceInfo {
	return ServiceInfo{
		ID:                         s.ID.String(),
		HostName:                   s.HostName,
		ContextRoot:                s.ContextRoot,
		HostCtx:                    s.HostCtx(),
		Protocols:                  s.Protocols.String(),
		Enabled:                    s.Enabled,
		IsDefault:                  s.IsDefault,
		Comments:                   s.Comments,
		Options:                    s.Options,
		AuthPath:                   s.AuthPath,
		AuthCompletedURL:           s.AuthCompletedURL,
		AuthCompletedURLValidation: s.AuthCompletedURLValidation,
		AuthCompletedPageContent:   s.AuthCompletedPageContent,
		AuthApps:                   lo.Map(s.AuthApps, func(a domain.AuthApp, _ int) AuthAppInfo { return toAuthAppInfo(&a) }),
	}
}

// AuthAppInfo is an auth app as returned by the tools. The access token is
// never returned.
type AuthAppInfo struct {
	ID                      string `json:"id"`
	ServiceID               string `json:"service_id"`
	AuthVendorID            string `json:"auth_vendor_id"`
	AuthVendorName          string `json:"auth_vendor_name,omitempty"`
	Name                    string `json:"name"`
	Description             string `json:"description,omitempty"`
	URL                     string `json:"url,omitempty"`
	URLDirectAuth           string `json:"url_direct_auth,omitempty"`
	AppID                   string `json:"app_id,omitempty"`
	Enabled                 bool   `json:"enabled"`
	UseBuiltInAuthorization bool   `json:"use_built_in_authorization"`
	LimitToRegisteredUsers  bool   `json:"limit_to_registered_users"`
	DefaultRoleID           string `json:"default_role_id,omitempty"`
}

func toAuthAppInfo(a *domain.AuthApp) AuthAppInfo {
	info := AuthAppInfo{
		ID:                      a.ID.String(),
		ServiceID:               a.ServiceID.String(),
		AuthVendorID:            a.AuthVendorID.String(),
		AuthVendorName:          a.AuthVendorName,
		Name:                    a.Name,
		Description:             a.Description,
		URL:                     a.URL,
		URLDirectAuth:           a.URLDirectAuth,
		AppID:                   a.AppID,
		Enabled:                 a.Enabled,
		UseBuiltInAuthorization: a.UseBuiltInAuthorization,
		LimitToRegisteredUsers:  a.LimitToRegisteredUsers,
	}
	if a.DefaultRoleID != nil {
		info.DefaultRoleID = a.DefaultRoleID.String()
	}
	return info
}

// ContentSetInfo is a content set as returned by the tools.
type ContentSetInfo struct {
	ID           string         `json:"id"`
	ServiceID    string         `json:"service_id"`
	RequestPath  string         `json:"request_path"`
	FullPath     string         `json:"full_path"`
	RequiresAuth bool           `json:"requires_auth"`
	Enabled      bool           `json:"enabled"`
	Comments     string         `json:"comments,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
}

func toContentSetInfo(c *domain.ContentSet) ContentSetInfo {
	return ContentSetInfo{
		ID:           c.ID.String(),
		ServiceID:    c.ServiceID.String(),
		RequestPath:  c.RequestPath,
		FullPath:     c.FullPath(),
		RequiresAuth: c.RequiresAuth,
		Enabled:      c.Enabled,
		Comments:     c.Comments,
		Options:      c.Options,
	}
}

// ContentFileInfo is a content file without its content.
type ContentFileInfo struct {
	ID           string `json:"id"`
	RequestPath  string `json:"request_path"`
	Size         int64  `json:"size"`
	Enabled      bool   `json:"enabled"`
	RequiresAuth bool   `json:"requires_auth"`
}

// VendorInfo is an auth vendor as returned by the tools.
type VendorInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Enabled       bool   `json:"enabled"`
	Comments      string `json:"comments,omitempty"`
	ValidationURL string `json:"validation_url,omitempty"`
	AuthURL       string `json:"auth_url,omitempty"`
	TokenURL      string `json:"token_url,omitempty"`
}

func toVendorInfo(v *domain.AuthVendor) VendorInfo {
	return VendorInfo{
		ID:            v.ID.String(),
		Name:          v.Name,
		Enabled:       v.Enabled,
		Comments:      v.Comments,
		ValidationURL: v.ValidationURL,
		AuthURL:       v.AuthURL,
		TokenURL:      v.TokenURL,
	}
}

// OutcomeOutput reports a mutating operation.
type OutcomeOutput struct {
	Kind string   `json:"kind"`
	Op   string   `json:"op"`
	IDs  []string `json:"ids"`
}

func toOutcome(o domain.Outcome) OutcomeOutput {
	return OutcomeOutput{
		Kind: string(o.Kind),
		Op:   o.Op,
		IDs:  lo.Map(o.IDs, func(id domain.ID, _ int) string { return id.String() }),
	}
}
