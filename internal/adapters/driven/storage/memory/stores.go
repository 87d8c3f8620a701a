package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

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

type hostStore struct{ t *tx }

func (s hostStore) GetByName(_ context.Context, name string) (*domain.URLHost, error) {
	for _, h := range s.t.data.hosts {
		if strings.EqualFold(h.Name, name) {
			return &h, nil
		}
	}
	return nil, fmt.Errorf("host %q: %w", name, domain.ErrNotFound)
}

func (s hostStore) Insert(_ context.Context, host domain.URLHost) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	s.t.data.hosts[host.ID] = host
	return nil
}

type serviceStore struct{ t *tx }

func (s serviceStore) load(svc domain.Service) *domain.Service {
	svc.HostName = s.t.hostName(svc.HostID)
	svc.AuthApps = nil
	return &svc
}

func (s serviceStore) Get(_ context.Context, id domain.ID) (*domain.Service, error) {
	svc, ok := s.t.data.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
	}
	return s.load(svc), nil
}

func (s serviceStore) GetByHostCtx(_ context.Context, host, contextRoot string) (*domain.Service, error) {
	for _, svc := range s.t.data.services {
		if strings.EqualFold(s.t.hostName(svc.HostID), host) && svc.ContextRoot == contextRoot {
			return s.load(svc), nil
		}
	}
	return nil, fmt.Errorf("service %s%s: %w", host, contextRoot, domain.ErrNotFound)
}

func (s serviceStore) List(_ context.Context) ([]domain.Service, error) {
	result := lo.MapToSlice(s.t.data.services, func(_ domain.ID, svc domain.Service) domain.Service {
		return *s.load(svc)
	})
	slices.SortFunc(result, func(a, b domain.Service) int {
		return cmp.Or(cmp.Compare(a.HostName, b.HostName), cmp.Compare(a.ContextRoot, b.ContextRoot))
	})
	return result, nil
}

func (s serviceStore) checkUnique(svc domain.Service) error {
	for id, other := range s.t.data.services {
		if id != svc.ID && other.HostID == svc.HostID && other.ContextRoot == svc.ContextRoot {
			return fmt.Errorf("%s%s: %w", s.t.hostName(svc.HostID), svc.ContextRoot, domain.ErrPathConflict)
		}
	}
	return nil
}

func (s serviceStore) Insert(_ context.Context, svc domain.Service) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if err := s.checkUnique(svc); err != nil {
		return err
	}
	svc.HostName, svc.AuthApps = "", nil
	s.t.data.services[svc.ID] = svc
	return nil
}

func (s serviceStore) Update(_ context.Context, svc domain.Service) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.services[svc.ID]; !ok {
		return fmt.Errorf("service %s: %w", svc.ID, domain.ErrNotFound)
	}
	if err := s.checkUnique(svc); err != nil {
		return err
	}
	svc.HostName, svc.AuthApps = "", nil
	s.t.data.services[svc.ID] = svc
	return nil
}

func (s serviceStore) Delete(_ context.Context, id domain.ID) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.services[id]; !ok {
		return fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
	}
	delete(s.t.data.services, id)
	for appID, app := range s.t.data.authApps {
		if app.ServiceID == id {
			delete(s.t.data.authApps, appID)
		}
	}
	for csID, cs := range s.t.data.contentSets {
		if cs.ServiceID == id {
			contentSetStore(s).deleteCascade(csID)
		}
	}
	return nil
}

func (s serviceStore) SetDefault(_ context.Context, id domain.ID) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.services[id]; !ok {
		return fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
	}
	for sid, svc := range s.t.data.services {
		svc.IsDefault = sid == id
		s.t.data.services[sid] = svc
	}
	return nil
}

type authAppStore struct{ t *tx }

func (s authAppStore) load(app domain.AuthApp) *domain.AuthApp {
	app.AuthVendorName = s.t.data.vendors[app.AuthVendorID].Name
	return &app
}

func (s authAppStore) Get(_ context.Context, id domain.ID) (*domain.AuthApp, error) {
	app, ok := s.t.data.authApps[id]
	if !ok {
		return nil, fmt.Errorf("auth app %s: %w", id, domain.ErrNotFound)
	}
	return s.load(app), nil
}

func (s authAppStore) ListByService(_ context.Context, serviceID domain.ID) ([]domain.AuthApp, error) {
	result := make([]domain.AuthApp, 0)
	for _, app := range s.t.data.authApps {
		if app.ServiceID == serviceID {
			result = append(result, *s.load(app))
		}
	}
	slices.SortFunc(result, func(a, b domain.AuthApp) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), a.ID.Compare(b.ID))
	})
	return result, nil
}

func (s authAppStore) checkRefs(app domain.AuthApp) error {
	if _, ok := s.t.data.services[app.ServiceID]; !ok {
		return fmt.Errorf("service %s: %w", app.ServiceID, domain.ErrNotFound)
	}
	if _, ok := s.t.data.vendors[app.AuthVendorID]; !ok {
		return fmt.Errorf("auth vendor %s: %w", app.AuthVendorID, domain.ErrNotFound)
	}
	return nil
}

func (s authAppStore) Insert(_ context.Context, app domain.AuthApp) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if err := s.checkRefs(app); err != nil {
		return err
	}
	app.AuthVendorName = ""
	s.t.data.authApps[app.ID] = app
	return nil
}

func (s authAppStore) Update(_ context.Context, app domain.AuthApp) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.authApps[app.ID]; !ok {
		return fmt.Errorf("auth app %s: %w", app.ID, domain.ErrNotFound)
	}
	if err := s.checkRefs(app); err != nil {
		return err
	}
	app.AuthVendorName = ""
	s.t.data.authApps[app.ID] = app
	return nil
}

func (s authAppStore) Delete(_ context.Context, id domain.ID) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.authApps[id]; !ok {
		return fmt.Errorf("auth app %s: %w", id, domain.ErrNotFound)
	}
	delete(s.t.data.authApps, id)
	return nil
}

type contentSetStore struct{ t *tx }

func (s contentSetStore) load(cs domain.ContentSet) *domain.ContentSet {
	cs.HostCtx = s.t.hostCtx(cs.ServiceID)
	return &cs
}

func (s contentSetStore) Get(_ context.Context, id domain.ID) (*domain.ContentSet, error) {
	cs, ok := s.t.data.contentSets[id]
	if !ok {
		return nil, fmt.Errorf("content set %s: %w", id, domain.ErrNotFound)
	}
	return s.load(cs), nil
}

func (s contentSetStore) GetByPath(_ context.Context, serviceID domain.ID, requestPath string) (*domain.ContentSet, error) {
	for _, cs := range s.t.data.contentSets {
		if cs.ServiceID == serviceID && cs.RequestPath == requestPath {
			return s.load(cs), nil
		}
	}
	return nil, fmt.Errorf("content set %s: %w", requestPath, domain.ErrNotFound)
}

func (s contentSetStore) List(_ context.Context, serviceID *domain.ID) ([]domain.ContentSet, error) {
	result := make([]domain.ContentSet, 0)
	for _, cs := range s.t.data.contentSets {
		if serviceID == nil || cs.ServiceID == *serviceID {
			result = append(result, *s.load(cs))
		}
	}
	slices.SortFunc(result, func(a, b domain.ContentSet) int {
		return cmp.Compare(a.FullPath(), b.FullPath())
	})
	return result, nil
}

func (s contentSetStore) checkUnique(cs domain.ContentSet) error {
	if _, ok := s.t.data.services[cs.ServiceID]; !ok {
		return fmt.Errorf("service %s: %w", cs.ServiceID, domain.ErrNotFound)
	}
	for id, other := range s.t.data.contentSets {
		if id != cs.ID && other.ServiceID == cs.ServiceID && other.RequestPath == cs.RequestPath {
			return fmt.Errorf("%s%s: %w", s.t.hostCtx(cs.ServiceID), cs.RequestPath, domain.ErrPathConflict)
		}
	}
	return nil
}

func (s contentSetStore) Insert(_ context.Context, cs domain.ContentSet) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if err := s.checkUnique(cs); err != nil {
		return err
	}
	cs.HostCtx = ""
	s.t.data.contentSets[cs.ID] = cs
	return nil
}

func (s contentSetStore) Update(_ context.Context, cs domain.ContentSet) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.contentSets[cs.ID]; !ok {
		return fmt.Errorf("content set %s: %w", cs.ID, domain.ErrNotFound)
	}
	if err := s.checkUnique(cs); err != nil {
		return err
	}
	cs.HostCtx = ""
	s.t.data.contentSets[cs.ID] = cs
	return nil
}

func (s contentSetStore) Delete(_ context.Context, id domain.ID) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.contentSets[id]; !ok {
		return fmt.Errorf("content set %s: %w", id, domain.ErrNotFound)
	}
	s.deleteCascade(id)
	return nil
}

func (s contentSetStore) deleteCascade(id domain.ID) {
	delete(s.t.data.contentSets, id)
	for fileID, f := range s.t.data.contentFiles {
		if f.ContentSetID == id {
			delete(s.t.data.contentFiles, fileID)
		}
	}
}

type contentFileStore struct{ t *tx }

func (s contentFileStore) List(_ context.Context, contentSetID domain.ID) ([]domain.ContentFile, error) {
	result := make([]domain.ContentFile, 0)
	for _, f := range s.t.data.contentFiles {
		if f.ContentSetID == contentSetID {
			f.Content = nil
			result = append(result, f)
		}
	}
	slices.SortFunc(result, func(a, b domain.ContentFile) int {
		return cmp.Compare(a.RequestPath, b.RequestPath)
	})
	return result, nil
}

func (s contentFileStore) Insert(_ context.Context, file domain.ContentFile) error {
	if err := s.t.writable(); err != nil {
		return err
	}
	if _, ok := s.t.data.contentSets[file.ContentSetID]; !ok {
		return fmt.Errorf("content set %s: %w", file.ContentSetID, domain.ErrNotFound)
	}
	file.Content = slices.Clone(file.Content)
	s.t.data.contentFiles[file.ID] = file
	return nil
}

func (s contentFileStore) DeleteAll(_ context.Context, contentSetID domain.ID) (int, error) {
	if err := s.t.writable(); err != nil {
		return 0, err
	}
	n := 0
	for id, f := range s.t.data.contentFiles {
		if f.ContentSetID == contentSetID {
			delete(s.t.data.contentFiles, id)
			n++
		}
	}
	return n, nil
}

type vendorStore struct{ t *tx }

func (s vendorStore) Get(_ context.Context, id domain.ID) (*domain.AuthVendor, error) {
	v, ok := s.t.data.vendors[id]
	if !ok {
		return nil, fmt.Errorf("auth vendor %s: %w", id, domain.ErrNotFound)
	}
	return &v, nil
}

func (s vendorStore) GetByName(_ context.Context, name string) (*domain.AuthVendor, error) {
	v, ok := lo.Find(lo.Values(s.t.data.vendors), func(v domain.AuthVendor) bool {
		return strings.EqualFold(v.Name, name)
	})
	if !ok {
		return nil, fmt.Errorf("auth vendor %q: %w", name, domain.ErrNotFound)
	}
	return &v, nil
}

func (s vendorStore) List(_ context.Context) ([]domain.AuthVendor, error) {
	result := lo.Values(s.t.data.vendors)
	slices.SortFunc(result, func(a, b domain.AuthVendor) int {
		return a.ID.Compare(b.ID)
	})
	return result, nil
}
