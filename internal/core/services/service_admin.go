package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
	"github.com/custodia-labs/restgate/internal/logger"
)

// Ensure ServiceAdmin implements the interface.
var _ driving.ServiceAdmin = (*ServiceAdmin)(nil)

// ServiceAdmin manages services.
type ServiceAdmin struct {
	store    driven.Store
	ids      driven.IDGenerator
	resolver *resolver
	updater  *serviceUpdater
}

// NewServiceAdmin creates a new service admin.
func NewServiceAdmin(store driven.Store, ids driven.IDGenerator) *ServiceAdmin {
	return &ServiceAdmin{
		store:    store,
		ids:      ids,
		resolver: &resolver{},
		updater:  &serviceUpdater{ids: ids},
	}
}

// SetPrompter enables interactive prompts.
func (s *ServiceAdmin) SetPrompter(p driven.Prompter) {
	s.resolver.prompter = p
}

// SetCurrentServiceStore enables the persisted current service.
func (s *ServiceAdmin) SetCurrentServiceStore(c driven.CurrentServiceStore) {
	s.resolver.current = c
}

// Add creates a service.
func (s *ServiceAdmin) Add(ctx context.Context, mode domain.Interaction, req domain.NewService) (*domain.Service, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	ctx, log := logger.WithOperation(ctx, "service.add")

	if err := s.promptNewService(ctx, mode, &req); err != nil {
		return nil, err
	}
	svc, err := s.buildService(req)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, func(tx driven.Tx) error {
		if svc.Enabled {
			claim := domain.PathClaim{Kind: domain.KindService, ID: svc.ID, ServiceID: svc.ID, Path: svc.HostCtx()}
			if err := s.updater.paths.CheckAvailable(ctx, tx, claim); err != nil {
				return err
			}
		}
		host, err := ensureHost(ctx, tx, s.ids, svc.HostName)
		if err != nil {
			return err
		}
		svc.HostID = host.ID

		existing, err := tx.Services().List(ctx)
		if err != nil {
			return err
		}
		if err := tx.Services().Insert(ctx, *svc); err != nil {
			return err
		}
		// The first service becomes the gateway default.
		if len(existing) == 0 {
			if err := tx.Services().SetDefault(ctx, svc.ID); err != nil {
				return err
			}
		}
		for i, values := range req.AuthApps {
			change := domain.AuthAppChange{Ref: domain.NewChild(), Values: values}
			if _, err := s.updater.applyAuthApp(ctx, tx, svc.ID, change); err != nil {
				return fmt.Errorf("auth_apps[%d]: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("created service %s at %s", svc.ID, svc.HostCtx())
	return s.Get(ctx, mode, domain.ByID(svc.ID))
}

func (s *ServiceAdmin) promptNewService(ctx context.Context, mode domain.Interaction, req *domain.NewService) error {
	if !s.resolver.canPrompt(mode) {
		if req.ContextRoot == "" {
			return fmt.Errorf("%w: url_context_root is required", domain.ErrValidation)
		}
		return nil
	}
	p := s.resolver.prompter
	var err error
	if req.ContextRoot == "" {
		if req.ContextRoot, err = p.Input(ctx, "Please enter the context path for this service", ""); err != nil {
			return err
		}
		if req.ContextRoot == "" {
			return fmt.Errorf("no context path given: %w", domain.ErrOperationCancelled)
		}
	}
	if req.HostName == "" {
		if req.HostName, err = p.Input(ctx, "Please enter the host name for this service (empty for any host)", ""); err != nil {
			return err
		}
	}
	if len(req.Protocols) == 0 {
		answer, err := p.Input(ctx, "Please select the protocol(s) the service should support", string(domain.ProtocolHTTP))
		if err != nil {
			return err
		}
		if req.Protocols, err = domain.ParseProtocols(answer); err != nil {
			return err
		}
	}
	if req.Comments == "" {
		if req.Comments, err = p.Input(ctx, "Comments", ""); err != nil {
			return err
		}
	}
	return nil
}

// buildService applies defaults and validates a creation request.
func (s *ServiceAdmin) buildService(req domain.NewService) (*domain.Service, error) {
	if err := domain.ValidatePath("url_context_root", req.ContextRoot); err != nil {
		return nil, err
	}
	svc := &domain.Service{
		ID:                         s.ids.NewID(),
		HostName:                   req.HostName,
		ContextRoot:                req.ContextRoot,
		Protocols:                  req.Protocols,
		Enabled:                    true,
		Comments:                   req.Comments,
		AuthPath:                   req.AuthPath,
		AuthCompletedURL:           req.AuthCompletedURL,
		AuthCompletedURLValidation: req.AuthCompletedURLValidation,
		AuthCompletedPageContent:   req.AuthCompletedPageContent,
	}
	if req.Enabled != nil {
		svc.Enabled = *req.Enabled
	}
	if len(svc.Protocols) == 0 {
		svc.Protocols = domain.ProtocolSet{domain.ProtocolHTTP}
	}
	if svc.AuthPath == "" {
		svc.AuthPath = domain.DefaultAuthPath
	}
	if err := domain.ValidatePath("auth_path", svc.AuthPath); err != nil {
		return nil, err
	}
	if err := ValidateOptions(req.Options); err != nil {
		return nil, err
	}
	options, err := mergeOptions(req.Options)
	if err != nil {
		return nil, err
	}
	svc.Options = options
	return svc, nil
}

// Get resolves one service and returns it with its auth apps.
func (s *ServiceAdmin) Get(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (*domain.Service, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var svc *domain.Service
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var err error
		if svc, err = s.resolver.service(ctx, tx, mode, sel); err != nil {
			return err
		}
		svc.AuthApps, err = tx.AuthApps().ListByService(ctx, svc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// List returns all services.
func (s *ServiceAdmin) List(ctx context.Context) ([]domain.Service, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var services []domain.Service
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var err error
		services, err = tx.Services().List(ctx)
		return err
	})
	return services, err
}

// resolveIDs resolves a selector in a read transaction so that prompts never
// hold a write lock.
func (s *ServiceAdmin) resolveIDs(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, multi bool,
) ([]domain.ID, error) {
	var ids []domain.ID
	err := s.store.View(ctx, func(tx driven.Tx) error {
		list, err := s.resolver.services(ctx, tx, mode, sel, multi)
		if err != nil {
			return err
		}
		ids = lo.Map(list, func(svc domain.Service, _ int) domain.ID { return svc.ID })
		return nil
	})
	return ids, err
}

// mutate resolves the selected services and runs fn on each inside one
// write transaction.
func (s *ServiceAdmin) mutate(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, multi bool, op string,
	fn func(ctx context.Context, tx driven.Tx, svc *domain.Service) error,
) (domain.Outcome, error) {
	if s.store == nil {
		return domain.Outcome{}, domain.ErrNotImplemented
	}
	ids, err := s.resolveIDs(ctx, mode, sel, multi)
	if err != nil {
		return domain.Outcome{}, err
	}
	err = s.store.Update(ctx, func(tx driven.Tx) error {
		for _, id := range ids {
			svc, err := tx.Services().Get(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(ctx, tx, svc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}
	logger.Debug("service %s: %v", op, ids)
	return domain.NewOutcome(mode, domain.KindService, op, ids), nil
}

// Enable enables the selected services.
func (s *ServiceAdmin) Enable(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error) {
	enabled := true
	return s.mutate(ctx, mode, sel, true, "enabled", func(ctx context.Context, tx driven.Tx, svc *domain.Service) error {
		_, err := s.updater.apply(ctx, tx, svc.ID, domain.ServiceUpdate{Enabled: &enabled})
		return err
	})
}

// Disable disables the selected services.
func (s *ServiceAdmin) Disable(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error) {
	disabled := false
	return s.mutate(ctx, mode, sel, true, "disabled", func(ctx context.Context, tx driven.Tx, svc *domain.Service) error {
		_, err := s.updater.apply(ctx, tx, svc.ID, domain.ServiceUpdate{Enabled: &disabled})
		return err
	})
}

// Delete removes the selected services.
func (s *ServiceAdmin) Delete(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error) {
	out, err := s.mutate(ctx, mode, sel, true, "deleted", func(ctx context.Context, tx driven.Tx, svc *domain.Service) error {
		return tx.Services().Delete(ctx, svc.ID)
	})
	if err != nil {
		return out, err
	}
	s.forgetCurrent(ctx, out.IDs)
	return out, nil
}

// forgetCurrent clears the current service when it was deleted.
func (s *ServiceAdmin) forgetCurrent(ctx context.Context, deleted []domain.ID) {
	if s.resolver.current == nil {
		return
	}
	id, ok, err := s.resolver.current.CurrentServiceID(ctx)
	if err != nil || !ok || !lo.Contains(deleted, id) {
		return
	}
	if err := s.resolver.current.ClearCurrentServiceID(ctx); err != nil {
		logger.Warn("clear current service: %v", err)
	}
}

// Update applies a value document to one service atomically.
func (s *ServiceAdmin) Update(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, doc map[string]any,
) (domain.Outcome, error) {
	upd, err := ParseServiceUpdate(doc)
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.update(ctx, mode, sel, upd)
}

func (s *ServiceAdmin) update(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, upd domain.ServiceUpdate,
) (domain.Outcome, error) {
	return s.mutate(ctx, mode, sel, false, "updated", func(ctx context.Context, tx driven.Tx, svc *domain.Service) error {
		_, err := s.updater.apply(ctx, tx, svc.ID, upd)
		return err
	})
}

// SetContextRoot changes the context root of one service.
func (s *ServiceAdmin) SetContextRoot(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string,
) (domain.Outcome, error) {
	value, err := s.valueOrPrompt(ctx, mode, "Please enter the new context path for this service", value, "")
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := domain.ValidatePath("url_context_root", value); err != nil {
		return domain.Outcome{}, err
	}
	return s.update(ctx, mode, sel, domain.ServiceUpdate{ContextRoot: &value})
}

// SetProtocol changes the protocols of one service.
func (s *ServiceAdmin) SetProtocol(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string,
) (domain.Outcome, error) {
	value, err := s.valueOrPrompt(ctx, mode, "Please select the protocol(s) the service should support", value, "")
	if err != nil {
		return domain.Outcome{}, err
	}
	protocols, err := domain.ParseProtocols(value)
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.update(ctx, mode, sel, domain.ServiceUpdate{Protocols: &protocols})
}

// SetComments changes the comments of one service. Empty comments are
// allowed.
func (s *ServiceAdmin) SetComments(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string,
) (domain.Outcome, error) {
	return s.update(ctx, mode, sel, domain.ServiceUpdate{Comments: &value})
}

// SetOptions replaces the options of one service.
func (s *ServiceAdmin) SetOptions(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, options map[string]any,
) (domain.Outcome, error) {
	if options == nil {
		options = map[string]any{}
	}
	return s.update(ctx, mode, sel, domain.ServiceUpdate{Options: &options})
}

// SetDefault marks one service as the gateway default.
func (s *ServiceAdmin) SetDefault(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error) {
	return s.mutate(ctx, mode, sel, false, "set as default", func(ctx context.Context, tx driven.Tx, svc *domain.Service) error {
		return tx.Services().SetDefault(ctx, svc.ID)
	})
}

// defaultRequestPath is offered when prompting for a content set path.
const defaultRequestPath = "/content"

// RequestPathAvailable reports whether a content set could be created below
// the service at requestPath.
func (s *ServiceAdmin) RequestPathAvailable(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, requestPath string,
) (bool, error) {
	if s.store == nil {
		return false, domain.ErrNotImplemented
	}
	requestPath, err := s.valueOrPrompt(ctx, mode,
		"Please enter the request path for this content set", requestPath, defaultRequestPath)
	if err != nil {
		return false, err
	}
	if err := domain.ValidatePath("request_path", requestPath); err != nil {
		return false, err
	}

	err = s.store.View(ctx, func(tx driven.Tx) error {
		svc, err := s.resolver.service(ctx, tx, mode, sel)
		if err != nil {
			return err
		}
		if _, err := tx.ContentSets().GetByPath(ctx, svc.ID, requestPath); err == nil {
			return fmt.Errorf("%s%s: %w", svc.HostCtx(), requestPath, domain.ErrPathConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		claim := domain.PathClaim{
			Kind: domain.KindContentSet, ServiceID: svc.ID, Path: svc.HostCtx() + requestPath,
		}
		return s.updater.paths.CheckAvailable(ctx, tx, claim)
	})
	if errors.Is(err, domain.ErrPathConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentServiceID returns the persisted current service, if any.
func (s *ServiceAdmin) CurrentServiceID(ctx context.Context) (domain.ID, bool, error) {
	if s.resolver.current == nil {
		return domain.NilID, false, nil
	}
	return s.resolver.current.CurrentServiceID(ctx)
}

// SetCurrentService resolves a service and persists it as current.
func (s *ServiceAdmin) SetCurrentService(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector,
) (*domain.Service, error) {
	if s.resolver.current == nil {
		return nil, domain.ErrNotImplemented
	}
	svc, err := s.Get(ctx, mode, sel)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.current.SetCurrentServiceID(ctx, svc.ID); err != nil {
		return nil, fmt.Errorf("store current service: %w", err)
	}
	return svc, nil
}

// ClearCurrentService forgets the current service.
func (s *ServiceAdmin) ClearCurrentService(ctx context.Context) error {
	if s.resolver.current == nil {
		return domain.ErrNotImplemented
	}
	return s.resolver.current.ClearCurrentServiceID(ctx)
}

// valueOrPrompt returns value, asking for it when empty and interactive.
func (s *ServiceAdmin) valueOrPrompt(
	ctx context.Context, mode domain.Interaction, label, value, def string,
) (string, error) {
	if value != "" || !s.resolver.canPrompt(mode) {
		return value, nil
	}
	answer, err := s.resolver.prompter.Input(ctx, label, def)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", domain.ErrOperationCancelled
	}
	return answer, nil
}
