package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
)

// Ensure AuthAppAdmin implements the interface.
var _ driving.AuthAppAdmin = (*AuthAppAdmin)(nil)

// AuthAppAdmin manages auth apps.
type AuthAppAdmin struct {
	store    driven.Store
	resolver *resolver
	updater  *serviceUpdater
}

// NewAuthAppAdmin creates a new auth app admin.
func NewAuthAppAdmin(store driven.Store, ids driven.IDGenerator) *AuthAppAdmin {
	return &AuthAppAdmin{
		store:    store,
		resolver: &resolver{},
		updater:  &serviceUpdater{ids: ids},
	}
}

// SetPrompter enables interactive prompts.
func (s *AuthAppAdmin) SetPrompter(p driven.Prompter) {
	s.resolver.prompter = p
}

// SetCurrentServiceStore enables the persisted current service.
func (s *AuthAppAdmin) SetCurrentServiceStore(c driven.CurrentServiceStore) {
	s.resolver.current = c
}

// Add creates an auth app on the selected service.
func (s *AuthAppAdmin) Add(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, values domain.AuthAppValues,
) (*domain.AuthApp, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	var (
		serviceID domain.ID
		vendors   []domain.AuthVendor
	)
	err := s.store.View(ctx, func(tx driven.Tx) error {
		svc, err := s.resolver.service(ctx, tx, mode, sel)
		if err != nil {
			return err
		}
		serviceID = svc.ID
		vendors, err = tx.Vendors().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.promptValues(ctx, mode, vendors, &values); err != nil {
		return nil, err
	}
	if values.Name == nil || *values.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	var app *domain.AuthApp
	err = s.store.Update(ctx, func(tx driven.Tx) error {
		change := domain.AuthAppChange{Ref: domain.NewChild(), Values: values}
		id, err := s.updater.applyAuthApp(ctx, tx, serviceID, change)
		if err != nil {
			return err
		}
		app, err = tx.AuthApps().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *AuthAppAdmin) promptValues(
	ctx context.Context, mode domain.Interaction, vendors []domain.AuthVendor, values *domain.AuthAppValues,
) error {
	if !s.resolver.canPrompt(mode) {
		return nil
	}
	p := s.resolver.prompter
	if values.AuthVendorID == nil {
		labels := lo.Map(vendors, func(v domain.AuthVendor, _ int) string { return v.Name })
		idx, err := p.Select(ctx, "Please select the authentication vendor", labels, false)
		if err != nil {
			return err
		}
		if len(idx) == 0 {
			return domain.ErrOperationCancelled
		}
		values.AuthVendorID = &vendors[idx[0]].ID
	}
	if values.Name == nil {
		name, err := p.Input(ctx, "Please enter a name for the authentication app", "")
		if err != nil {
			return err
		}
		values.Name = &name
	}
	if values.AppID == nil && *values.AuthVendorID != domain.VendorMRS && *values.AuthVendorID != domain.VendorMySQLInternal {
		appID, err := p.Input(ctx, "Please enter the app id of the vendor", "")
		if err != nil {
			return err
		}
		values.AppID = &appID
		token, err := p.Secret(ctx, "Please enter the access token of the vendor")
		if err != nil {
			return err
		}
		values.AccessToken = &token
	}
	return nil
}

// Get retrieves an auth app by ID.
func (s *AuthAppAdmin) Get(ctx context.Context, id domain.ID) (*domain.AuthApp, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var app *domain.AuthApp
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var err error
		app, err = tx.AuthApps().Get(ctx, id)
		return err
	})
	return app, err
}

// List returns the auth apps of the selected service.
func (s *AuthAppAdmin) List(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) ([]domain.AuthApp, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var apps []domain.AuthApp
	err := s.store.View(ctx, func(tx driven.Tx) error {
		svc, err := s.resolver.service(ctx, tx, mode, sel)
		if err != nil {
			return err
		}
		apps, err = tx.AuthApps().ListByService(ctx, svc.ID)
		return err
	})
	return apps, err
}

// Update applies a value document to an auth app.
func (s *AuthAppAdmin) Update(ctx context.Context, mode domain.Interaction, id domain.ID, doc map[string]any) (domain.Outcome, error) {
	if s.store == nil {
		return domain.Outcome{}, domain.ErrNotImplemented
	}
	values, err := ParseAuthAppUpdate(doc)
	if err != nil {
		return domain.Outcome{}, err
	}
	err = s.store.Update(ctx, func(tx driven.Tx) error {
		app, err := tx.AuthApps().Get(ctx, id)
		if err != nil {
			return err
		}
		change := domain.AuthAppChange{Ref: domain.ExistingChild(id), Values: values}
		_, err = s.updater.applyAuthApp(ctx, tx, app.ServiceID, change)
		return err
	})
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.NewOutcome(mode, domain.KindAuthApp, "updated", []domain.ID{id}), nil
}

// Delete removes an auth app.
func (s *AuthAppAdmin) Delete(ctx context.Context, mode domain.Interaction, id domain.ID) (domain.Outcome, error) {
	if s.store == nil {
		return domain.Outcome{}, domain.ErrNotImplemented
	}
	err := s.store.Update(ctx, func(tx driven.Tx) error {
		return tx.AuthApps().Delete(ctx, id)
	})
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.NewOutcome(mode, domain.KindAuthApp, "deleted", []domain.ID{id}), nil
}
