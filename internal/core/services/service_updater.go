package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/logger"
)

// serviceUpdater applies a service update with its nested auth app changes.
// It must run inside a write transaction; any error leaves the caller to
// roll the whole transaction back.
type serviceUpdater struct {
	ids   driven.IDGenerator
	paths PathValidator
}

func (u *serviceUpdater) apply(
	ctx context.Context, tx driven.Tx, serviceID domain.ID, upd domain.ServiceUpdate,
) (*domain.Service, error) {
	current, err := tx.Services().Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if upd.Options != nil {
		if err := ValidateOptions(*upd.Options); err != nil {
			return nil, err
		}
	}

	next := *current
	upd.Apply(&next)

	pathChanged := !strings.EqualFold(next.HostName, current.HostName) || next.ContextRoot != current.ContextRoot
	enabling := next.Enabled && !current.Enabled
	if pathChanged || enabling {
		claim := domain.PathClaim{Kind: domain.KindService, ID: next.ID, ServiceID: next.ID, Path: next.HostCtx()}
		if err := u.paths.CheckAvailable(ctx, tx, claim); err != nil {
			return nil, err
		}
	}
	if upd.HostName != nil && !strings.EqualFold(next.HostName, current.HostName) {
		host, err := ensureHost(ctx, tx, u.ids, next.HostName)
		if err != nil {
			return nil, err
		}
		next.HostID = host.ID
	}

	if err := tx.Services().Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update service %s: %w", serviceID, err)
	}

	// Content sets come back with a service that moves or is enabled.
	if (pathChanged || enabling) && next.Enabled {
		if err := u.recheckContentSets(ctx, tx, serviceID); err != nil {
			return nil, err
		}
	}

	for i, change := range upd.AuthApps {
		if _, err := u.applyAuthApp(ctx, tx, serviceID, change); err != nil {
			return nil, fmt.Errorf("auth_apps[%d]: %w", i, err)
		}
	}

	updated, err := tx.Services().Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if updated.AuthApps, err = tx.AuthApps().ListByService(ctx, serviceID); err != nil {
		return nil, err
	}
	return updated, nil
}

// recheckContentSets validates the enabled content sets of a service.
func (u *serviceUpdater) recheckContentSets(ctx context.Context, tx driven.Tx, serviceID domain.ID) error {
	sets, err := tx.ContentSets().List(ctx, &serviceID)
	if err != nil {
		return err
	}
	for _, cs := range sets {
		if !cs.Enabled {
			continue
		}
		claim := domain.PathClaim{Kind: domain.KindContentSet, ID: cs.ID, ServiceID: serviceID, Path: cs.FullPath()}
		if err := u.paths.CheckAvailable(ctx, tx, claim); err != nil {
			return fmt.Errorf("content set %s: %w", cs.RequestPath, err)
		}
	}
	return nil
}

// applyAuthApp inserts, updates or deletes one auth app of a service and
// returns its ID.
func (u *serviceUpdater) applyAuthApp(
	ctx context.Context, tx driven.Tx, serviceID domain.ID, change domain.AuthAppChange,
) (domain.ID, error) {
	store := tx.AuthApps()

	id, existing := change.Ref.ID()
	if !existing {
		app := domain.NewAuthApp(u.ids.NewID(), serviceID)
		change.Values.Apply(&app)
		app.ServiceID = serviceID
		if app.AuthVendorID.IsZero() {
			return domain.NilID, fmt.Errorf("%w: auth_vendor_id is required for a new auth app", domain.ErrValidation)
		}
		logger.Debug("inserting auth app %s on service %s", app.ID, serviceID)
		return app.ID, store.Insert(ctx, app)
	}

	app, err := store.Get(ctx, id)
	if err != nil {
		return id, err
	}
	if app.ServiceID != serviceID {
		return id, fmt.Errorf("auth app %s does not belong to service %s: %w", id, serviceID, domain.ErrNotFound)
	}
	if change.Delete {
		logger.Debug("deleting auth app %s", id)
		return id, store.Delete(ctx, id)
	}
	change.Values.Apply(app)
	app.ServiceID = serviceID
	return id, store.Update(ctx, *app)
}

// ensureHost returns the url_host row for name, creating it on demand.
func ensureHost(ctx context.Context, tx driven.Tx, ids driven.IDGenerator, name string) (*domain.URLHost, error) {
	host, err := tx.Hosts().GetByName(ctx, name)
	if err == nil {
		return host, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	host = &domain.URLHost{ID: ids.NewID(), Name: name}
	if err := tx.Hosts().Insert(ctx, *host); err != nil {
		return nil, fmt.Errorf("insert host %q: %w", name, err)
	}
	return host, nil
}
