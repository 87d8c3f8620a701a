package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/logger"
)

// resolver turns selectors into entities, prompting when the interaction
// mode allows it.
type resolver struct {
	prompter driven.Prompter
	current  driven.CurrentServiceStore
}

func (r *resolver) canPrompt(mode domain.Interaction) bool {
	return mode.Interactive && r.prompter != nil
}

// services resolves a selector to one service, or to several when multi is
// set and the user picks more than one.
func (r *resolver) services(
	ctx context.Context, tx driven.Tx, mode domain.Interaction, sel domain.ServiceSelector, multi bool,
) ([]domain.Service, error) {
	store := tx.Services()

	if sel.ID != nil {
		svc, err := store.Get(ctx, *sel.ID)
		if err != nil {
			return nil, err
		}
		return []domain.Service{*svc}, nil
	}

	if sel.ContextRoot != "" {
		if err := domain.ValidatePath("url_context_root", sel.ContextRoot); err != nil {
			return nil, err
		}
		svc, err := store.GetByHostCtx(ctx, sel.HostName, sel.ContextRoot)
		if err != nil {
			return nil, err
		}
		return []domain.Service{*svc}, nil
	}

	if sel.UseCurrent && r.current != nil {
		id, ok, err := r.current.CurrentServiceID(ctx)
		if err != nil {
			return nil, fmt.Errorf("read current service: %w", err)
		}
		if ok {
			svc, err := store.Get(ctx, id)
			switch {
			case err == nil:
				return []domain.Service{*svc}, nil
			case !errors.Is(err, domain.ErrNotFound):
				return nil, err
			}
			logger.Warn("current service %s no longer exists", id)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	switch {
	case len(all) == 1 && sel.AutoSelectSingle:
		return all, nil
	case len(all) == 0:
		return nil, fmt.Errorf("no services available: %w", domain.ErrNotFound)
	case !r.canPrompt(mode):
		return nil, fmt.Errorf("%d services match, name one: %w", len(all), domain.ErrAmbiguousSelection)
	}

	labels := lo.Map(all, func(s domain.Service, _ int) string { return s.HostCtx() })
	idx, err := r.prompter.Select(ctx, "Please select a service", labels, multi)
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, domain.ErrOperationCancelled
	}
	return lo.Map(idx, func(i int, _ int) domain.Service { return all[i] }), nil
}

func (r *resolver) service(
	ctx context.Context, tx driven.Tx, mode domain.Interaction, sel domain.ServiceSelector,
) (*domain.Service, error) {
	list, err := r.services(ctx, tx, mode, sel, false)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// contentSets resolves a content set selector within its service.
func (r *resolver) contentSets(
	ctx context.Context, tx driven.Tx, mode domain.Interaction, sel domain.ContentSetSelector, multi bool,
) ([]domain.ContentSet, error) {
	store := tx.ContentSets()

	if sel.ID != nil {
		cs, err := store.Get(ctx, *sel.ID)
		if err != nil {
			return nil, err
		}
		return []domain.ContentSet{*cs}, nil
	}

	svcSel := sel.Service
	svcSel.AutoSelectSingle = svcSel.AutoSelectSingle || sel.AutoSelectSingle
	svc, err := r.service(ctx, tx, mode, svcSel)
	if err != nil {
		return nil, err
	}

	if sel.RequestPath != "" {
		if err := domain.ValidatePath("request_path", sel.RequestPath); err != nil {
			return nil, err
		}
		cs, err := store.GetByPath(ctx, svc.ID, sel.RequestPath)
		if err != nil {
			return nil, err
		}
		return []domain.ContentSet{*cs}, nil
	}

	all, err := store.List(ctx, &svc.ID)
	if err != nil {
		return nil, fmt.Errorf("list content sets: %w", err)
	}
	switch {
	case len(all) == 1 && sel.AutoSelectSingle:
		return all, nil
	case len(all) == 0:
		return nil, fmt.Errorf("no content sets on %s: %w", svc.HostCtx(), domain.ErrNotFound)
	case !r.canPrompt(mode):
		return nil, fmt.Errorf("%d content sets match, name one: %w", len(all), domain.ErrAmbiguousSelection)
	}

	labels := lo.Map(all, func(cs domain.ContentSet, _ int) string { return cs.RequestPath })
	idx, err := r.prompter.Select(ctx, "Please select a content set", labels, multi)
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, domain.ErrOperationCancelled
	}
	return lo.Map(idx, func(i int, _ int) domain.ContentSet { return all[i] }), nil
}

func (r *resolver) contentSet(
	ctx context.Context, tx driven.Tx, mode domain.Interaction, sel domain.ContentSetSelector,
) (*domain.ContentSet, error) {
	list, err := r.contentSets(ctx, tx, mode, sel, false)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}
