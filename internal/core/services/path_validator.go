package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// PathValidator rejects paths that collide with a path already served by
// an enabled service or content set.
type PathValidator struct{}

// claims lists the paths held by every enabled service and content set.
func (PathValidator) claims(ctx context.Context, tx driven.Tx) ([]domain.PathClaim, error) {
	services, err := tx.Services().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	enabled := make(map[domain.ID]bool, len(services))
	claims := make([]domain.PathClaim, 0, len(services))
	for _, svc := range services {
		enabled[svc.ID] = svc.Enabled
		if svc.Enabled {
			claims = append(claims, domain.PathClaim{
				Kind: domain.KindService, ID: svc.ID, ServiceID: svc.ID, Path: svc.HostCtx(),
			})
		}
	}

	sets, err := tx.ContentSets().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list content sets: %w", err)
	}
	for _, cs := range sets {
		// A content set below a disabled service is not served.
		if cs.Enabled && enabled[cs.ServiceID] {
			claims = append(claims, domain.PathClaim{
				Kind: domain.KindContentSet, ID: cs.ID, ServiceID: cs.ServiceID, Path: cs.FullPath(),
			})
		}
	}
	return claims, nil
}

// CheckAvailable returns domain.ErrPathConflict when candidate overlaps an
// enabled path held by another entity. The candidate's own ID is ignored so
// an entity may be re-validated in place.
func (v PathValidator) CheckAvailable(ctx context.Context, tx driven.Tx, candidate domain.PathClaim) error {
	claims, err := v.claims(ctx, tx)
	if err != nil {
		return err
	}
	want := domain.NormalizePath(candidate.Path)
	for _, c := range claims {
		if c.ID == candidate.ID {
			continue
		}
		overlap, candidateShorter := domain.PathsOverlap(want, domain.NormalizePath(c.Path))
		if !overlap || nests(candidate, c, candidateShorter) {
			continue
		}
		return fmt.Errorf("%s is already in use: %w", c.Path, domain.ErrPathConflict)
	}
	return nil
}

// nests reports whether one path is a content set below the other's service,
// which is how content sets are meant to be laid out.
func nests(candidate, existing domain.PathClaim, candidateShorter bool) bool {
	outer, inner := existing, candidate
	if candidateShorter {
		outer, inner = candidate, existing
	}
	if domain.NormalizePath(outer.Path) == domain.NormalizePath(inner.Path) {
		return false
	}
	return outer.Kind == domain.KindService && inner.Kind == domain.KindContentSet &&
		inner.ServiceID == outer.ID
}
