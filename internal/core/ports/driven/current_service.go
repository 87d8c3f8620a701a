package driven

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// CurrentServiceStore persists the service implied by commands that do not
// name one.
type CurrentServiceStore interface {
	// CurrentServiceID returns the stored service; ok is false when none is set.
	CurrentServiceID(ctx context.Context) (id domain.ID, ok bool, err error)

	SetCurrentServiceID(ctx context.Context, id domain.ID) error

	ClearCurrentServiceID(ctx context.Context) error
}
