package driving

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// AuthAppAdmin manages the auth apps of services.
type AuthAppAdmin interface {
	// Add creates an auth app on the selected service.
	Add(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, values domain.AuthAppValues) (*domain.AuthApp, error)

	// Get retrieves an auth app by ID.
	Get(ctx context.Context, id domain.ID) (*domain.AuthApp, error)

	// List returns the auth apps of the selected service.
	List(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) ([]domain.AuthApp, error)

	// Update applies a value document to an auth app.
	Update(ctx context.Context, mode domain.Interaction, id domain.ID, doc map[string]any) (domain.Outcome, error)

	// Delete removes an auth app.
	Delete(ctx context.Context, mode domain.Interaction, id domain.ID) (domain.Outcome, error)
}
