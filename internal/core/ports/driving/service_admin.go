package driving

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// ServiceAdmin manages services.
//
// Every operation taking a domain.Interaction may prompt when the mode is
// interactive and fails fast otherwise.
type ServiceAdmin interface {
	// Add creates a service. Missing values are prompted for when
	// interactive, otherwise defaults apply.
	Add(ctx context.Context, mode domain.Interaction, req domain.NewService) (*domain.Service, error)

	// Get resolves one service and returns it with its auth apps.
	Get(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (*domain.Service, error)

	// List returns all services.
	List(ctx context.Context) ([]domain.Service, error)

	// Enable enables the selected services.
	Enable(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error)

	// Disable disables the selected services.
	Disable(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error)

	// Delete removes the selected services with their auth apps and content sets.
	Delete(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error)

	// Update applies a value document to one service atomically.
	Update(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, doc map[string]any) (domain.Outcome, error)

	SetContextRoot(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string) (domain.Outcome, error)
	SetProtocol(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string) (domain.Outcome, error)
	SetComments(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, value string) (domain.Outcome, error)
	SetOptions(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, options map[string]any) (domain.Outcome, error)

	// SetDefault marks one service as the gateway default.
	SetDefault(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (domain.Outcome, error)

	// RequestPathAvailable reports whether a content set could be created
	// below the service at requestPath.
	RequestPathAvailable(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, requestPath string) (bool, error)

	// CurrentServiceID returns the persisted current service, if any.
	CurrentServiceID(ctx context.Context) (domain.ID, bool, error)

	// SetCurrentService resolves a service and persists it as current.
	SetCurrentService(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector) (*domain.Service, error)

	// ClearCurrentService forgets the current service.
	ClearCurrentService(ctx context.Context) error
}
