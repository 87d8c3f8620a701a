package driving

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// ContentSetAdmin manages content sets and their files.
type ContentSetAdmin interface {
	// Add creates a content set on the selected service and uploads
	// req.ContentDir when set.
	Add(ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, req domain.NewContentSet) (domain.UploadResult, error)

	// Get resolves one content set.
	Get(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (*domain.ContentSet, error)

	// List returns the content sets of the selected service, or of all
	// services when sel is nil.
	List(ctx context.Context, mode domain.Interaction, sel *domain.ServiceSelector) ([]domain.ContentSet, error)

	Enable(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error)
	Disable(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error)

	// Delete removes the selected content sets with their files.
	Delete(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error)

	// Update applies a value document to one content set.
	Update(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector, doc map[string]any) (domain.Outcome, error)

	// Files lists the files of one content set.
	Files(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) ([]domain.ContentFile, error)

	// SyncDirectory replaces the files of one content set with the
	// contents of dir.
	SyncDirectory(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector, dir string) (domain.UploadResult, error)
}
