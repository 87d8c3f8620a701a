package driven

import "github.com/custodia-labs/restgate/internal/core/domain"

// IDGenerator produces identities for new rows.
type IDGenerator interface {
	NewID() domain.ID
}
