// Package idgen provides identity generators for new metadata rows.
package idgen

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// Ensure UUID implements the interface.
var _ driven.IDGenerator = UUID{}

// UUID generates time-ordered UUIDv7 identities, so rows inserted in one
// session sort by creation.
type UUID struct{}

// New returns a UUID generator.
func New() UUID {
	return UUID{}
}

// NewID returns a fresh identity. It falls back to a random UUIDv4 when
// the v7 clock sequence cannot be read.
func (UUID) NewID() domain.ID {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return domain.ID(u)
}
