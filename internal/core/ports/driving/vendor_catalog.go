package driving

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// VendorCatalog reads the supported auth vendors.
type VendorCatalog interface {
	List(ctx context.Context) ([]domain.AuthVendor, error)

	// Get looks a vendor up by ID or, failing that, by name.
	Get(ctx context.Context, idOrName string) (*domain.AuthVendor, error)
}
