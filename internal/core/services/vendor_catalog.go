package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2/endpoints"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
)

// Ensure VendorCatalog implements the interface.
var _ driving.VendorCatalog = (*VendorCatalog)(nil)

// OAuth2 endpoints of Twitter, which golang.org/x/oauth2/endpoints lacks.
const (
	twitterAuthURL  = "https://twitter.com/i/oauth2/authorize"
	twitterTokenURL = "https://api.twitter.com/2/oauth2/token"
)

// VendorCatalog reads auth vendors and annotates them with their OAuth2
// endpoints.
type VendorCatalog struct {
	store driven.Store
}

// NewVendorCatalog creates a new vendor catalog.
func NewVendorCatalog(store driven.Store) *VendorCatalog {
	return &VendorCatalog{store: store}
}

func withEndpoints(v domain.AuthVendor) domain.AuthVendor {
	switch v.ID {
	case domain.VendorFacebook:
		v.AuthURL, v.TokenURL = endpoints.Facebook.AuthURL, endpoints.Facebook.TokenURL
	case domain.VendorGoogle:
		v.AuthURL, v.TokenURL = endpoints.Google.AuthURL, endpoints.Google.TokenURL
	case domain.VendorTwitter:
		v.AuthURL, v.TokenURL = twitterAuthURL, twitterTokenURL
	}
	return v
}

// List returns every vendor.
func (c *VendorCatalog) List(ctx context.Context) ([]domain.AuthVendor, error) {
	if c.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var vendors []domain.AuthVendor
	err := c.store.View(ctx, func(tx driven.Tx) error {
		var err error
		vendors, err = tx.Vendors().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range vendors {
		vendors[i] = withEndpoints(vendors[i])
	}
	return vendors, nil
}

// Get looks a vendor up by ID or, failing that, by name.
func (c *VendorCatalog) Get(ctx context.Context, idOrName string) (*domain.AuthVendor, error) {
	if c.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var vendor *domain.AuthVendor
	err := c.store.View(ctx, func(tx driven.Tx) error {
		if id, err := domain.ParseID(idOrName); err == nil {
			vendor, err = tx.Vendors().Get(ctx, id)
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		var err error
		vendor, err = tx.Vendors().GetByName(ctx, strings.TrimSpace(idOrName))
		return err
	})
	if err != nil {
		return nil, err
	}
	v := withEndpoints(*vendor)
	return &v, nil
}
