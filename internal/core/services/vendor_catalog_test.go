package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

func TestVendorCatalog_List(t *testing.T) {
	f := newFixture(t)

	vendors, err := f.vendors.List(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 5)

	assert.Equal(t, domain.VendorMRS, vendors[0].ID)
	assert.Empty(t, vendors[0].AuthURL)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth", vendors[4].AuthURL)
	assert.NotEmpty(t, vendors[4].TokenURL)
}

func TestVendorCatalog_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byName, err := f.vendors.Get(ctx, "facebook")
	require.NoError(t, err)
	assert.Equal(t, domain.VendorFacebook, byName.ID)
	assert.Contains(t, byName.AuthURL, "facebook.com")

	byID, err := f.vendors.Get(ctx, domain.VendorTwitter.String())
	require.NoError(t, err)
	assert.Equal(t, "Twitter", byID.Name)
	assert.Equal(t, twitterTokenURL, byID.TokenURL)

	_, err = f.vendors.Get(ctx, "Myspace")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVendorCatalog_NilStore(t *testing.T) {
	_, err := NewVendorCatalog(nil).List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
