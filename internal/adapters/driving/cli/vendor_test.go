package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/endpoints"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

func TestVendorListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("vendor", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Auth vendors:")
	for _, v := range domain.BuiltInVendors() {
		assert.Contains(t, out, v.Name)
		assert.Contains(t, out, v.ID.String())
	}
}

func TestVendorGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	t.Run("by name", func(t *testing.T) {
		out, err := executeCommand("vendor", "get", "Google")

		require.NoError(t, err)
		assert.Contains(t, out, "Vendor: Google")
		assert.Contains(t, out, endpoints.Google.AuthURL)
	})

	t.Run("by id", func(t *testing.T) {
		out, err := executeCommand("vendor", "get", domain.VendorMRS.String())

		require.NoError(t, err)
		assert.Contains(t, out, "Vendor: MRS")
		assert.NotContains(t, out, "Auth URL")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := executeCommand("vendor", "get", "Myspace")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestVendorCmd_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := executeCommand("vendor", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vendor catalog not configured")
}
