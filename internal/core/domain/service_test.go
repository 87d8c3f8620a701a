package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocols(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"HTTP", "HTTP", false},
		{"https", "HTTPS", false},
		{"HTTPS,HTTP", "HTTP,HTTPS", false},
		{"http, http ,https", "HTTP,HTTPS", false},
		{"", "", true},
		{"FTP", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			set, err := ParseProtocols(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.String())
		})
	}
}

func TestService_HostCtx(t *testing.T) {
	svc := Service{HostName: "localhost", ContextRoot: "/test"}
	assert.Equal(t, "localhost/test", svc.HostCtx())

	svc.HostName = ""
	assert.Equal(t, "/test", svc.HostCtx())
}

func TestServiceSelector_IsExplicit(t *testing.T) {
	assert.True(t, ByID(VendorMRS).IsExplicit())
	assert.True(t, ByHostCtx("", "/test").IsExplicit())
	assert.False(t, ServiceSelector{UseCurrent: true}.IsExplicit())
	assert.False(t, ServiceSelector{}.IsExplicit())
}

func TestServiceUpdate_Apply(t *testing.T) {
	ctx := "/v2"
	enabled := false
	protocols := ProtocolSet{ProtocolHTTPS}
	update := ServiceUpdate{ContextRoot: &ctx, Enabled: &enabled, Protocols: &protocols}
	assert.False(t, update.IsEmpty())

	svc := Service{ContextRoot: "/v1", Enabled: true, Comments: "keep"}
	update.Apply(&svc)

	assert.Equal(t, "/v2", svc.ContextRoot)
	assert.False(t, svc.Enabled)
	assert.Equal(t, "HTTPS", svc.Protocols.String())
	assert.Equal(t, "keep", svc.Comments)

	assert.True(t, (&ServiceUpdate{}).IsEmpty())
}

func TestAuthAppValues_Apply(t *testing.T) {
	app := NewAuthApp(VendorMRS, VendorGoogle)
	assert.True(t, app.Enabled)
	assert.True(t, app.UseBuiltInAuthorization)

	name := "web"
	var cleared *ID
	role := VendorTwitter
	rolePtr := &role
	values := AuthAppValues{Name: &name, DefaultRoleID: &rolePtr}
	values.Apply(&app)
	assert.Equal(t, "web", app.Name)
	require.NotNil(t, app.DefaultRoleID)
	assert.Equal(t, VendorTwitter, *app.DefaultRoleID)

	values = AuthAppValues{DefaultRoleID: &cleared}
	values.Apply(&app)
	assert.Nil(t, app.DefaultRoleID)
	assert.Equal(t, "web", app.Name)
}

func TestContentSet_FullPath(t *testing.T) {
	cs := ContentSet{HostCtx: "localhost/test", RequestPath: "/static"}
	assert.Equal(t, "localhost/test/static", cs.FullPath())
}

func TestBuiltInVendors(t *testing.T) {
	vendors := BuiltInVendors()
	require.Len(t, vendors, 5)
	assert.Equal(t, "MRS", vendors[0].Name)
	assert.Equal(t, "0x30000000000000000000000000000000", vendors[0].ID.String())
	assert.Equal(t, "Google", vendors[4].Name)
	for i := 1; i < len(vendors); i++ {
		assert.Negative(t, vendors[i-1].ID.Compare(vendors[i].ID))
	}
}

func TestConfirmation(t *testing.T) {
	assert.Equal(t, "The service has been enabled.", Confirmation(KindService, "enabled", 1))
	assert.Equal(t, "The services have been enabled.", Confirmation(KindService, "enabled", 2))
	assert.Equal(t, "The content sets have been deleted.", Confirmation(KindContentSet, "deleted", 0))
}

func TestNewOutcome(t *testing.T) {
	out := NewOutcome(Scripted, KindAuthApp, "deleted", []ID{VendorMRS})
	assert.Empty(t, out.Message)
	assert.Equal(t, []ID{VendorMRS}, out.IDs)

	out = NewOutcome(Terminal, KindAuthApp, "deleted", []ID{VendorMRS})
	assert.Equal(t, "The auth app has been deleted.", out.Message)
}
