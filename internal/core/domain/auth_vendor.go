package domain

// AuthVendor describes a supported authentication mechanism.
type AuthVendor struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	ValidationURL string `json:"validation_url"`
	Enabled       bool   `json:"enabled"`
	Comments      string `json:"comments"`
	// AuthURL is the vendor's OAuth2 authorization endpoint, when known.
	AuthURL string `json:"auth_url,omitempty"`
	// TokenURL is the vendor's OAuth2 token endpoint, when known.
	TokenURL string `json:"token_url,omitempty"`
}

// Built-in vendor identities. They are seeded by the schema migrations.
var (
	VendorMRS           = MustParseID("0x30000000000000000000000000000000")
	VendorMySQLInternal = MustParseID("0x31000000000000000000000000000000")
	VendorFacebook      = MustParseID("0x32000000000000000000000000000000")
	VendorTwitter       = MustParseID("0x33000000000000000000000000000000")
	VendorGoogle        = MustParseID("0x34000000000000000000000000000000")
)

// BuiltInVendors lists the seeded vendors in identity order.
func BuiltInVendors() []AuthVendor {
	return []AuthVendor{
		{ID: VendorMRS, Name: "MRS", Enabled: true, Comments: "Built-in user management of MRS"},
		{ID: VendorMySQLInternal, Name: "MySQL Internal", Enabled: true,
			Comments: "Provides basic authentication via MySQL Server accounts"},
		{ID: VendorFacebook, Name: "Facebook", Enabled: true, Comments: "Uses the Facebook Login OAuth2 service"},
		{ID: VendorTwitter, Name: "Twitter", Enabled: true, Comments: "Uses the Twitter OAuth2 service"},
		{ID: VendorGoogle, Name: "Google", Enabled: true, Comments: "Uses the Google OAuth2 service"},
	}
}
