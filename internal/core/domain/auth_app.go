package domain

// AuthApp is an authentication application attached to a service.
type AuthApp struct {
	ID                      ID     `json:"id"`
	ServiceID               ID     `json:"service_id"`
	AuthVendorID            ID     `json:"auth_vendor_id"`
	AuthVendorName          string `json:"auth_vendor_name,omitempty"`
	Name                    string `json:"name"`
	Description             string `json:"description"`
	URL                     string `json:"url"`
	URLDirectAuth           string `json:"url_direct_auth"`
	AccessToken             string `json:"access_token"`
	AppID                   string `json:"app_id"`
	Enabled                 bool   `json:"enabled"`
	UseBuiltInAuthorization bool   `json:"use_built_in_authorization"`
	LimitToRegisteredUsers  bool   `json:"limit_to_registered_users"`
	DefaultRoleID           *ID    `json:"default_role_id"`
}

// AuthAppValues holds a partial set of auth app attributes. Nil fields are
// left untouched on update and take their defaults on insert.
type AuthAppValues struct {
	AuthVendorID            *ID     `json:"auth_vendor_id,omitempty"`
	ServiceID               *ID     `json:"service_id,omitempty"`
	Name                    *string `json:"name,omitempty"`
	Description             *string `json:"description,omitempty"`
	URL                     *string `json:"url,omitempty"`
	URLDirectAuth           *string `json:"url_direct_auth,omitempty"`
	AccessToken             *string `json:"access_token,omitempty"`
	AppID                   *string `json:"app_id,omitempty"`
	Enabled                 *bool   `json:"enabled,omitempty"`
	UseBuiltInAuthorization *bool   `json:"use_built_in_authorization,omitempty"`
	LimitToRegisteredUsers  *bool   `json:"limit_to_registered_users,omitempty"`
	// DefaultRoleID uses a double pointer: nil leaves the value, a pointer
	// to nil clears it.
	DefaultRoleID **ID `json:"-"`
}

// Apply copies every set field onto app.
func (v *AuthAppValues) Apply(app *AuthApp) {
	if v.AuthVendorID != nil {
		app.AuthVendorID = *v.AuthVendorID
	}
	if v.ServiceID != nil {
		app.ServiceID = *v.ServiceID
	}
	if v.Name != nil {
		app.Name = *v.Name
	}
	if v.Description != nil {
		app.Description = *v.Description
	}
	if v.URL != nil {
		app.URL = *v.URL
	}
	if v.URLDirectAuth != nil {
		app.URLDirectAuth = *v.URLDirectAuth
	}
	if v.AccessToken != nil {
		app.AccessToken = *v.AccessToken
	}
	if v.AppID != nil {
		app.AppID = *v.AppID
	}
	if v.Enabled != nil {
		app.Enabled = *v.Enabled
	}
	if v.UseBuiltInAuthorization != nil {
		app.UseBuiltInAuthorization = *v.UseBuiltInAuthorization
	}
	if v.LimitToRegisteredUsers != nil {
		app.LimitToRegisteredUsers = *v.LimitToRegisteredUsers
	}
	if v.DefaultRoleID != nil {
		app.DefaultRoleID = *v.DefaultRoleID
	}
}

// NewAuthApp returns an auth app with the defaults used on insert.
func NewAuthApp(id, serviceID ID) AuthApp {
	return AuthApp{
		ID:                      id,
		ServiceID:               serviceID,
		Enabled:                 true,
		UseBuiltInAuthorization: true,
	}
}

// AuthAppChange is one entry of the auth_apps list of a service update.
type AuthAppChange struct {
	Ref    ChildRef
	Values AuthAppValues
	// Delete removes the referenced existing app instead of updating it.
	Delete bool
}
