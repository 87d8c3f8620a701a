package domain

// Keys accepted by service value documents.
var ServiceUpdateKeys = []string{
	"url_context_root", "url_protocol", "url_host_name", "enabled",
	"comments", "options", "auth_path", "auth_completed_url",
	"auth_completed_url_validation", "auth_completed_page_content",
	"auth_apps",
}

// Keys accepted by auth app value documents.
var AuthAppUpdateKeys = []string{
	"name", "description", "url", "url_direct_auth", "access_token",
	"app_id", "enabled", "use_built_in_authorization",
	"limit_to_registered_users", "default_role_id", "auth_vendor_id",
}

// Keys accepted by content set value documents.
var ContentSetUpdateKeys = []string{
	"request_path", "requires_auth", "enabled", "comments", "options",
}

// ServiceUpdate is a parsed service value document. Nil fields are not
// changed.
type ServiceUpdate struct {
	HostName                   *string
	ContextRoot                *string
	Protocols                  *ProtocolSet
	Enabled                    *bool
	Comments                   *string
	Options                    *map[string]any
	AuthPath                   *string
	AuthCompletedURL           *string
	AuthCompletedURLValidation *string
	AuthCompletedPageContent   *string
	AuthApps                   []AuthAppChange
}

// IsEmpty reports whether the update changes nothing.
func (u *ServiceUpdate) IsEmpty() bool {
	return u.HostName == nil && u.ContextRoot == nil && u.Protocols == nil &&
		u.Enabled == nil && u.Comments == nil && u.Options == nil &&
		u.AuthPath == nil && u.AuthCompletedURL == nil &&
		u.AuthCompletedURLValidation == nil && u.AuthCompletedPageContent == nil &&
		len(u.AuthApps) == 0
}

// Apply copies the scalar fields of the update onto svc.
func (u *ServiceUpdate) Apply(svc *Service) {
	if u.HostName != nil {
		svc.HostName = *u.HostName
	}
	if u.ContextRoot != nil {
		svc.ContextRoot = *u.ContextRoot
	}
	if u.Protocols != nil {
		svc.Protocols = *u.Protocols
	}
	if u.Enabled != nil {
		svc.Enabled = *u.Enabled
	}
	if u.Comments != nil {
		svc.Comments = *u.Comments
	}
	if u.Options != nil {
		svc.Options = *u.Options
	}
	if u.AuthPath != nil {
		svc.AuthPath = *u.AuthPath
	}
	if u.AuthCompletedURL != nil {
		svc.AuthCompletedURL = *u.AuthCompletedURL
	}
	if u.AuthCompletedURLValidation != nil {
		svc.AuthCompletedURLValidation = *u.AuthCompletedURLValidation
	}
	if u.AuthCompletedPageContent != nil {
		svc.AuthCompletedPageContent = *u.AuthCompletedPageContent
	}
}
