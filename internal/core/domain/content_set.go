package domain

// ContentSet is a set of static files served under a path scoped to a
// service.
type ContentSet struct {
	ID           ID             `json:"id"`
	ServiceID    ID             `json:"service_id"`
	RequestPath  string         `json:"request_path"`
	RequiresAuth bool           `json:"requires_auth"`
	Enabled      bool           `json:"enabled"`
	Comments     string         `json:"comments"`
	Options      map[string]any `json:"options"`
	// HostCtx is the owning service's host name and context root.
	HostCtx string `json:"host_ctx"`
}

// FullPath returns the path the content set claims on the gateway.
func (c *ContentSet) FullPath() string {
	return c.HostCtx + c.RequestPath
}

// ContentFile is a single file of a content set.
type ContentFile struct {
	ID           ID     `json:"id"`
	ContentSetID ID     `json:"content_set_id"`
	RequestPath  string `json:"request_path"`
	RequiresAuth bool   `json:"requires_auth"`
	Enabled      bool   `json:"enabled"`
	Size         int64  `json:"size"`
	Content      []byte `json:"-"`
}

// NewContentSet describes a content set to be created.
type NewContentSet struct {
	RequestPath  string
	RequiresAuth bool
	Enabled      *bool
	Comments     string
	Options      map[string]any
	// ContentDir, when set, is uploaded as the content set's files.
	ContentDir string
}

// ContentSetValues holds a partial set of content set attributes.
type ContentSetValues struct {
	RequestPath  *string         `json:"request_path,omitempty"`
	RequiresAuth *bool           `json:"requires_auth,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
	Comments     *string         `json:"comments,omitempty"`
	Options      *map[string]any `json:"options,omitempty"`
}

// Apply copies every set field onto cs.
func (v *ContentSetValues) Apply(cs *ContentSet) {
	if v.RequestPath != nil {
		cs.RequestPath = *v.RequestPath
	}
	if v.RequiresAuth != nil {
		cs.RequiresAuth = *v.RequiresAuth
	}
	if v.Enabled != nil {
		cs.Enabled = *v.Enabled
	}
	if v.Comments != nil {
		cs.Comments = *v.Comments
	}
	if v.Options != nil {
		cs.Options = *v.Options
	}
}

// ContentSetSelector identifies content sets, optionally scoped to a service.
type ContentSetSelector struct {
	ID               *ID
	Service          ServiceSelector
	RequestPath      string
	AutoSelectSingle bool
}

// UploadResult reports a content set creation or directory sync.
type UploadResult struct {
	ContentSetID ID  `json:"content_set_id"`
	FilesUploaded int `json:"number_of_files_uploaded"`
}
