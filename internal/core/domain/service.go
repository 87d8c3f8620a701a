package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultAuthPath is the authentication path of a service unless one is given.
const DefaultAuthPath = "/authentication"

// Protocol is a transport protocol a service is reachable by.
type Protocol string

// Supported protocols.
const (
	ProtocolHTTP  Protocol = "HTTP"
	ProtocolHTTPS Protocol = "HTTPS"
)

// ProtocolSet is an ordered set of protocols.
type ProtocolSet []Protocol

// ParseProtocols parses "HTTP", "HTTPS" or "HTTP,HTTPS" (case-insensitive).
func ParseProtocols(s string) (ProtocolSet, error) {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return NewProtocolSet(parts...)
}

// NewProtocolSet validates and de-duplicates protocol names.
func NewProtocolSet(names ...string) (ProtocolSet, error) {
	seen := map[Protocol]bool{}
	var set ProtocolSet
	for _, name := range names {
		p := Protocol(strings.ToUpper(strings.TrimSpace(name)))
		if p != ProtocolHTTP && p != ProtocolHTTPS {
			return nil, fmt.Errorf("%w: unknown protocol %q", ErrValidation, name)
		}
		if !seen[p] {
			seen[p] = true
			set = append(set, p)
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: at least one protocol is required", ErrValidation)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set, nil
}

// String renders the set the way it is stored ("HTTP,HTTPS").
func (ps ProtocolSet) String() string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

// URLHost is a host name services can be bound to. The empty name matches
// any host.
type URLHost struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Service is a configured REST endpoint root.
type Service struct {
	ID          ID          `json:"id"`
	HostID      ID          `json:"url_host_id"`
	HostName    string      `json:"url_host_name"`
	ContextRoot string      `json:"url_context_root"`
	Protocols   ProtocolSet `json:"url_protocol"`
	Enabled     bool        `json:"enabled"`
	IsDefault   bool        `json:"is_default"`
	Comments    string      `json:"comments"`
	// Options is an opaque JSON object consumed by the gateway.
	Options                    map[string]any `json:"options"`
	AuthPath                   string         `json:"auth_path"`
	AuthCompletedURL           string         `json:"auth_completed_url"`
	AuthCompletedURLValidation string         `json:"auth_completed_url_validation"`
	AuthCompletedPageContent   string         `json:"auth_completed_page_content"`
	AuthApps                   []AuthApp      `json:"auth_apps,omitempty"`
}

// HostCtx returns the host name joined with the context root, the path the
// service claims on the gateway.
func (s *Service) HostCtx() string {
	return s.HostName + s.ContextRoot
}

// NewService describes a service to be created.
type NewService struct {
	HostName                   string
	ContextRoot                string
	Protocols                  ProtocolSet
	Enabled                    *bool
	Comments                   string
	Options                    map[string]any
	AuthPath                   string
	AuthCompletedURL           string
	AuthCompletedURLValidation string
	AuthCompletedPageContent   string
	AuthApps                   []AuthAppValues
}

// ServiceSelector identifies one or more services. Fields are consulted in
// order: ID, then HostName+ContextRoot, then the current service, then the
// single existing service, then the user.
type ServiceSelector struct {
	ID               *ID
	HostName         string
	ContextRoot      string
	UseCurrent       bool
	AutoSelectSingle bool
}

// ByID selects the service with the given identity.
func ByID(id ID) ServiceSelector {
	return ServiceSelector{ID: &id}
}

// ByHostCtx selects a service by its unique key.
func ByHostCtx(host, contextRoot string) ServiceSelector {
	return ServiceSelector{HostName: host, ContextRoot: contextRoot}
}

// IsExplicit reports whether the selector names a single service without
// further lookup heuristics.
func (s ServiceSelector) IsExplicit() bool {
	return s.ID != nil || s.ContextRoot != ""
}
