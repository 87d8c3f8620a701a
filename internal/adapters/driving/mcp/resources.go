package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

const uriScheme = "restgate://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "services",
		Name:        "services",
		Description: "All services of the REST gateway",
		MIMEType:    "application/json",
	}, s.handleServicesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "vendors",
		Name:        "vendors",
		Description: "Supported authentication vendors",
		MIMEType:    "application/json",
	}, s.handleVendorsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "services/{serviceId}/content-sets",
		Name:        "service-content-sets",
		Description: "Content sets of a specific service",
		MIMEType:    "application/json",
	}, s.handleContentSetsResource)
}

func (s *Server) handleServicesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	list, err := s.ports.Services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return jsonResource(req.Params.URI, lo.Map(list, func(svc domain.Service, _ int) ServiceInfo {
		return toServiceInfo(&svc)
	}))
}

func (s *Server) handleVendorsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Vendors == nil {
		return jsonResource(req.Params.URI, []VendorInfo{})
	}
	vendors, err := s.ports.Vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	return jsonResource(req.Params.URI, lo.Map(vendors, func(v domain.AuthVendor, _ int) VendorInfo {
		return toVendorInfo(&v)
	}))
}

func (s *Server) handleContentSetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.ContentSets == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// restgate://services/{serviceId}/content-sets
	id, err := domain.ParseID(extractServiceID(req.Params.URI))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sel := domain.ByID(id)
	sets, err := s.ports.ContentSets.List(ctx, mode, &sel)
	if err != nil {
		return nil, fmt.Errorf("listing content sets: %w", err)
	}
	return jsonResource(req.Params.URI, lo.Map(sets, func(c domain.ContentSet, _ int) ContentSetInfo {
		return toContentSetInfo(&c)
	}))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractServiceID extracts the service ID from a URI like
// restgate://services/{serviceId}/content-sets.
func extractServiceID(uri string) string {
	const prefix = uriScheme + "services/"
	const suffix = "/content-sets"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
}
