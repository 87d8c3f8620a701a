package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// mode is the interaction mode of every tool call: tools never prompt.
var mode = domain.Scripted

// ListServicesInput is the input schema for list_services.
type ListServicesInput struct{}

// ServicesOutput lists services.
type ServicesOutput struct {
	Services []ServiceInfo `json:"services"`
	Count    int           `json:"count"`
}

// ServiceOutput holds one service.
type ServiceOutput struct {
	Service ServiceInfo `json:"service"`
}

// AddServiceInput is the input schema for add_service.
type AddServiceInput struct {
	ContextRoot                string           `json:"url_context_root" jsonschema:"context root of the new service, e.g. /api"`
	HostName                   string           `json:"url_host_name,omitempty" jsonschema:"host name, empty for any host"`
	Protocols                  string           `json:"url_protocol,omitempty" jsonschema:"HTTP, HTTPS or HTTP,HTTPS (default HTTP)"`
	Enabled                    *bool            `json:"enabled,omitempty" jsonschema:"whether the service is enabled (default true)"`
	Comments                   string           `json:"comments,omitempty"`
	Options                    map[string]any   `json:"options,omitempty" jsonschema:"gateway options object"`
	AuthPath                   string           `json:"auth_path,omitempty" jsonschema:"authentication path (default /authentication)"`
	AuthCompletedURL           string           `json:"auth_completed_url,omitempty"`
	AuthCompletedURLValidation string           `json:"auth_completed_url_validation,omitempty"`
	AuthCompletedPageContent   string           `json:"auth_completed_page_content,omitempty"`
	AuthApps                   []map[string]any `json:"auth_apps,omitempty" jsonschema:"auth apps to create with the service"`
}

// ServiceUpdateInput is the input schema for update_service.
type ServiceUpdateInput struct {
	ServiceRef
	Document map[string]any `json:"document" jsonschema:"value document; auth_apps entries without id are created, entries with delete true are removed"`
}

// ServiceValueInput is the input schema of the single value setters.
type ServiceValueInput struct {
	ServiceRef
	Value string `json:"value" jsonschema:"the new value"`
}

// RequestPathInput is the input schema for check_request_path.
type RequestPathInput struct {
	ServiceRef
	RequestPath string `json:"request_path" jsonschema:"request path of a prospective content set, e.g. /static"`
}

// RequestPathOutput reports whether a request path is free.
type RequestPathOutput struct {
	RequestPath string `json:"request_path"`
	Available   bool   `json:"available"`
}

// VendorsOutput lists auth vendors.
type VendorsOutput struct {
	Vendors []VendorInfo `json:"vendors"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_services",
		Description: "List all services of the REST gateway",
	}, s.handleListServices)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_service",
		Description: "Get one service with its auth apps",
	}, s.handleGetService)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_service",
		Description: "Create a service, optionally with auth apps",
	}, s.handleAddService)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_service",
		Description: "Apply a value document to a service in one transaction",
	}, s.handleUpdateService)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "enable_service",
		Description: "Enable a service",
	}, s.serviceOp((*Server).enableService))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "disable_service",
		Description: "Disable a service",
	}, s.serviceOp((*Server).disableService))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_service",
		Description: "Delete a service with its auth apps and content sets",
	}, s.serviceOp((*Server).deleteService))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_default_service",
		Description: "Make a service the gateway default",
	}, s.serviceOp((*Server).setDefaultService))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_service_context_root",
		Description: "Change the context root of a service",
	}, s.handleSetContextRoot)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_service_protocol",
		Description: "Change the protocols of a service",
	}, s.handleSetProtocol)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_service_comments",
		Description: "Change the comments of a service",
	}, s.handleSetComments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_request_path",
		Description: "Check whether a content set could be created at a request path of a service",
	}, s.handleCheckRequestPath)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_auth_vendors",
		Description: "List the supported authentication vendors",
	}, s.handleListVendors)

	s.registerAuthAppTools()
	s.registerContentSetTools()
}

func (s *Server) handleListServices(
	ctx context.Context, _ *mcp.CallToolRequest, _ ListServicesInput,
) (*mcp.CallToolResult, ServicesOutput, error) {
	list, err := s.ports.Services.List(ctx)
	if err != nil {
		return nil, ServicesOutput{}, err
	}
	infos := lo.Map(list, func(svc domain.Service, _ int) ServiceInfo { return toServiceInfo(&svc) })
	return nil, ServicesOutput{Services: infos, Count: len(infos)}, nil
}

func (s *Server) handleGetService(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceRef,
) (*mcp.CallToolResult, ServiceOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, ServiceOutput{}, err
	}
	svc, err := s.ports.Services.Get(ctx, mode, sel)
	if err != nil {
		return nil, ServiceOutput{}, err
	}
	return nil, ServiceOutput{Service: toServiceInfo(svc)}, nil
}

func (s *Server) handleAddService(
	ctx context.Context, _ *mcp.CallToolRequest, input AddServiceInput,
) (*mcp.CallToolResult, ServiceOutput, error) {
	req := domain.NewService{
		HostName:                   input.HostName,
		ContextRoot:                input.ContextRoot,
		Enabled:                    input.Enabled,
		Comments:                   input.Comments,
		Options:                    input.Options,
		AuthPath:                   input.AuthPath,
		AuthCompletedURL:           input.AuthCompletedURL,
		AuthCompletedURLValidation: input.AuthCompletedURLValidation,
		AuthCompletedPageContent:   input.AuthCompletedPageContent,
	}
	if input.Protocols != "" {
		protocols, err := domain.ParseProtocols(input.Protocols)
		if err != nil {
			return nil, ServiceOutput{}, err
		}
		req.Protocols = protocols
	}
	for _, doc := range input.AuthApps {
		values, err := parseAuthApp(doc)
		if err != nil {
			return nil, ServiceOutput{}, err
		}
		req.AuthApps = append(req.AuthApps, values)
	}
	svc, err := s.ports.Services.Add(ctx, mode, req)
	if err != nil {
		return nil, ServiceOutput{}, err
	}
	return nil, ServiceOutput{Service: toServiceInfo(svc)}, nil
}

func (s *Server) handleUpdateService(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceUpdateInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	out, err := s.ports.Services.Update(ctx, mode, sel, input.Document)
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	return nil, toOutcome(out), nil
}

type serviceMutation func(s *Server, ctx context.Context, sel domain.ServiceSelector) (domain.Outcome, error)

func (s *Server) enableService(ctx context.Context, sel domain.ServiceSelector) (domain.Outcome, error) {
	return s.ports.Services.Enable(ctx, mode, sel)
}

func (s *Server) disableService(ctx context.Context, sel domain.ServiceSelector) (domain.Outcome, error) {
	return s.ports.Services.Disable(ctx, mode, sel)
}

func (s *Server) deleteService(ctx context.Context, sel domain.ServiceSelector) (domain.Outcome, error) {
	return s.ports.Services.Delete(ctx, mode, sel)
}

func (s *Server) setDefaultService(ctx context.Context, sel domain.ServiceSelector) (domain.Outcome, error) {
	return s.ports.Services.SetDefault(ctx, mode, sel)
}

// serviceOp adapts a mutation on one service to a tool handler.
func (s *Server) serviceOp(
	op serviceMutation,
) func(context.Context, *mcp.CallToolRequest, ServiceRef) (*mcp.CallToolResult, OutcomeOutput, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ServiceRef) (*mcp.CallToolResult, OutcomeOutput, error) {
		sel, err := input.selector()
		if err != nil {
			return nil, OutcomeOutput{}, err
		}
		out, err := op(s, ctx, sel)
		if err != nil {
			return nil, OutcomeOutput{}, err
		}
		return nil, toOutcome(out), nil
	}
}

func (s *Server) handleSetContextRoot(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceValueInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	return s.setServiceValue(ctx, input, s.ports.Services.SetContextRoot)
}

func (s *Server) handleSetProtocol(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceValueInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	return s.setServiceValue(ctx, input, s.ports.Services.SetProtocol)
}

func (s *Server) handleSetComments(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceValueInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	return s.setServiceValue(ctx, input, s.ports.Services.SetComments)
}

func (s *Server) setServiceValue(
	ctx context.Context, input ServiceValueInput,
	set func(context.Context, domain.Interaction, domain.ServiceSelector, string) (domain.Outcome, error),
) (*mcp.CallToolResult, OutcomeOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	out, err := set(ctx, mode, sel, input.Value)
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	return nil, toOutcome(out), nil
}

func (s *Server) handleCheckRequestPath(
	ctx context.Context, _ *mcp.CallToolRequest, input RequestPathInput,
) (*mcp.CallToolResult, RequestPathOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, RequestPathOutput{}, err
	}
	ok, err := s.ports.Services.RequestPathAvailable(ctx, mode, sel, input.RequestPath)
	if err != nil {
		return nil, RequestPathOutput{}, err
	}
	return nil, RequestPathOutput{RequestPath: input.RequestPath, Available: ok}, nil
}

func (s *Server) handleListVendors(
	ctx context.Context, _ *mcp.CallToolRequest, _ ListServicesInput,
) (*mcp.CallToolResult, VendorsOutput, error) {
	if s.ports.Vendors == nil {
		return nil, VendorsOutput{}, errUnavailable
	}
	vendors, err := s.ports.Vendors.List(ctx)
	if err != nil {
		return nil, VendorsOutput{}, err
	}
	return nil, VendorsOutput{
		Vendors: lo.Map(vendors, func(v domain.AuthVendor, _ int) VendorInfo { return toVendorInfo(&v) }),
	}, nil
}
