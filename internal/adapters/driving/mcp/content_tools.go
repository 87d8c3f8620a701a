package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/services"
)

// AuthAppsOutput lists auth apps.
type AuthAppsOutput struct {
	AuthApps []AuthAppInfo `json:"auth_apps"`
}

// AuthAppOutput holds one auth app.
type AuthAppOutput struct {
	AuthApp AuthAppInfo `json:"auth_app"`
}

// AuthAppRef names an auth app.
type AuthAppRef struct {
	AuthAppID string `json:"auth_app_id" jsonschema:"ID of the auth app"`
}

func (r AuthAppRef) id() (domain.ID, error) {
	return domain.ParseID(r.AuthAppID)
}

// AddAuthAppInput is the input schema for add_auth_app.
type AddAuthAppInput struct {
	ServiceRef
	Values map[string]any `json:"values" jsonschema:"auth app values: auth_vendor_id, name, description, url, app_id, access_token, enabled, limit_to_registered_users, default_role_id"`
}

// AuthAppUpdateInput is the input schema for update_auth_app.
type AuthAppUpdateInput struct {
	AuthAppRef
	Document map[string]any `json:"document" jsonschema:"value document with the auth app fields to change"`
}

// ContentSetsOutput lists content sets.
type ContentSetsOutput struct {
	ContentSets []ContentSetInfo `json:"content_sets"`
}

// ContentSetOutput holds one content set.
type ContentSetOutput struct {
	ContentSet ContentSetInfo `json:"content_set"`
}

// ListContentSetsInput is the input schema for list_content_sets.
type ListContentSetsInput struct {
	ServiceRef
	All bool `json:"all,omitempty" jsonschema:"list the content sets of every service"`
}

// AddContentSetInput is the input schema for add_content_set.
type AddContentSetInput struct {
	ServiceRef
	RequestPath  string         `json:"request_path" jsonschema:"request path of the content set, e.g. /static"`
	RequiresAuth bool           `json:"requires_auth,omitempty"`
	Enabled      *bool          `json:"enabled,omitempty" jsonschema:"whether the content set is enabled (default true)"`
	Comments     string         `json:"comments,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
	ContentDir   string         `json:"content_dir,omitempty" jsonschema:"local directory whose files are uploaded"`
}

// ContentSetUpdateInput is the input schema for update_content_set.
type ContentSetUpdateInput struct {
	ContentSetRef
	Document map[string]any `json:"document" jsonschema:"value document: request_path, requires_auth, enabled, comments, options"`
}

// SyncContentSetInput is the input schema for sync_content_set.
type SyncContentSetInput struct {
	ContentSetRef
	Directory string `json:"directory" jsonschema:"local directory that replaces the files of the content set"`
}

// UploadOutput reports uploaded files.
type UploadOutput struct {
	ContentSetID  string `json:"content_set_id"`
	FilesUploaded int    `json:"number_of_files_uploaded"`
}

// ContentFilesOutput lists the files of a content set.
type ContentFilesOutput struct {
	Files []ContentFileInfo `json:"files"`
}

func (s *Server) registerAuthAppTools() {
	if s.ports.AuthApps == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_auth_apps",
		Description: "List the auth apps of a service",
	}, s.handleListAuthApps)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_auth_app",
		Description: "Get one auth app",
	}, s.handleGetAuthApp)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_auth_app",
		Description: "Add an auth app to a service",
	}, s.handleAddAuthApp)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_auth_app",
		Description: "Apply a value document to an auth app",
	}, s.handleUpdateAuthApp)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_auth_app",
		Description: "Delete an auth app",
	}, s.handleDeleteAuthApp)
}

func (s *Server) registerContentSetTools() {
	if s.ports.ContentSets == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_content_sets",
		Description: "List the content sets of a service, or of all services",
	}, s.handleListContentSets)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_content_set",
		Description: "Get one content set",
	}, s.handleGetContentSet)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_content_set",
		Description: "Create a content set, optionally uploading a directory",
	}, s.handleAddContentSet)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_content_set",
		Description: "Apply a value document to a content set",
	}, s.handleUpdateContentSet)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "enable_content_set",
		Description: "Enable a content set",
	}, s.contentSetOp(func(ctx context.Context, sel domain.ContentSetSelector) (domain.Outcome, error) {
		return s.ports.ContentSets.Enable(ctx, mode, sel)
	}))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "disable_content_set",
		Description: "Disable a content set",
	}, s.contentSetOp(func(ctx context.Context, sel domain.ContentSetSelector) (domain.Outcome, error) {
		return s.ports.ContentSets.Disable(ctx, mode, sel)
	}))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_content_set",
		Description: "Delete a content set with its files",
	}, s.contentSetOp(func(ctx context.Context, sel domain.ContentSetSelector) (domain.Outcome, error) {
		return s.ports.ContentSets.Delete(ctx, mode, sel)
	}))
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_content_files",
		Description: "List the files of a content set",
	}, s.handleListContentFiles)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_content_set",
		Description: "Replace the files of a content set with a local directory",
	}, s.handleSyncContentSet)
}

func parseAuthApp(doc map[string]any) (domain.AuthAppValues, error) {
	return services.ParseAuthAppUpdate(doc)
}

func (s *Server) handleListAuthApps(
	ctx context.Context, _ *mcp.CallToolRequest, input ServiceRef,
) (*mcp.CallToolResult, AuthAppsOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, AuthAppsOutput{}, err
	}
	apps, err := s.ports.AuthApps.List(ctx, mode, sel)
	if err != nil {
		return nil, AuthAppsOutput{}, err
	}
	return nil, AuthAppsOutput{
		AuthApps: lo.Map(apps, func(a domain.AuthApp, _ int) AuthAppInfo { return toAuthAppInfo(&a) }),
	}, nil
}

func (s *Server) handleGetAuthApp(
	ctx context.Context, _ *mcp.CallToolRequest, input AuthAppRef,
) (*mcp.CallToolResult, AuthAppOutput, error) {
	id, err := input.id()
	if err != nil {
		return nil, AuthAppOutput{}, err
	}
	app, err := s.ports.AuthApps.Get(ctx, id)
	if err != nil {
		return nil, AuthAppOutput{}, err
	}
	return nil, AuthAppOutput{AuthApp: toAuthAppInfo(app)}, nil
}

func (s *Server) handleAddAuthApp(
	ctx context.Context, _ *mcp.CallToolRequest, input AddAuthAppInput,
) (*mcp.CallToolResult, AuthAppOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, AuthAppOutput{}, err
	}
	values, err := parseAuthApp(input.Values)
	if err != nil {
		return nil, AuthAppOutput{}, err
	}
	app, err := s.ports.AuthApps.Add(ctx, mode, sel, values)
	if err != nil {
		return nil, AuthAppOutput{}, err
	}
	return nil, AuthAppOutput{AuthApp: toAuthAppInfo(app)}, nil
}

func (s *Server) handleUpdateAuthApp(
	ctx context.Context, _ *mcp.CallToolRequest, input AuthAppUpdateInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	id, err := input.id()
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	out, err := s.ports.AuthApps.Update(ctx, mode, id, input.Document)
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	return nil, toOutcome(out), nil
}

func (s *Server) handleDeleteAuthApp(
	ctx context.Context, _ *mcp.CallToolRequest, input AuthAppRef,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	id, err := input.id()
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	out, err := s.ports.AuthApps.Delete(ctx, mode, id)
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	return nil, toOutcome(out), nil
}

func (s *Server) handleListContentSets(
	ctx context.Context, _ *mcp.CallToolRequest, input ListContentSetsInput,
) (*mcp.CallToolResult, ContentSetsOutput, error) {
	var scope *domain.ServiceSelector
	if !input.All {
		sel, err := input.selector()
		if err != nil {
			return nil, ContentSetsOutput{}, err
		}
		scope = &sel
	}
	sets, err := s.ports.ContentSets.List(ctx, mode, scope)
	if err != nil {
		return nil, ContentSetsOutput{}, err
	}
	return nil, ContentSetsOutput{
		ContentSets: lo.Map(sets, func(c domain.ContentSet, _ int) ContentSetInfo { return toContentSetInfo(&c) }),
	}, nil
}

func (s *Server) handleGetContentSet(
	ctx context.Context, _ *mcp.CallToolRequest, input ContentSetRef,
) (*mcp.CallToolResult, ContentSetOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, ContentSetOutput{}, err
	}
	cs, err := s.ports.ContentSets.Get(ctx, mode, sel)
	if err != nil {
		return nil, ContentSetOutput{}, err
	}
	return nil, ContentSetOutput{ContentSet: toContentSetInfo(cs)}, nil
}

func (s *Server) handleAddContentSet(
	ctx context.Context, _ *mcp.CallToolRequest, input AddContentSetInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, UploadOutput{}, err
	}
	res, err := s.ports.ContentSets.Add(ctx, mode, sel, domain.NewContentSet{
		RequestPath:  input.RequestPath,
		RequiresAuth: input.RequiresAuth,
		Enabled:      input.Enabled,
		Comments:     input.Comments,
		Options:      input.Options,
		ContentDir:   input.ContentDir,
	})
	if err != nil {
		return nil, UploadOutput{}, err
	}
	return nil, UploadOutput{ContentSetID: res.ContentSetID.String(), FilesUploaded: res.FilesUploaded}, nil
}

func (s *Server) handleUpdateContentSet(
	ctx context.Context, _ *mcp.CallToolRequest, input ContentSetUpdateInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	out, err := s.ports.ContentSets.Update(ctx, mode, sel, input.Document)
	if err != nil {
		return nil, OutcomeOutput{}, err
	}
	return nil, toOutcome(out), nil
}

// contentSetOp adapts a mutation on content sets to a tool handler.
func (s *Server) contentSetOp(
	op func(context.Context, domain.ContentSetSelector) (domain.Outcome, error),
) func(context.Context, *mcp.CallToolRequest, ContentSetRef) (*mcp.CallToolResult, OutcomeOutput, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContentSetRef) (*mcp.CallToolResult, OutcomeOutput, error) {
		sel, err := input.selector()
		if err != nil {
			return nil, OutcomeOutput{}, err
		}
		out, err := op(ctx, sel)
		if err != nil {
			return nil, OutcomeOutput{}, err
		}
		return nil, toOutcome(out), nil
	}
}

func (s *Server) handleListContentFiles(
	ctx context.Context, _ *mcp.CallToolRequest, input ContentSetRef,
) (*mcp.CallToolResult, ContentFilesOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, ContentFilesOutput{}, err
	}
	files, err := s.ports.ContentSets.Files(ctx, mode, sel)
	if err != nil {
		return nil, ContentFilesOutput{}, err
	}
	return nil, ContentFilesOutput{
		Files: lo.Map(files, func(f domain.ContentFile, _ int) ContentFileInfo {
			return ContentFileInfo{
				ID:           f.ID.String(),
				RequestPath:  f.RequestPath,
				Size:         f.Size,
				Enabled:      f.Enabled,
				RequiresAuth: f.RequiresAuth,
			}
		}),
	}, nil
}

func (s *Server) handleSyncContentSet(
	ctx context.Context, _ *mcp.CallToolRequest, input SyncContentSetInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	sel, err := input.selector()
	if err != nil {
		return nil, UploadOutput{}, err
	}
	res, err := s.ports.ContentSets.SyncDirectory(ctx, mode, sel, input.Directory)
	if err != nil {
		return nil, UploadOutput{}, err
	}
	return nil, UploadOutput{ContentSetID: res.ContentSetID.String(), FilesUploaded: res.FilesUploaded}, nil
}
