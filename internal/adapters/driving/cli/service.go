package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
	"github.com/custodia-labs/restgate/internal/core/services"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage services",
	Long: `Create, inspect and change the services of the gateway.

A service is referenced by its ID, by host/context-root ("localhost/api")
or by context root alone ("/api") when it is bound to any host. Commands
without a reference use the current service, or the only service there is.`,
}

var serviceAddCmd = &cobra.Command{
	Use:   "add [context-root]",
	Short: "Add a service",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceAdd,
}

var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all services",
	Args:  cobra.NoArgs,
	RunE:  runServiceList,
}

var serviceGetCmd = &cobra.Command{
	Use:   "get [service]",
	Short: "Show a service with its auth apps",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceGet,
}

var serviceEnableCmd = &cobra.Command{
	Use:   "enable [service]",
	Short: "Enable services",
	Long:  `Enable a service. Without a reference, one or more services can be picked.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceEnable,
}

var serviceDisableCmd = &cobra.Command{
	Use:   "disable [service]",
	Short: "Disable services",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceDisable,
}

var serviceDeleteCmd = &cobra.Command{
	Use:   "delete [service]",
	Short: "Delete services with their auth apps and content sets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceDelete,
}

var serviceUpdateCmd = &cobra.Command{
	Use:   "update [service]",
	Short: "Apply a value document to a service",
	Long: `Apply a JSON value document to a service in one transaction.

The document may change any of url_host_name, url_context_root,
url_protocol, enabled, comments, options, auth_path,
auth_completed_url, auth_completed_url_validation,
auth_completed_page_content and auth_apps. Entries of auth_apps without an
id (or with a negative id) are created, entries with an id are updated and
entries with "delete": true are removed.

Examples:
  restgate service update localhost/api --doc '{"comments": "public"}'
  restgate service update /api --doc @service.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServiceUpdate,
}

var serviceSetContextRootCmd = &cobra.Command{
	Use:   "set-context-root [service] <context-root>",
	Short: "Change the context root of a service",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runServiceSetContextRoot,
}

var serviceSetProtocolCmd = &cobra.Command{
	Use:   "set-protocol [service] <protocols>",
	Short: "Change the protocols of a service (HTTP, HTTPS or HTTP,HTTPS)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runServiceSetProtocol,
}

var serviceSetCommentsCmd = &cobra.Command{
	Use:   "set-comments [service] <comments>",
	Short: "Change the comments of a service",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runServiceSetComments,
}

var serviceSetOptionsCmd = &cobra.Command{
	Use:   "set-options [service] <json>",
	Short: "Replace the options of a service",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runServiceSetOptions,
}

var serviceSetDefaultCmd = &cobra.Command{
	Use:   "set-default [service]",
	Short: "Make a service the gateway default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceSetDefault,
}

var servicePathAvailableCmd = &cobra.Command{
	Use:   "path-available [service] <request-path>",
	Short: "Check whether a content set could be added at a request path",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runServicePathAvailable,
}

var serviceCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current service",
	Args:  cobra.NoArgs,
	RunE:  runServiceCurrent,
}

var serviceCurrentSetCmd = &cobra.Command{
	Use:   "set [service]",
	Short: "Make a service the current one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServiceCurrentSet,
}

var serviceCurrentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the current service",
	Args:  cobra.NoArgs,
	RunE:  runServiceCurrentClear,
}

// Flags for service add.
var (
	serviceAddHost                   string
	serviceAddProtocol               string
	serviceAddComments               string
	serviceAddOptions                string
	serviceAddAuthPath               string
	serviceAddAuthCompletedURL       string
	serviceAddAuthCompletedValidator string
	serviceAddAuthCompletedPage      string
	serviceAddDisabled               bool
	serviceAddAuthApps               []string
)

// serviceUpdateDoc is the value document of service update.
var serviceUpdateDoc string

func init() {
	f := serviceAddCmd.Flags()
	f.StringVar(&serviceAddHost, "host", "", "host name the service is bound to (empty for any host)")
	f.StringVar(&serviceAddProtocol, "protocol", "", "protocols: HTTP, HTTPS or HTTP,HTTPS (default HTTP)")
	f.StringVar(&serviceAddComments, "comments", "", "comments")
	f.StringVar(&serviceAddOptions, "options", "", "options as a JSON object, @file or -")
	f.StringVar(&serviceAddAuthPath, "auth-path", "", "authentication path (default /authentication)")
	f.StringVar(&serviceAddAuthCompletedURL, "auth-completed-url", "", "URL to redirect to after authentication")
	f.StringVar(&serviceAddAuthCompletedValidator, "auth-completed-url-validation", "",
		"regular expression the completed URL has to match")
	f.StringVar(&serviceAddAuthCompletedPage, "auth-completed-page-content", "", "page shown after authentication")
	f.BoolVar(&serviceAddDisabled, "disabled", false, "create the service disabled")
	f.StringArrayVar(&serviceAddAuthApps, "auth-app", nil, "auth app as a JSON object (repeatable)")

	serviceUpdateCmd.Flags().StringVar(&serviceUpdateDoc, "doc", "", "value document as JSON, @file or -")

	serviceCurrentCmd.AddCommand(serviceCurrentSetCmd)
	serviceCurrentCmd.AddCommand(serviceCurrentClearCmd)

	serviceCmd.AddCommand(serviceAddCmd)
	serviceCmd.AddCommand(serviceListCmd)
	serviceCmd.AddCommand(serviceGetCmd)
	serviceCmd.AddCommand(serviceEnableCmd)
	serviceCmd.AddCommand(serviceDisableCmd)
	serviceCmd.AddCommand(serviceDeleteCmd)
	serviceCmd.AddCommand(serviceUpdateCmd)
	serviceCmd.AddCommand(serviceSetContextRootCmd)
	serviceCmd.AddCommand(serviceSetProtocolCmd)
	serviceCmd.AddCommand(serviceSetCommentsCmd)
	serviceCmd.AddCommand(serviceSetOptionsCmd)
	serviceCmd.AddCommand(serviceSetDefaultCmd)
	serviceCmd.AddCommand(servicePathAvailableCmd)
	serviceCmd.AddCommand(serviceCurrentCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceAdd(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}

	req := domain.NewService{
		HostName:                   serviceAddHost,
		ContextRoot:                optionalArg(args),
		Comments:                   serviceAddComments,
		AuthPath:                   serviceAddAuthPath,
		AuthCompletedURL:           serviceAddAuthCompletedURL,
		AuthCompletedURLValidation: serviceAddAuthCompletedValidator,
		AuthCompletedPageContent:   serviceAddAuthCompletedPage,
	}
	if serviceAddProtocol != "" {
		protocols, err := domain.ParseProtocols(serviceAddProtocol)
		if err != nil {
			return err
		}
		req.Protocols = protocols
	}
	if serviceAddDisabled {
		req.Enabled = lo.ToPtr(false)
	}
	options, err := readOptions(serviceAddOptions, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid --options: %w", err)
	}
	req.Options = options
	for i, raw := range serviceAddAuthApps {
		doc, err := readDocument(raw, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("invalid --auth-app %d: %w", i+1, err)
		}
		values, err := services.ParseAuthAppUpdate(doc)
		if err != nil {
			return fmt.Errorf("invalid --auth-app %d: %w", i+1, err)
		}
		req.AuthApps = append(req.AuthApps, values)
	}

	svc, err := serviceAdmin.Add(cmd.Context(), interaction(), req)
	if err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, svc)
	}
	cmd.Printf("Service %s created.\n", svc.HostCtx())
	cmd.Printf("  ID: %s\n", svc.ID)
	return nil
}

func runServiceList(cmd *cobra.Command, _ []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	list, err := serviceAdmin.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, list)
	}
	if len(list) == 0 {
		cmd.Println("No services configured.")
		return nil
	}

	currentID, hasCurrent, err := serviceAdmin.CurrentServiceID(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read current service: %w", err)
	}
	cmd.Println("Services:")
	cmd.Println()
	for i := range list {
		svc := &list[i]
		var marks []string
		if svc.IsDefault {
			marks = append(marks, "default")
		}
		if hasCurrent && svc.ID == currentID {
			marks = append(marks, "current")
		}
		if !svc.Enabled {
			marks = append(marks, "disabled")
		}
		label := svc.HostCtx()
		if len(marks) > 0 {
			label += " (" + strings.Join(marks, ", ") + ")"
		}
		cmd.Printf("  %s\n", label)
		cmd.Printf("    ID:        %s\n", svc.ID)
		cmd.Printf("    Protocols: %s\n", svc.Protocols)
		if svc.Comments != "" {
			cmd.Printf("    Comments:  %s\n", svc.Comments)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d services\n", len(list))
	return nil
}

func runServiceGet(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	svc, err := serviceAdmin.Get(cmd.Context(), interaction(), sel)
	if err != nil {
		return fmt.Errorf("failed to get service: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, svc)
	}
	printService(cmd, svc)
	return nil
}

func printService(cmd *cobra.Command, svc *domain.Service) {
	cmd.Printf("Service: %s\n\n", svc.HostCtx())
	cmd.Printf("  ID:           %s\n", svc.ID)
	cmd.Printf("  Protocols:    %s\n", svc.Protocols)
	cmd.Printf("  Enabled:      %t\n", svc.Enabled)
	cmd.Printf("  Default:      %t\n", svc.IsDefault)
	cmd.Printf("  Auth path:    %s\n", svc.AuthPath)
	if svc.AuthCompletedURL != "" {
		cmd.Printf("  Completed at: %s\n", svc.AuthCompletedURL)
	}
	if svc.Comments != "" {
		cmd.Printf("  Comments:     %s\n", svc.Comments)
	}
	if len(svc.Options) > 0 {
		cmd.Println("\n  Options:")
		keys := lo.Keys(svc.Options)
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("    %s: %v\n", k, svc.Options[k])
		}
	}
	if len(svc.AuthApps) > 0 {
		cmd.Println("\n  Auth apps:")
		for i := range svc.AuthApps {
			app := &svc.AuthApps[i]
			cmd.Printf("    %s (%s) %s\n", app.Name, app.AuthVendorName, app.ID)
		}
	}
}

func runServiceEnable(cmd *cobra.Command, args []string) error {
	return runServiceMutation(cmd, args, driving.ServiceAdmin.Enable)
}

func runServiceDisable(cmd *cobra.Command, args []string) error {
	return runServiceMutation(cmd, args, driving.ServiceAdmin.Disable)
}

func runServiceDelete(cmd *cobra.Command, args []string) error {
	return runServiceMutation(cmd, args, driving.ServiceAdmin.Delete)
}

func runServiceSetDefault(cmd *cobra.Command, args []string) error {
	return runServiceMutation(cmd, args, driving.ServiceAdmin.SetDefault)
}

type serviceOp func(
	driving.ServiceAdmin, context.Context, domain.Interaction, domain.ServiceSelector,
) (domain.Outcome, error)

type serviceSetter func(
	driving.ServiceAdmin, context.Context, domain.Interaction, domain.ServiceSelector, string,
) (domain.Outcome, error)

func runServiceMutation(cmd *cobra.Command, args []string, op serviceOp) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	out, err := op(serviceAdmin, cmd.Context(), interaction(), sel)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runServiceUpdate(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	if serviceUpdateDoc == "" {
		return fmt.Errorf("%w: --doc is required", domain.ErrValidation)
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	doc, err := readDocument(serviceUpdateDoc, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out, err := serviceAdmin.Update(cmd.Context(), interaction(), sel, doc)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

// splitValueArgs splits "[service] <value>" arguments.
func splitValueArgs(args []string) (ref, value string) {
	if len(args) == 2 {
		return args[0], args[1]
	}
	return "", args[0]
}

func runServiceSetContextRoot(cmd *cobra.Command, args []string) error {
	return runServiceSetter(cmd, args, driving.ServiceAdmin.SetContextRoot)
}

func runServiceSetProtocol(cmd *cobra.Command, args []string) error {
	return runServiceSetter(cmd, args, driving.ServiceAdmin.SetProtocol)
}

func runServiceSetComments(cmd *cobra.Command, args []string) error {
	return runServiceSetter(cmd, args, driving.ServiceAdmin.SetComments)
}

func runServiceSetter(cmd *cobra.Command, args []string, op serviceSetter) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	ref, value := splitValueArgs(args)
	sel, err := serviceSelector(ref)
	if err != nil {
		return err
	}
	out, err := op(serviceAdmin, cmd.Context(), interaction(), sel, value)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runServiceSetOptions(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	ref, value := splitValueArgs(args)
	sel, err := serviceSelector(ref)
	if err != nil {
		return err
	}
	options, err := readDocument(value, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out, err := serviceAdmin.SetOptions(cmd.Context(), interaction(), sel, options)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runServicePathAvailable(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	ref, requestPath := splitValueArgs(args)
	sel, err := serviceSelector(ref)
	if err != nil {
		return err
	}
	ok, err := serviceAdmin.RequestPathAvailable(cmd.Context(), interaction(), sel, requestPath)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, map[string]any{"request_path": requestPath, "available": ok})
	}
	if ok {
		cmd.Printf("The request path %s is available.\n", requestPath)
	} else {
		cmd.Printf("The request path %s is already in use.\n", requestPath)
	}
	return nil
}

func runServiceCurrent(cmd *cobra.Command, _ []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	id, ok, err := serviceAdmin.CurrentServiceID(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		if flagJSON {
			return printJSON(cmd, map[string]any{"service_id": nil})
		}
		cmd.Println("No current service set.")
		return nil
	}
	svc, err := serviceAdmin.Get(cmd.Context(), domain.Scripted, domain.ByID(id))
	if err != nil {
		return fmt.Errorf("failed to load current service %s: %w", id, err)
	}
	if flagJSON {
		return printJSON(cmd, svc)
	}
	cmd.Printf("Current service: %s (%s)\n", svc.HostCtx(), svc.ID)
	return nil
}

func runServiceCurrentSet(cmd *cobra.Command, args []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	// Pick among all services rather than the current one.
	sel.UseCurrent = false
	svc, err := serviceAdmin.SetCurrentService(cmd.Context(), interaction(), sel)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, svc)
	}
	cmd.Printf("Current service set to %s.\n", svc.HostCtx())
	return nil
}

func runServiceCurrentClear(cmd *cobra.Command, _ []string) error {
	if err := requireServiceAdmin(); err != nil {
		return err
	}
	if err := serviceAdmin.ClearCurrentService(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Current service cleared.")
	return nil
}
