package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

var authAppCmd = &cobra.Command{
	Use:     "authapp",
	Aliases: []string{"auth-app"},
	Short:   "Manage the auth apps of services",
}

var authAppAddCmd = &cobra.Command{
	Use:   "add [service]",
	Short: "Add an auth app to a service",
	Long: `Add an auth app to a service.

The vendor is given by name or ID (see "restgate vendor list"). When run
interactively, missing values are asked for.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthAppAdd,
}

var authAppListCmd = &cobra.Command{
	Use:   "list [service]",
	Short: "List the auth apps of a service",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthAppList,
}

var authAppGetCmd = &cobra.Command{
	Use:   "get [auth-app-id]",
	Short: "Show an auth app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthAppGet,
}

var authAppUpdateCmd = &cobra.Command{
	Use:   "update [auth-app-id]",
	Short: "Apply a value document to an auth app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthAppUpdate,
}

var authAppDeleteCmd = &cobra.Command{
	Use:   "delete [auth-app-id]",
	Short: "Delete an auth app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthAppDelete,
}

// Flags for authapp add.
var (
	authAppAddVendor        string
	authAppAddName          string
	authAppAddDescription   string
	authAppAddURL           string
	authAppAddURLDirectAuth string
	authAppAddAccessToken   string
	authAppAddAppID         string
	authAppAddDefaultRole   string
	authAppAddDisabled      bool
	authAppAddRegistered    bool
)

var authAppUpdateDoc string

func init() {
	f := authAppAddCmd.Flags()
	f.StringVar(&authAppAddVendor, "vendor", "", "auth vendor name or ID")
	f.StringVar(&authAppAddName, "name", "", "name of the auth app")
	f.StringVar(&authAppAddDescription, "description", "", "description")
	f.StringVar(&authAppAddURL, "url", "", "authentication URL")
	f.StringVar(&authAppAddURLDirectAuth, "url-direct-auth", "", "URL for direct authentication")
	f.StringVar(&authAppAddAccessToken, "access-token", "", "vendor access token")
	f.StringVar(&authAppAddAppID, "app-id", "", "vendor app ID")
	f.StringVar(&authAppAddDefaultRole, "default-role-id", "", "role assigned to new users")
	f.BoolVar(&authAppAddDisabled, "disabled", false, "create the auth app disabled")
	f.BoolVar(&authAppAddRegistered, "limit-to-registered-users", false, "only allow registered users")

	authAppUpdateCmd.Flags().StringVar(&authAppUpdateDoc, "doc", "", "value document as JSON, @file or -")

	authAppCmd.AddCommand(authAppAddCmd)
	authAppCmd.AddCommand(authAppListCmd)
	authAppCmd.AddCommand(authAppGetCmd)
	authAppCmd.AddCommand(authAppUpdateCmd)
	authAppCmd.AddCommand(authAppDeleteCmd)
	rootCmd.AddCommand(authAppCmd)
}

// authAppValues collects the flags the user actually set.
func authAppValues(cmd *cobra.Command) (domain.AuthAppValues, error) {
	var values domain.AuthAppValues
	changed := cmd.Flags().Changed

	if authAppAddVendor != "" {
		if err := requireVendorCatalog(); err != nil {
			return values, err
		}
		vendor, err := vendorCatalog.Get(cmd.Context(), authAppAddVendor)
		if err != nil {
			return values, fmt.Errorf("unknown vendor %q: %w", authAppAddVendor, err)
		}
		values.AuthVendorID = &vendor.ID
	}
	str := func(flag string, v string) *string {
		if !changed(flag) {
			return nil
		}
		return &v
	}
	values.Name = str("name", authAppAddName)
	values.Description = str("description", authAppAddDescription)
	values.URL = str("url", authAppAddURL)
	values.URLDirectAuth = str("url-direct-auth", authAppAddURLDirectAuth)
	values.AccessToken = str("access-token", authAppAddAccessToken)
	values.AppID = str("app-id", authAppAddAppID)
	if changed("disabled") {
		enabled := !authAppAddDisabled
		values.Enabled = &enabled
	}
	if changed("limit-to-registered-users") {
		registered := authAppAddRegistered
		values.LimitToRegisteredUsers = &registered
	}
	if authAppAddDefaultRole != "" {
		id, err := domain.ParseID(authAppAddDefaultRole)
		if err != nil {
			return values, err
		}
		role := &id
		values.DefaultRoleID = &role
	}
	return values, nil
}

func runAuthAppAdd(cmd *cobra.Command, args []string) error {
	if err := requireAuthAppAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	values, err := authAppValues(cmd)
	if err != nil {
		return err
	}
	if values.AuthVendorID == nil && !interaction().Interactive {
		return fmt.Errorf("%w: --vendor is required", domain.ErrValidation)
	}

	app, err := authAppAdmin.Add(cmd.Context(), interaction(), sel, values)
	if err != nil {
		return fmt.Errorf("failed to add auth app: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, app)
	}
	cmd.Printf("Auth app %s created.\n", app.Name)
	cmd.Printf("  ID: %s\n", app.ID)
	return nil
}

func runAuthAppList(cmd *cobra.Command, args []string) error {
	if err := requireAuthAppAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(optionalArg(args))
	if err != nil {
		return err
	}
	apps, err := authAppAdmin.List(cmd.Context(), interaction(), sel)
	if err != nil {
		return fmt.Errorf("failed to list auth apps: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, apps)
	}
	if len(apps) == 0 {
		cmd.Println("No auth apps configured.")
		return nil
	}
	cmd.Println("Auth apps:")
	cmd.Println()
	for i := range apps {
		app := &apps[i]
		cmd.Printf("  %s\n", app.Name)
		cmd.Printf("    ID:      %s\n", app.ID)
		cmd.Printf("    Vendor:  %s\n", app.AuthVendorName)
		cmd.Printf("    Enabled: %t\n", app.Enabled)
		cmd.Println()
	}
	cmd.Printf("Total: %d auth apps\n", len(apps))
	return nil
}

func runAuthAppGet(cmd *cobra.Command, args []string) error {
	if err := requireAuthAppAdmin(); err != nil {
		return err
	}
	id, err := domain.ParseID(args[0])
	if err != nil {
		return err
	}
	app, err := authAppAdmin.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get auth app: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, app)
	}
	cmd.Printf("Auth app: %s\n\n", app.Name)
	cmd.Printf("  ID:           %s\n", app.ID)
	cmd.Printf("  Service:      %s\n", app.ServiceID)
	cmd.Printf("  Vendor:       %s\n", app.AuthVendorName)
	cmd.Printf("  Enabled:      %t\n", app.Enabled)
	cmd.Printf("  Built-in:     %t\n", app.UseBuiltInAuthorization)
	cmd.Printf("  Registered:   %t\n", app.LimitToRegisteredUsers)
	if app.Description != "" {
		cmd.Printf("  Description:  %s\n", app.Description)
	}
	if app.URL != "" {
		cmd.Printf("  URL:          %s\n", app.URL)
	}
	if app.AppID != "" {
		cmd.Printf("  App ID:       %s\n", app.AppID)
	}
	if app.DefaultRoleID != nil {
		cmd.Printf("  Default role: %s\n", app.DefaultRoleID)
	}
	return nil
}

func runAuthAppUpdate(cmd *cobra.Command, args []string) error {
	if err := requireAuthAppAdmin(); err != nil {
		return err
	}
	if authAppUpdateDoc == "" {
		return fmt.Errorf("%w: --doc is required", domain.ErrValidation)
	}
	id, err := domain.ParseID(args[0])
	if err != nil {
		return err
	}
	doc, err := readDocument(authAppUpdateDoc, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out, err := authAppAdmin.Update(cmd.Context(), interaction(), id, doc)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runAuthAppDelete(cmd *cobra.Command, args []string) error {
	if err := requireAuthAppAdmin(); err != nil {
		return err
	}
	id, err := domain.ParseID(args[0])
	if err != nil {
		return err
	}
	out, err := authAppAdmin.Delete(cmd.Context(), interaction(), id)
	if err != nil {
		return err
	}
	return report(cmd, out)
}
