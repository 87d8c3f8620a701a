package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Show the supported auth vendors",
}

var vendorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List auth vendors",
	Args:  cobra.NoArgs,
	RunE:  runVendorList,
}

var vendorGetCmd = &cobra.Command{
	Use:   "get [id-or-name]",
	Short: "Show an auth vendor",
	Args:  cobra.ExactArgs(1),
	RunE:  runVendorGet,
}

func init() {
	vendorCmd.AddCommand(vendorListCmd)
	vendorCmd.AddCommand(vendorGetCmd)
	rootCmd.AddCommand(vendorCmd)
}

func runVendorList(cmd *cobra.Command, _ []string) error {
	if err := requireVendorCatalog(); err != nil {
		return err
	}
	vendors, err := vendorCatalog.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list vendors: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, vendors)
	}
	cmd.Println("Auth vendors:")
	cmd.Println()
	for i := range vendors {
		v := &vendors[i]
		label := v.Name
		if !v.Enabled {
			label += " (disabled)"
		}
		cmd.Printf("  %-16s %s\n", label, v.ID)
		if v.Comments != "" {
			cmd.Printf("    %s\n", v.Comments)
		}
	}
	return nil
}

func runVendorGet(cmd *cobra.Command, args []string) error {
	if err := requireVendorCatalog(); err != nil {
		return err
	}
	v, err := vendorCatalog.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get vendor: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, v)
	}
	cmd.Printf("Vendor: %s\n\n", v.Name)
	cmd.Printf("  ID:        %s\n", v.ID)
	cmd.Printf("  Enabled:   %t\n", v.Enabled)
	if v.Comments != "" {
		cmd.Printf("  Comments:  %s\n", v.Comments)
	}
	if v.ValidationURL != "" {
		cmd.Printf("  Validates: %s\n", v.ValidationURL)
	}
	if v.AuthURL != "" {
		cmd.Printf("  Auth URL:  %s\n", v.AuthURL)
		cmd.Printf("  Token URL: %s\n", v.TokenURL)
	}
	return nil
}
