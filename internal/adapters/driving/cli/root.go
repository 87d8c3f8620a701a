// Package cli provides the restgate command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
	"github.com/custodia-labs/restgate/internal/logger"
)

// version is set by SetVersion, usually from build flags.
var version = "dev"

// Driving ports the commands run against. They are nil until SetServices
// is called or the bootstrap hook has run.
var (
	serviceAdmin    driving.ServiceAdmin
	authAppAdmin    driving.AuthAppAdmin
	contentSetAdmin driving.ContentSetAdmin
	vendorCatalog   driving.VendorCatalog
)

// Global flags.
var (
	flagDSN            string
	flagConfigDir      string
	flagLogFile        string
	flagVerbose        bool
	flagNonInteractive bool
	flagJSON           bool
)

// skipBootstrap marks commands that run without a database.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "restgate",
	Short: "Administer REST gateway metadata",
	Long: `restgate manages the metadata schema of a REST gateway: services,
their auth apps, static content sets and the supported auth vendors.

Commands prompt for missing values when run from a terminal. Pass
--non-interactive (or --json) to fail instead of prompting.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagDSN, "dsn", "", "database DSN (sqlite path, postgres:// or mysql://)")
	flags.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.restgate)")
	flags.StringVar(&flagLogFile, "log-file", "", "write logs to a rotating file")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&flagNonInteractive, "non-interactive", false, "never prompt, fail on missing input")
	flags.BoolVar(&flagJSON, "json", false, "print results as JSON")
}

// Services holds the driving ports the commands use.
type Services struct {
	Services    driving.ServiceAdmin
	AuthApps    driving.AuthAppAdmin
	ContentSets driving.ContentSetAdmin
	Vendors     driving.VendorCatalog
}

// Flags carries the global flags to the bootstrap hook.
type Flags struct {
	DSN       string
	ConfigDir string
	LogFile   string
	Verbose   bool
}

// Bootstrap builds the services once flags are parsed. The returned closer
// is called when the command finishes.
type Bootstrap func(ctx context.Context, flags Flags) (Services, io.Closer, error)

var (
	bootstrap     Bootstrap
	closers       []io.Closer
	defaultOutput = "text"
)

// SetServices installs the driving ports.
func SetServices(s Services) {
	serviceAdmin = s.Services
	authAppAdmin = s.AuthApps
	contentSetAdmin = s.ContentSets
	vendorCatalog = s.Vendors
}

// SetBootstrap installs the hook that opens the database and builds the
// services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetOutputFormat sets the output used when --json is not given. Only
// "json" changes anything.
func SetOutputFormat(format string) {
	defaultOutput = format
}

// SetVersion sets the version printed by "restgate version".
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases whatever the bootstrap hook
// opened.
func Execute(ctx context.Context) error {
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
		closers = nil
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	if flagVerbose {
		logger.SetVerbose(true)
	}
	if bootstrap == nil || serviceAdmin != nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	svcs, closer, err := bootstrap(cmd.Context(), Flags{
		DSN:       flagDSN,
		ConfigDir: flagConfigDir,
		LogFile:   flagLogFile,
		Verbose:   flagVerbose,
	})
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	SetServices(svcs)
	if defaultOutput == "json" && !cmd.Flags().Changed("json") {
		flagJSON = true
	}
	return nil
}

// interaction derives the interaction mode from the global flags. JSON
// output is for scripts, so it never prompts.
func interaction() domain.Interaction {
	return domain.Interaction{
		Interactive:   !flagNonInteractive && !flagJSON,
		HumanReadable: !flagJSON,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// report prints the outcome of a mutating command.
func report(cmd *cobra.Command, out domain.Outcome) error {
	if flagJSON {
		return printJSON(cmd, out)
	}
	cmd.Println(out.Message)
	return nil
}

func requireServiceAdmin() error {
	if serviceAdmin == nil {
		return errors.New("service admin not configured")
	}
	return nil
}

func requireAuthAppAdmin() error {
	if authAppAdmin == nil {
		return errors.New("auth app admin not configured")
	}
	return nil
}

func requireContentSetAdmin() error {
	if contentSetAdmin == nil {
		return errors.New("content set admin not configured")
	}
	return nil
}

func requireVendorCatalog() error {
	if vendorCatalog == nil {
		return errors.New("vendor catalog not configured")
	}
	return nil
}
