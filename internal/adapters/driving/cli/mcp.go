package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/restgate/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can administer
the gateway metadata.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead, e.g. for the MCP Inspector.

Tools never prompt: a selection that would need a human fails with an
ambiguous selection error instead.

Examples:
  # Stdio mode (default)
  restgate mcp serve

  # HTTP mode on loopback
  restgate mcp serve --port 8080

  # HTTP mode on every interface
  restgate mcp serve --port 8080 --host 0.0.0.0

Assistant configuration:
  {
    "mcpServers": {
      "restgate": {
        "command": "/path/to/restgate",
        "args": ["mcp", "serve", "--dsn", "/path/to/metadata.db"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", mcp.DefaultHost, "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Services:    serviceAdmin,
		AuthApps:    authAppAdmin,
		ContentSets: contentSetAdmin,
		Vendors:     vendorCatalog,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		ln, err := mcp.Listen(host, port)
		if err != nil {
			return err
		}
		cmd.PrintErrf("MCP server listening on http://%s\n", ln.Addr())
		return server.Serve(cmd.Context(), ln)
	}

	return server.Run(cmd.Context())
}
