package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/resumerag/internal/core/domain"
)

var mcpHTTPAddr string

// configuredAddr is the --http value when the flag is given without one.
const configuredAddr = "configured"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query the
resume.

By default the server communicates over stdio using JSON-RPC. Use --http to
serve the streamable HTTP transport instead, which works with MCP Inspector
and remote clients.

Examples:
  # Stdio mode (default, for desktop assistants)
  resumerag mcp

  # HTTP mode on the configured server.addr
  resumerag mcp --http

  # HTTP mode on another address
  resumerag mcp --http=localhost:8080

Assistant configuration:
  {
    "mcpServers": {
      "resumerag": {
        "command": "/path/to/resumerag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve HTTP instead of stdio (default address from server.addr)")
	mcpCmd.Flags().Lookup("http").NoOptDefVal = configuredAddr
	requires(mcpCmd, RequireIndex)
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		RAG:       ragService,
		Models:    modelService,
		Health:    healthService,
		Documents: documentService,
	})
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		addr, err := httpAddr()
		if err != nil {
			return err
		}
		cmd.PrintErrf("MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// httpAddr resolves the --http flag against the server.addr setting.
func httpAddr() (string, error) {
	if mcpHTTPAddr != configuredAddr {
		return mcpHTTPAddr, nil
	}
	if settingsService == nil {
		return domain.DefaultServerAddr, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.ServerAddr, nil
}
