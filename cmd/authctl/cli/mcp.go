package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/mcp"
	"github.com/authkit/authctl/internal/service"
)

func newMCPCmd(version string) *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes the authkit API as
tools for AI agents. Tools act with the stored session of --profile, so log
in first.

In stdio mode the server speaks JSON-RPC on stdin/stdout. In http mode it
listens on --port using the Streamable HTTP transport.`,
		Example: `  authctl mcp                              # stdio mode
  authctl mcp --transport http --port 8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("transport") {
				transport = settings.MCPTransport
			}
			if !cmd.Flags().Changed("port") && settings.MCPPort != 0 {
				port = settings.MCPPort
			}
			return runMCP(transport, port, version)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 8090, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int, version string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := service.NewSessionManager(store, settings, logger)
	srv := mcp.NewMCPServer(mgr, profile, version, logger)

	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "http":
		return srv.ServeHTTP(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
