package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/model"
)

// SessionOpener hands out an authenticated client for a stored profile.
// *service.SessionManager satisfies it.
type SessionOpener interface {
	Open(ctx context.Context, profile string) (*client.Client, *model.Session, error)
}

// MCPServer wraps the mcp-go server with authkit tool and resource
// registrations. Every call opens the stored session of one profile, so an
// agent sees exactly what the logged-in operator may see.
type MCPServer struct {
	sessions SessionOpener
	profile  string
	logger   *slog.Logger
	server   *server.MCPServer
}

// NewMCPServer creates an MCPServer with all authkit tools and resources
// registered. The returned server is ready to serve over stdio or HTTP.
func NewMCPServer(sessions SessionOpener, profile, version string, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MCPServer{
		sessions: sessions,
		profile:  profile,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"authkit Access Control",
		version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio starts the MCP server in stdio mode, for clients that launch
// authctl as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode", "profile", s.profile)
	return server.ServeStdio(s.server)
}

// ServeHTTP starts the MCP server in Streamable HTTP mode on addr.
func (s *MCPServer) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.server)
	s.logger.Info("MCP HTTP server starting", "addr", addr, "profile", s.profile)
	return httpServer.Start(addr)
}

// open returns a client for the configured profile.
func (s *MCPServer) open(ctx context.Context) (*client.Client, error) {
	c, _, err := s.sessions.Open(ctx, s.profile)
	return c, err
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func mutatingAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint:    boolPtr(false),
		DestructiveHint: boolPtr(false),
		IdempotentHint:  boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
