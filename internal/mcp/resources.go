package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	rolesURI   = "authkit://roles"
	sessionURI = "authkit://session"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// authkit://roles — every role with its id
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			rolesURI,
			"authkit Roles",
			mcp.WithResourceDescription(
				"All roles defined in authkit, including their ids and system flag. "+
					"Rules refer to roles by id; this maps them back to names.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleRolesResource,
	)

	// -------------------------------------------------------------------
	// authkit://session — who the tools act as
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			sessionURI,
			"Current Session",
			mcp.WithResourceDescription(
				"The stored login the tools run under: profile, backend URL, email "+
					"and token expiry. Tokens are never included.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleSessionResource,
	)
}

// handleRolesResource returns the role list as JSON.
func (s *MCPServer) handleRolesResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	c, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := c.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return jsonContents(rolesURI, roles)
}

// handleSessionResource describes the stored session.
func (s *MCPServer) handleSessionResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	_, sess, err := s.sessions.Open(ctx, s.profile)
	if err != nil {
		return nil, err
	}
	return jsonContents(sessionURI, sess)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
