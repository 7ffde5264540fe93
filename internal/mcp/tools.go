package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// registerTools registers all authkit MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Role tools -----

	srv.AddTool(
		mcp.NewTool("authkit_list_roles",
			mcp.WithDescription(
				"List every role defined in authkit with its id and whether it is a "+
					"system role. Use this first to learn the role names that rules and "+
					"users refer to.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListRoles,
	)

	srv.AddTool(
		mcp.NewTool("authkit_users_by_role",
			mcp.WithDescription("List the users holding a role."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("role",
				mcp.Required(),
				mcp.Description("Role id or role name"),
			),
		),
		s.handleUsersByRole,
	)

	// ----- Rule tools -----

	srv.AddTool(
		mcp.NewTool("authkit_list_rules",
			mcp.WithDescription(
				"List access rules. Each line reads '<METHOD|PATH>  , <TYPE>(\"role\", ...)' "+
					"followed by ' , fixed' for rules that cannot be edited and the owning "+
					"service when one is set. All filters are optional.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("method",
				mcp.Description("HTTP method filter: GET, POST, PUT or DELETE"),
				mcp.Enum("GET", "POST", "PUT", "DELETE"),
			),
			mcp.WithString("path",
				mcp.Description("Path filter, e.g. /api/user"),
			),
			mcp.WithString("type",
				mcp.Description("Access type filter: PUBLIC, ALLOW or FORBID"),
				mcp.Enum("PUBLIC", "ALLOW", "FORBID"),
			),
			mcp.WithBoolean("fixed",
				mcp.Description("Only fixed (true) or only editable (false) rules"),
			),
			mcp.WithString("service",
				mcp.Description("Owning service filter"),
			),
		),
		s.handleListRules,
	)

	srv.AddTool(
		mcp.NewTool("authkit_rules_by_role",
			mcp.WithDescription("List the access rules that mention a role."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("role",
				mcp.Required(),
				mcp.Description("Role id or role name"),
			),
		),
		s.handleRulesByRole,
	)

	srv.AddTool(
		mcp.NewTool("authkit_update_rule",
			mcp.WithDescription(
				"Change the access type and role list of one rule. Fixed rules are "+
					"rejected by the backend. Returns the rule as stored afterwards.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Rule id in the form METHOD|PATH, e.g. GET|/api/user"),
			),
			mcp.WithString("type",
				mcp.Required(),
				mcp.Description("New access type: PUBLIC, ALLOW or FORBID"),
				mcp.Enum("PUBLIC", "ALLOW", "FORBID"),
			),
			mcp.WithArray("roles",
				mcp.Description("Role names the type applies to; omit for none"),
				mcp.WithStringItems(),
			),
			mcp.WithString("description",
				mcp.Description("Optional new description"),
			),
		),
		s.handleUpdateRule,
	)

	// ----- User tools -----

	srv.AddTool(
		mcp.NewTool("authkit_list_users",
			mcp.WithDescription(
				"List users one page at a time, optionally filtered by email or name "+
					"and sorted by a column.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("page",
				mcp.Description("1-based page number (default 1)"),
			),
			mcp.WithNumber("page_size",
				mcp.Description("Users per page (default 20, max 100)"),
			),
			mcp.WithString("email",
				mcp.Description("Email substring filter"),
			),
			mcp.WithString("full_name",
				mcp.Description("Full name substring filter"),
			),
			mcp.WithString("sort_by",
				mcp.Description("Column to sort by, e.g. email or created_at"),
			),
			mcp.WithString("order",
				mcp.Description("Sort order"),
				mcp.Enum("asc", "desc"),
			),
		),
		s.handleListUsers,
	)

	srv.AddTool(
		mcp.NewTool("authkit_get_profile",
			mcp.WithDescription(
				"Get a user profile with its roles. Without an identifier the profile "+
					"of the logged-in operator is returned.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("identifier",
				mcp.Description("User id or email; omit for the current user"),
			),
		),
		s.handleGetProfile,
	)
}

// --------------------------------------------------------------------------
// Role handlers
// --------------------------------------------------------------------------

func (s *MCPServer) handleListRoles(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	roles, err := c.ListRoles(ctx)
	if err != nil {
		return apiError("list roles", err)
	}

	var b strings.Builder
	render.Roles(&b, "Roles", roles)
	return successText(b.String())
}

func (s *MCPServer) handleUsersByRole(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	role, err := requireString(request, "role")
	if err != nil {
		return toolError("%v", err)
	}
	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	users, err := c.UsersByRole(ctx, role)
	if err != nil {
		return apiError("users by role", err)
	}

	var b strings.Builder
	render.Users(&b, "Users with role "+role, users)
	return successText(b.String())
}

// --------------------------------------------------------------------------
// Rule handlers
// --------------------------------------------------------------------------

func (s *MCPServer) handleListRules(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	filter := model.RuleFilter{
		Method:  optionalString(request, "method"),
		Path:    optionalString(request, "path"),
		Type:    optionalString(request, "type"),
		Fixed:   optionalBool(request, "fixed"),
		Service: optionalString(request, "service"),
	}

	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	rules, err := c.ListRules(ctx, filter)
	if err != nil {
		return apiError("list rules", err)
	}

	names := client.BuildRoleNameMap(ctx, c, s.logger)
	var b strings.Builder
	render.Rules(&b, "Rules", rules, names)
	return successText(b.String())
}

func (s *MCPServer) handleRulesByRole(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	role, err := requireString(request, "role")
	if err != nil {
		return toolError("%v", err)
	}
	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	rules, err := c.RulesByRole(ctx, role)
	if err != nil {
		return apiError("rules by role", err)
	}

	names := client.BuildRoleNameMap(ctx, c, s.logger)
	var b strings.Builder
	render.Rules(&b, "Rules for role "+role, rules, names)
	return successText(b.String())
}

func (s *MCPServer) handleUpdateRule(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireString(request, "id")
	if err != nil {
		return toolError("%v", err)
	}
	typ, err := requireString(request, "type")
	if err != nil {
		return toolError("%v", err)
	}
	access, err := model.ParseAccessType(typ)
	if err != nil {
		return toolError("%v", err)
	}

	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	rule, err := c.UpdateRule(ctx, id, model.UpdateRuleRequest{
		Type:        access,
		Roles:       optionalStringSlice(request, "roles"),
		Description: optionalString(request, "description"),
	})
	if err != nil {
		return apiError("update rule", err)
	}

	s.logger.Info("rule updated via MCP", "rule", id, "type", access)
	names := client.BuildRoleNameMap(ctx, c, s.logger)
	return successText(render.RuleLine(*rule, names))
}

// --------------------------------------------------------------------------
// User handlers
// --------------------------------------------------------------------------

func (s *MCPServer) handleListUsers(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	q := model.UserQuery{
		Page:     clamp(optionalInt(request, "page", 1), 1, 1<<20),
		PageSize: clamp(optionalInt(request, "page_size", defaultPageSize), 1, maxPageSize),
		Email:    optionalString(request, "email"),
		FullName: optionalString(request, "full_name"),
		SortBy:   optionalString(request, "sort_by"),
		Order:    optionalString(request, "order"),
	}

	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}
	page, err := c.ListUsers(ctx, q)
	if err != nil {
		return apiError("list users", err)
	}

	var b strings.Builder
	render.UserPage(&b, page)
	return successText(b.String())
}

func (s *MCPServer) handleGetProfile(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	c, err := s.open(ctx)
	if err != nil {
		return toolError("No usable session: %v", err)
	}

	identifier := optionalString(request, "identifier")
	if identifier == "" {
		user, err := c.Profile(ctx)
		if err != nil {
			return apiError("get profile", err)
		}
		return successJSON(user)
	}

	detail, err := c.ProfileByIdentifier(ctx, identifier)
	if err != nil {
		return apiError("get profile", err)
	}
	if len(detail.Roles) == 0 {
		detail.Roles = detail.User.Roles
	}
	return successJSON(detail)
}
