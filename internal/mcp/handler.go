package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/authkit/authctl/internal/client"
)

// --------------------------------------------------------------------------
// Parameter extraction helpers
// --------------------------------------------------------------------------

// requireString extracts a required, non-blank string argument.
func requireString(request mcp.CallToolRequest, key string) (string, error) {
	val, err := request.RequireString(key)
	if err != nil || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return strings.TrimSpace(val), nil
}

// optionalString extracts an optional string argument.
func optionalString(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

// optionalInt extracts an optional integer argument.
func optionalInt(request mcp.CallToolRequest, key string, defaultVal int) int {
	return request.GetInt(key, defaultVal)
}

// optionalStringSlice extracts an optional string slice argument.
func optionalStringSlice(request mcp.CallToolRequest, key string) []string {
	return request.GetStringSlice(key, nil)
}

// optionalBool returns nil when key was not sent at all.
func optionalBool(request mcp.CallToolRequest, key string) *bool {
	args := request.GetArguments()
	if args == nil {
		return nil
	}
	if _, ok := args[key]; !ok {
		return nil
	}
	v := request.GetBool(key, false)
	return &v
}

// --------------------------------------------------------------------------
// Response builders
// --------------------------------------------------------------------------

// successJSON marshals data to JSON and returns it as a tool result.
func successJSON(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// successText returns rendered console text as a tool result.
func successText(text string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(text), nil
}

// toolError returns a tool-level error result. Errors returned this way are
// visible to the LLM so it can self-correct; they do NOT terminate the MCP
// session.
func toolError(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

// apiError turns a client failure into a tool error carrying the message
// the backend sent.
func apiError(op string, err error) (*mcp.CallToolResult, error) {
	var appErr *client.ApplicationError
	if errors.As(err, &appErr) {
		return toolError("%s failed (HTTP %d, %s): %s", op, appErr.Status, appErr.Type, appErr.Error())
	}
	return toolError("%s failed: %v", op, err)
}

// clamp constrains val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
