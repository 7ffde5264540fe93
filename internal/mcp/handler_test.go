package mcp

import (
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/authkit/authctl/internal/client"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		min      int
		max      int
		expected int
	}{
		{"value in range", 5, 1, 10, 5},
		{"value below min", -3, 1, 10, 1},
		{"value above max", 15, 1, 10, 10},
		{"value equals min", 1, 1, 10, 1},
		{"value equals max", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.val, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestRequireStringRejectsBlank(t *testing.T) {
	req := callRequest("authkit_rules_by_role", map[string]any{"role": "   "})
	if _, err := requireString(req, "role"); err == nil {
		t.Error("expected error for blank role")
	}
	req = callRequest("authkit_rules_by_role", map[string]any{"role": " editor "})
	got, err := requireString(req, "role")
	if err != nil {
		t.Fatalf("requireString error: %v", err)
	}
	if got != "editor" {
		t.Errorf("requireString = %q, want %q", got, "editor")
	}
}

func TestOptionalBool(t *testing.T) {
	if got := optionalBool(callRequest("x", map[string]any{}), "fixed"); got != nil {
		t.Errorf("absent flag = %v, want nil", *got)
	}
	got := optionalBool(callRequest("x", map[string]any{"fixed": false}), "fixed")
	if got == nil || *got {
		t.Errorf("fixed=false decoded as %v", got)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	res, _ := apiError("update rule", &client.ApplicationError{
		Status:  403,
		Type:    "FORBIDDEN",
		Message: "rule is fixed",
	})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	text := resultText(t, res)
	if text != "update rule failed (HTTP 403, FORBIDDEN): rule is fixed" {
		t.Errorf("text = %q", text)
	}

	res, _ = apiError("list roles", errors.New("connection refused"))
	if !strings.Contains(resultText(t, res), "connection refused") {
		t.Errorf("transport failure lost its cause: %q", resultText(t, res))
	}
}

func TestBoolPtr(t *testing.T) {
	truePtr := boolPtr(true)
	falsePtr := boolPtr(false)
	if truePtr == nil || !*truePtr {
		t.Errorf("boolPtr(true) = %v", truePtr)
	}
	if falsePtr == nil || *falsePtr {
		t.Errorf("boolPtr(false) = %v", falsePtr)
	}
	if truePtr == falsePtr {
		t.Error("boolPtr(true) and boolPtr(false) should return distinct pointers")
	}
}

func TestAnnotations(t *testing.T) {
	ro := readOnlyAnnotation()
	if ro.ReadOnlyHint == nil || !*ro.ReadOnlyHint {
		t.Error("readOnlyAnnotation must set ReadOnlyHint")
	}
	mut := mutatingAnnotation()
	if mut.ReadOnlyHint == nil || *mut.ReadOnlyHint {
		t.Error("mutatingAnnotation must clear ReadOnlyHint")
	}
	if mut.DestructiveHint == nil || *mut.DestructiveHint {
		t.Error("rule updates are not destructive")
	}
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}
