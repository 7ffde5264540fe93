package model

import (
	"fmt"
	"strings"
)

// AccessType is the effect of a permission rule.
type AccessType string

const (
	AccessPublic AccessType = "PUBLIC"
	AccessAllow  AccessType = "ALLOW"
	AccessForbid AccessType = "FORBID"
)

// ParseAccessType normalizes s to upper case and checks it is a known type.
func ParseAccessType(s string) (AccessType, error) {
	t := AccessType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case AccessPublic, AccessAllow, AccessForbid:
		return t, nil
	}
	return "", fmt.Errorf("invalid access type %q: must be PUBLIC, ALLOW or FORBID", s)
}

// Rule binds an HTTP method and path to an access type and a role set.
// The id is "METHOD|PATH" on current backends and numeric on older ones.
type Rule struct {
	ID          FlexID     `json:"id"`
	Method      string     `json:"method,omitempty"`
	Path        string     `json:"path,omitempty"`
	Type        AccessType `json:"type"`
	Fixed       bool       `json:"fixed"`
	ServiceName string     `json:"service_name,omitempty"`
	Description string     `json:"description,omitempty"`
	Roles       []int64    `json:"roles"`
}

// UpdateRuleRequest is the body of PUT /api/rules/:id. Roles are names;
// the backend resolves them to ids.
type UpdateRuleRequest struct {
	Type        AccessType `json:"type" validate:"required,oneof=PUBLIC ALLOW FORBID"`
	Roles       []string   `json:"roles"`
	Description string     `json:"description,omitempty"`
}

// RuleFilter narrows GET /api/rules. A nil Fixed means "either".
type RuleFilter struct {
	Method  string `validate:"omitempty,oneof=GET POST PUT DELETE"`
	Path    string
	Type    string `validate:"omitempty,oneof=PUBLIC ALLOW FORBID"`
	Fixed   *bool
	Service string
}
