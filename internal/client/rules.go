package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/authkit/authctl/internal/model"
)

// ListRules returns the rules matching f. Method and type are upper-cased
// and checked locally first.
func (c *Client) ListRules(ctx context.Context, f model.RuleFilter) ([]model.Rule, error) {
	f.Method = strings.ToUpper(strings.TrimSpace(f.Method))
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if err := checkInput("list rules", f); err != nil {
		return nil, err
	}
	var out []model.Rule
	err := c.call(ctx, request{
		op:     "list rules",
		method: http.MethodGet,
		path:   "/api/rules",
		query:  ruleFilterValues(f),
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRule fetches one rule. Rule ids look like "GET|/api/x", so the id is
// query-escaped into a single path segment.
func (c *Client) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	var out model.Rule
	err := c.call(ctx, request{
		op:     "get rule",
		method: http.MethodGet,
		path:   "/api/rules/" + url.QueryEscape(id),
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRule changes a rule's type, role names and description.
func (c *Client) UpdateRule(ctx context.Context, id string, req model.UpdateRuleRequest) (*model.Rule, error) {
	req.Type = model.AccessType(strings.ToUpper(string(req.Type)))
	if err := checkInput("update rule", req); err != nil {
		return nil, err
	}
	if req.Roles == nil {
		req.Roles = []string{}
	}
	var out model.Rule
	err := c.call(ctx, request{
		op:     "update rule",
		method: http.MethodPut,
		path:   "/api/rules/" + url.QueryEscape(id),
		body:   req,
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RulesByRole lists the rules that mention a role given by id or name.
func (c *Client) RulesByRole(ctx context.Context, idOrName string) ([]model.Rule, error) {
	var out []model.Rule
	err := c.call(ctx, request{
		op:     "rules by role",
		method: http.MethodGet,
		path:   "/api/rules/role/" + segment(idOrName),
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func ruleFilterValues(f model.RuleFilter) url.Values {
	v := url.Values{}
	setIf(v, "method", f.Method)
	setIf(v, "path", f.Path)
	setIf(v, "type", f.Type)
	setIf(v, "service", f.Service)
	if f.Fixed != nil {
		v.Set("fixed", strconv.FormatBool(*f.Fixed))
	}
	return v
}
