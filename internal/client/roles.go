package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/authkit/authctl/internal/model"
)

// ErrRoleNotFound is returned by RoleByName when no role has the name.
var ErrRoleNotFound = errors.New("role not found")

// ListRoles returns every role.
func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	var out []model.Role
	err := c.call(ctx, request{
		op:     "list roles",
		method: http.MethodGet,
		path:   "/api/roles",
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRole creates a role with a caller-chosen id.
func (c *Client) CreateRole(ctx context.Context, role model.Role) (*model.Role, error) {
	if err := checkInput("create role", role); err != nil {
		return nil, err
	}
	var out model.Role
	err := c.call(ctx, request{
		op:     "create role",
		method: http.MethodPost,
		path:   "/api/roles",
		body:   role,
		want:   http.StatusCreated,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRole deletes a role. The backend cascades the removal to every
// user-role link.
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.call(ctx, request{
		op:     "delete role",
		method: http.MethodDelete,
		path:   "/api/roles/" + strconv.FormatInt(id, 10),
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// RoleByName finds a role by case-sensitive name with one listing call.
func (c *Client) RoleByName(ctx context.Context, name string) (*model.Role, error) {
	roles, err := c.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].Name == name {
			return &roles[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrRoleNotFound)
}

// ResolveRoleID accepts a numeric id or a role name.
func (c *Client) ResolveRoleID(ctx context.Context, idOrName string) (int64, error) {
	idOrName = strings.TrimSpace(idOrName)
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return id, nil
	}
	role, err := c.RoleByName(ctx, idOrName)
	if err != nil {
		return 0, err
	}
	return role.ID, nil
}

// AssignRole grants a role to a user.
func (c *Client) AssignRole(ctx context.Context, userID string, roleID int64) error {
	return c.call(ctx, request{
		op:     "assign role",
		method: http.MethodPost,
		path:   userRolePath(userID, roleID),
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// RemoveRole revokes a role from a user.
func (c *Client) RemoveRole(ctx context.Context, userID string, roleID int64) error {
	return c.call(ctx, request{
		op:     "remove role",
		method: http.MethodDelete,
		path:   userRolePath(userID, roleID),
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// ReplaceUserRoles sets a user's roles to exactly names.
func (c *Client) ReplaceUserRoles(ctx context.Context, userID string, names []string) error {
	if names == nil {
		names = []string{}
	}
	return c.call(ctx, request{
		op:     "replace user roles",
		method: http.MethodPut,
		path:   "/api/users/" + segment(userID) + "/roles",
		body:   map[string][]string{"roles": names},
		want:   http.StatusOK,
		auth:   true,
	}, nil)
}

// UsersByRole lists the users holding a role given by id or name.
func (c *Client) UsersByRole(ctx context.Context, idOrName string) ([]model.User, error) {
	var out []model.User
	err := c.call(ctx, request{
		op:     "users by role",
		method: http.MethodGet,
		path:   "/api/roles/" + segment(idOrName) + "/users",
		want:   http.StatusOK,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func userRolePath(userID string, roleID int64) string {
	return "/api/users/" + segment(userID) + "/roles/" + strconv.FormatInt(roleID, 10)
}
