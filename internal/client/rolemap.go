package client

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/authkit/authctl/internal/model"
)

// RoleLister is the one call a RoleNameMap needs.
type RoleLister interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
}

// RoleNameMap is a snapshot of role id to role name, taken once per command.
type RoleNameMap map[int64]string

// BuildRoleNameMap lists roles once. Any failure yields an empty map so
// callers fall back to printing ids.
func BuildRoleNameMap(ctx context.Context, lister RoleLister, logger *slog.Logger) RoleNameMap {
	m := RoleNameMap{}
	roles, err := lister.ListRoles(ctx)
	if err != nil {
		if logger != nil {
			logger.Debug("role name lookup unavailable", "error", err)
		}
		return m
	}
	for _, r := range roles {
		m[r.ID] = r.Name
	}
	return m
}

// Resolve returns the role name, or the decimal id when it is unknown.
func (m RoleNameMap) Resolve(id int64) string {
	if name, ok := m[id]; ok && name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}
