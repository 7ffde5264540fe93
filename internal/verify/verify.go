// Package verify reads the authkit backend's PostgreSQL database directly to
// confirm effects the HTTP API does not expose, such as the cascade of a
// role deletion to user-role links and rule role arrays.
package verify

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Checker runs read-only queries against the backend database.
type Checker struct {
	db *sqlx.DB
}

// Open connects to the backend database.
func Open(ctx context.Context, dsn string) (*Checker, error) {
	if dsn == "" {
		return nil, fmt.Errorf("verify: no database DSN configured (set verify.dsn)")
	}
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("verify connect: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Minute)
	return &Checker{db: db}, nil
}

// NewChecker wraps an existing connection.
func NewChecker(db *sqlx.DB) *Checker {
	return &Checker{db: db}
}

// Close closes the connection pool.
func (c *Checker) Close() error {
	return c.db.Close()
}

// RoleExists reports whether the roles table still has id.
func (c *Checker) RoleExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := c.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1)", id); err != nil {
		return false, fmt.Errorf("role exists: %w", err)
	}
	return exists, nil
}

// UserRoleLinks counts user_roles rows pointing at roleID.
func (c *Checker) UserRoleLinks(ctx context.Context, roleID int64) (int, error) {
	var n int
	if err := c.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM user_roles WHERE role_id = $1", roleID); err != nil {
		return 0, fmt.Errorf("count user roles: %w", err)
	}
	return n, nil
}

// UserRoleIDs returns the role ids linked to userID, ascending.
func (c *Checker) UserRoleIDs(ctx context.Context, userID string) ([]int64, error) {
	ids := []int64{}
	if err := c.db.SelectContext(ctx, &ids,
		"SELECT role_id FROM user_roles WHERE user_id::text = $1 ORDER BY role_id", userID); err != nil {
		return nil, fmt.Errorf("user role ids: %w", err)
	}
	return ids, nil
}

// RulesReferencingRole counts rules whose roles array still contains roleID.
func (c *Checker) RulesReferencingRole(ctx context.Context, roleID int64) (int, error) {
	var n int
	if err := c.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM rules WHERE $1 = ANY(roles)", roleID); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// CascadeReport is the database state left behind by a role deletion.
type CascadeReport struct {
	RoleID       int64 `json:"role_id"`
	RoleExists   bool  `json:"role_exists"`
	UserLinks    int   `json:"user_links"`
	RuleMentions int   `json:"rule_mentions"`
}

// Clean reports whether nothing refers to the role any more.
func (r CascadeReport) Clean() bool {
	return !r.RoleExists && r.UserLinks == 0 && r.RuleMentions == 0
}

// Cascade collects a CascadeReport for roleID.
func (c *Checker) Cascade(ctx context.Context, roleID int64) (*CascadeReport, error) {
	r := &CascadeReport{RoleID: roleID}
	var err error
	if r.RoleExists, err = c.RoleExists(ctx, roleID); err != nil {
		return nil, err
	}
	if r.UserLinks, err = c.UserRoleLinks(ctx, roleID); err != nil {
		return nil, err
	}
	if r.RuleMentions, err = c.RulesReferencingRole(ctx, roleID); err != nil {
		return nil, err
	}
	return r, nil
}
