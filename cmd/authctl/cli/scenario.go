package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
	"github.com/authkit/authctl/internal/verify"
)

// errCascade is returned when a deleted role still shows up for a user.
var errCascade = errors.New("role deletion did not cascade")

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run end-to-end checks against a live backend",
	}

	cmd.AddCommand(newScenarioRoleCycleCmd())

	return cmd
}

// ---------- scenario role-cycle ----------

func newScenarioRoleCycleCmd() *cobra.Command {
	var (
		user   string
		prefix string
		roleID int64
	)

	cmd := &cobra.Command{
		Use:   "role-cycle",
		Short: "Create a role, grant it, delete it and check the grant is gone",
		Long: `Create a uniquely named role, grant it to a user, then delete the role and
confirm through the API that the user no longer holds it. When verify.dsn is
configured the backend database is checked directly as well.`,
		Example: `  authctl scenario role-cycle --user bob@gmail.com
  authctl scenario role-cycle --user bob@gmail.com --role-id 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.open()
			if err != nil {
				return err
			}
			return runRoleCycle(e, c, user, prefix, roleID)
		},
	}

	cmd.Flags().StringVar(&user, "user", "bob@gmail.com", "User id or email to grant the role to")
	cmd.Flags().StringVar(&prefix, "prefix", "tiger", "Role name prefix; a unique suffix is appended")
	cmd.Flags().Int64Var(&roleID, "role-id", 0, "Role id to create (assigned by the backend if omitted)")

	return cmd
}

func runRoleCycle(e *env, c *client.Client, user, prefix string, roleID int64) error {
	name := prefix + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]

	e.out.Section("Step 1: create role " + name)
	created, err := c.CreateRole(e.ctx, model.Role{ID: roleID, Name: name})
	if err != nil {
		return e.fail("create role", err)
	}
	id := created.ID
	if id == 0 {
		found, err := c.RoleByName(e.ctx, name)
		if err != nil {
			return e.fail("look up created role", err)
		}
		id = found.ID
	}
	e.out.Success("Created role %q with id %d", name, id)

	deleted := false
	defer func() {
		if deleted {
			return
		}
		if err := c.DeleteRole(e.ctx, id); err != nil {
			logger.Warn("cleanup: role left behind", "role_id", id, "error", err)
		}
	}()

	e.out.Section("Step 2: grant role to " + user)
	detail, err := c.ProfileByIdentifier(e.ctx, user)
	if err != nil {
		return e.fail("look up user", err)
	}
	userID := detail.User.ID.String()
	if userID == "" {
		return e.fail("look up user", fmt.Errorf("no id for %s in profile payload", user))
	}
	if err := c.AssignRole(e.ctx, userID, id); err != nil {
		return e.fail("assign role", err)
	}
	e.out.Success("Granted role %d to %s (%s)", id, user, userID)

	e.out.Section("Step 3: roles after grant")
	refs, err := c.UserRoles(e.ctx, user)
	if err != nil {
		return e.fail("get user roles", err)
	}
	render.UserRoles(e.out.Writer(), "Roles of "+user, refs)
	if !holdsRole(refs, id, name) {
		return e.fail("assign role", fmt.Errorf("role %q is missing from %s right after the grant", name, user))
	}

	e.out.Section("Step 4: delete role " + name)
	if err := c.DeleteRole(e.ctx, id); err != nil {
		return e.fail("delete role", err)
	}
	deleted = true
	e.out.Success("Deleted role %d", id)

	e.out.Section("Step 5: roles after delete")
	refs, err = c.UserRoles(e.ctx, user)
	if err != nil {
		return e.fail("get user roles", err)
	}
	render.UserRoles(e.out.Writer(), "Roles of "+user, refs)
	if holdsRole(refs, id, name) {
		return e.fail("role cycle", fmt.Errorf("%w: %s still holds %q", errCascade, user, name))
	}
	e.out.Success("API no longer reports role %q for %s", name, user)

	if settings.VerifyDSN == "" {
		e.out.Info("verify.dsn not set; skipping the database check")
		return nil
	}
	e.out.Section("Step 6: database check")
	return runCascadeCheck(e, settings.VerifyDSN, id)
}

// holdsRole matches by id when the backend sent one, else by name.
func holdsRole(refs []model.RoleRef, id int64, name string) bool {
	for _, r := range refs {
		if rid, ok := r.RoleID(); ok && rid == id {
			return true
		}
		if n, ok := r.DisplayName(); ok && n == name {
			return true
		}
	}
	return false
}

func runCascadeCheck(e *env, dsn string, roleID int64) error {
	checker, err := verify.Open(e.ctx, dsn)
	if err != nil {
		return e.fail("connect to backend database", err)
	}
	defer checker.Close()

	report, err := checker.Cascade(e.ctx, roleID)
	if err != nil {
		return e.fail("verify cascade", err)
	}
	if ok, err := e.emit(report); ok {
		if err == nil && !report.Clean() {
			return &reportedError{err: errCascade}
		}
		return err
	}

	e.out.Plain("role row present:   %s", yesNo(report.RoleExists))
	e.out.Plain("user-role links:    %d", report.UserLinks)
	e.out.Plain("rules naming role:  %d", report.RuleMentions)
	if !report.Clean() {
		return e.fail("verify cascade", fmt.Errorf("%w: role %d still referenced", errCascade, roleID))
	}
	e.out.Success("Role %d left no trace in the database", roleID)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
