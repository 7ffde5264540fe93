package cli

import (
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles and role assignments",
		Long:  "Create, list and delete roles, and grant or revoke them for users. Roles are addressed by id or name.",
	}

	cmd.AddCommand(newRoleListCmd())
	cmd.AddCommand(newRoleCreateCmd())
	cmd.AddCommand(newRoleDeleteCmd())
	cmd.AddCommand(newRoleAssignCmd())
	cmd.AddCommand(newRoleRemoveCmd())
	cmd.AddCommand(newRoleUsersCmd())

	return cmd
}

// ---------- role list ----------

func newRoleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all roles",
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
			roles, err := c.ListRoles(e.ctx)
			if err != nil {
				return e.fail("list roles", err)
			}
			if ok, err := e.emit(roles); ok {
				return err
			}
			render.Roles(e.out.Writer(), "Roles", roles)
			return nil
		},
	}
}

// ---------- role create ----------

func newRoleCreateCmd() *cobra.Command {
	var role model.Role

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new role",
		Example: `  authctl role create --name tiger
  authctl role create --id 100 --name tiger`,
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
			created, err := c.CreateRole(e.ctx, role)
			if err != nil {
				return e.fail("create role", err)
			}
			if ok, err := e.emit(created); ok {
				return err
			}
			e.out.Success("Created role %q with id %d", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&role.ID, "id", 0, "Role id (assigned by the backend if omitted)")
	cmd.Flags().StringVar(&role.Name, "name", "", "Role name (required)")
	cmd.Flags().BoolVar(&role.IsSystem, "system", false, "Mark as a system role")
	cmd.MarkFlagRequired("name")

	return cmd
}

// ---------- role delete ----------

func newRoleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a role; its user links and rule mentions go with it",
		Args:  cobra.ExactArgs(1),
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
			id, err := c.ResolveRoleID(e.ctx, args[0])
			if err != nil {
				return e.fail("resolve role", err)
			}
			if err := c.DeleteRole(e.ctx, id); err != nil {
				return e.fail("delete role", err)
			}
			e.out.Success("Deleted role %s (id %d)", args[0], id)
			return nil
		},
	}
}

// ---------- role assign / remove ----------

func newRoleAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <user-id> <role>",
		Short: "Grant a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoleLink(cmd, args[0], args[1], true)
		},
	}
}

func newRoleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id> <role>",
		Short: "Revoke a role from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoleLink(cmd, args[0], args[1], false)
		},
	}
}

func runRoleLink(cmd *cobra.Command, userID, role string, grant bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := e.open()
	if err != nil {
		return err
	}
	roleID, err := c.ResolveRoleID(e.ctx, role)
	if err != nil {
		return e.fail("resolve role", err)
	}

	if grant {
		if err := c.AssignRole(e.ctx, userID, roleID); err != nil {
			return e.fail("assign role", err)
		}
		e.out.Success("Granted role %s to %s", role, userID)
		return nil
	}
	if err := c.RemoveRole(e.ctx, userID, roleID); err != nil {
		return e.fail("remove role", err)
	}
	e.out.Success("Revoked role %s from %s", role, userID)
	return nil
}

// ---------- role users ----------

func newRoleUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users <id|name>",
		Short: "List the users holding a role",
		Args:  cobra.ExactArgs(1),
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
			users, err := c.UsersByRole(e.ctx, args[0])
			if err != nil {
				return e.fail("list users by role", err)
			}
			if ok, err := e.emit(users); ok {
				return err
			}
			render.Users(e.out.Writer(), "Users with role "+args[0], users)
			return nil
		},
	}
}
