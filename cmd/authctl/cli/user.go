package cli

import (
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "List, inspect and delete users",
	}

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserDeleteCmd())
	cmd.AddCommand(newUserRolesCmd())
	cmd.AddCommand(newUserSetRolesCmd())

	return cmd
}

// ---------- user list ----------

func newUserListCmd() *cobra.Command {
	var q model.UserQuery

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users with optional paging, filters and sorting",
		Example: `  authctl user list
  authctl user list --page 2 --page-size 5 --sort-by email --order asc
  authctl user list --email gmail.com`,
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
			page, err := c.ListUsers(e.ctx, q)
			if err != nil {
				return e.fail("list users", err)
			}
			if ok, err := e.emit(page); ok {
				return err
			}
			render.UserPage(e.out.Writer(), page)
			return nil
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 0, "Page number (enables pagination)")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 0, "Users per page")
	cmd.Flags().StringVar(&q.Email, "email", "", "Filter by email")
	cmd.Flags().StringVar(&q.FullName, "full-name", "", "Filter by full name")
	cmd.Flags().StringVar(&q.Address, "address", "", "Filter by address")
	cmd.Flags().StringVar(&q.SortBy, "sort-by", "", "Column to sort by")
	cmd.Flags().StringVar(&q.Order, "order", "", "Sort order: asc or desc")

	return cmd
}

// ---------- user delete ----------

func newUserDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if !yes && !confirm(cmd, "Delete user "+args[0]+"?") {
				e.out.Info("Aborted")
				return nil
			}

			c, err := e.open()
			if err != nil {
				return err
			}
			if err := c.DeleteUser(e.ctx, args[0]); err != nil {
				return e.fail("delete user", err)
			}
			e.out.Success("Deleted user %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// ---------- user roles ----------

func newUserRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles <id|email>",
		Short: "List the roles a user holds",
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
			refs, err := c.UserRoles(e.ctx, args[0])
			if err != nil {
				return e.fail("get user roles", err)
			}
			if ok, err := e.emit(refs); ok {
				return err
			}
			render.UserRoles(e.out.Writer(), "Roles of "+args[0], refs)
			return nil
		},
	}
}

// ---------- user set-roles ----------

func newUserSetRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-roles <id> [role...]",
		Short: "Replace every role of a user; no roles clears them",
		Example: `  authctl user set-roles 0190a1b2-... editor author
  authctl user set-roles 0190a1b2-...              # removes all roles`,
		Args: cobra.MinimumNArgs(1),
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
			userID, names := args[0], args[1:]
			if err := c.ReplaceUserRoles(e.ctx, userID, names); err != nil {
				return e.fail("set user roles", err)
			}
			refs := make([]model.RoleRef, len(names))
			for i, n := range names {
				refs[i] = model.ByName(n)
			}
			e.out.Success("Roles of %s set to %s", userID, render.RoleList(refs))
			return nil
		},
	}
}
