package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/render"
	"github.com/authkit/authctl/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the backend database directly (read-only)",
		Long: `Read the authkit PostgreSQL database directly to confirm what the API
reports. The DSN comes from --dsn, verify.dsn or AUTHCTL_VERIFY_DSN.`,
	}

	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN of the backend (overrides verify.dsn)")

	cmd.AddCommand(newVerifyCascadeCmd(&dsn))
	cmd.AddCommand(newVerifyUserRolesCmd(&dsn))

	return cmd
}

func verifyDSN(flag string) string {
	if flag != "" {
		return flag
	}
	return settings.VerifyDSN
}

// ---------- verify cascade ----------

func newVerifyCascadeCmd(dsn *string) *cobra.Command {
	var roleID int64

	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "Confirm a deleted role left no user links or rule mentions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return runCascadeCheck(e, verifyDSN(*dsn), roleID)
		},
	}

	cmd.Flags().Int64Var(&roleID, "role-id", 0, "Id of the deleted role (required)")
	cmd.MarkFlagRequired("role-id")

	return cmd
}

// ---------- verify user-roles ----------

func newVerifyUserRolesCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "user-roles <user-id>",
		Short: "List the role ids linked to a user in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			checker, err := verify.Open(e.ctx, verifyDSN(*dsn))
			if err != nil {
				return e.fail("connect to backend database", err)
			}
			defer checker.Close()

			ids, err := checker.UserRoleIDs(e.ctx, args[0])
			if err != nil {
				return e.fail("read user roles", err)
			}
			if ok, err := e.emit(ids); ok {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.FormatInt(id, 10)
			}
			if len(parts) == 0 {
				parts = []string{render.NoRoles}
			}
			e.out.Plain("role ids of %s: %s", args[0], strings.Join(parts, ", "))
			return nil
		},
	}
}
