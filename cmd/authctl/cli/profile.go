package cli

import (
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read and update user profiles",
	}

	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileUpdateCmd())

	return cmd
}

// ---------- profile get ----------

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id|email]",
		Short: "Show a profile; without an argument, your own",
		Args:  cobra.MaximumNArgs(1),
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

			if len(args) == 0 {
				user, err := c.Profile(e.ctx)
				if err != nil {
					return e.fail("get profile", err)
				}
				if ok, err := e.emit(user); ok {
					return err
				}
				render.Profile(e.out.Writer(), *user)
				return nil
			}

			detail, err := c.ProfileByIdentifier(e.ctx, args[0])
			if err != nil {
				return e.fail("get profile", err)
			}
			if ok, err := e.emit(detail); ok {
				return err
			}
			roles := detail.Roles
			if len(roles) == 0 {
				roles = detail.User.Roles
			}
			render.Profile(e.out.Writer(), detail.User)
			render.UserRoles(e.out.Writer(), "Roles", roles)
			return nil
		},
	}
}

// ---------- profile update ----------

func newProfileUpdateCmd() *cobra.Command {
	var fields model.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a profile; without an argument, your own",
		Example: `  authctl profile update --full-name "Bob Builder"
  authctl profile update 0190a1b2-... --mobile 0901234567 --address "Hanoi"`,
		Args: cobra.MaximumNArgs(1),
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

			var user *model.User
			if len(args) == 0 {
				user, err = c.UpdateProfile(e.ctx, fields)
			} else {
				user, err = c.UpdateProfileByID(e.ctx, args[0], fields)
			}
			if err != nil {
				return e.fail("update profile", err)
			}
			if ok, err := e.emit(user); ok {
				return err
			}
			e.out.Success("Profile updated")
			render.Profile(e.out.Writer(), *user)
			return nil
		},
	}

	cmd.Flags().StringVar(&fields.FullName, "full-name", "", "New full name")
	cmd.Flags().StringVar(&fields.Mobile, "mobile", "", "New mobile number")
	cmd.Flags().StringVar(&fields.Address, "address", "", "New address")

	return cmd
}
