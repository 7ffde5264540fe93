package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
	"github.com/authkit/authctl/internal/service"
)

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var (
		account  string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session under --profile",
		Example: `  authctl login                              # configured admin account
  authctl login --account super_admin
  authctl login --email bob@gmail.com        # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, account, email, password)
		},
	}

	cmd.Flags().StringVar(&account, "account", "admin", "Configured account to use: admin or super_admin")
	cmd.Flags().StringVar(&email, "email", "", "Email to log in with (overrides --account)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, account, email, password string) error {
	if email == "" {
		acct, err := settings.Account(account)
		if err != nil {
			return err
		}
		email = acct.Email
		if password == "" {
			password = acct.Password
		}
	}
	if password == "" {
		pw, err := readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
		password = pw
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	e.out.Info("Logging in as %s...", email)
	res, sess, err := e.mgr.Login(e.ctx, profile, email, password)
	if err != nil {
		return e.fail("login", err)
	}
	logger.Info("session stored", "profile", profile, "user_id", sess.UserID)

	if ok, err := e.emit(res); ok {
		return err
	}
	e.out.Success("Logged in as %s (profile %q)", email, profile)
	e.out.Plain("%s", render.UserLine(res.User))
	if sess.ExpiresAt != nil {
		e.out.Info("Token expires %s", sess.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.mgr.Logout(e.ctx, profile); err != nil {
				return e.fail("logout", err)
			}
			e.out.Success("Logged out (profile %q)", profile)
			return nil
		},
	}
}

// ---------- refresh ----------

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := e.mgr.Refresh(e.ctx, profile)
			if err != nil {
				return e.fail("refresh", err)
			}
			if ok, err := e.emit(sess); ok {
				return err
			}
			e.out.Success("Token refreshed (profile %q)", profile)
			if sess.ExpiresAt != nil {
				e.out.Info("Token expires %s", sess.ExpiresAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored token's claims and the current profile",
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
			info, err := service.InspectToken(c.Token())
			if err != nil {
				logger.Debug("token claims unavailable", "error", err)
			}
			user, err := c.Profile(e.ctx)
			if err != nil {
				return e.fail("get profile", err)
			}

			if ok, err := e.emit(map[string]any{"claims": info, "profile": user}); ok {
				return err
			}
			e.out.Section("Token")
			if info == nil {
				e.out.Info("Token is not a JWT")
			} else {
				e.out.Plain("user id:  %s", info.UserID)
				e.out.Plain("email:    %s", info.Email)
				e.out.Plain("roles:    %s", strings.Join(info.RoleNames, ", "))
				e.out.Plain("issuer:   %s", info.Issuer)
				if info.ExpiresAt != nil {
					e.out.Plain("expires:  %s", info.ExpiresAt.Local().Format(time.RFC3339))
				}
			}
			e.out.Section("Profile")
			render.Profile(e.out.Writer(), *user)
			return nil
		},
	}
}

// ---------- register ----------

func newRegisterCmd() *cobra.Command {
	var req model.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user account",
		Example: `  authctl register --email bob@gmail.com --full-name "Bob" --mobile 0901234567
  authctl register --email bob@gmail.com --full-name "Bob"   # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				pw, err := newPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.anonymous()
			if err != nil {
				return err
			}
			user, err := c.Register(e.ctx, req)
			if err != nil {
				return e.fail("register", err)
			}
			if ok, err := e.emit(user); ok {
				return err
			}
			e.out.Success("Registered %s", req.Email)
			e.out.Plain("%s", render.UserLine(*user))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name (required)")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&req.Address, "address", "", "Postal address")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("full-name")

	return cmd
}

// ---------- passwd ----------

func newPasswdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change or reset passwords",
	}

	cmd.AddCommand(newPasswdChangeCmd())
	cmd.AddCommand(newPasswdRequestResetCmd())
	cmd.AddCommand(newPasswdResetCmd())

	return cmd
}

func newPasswdChangeCmd() *cobra.Command {
	var oldPassword, newPw string

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Change the password of the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if oldPassword == "" {
				if oldPassword, err = readPassword(cmd, "Current password: "); err != nil {
					return err
				}
			}
			if newPw == "" {
				if newPw, err = newPassword(cmd, "New password: "); err != nil {
					return err
				}
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.open()
			if err != nil {
				return err
			}
			if err := c.ChangePassword(e.ctx, oldPassword, newPw); err != nil {
				return e.fail("change password", err)
			}
			e.out.Success("Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "Current password (prompted if omitted)")
	cmd.Flags().StringVar(&newPw, "new", "", "New password (prompted if omitted)")

	return cmd
}

func newPasswdRequestResetCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "request-reset",
		Short: "Ask the backend to send a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.anonymous()
			if err != nil {
				return err
			}
			if err := c.RequestPasswordReset(e.ctx, email); err != nil {
				return e.fail("request password reset", err)
			}
			e.out.Success("Reset requested for %s; check the backend's notification output for the token", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newPasswdResetCmd() *cobra.Command {
	var token, newPw string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if newPw == "" {
				pw, err := newPassword(cmd, "New password: ")
				if err != nil {
					return err
				}
				newPw = pw
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.anonymous()
			if err != nil {
				return err
			}
			if err := c.ResetPassword(e.ctx, token, newPw); err != nil {
				return e.fail("reset password", err)
			}
			e.out.Success("Password reset")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Reset token (required)")
	cmd.Flags().StringVar(&newPw, "new", "", "New password (prompted if omitted)")
	cmd.MarkFlagRequired("token")

	return cmd
}
