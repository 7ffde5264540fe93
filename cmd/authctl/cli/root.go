package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/authkit/authctl/internal/config"
)

var (
	cfgFile string
	profile string
	baseURL string
	noColor bool
	verbose bool
	jsonOut bool

	// Resolved in initConfig before any subcommand runs.
	vcfg     *viper.Viper
	settings config.Settings
	logger   = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// Execute creates the root command tree and runs it.
func Execute(ctx context.Context, version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Operate an authkit authentication backend from the terminal",
		Long: `authctl: a console for the authkit HTTP API.

authctl logs in, registers users, resets and changes passwords, manages
profiles, roles and role assignments, and filters and updates permission
rules. Sessions are stored per profile so later commands reuse the token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./authctl.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for stored sessions (default: ~/.authctl)")
	cmd.PersistentFlags().StringVar(&profile, "profile", "default", "session profile to use")
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "authkit API base URL (overrides api.base_url)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API requests (debug level)")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw payloads as JSON")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newPasswdCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newUserCmd())
	cmd.AddCommand(newRoleCmd())
	cmd.AddCommand(newRuleCmd())
	cmd.AddCommand(newScenarioCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newMCPCmd(version))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// initConfig layers defaults, .env, the YAML file, AUTHCTL_* variables and
// flags, then builds the logger.
func initConfig(stderr io.Writer) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	v := config.NewViper()
	path := cfgFile
	if path == "" {
		home, _ := os.UserHomeDir()
		path = config.FindConfigFile(".", filepath.Join(home, ".authctl"))
	}
	if path != "" {
		if err := config.ReadConfigFile(v, path); err != nil {
			return err
		}
	}
	if baseURL != "" {
		v.Set("api.base_url", baseURL)
	}

	s, err := config.FromViper(v)
	if err != nil {
		return err
	}
	vcfg = v
	settings = s
	logger = newLogger(stderr, s)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, s config.Settings) *slog.Logger {
	level := slog.LevelInfo
	switch s.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
