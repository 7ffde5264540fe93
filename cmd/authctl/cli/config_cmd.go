package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage authctl configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration and stored sessions.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default authctl.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Edit api.base_url and the accounts, then run 'authctl login'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	cmd.Flags().StringVar(&path, "path", "authctl.yaml", "Where to write the file")

	return cmd
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if f := vcfg.ConfigFileUsed(); f != "" {
				fmt.Fprintf(out, "Config file: %s\n", f)
			} else {
				fmt.Fprintln(out, "Config file: (none found, using defaults)")
			}
			fmt.Fprintf(out, "Data dir:    %s\n\n", resolveDataDir())

			keys := vcfg.AllKeys()
			sort.Strings(keys)
			table := uitable.New()
			table.Separator = "  "
			for _, key := range keys {
				table.AddRow(key+":", displayValue(key, vcfg.Get(key)))
			}
			fmt.Fprintln(out, table)

			store, err := openConfigStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			fmt.Fprintln(out)
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No stored sessions. Run 'authctl login' to create one.")
				return nil
			}
			st := uitable.New()
			st.AddRow("PROFILE", "EMAIL", "BASE URL", "EXPIRES")
			for _, s := range sessions {
				expires := "-"
				if s.ExpiresAt != nil {
					expires = s.ExpiresAt.Local().Format(time.RFC3339)
				}
				st.AddRow(s.Profile, s.Email, s.BaseURL, expires)
			}
			fmt.Fprintln(out, st)
			return nil
		},
	}
}

// displayValue hides secrets that may sit in the config.
func displayValue(key string, v any) string {
	if strings.HasSuffix(key, "password") || strings.HasSuffix(key, "dsn") {
		if fmt.Sprint(v) == "" {
			return ""
		}
		return "********"
	}
	return fmt.Sprint(v)
}
