package cli

import (
	"github.com/spf13/cobra"

	"github.com/authkit/authctl/internal/model"
	"github.com/authkit/authctl/internal/render"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Inspect and update permission rules",
		Long: `Inspect and update permission rules. Rules print as

  <METHOD|PATH>  , <TYPE>("role", ...) , fixed, <service>

with role ids resolved to names from a single role listing.`,
	}

	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleGetCmd())
	cmd.AddCommand(newRuleUpdateCmd())
	cmd.AddCommand(newRuleByRoleCmd())

	return cmd
}

// ---------- rule list ----------

func newRuleListCmd() *cobra.Command {
	var (
		f     model.RuleFilter
		fixed bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List rules, optionally filtered",
		Example: `  authctl rule list --method GET --type ALLOW
  authctl rule list --path /api/user --fixed=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("fixed") {
				f.Fixed = &fixed
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
			rules, err := c.ListRules(e.ctx, f)
			if err != nil {
				return e.fail("list rules", err)
			}
			if ok, err := e.emit(rules); ok {
				return err
			}
			render.Rules(e.out.Writer(), "Rules", rules, e.roleNames(c))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Method, "method", "", "HTTP method: GET, POST, PUT or DELETE")
	cmd.Flags().StringVar(&f.Path, "path", "", "Substring of the rule path")
	cmd.Flags().StringVar(&f.Type, "type", "", "Access type: PUBLIC, ALLOW or FORBID")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Only fixed (true) or only editable (false) rules")
	cmd.Flags().StringVar(&f.Service, "service", "", "Owning service")

	return cmd
}

// ---------- rule get ----------

func newRuleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <METHOD|PATH>",
		Short: "Show one rule",
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
			rule, err := c.GetRule(e.ctx, args[0])
			if err != nil {
				return e.fail("get rule", err)
			}
			if ok, err := e.emit(rule); ok {
				return err
			}
			e.out.Plain("%s", render.RuleLine(*rule, e.roleNames(c)))
			if rule.Description != "" {
				e.out.Plain("  %s", rule.Description)
			}
			return nil
		},
	}
}

// ---------- rule update ----------

func newRuleUpdateCmd() *cobra.Command {
	var (
		typ         string
		roles       []string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <METHOD|PATH>",
		Short: "Change a rule's access type and roles",
		Example: `  authctl rule update "GET|/api/blogs" --type ALLOW --role editor --role author
  authctl rule update "GET|/api/health" --type PUBLIC`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := model.ParseAccessType(typ)
			if err != nil {
				return err
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
			rule, err := c.UpdateRule(e.ctx, args[0], model.UpdateRuleRequest{
				Type:        access,
				Roles:       roles,
				Description: description,
			})
			if err != nil {
				return e.fail("update rule", err)
			}
			if ok, err := e.emit(rule); ok {
				return err
			}
			e.out.Success("Rule updated")
			e.out.Plain("%s", render.RuleLine(*rule, e.roleNames(c)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Access type: PUBLIC, ALLOW or FORBID (required)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role name; repeat for several")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.MarkFlagRequired("type")

	return cmd
}

// ---------- rule by-role ----------

func newRuleByRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "by-role <id|name>",
		Short: "List the rules that mention a role",
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
			rules, err := c.RulesByRole(e.ctx, args[0])
			if err != nil {
				return e.fail("list rules by role", err)
			}
			if ok, err := e.emit(rules); ok {
				return err
			}
			render.Rules(e.out.Writer(), "Rules for role "+args[0], rules, e.roleNames(c))
			return nil
		},
	}
}
