package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/model"
)

func newRulesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage quota rules (category + threshold records)",
	}

	cmd.AddCommand(newRulesAddCmd(app))
	cmd.AddCommand(newRulesRemoveCmd(app))

	return cmd
}

// parseRule accepts the "category:threshold" form used across the editor.
func parseRule(s string) (model.QuotaRule, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return model.QuotaRule{}, fmt.Errorf("expected category:threshold, got %q", s)
	}
	thr, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.QuotaRule{}, fmt.Errorf("threshold expects a number, got %q", parts[1])
	}
	return model.QuotaRule{Category: strings.TrimSpace(parts[0]), Threshold: thr}, nil
}

func newRulesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category:threshold>...",
		Short: "Append quota rules and save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			v, _ := sess.Model.Field(model.FieldQuotaRules)
			rules := v.Rules
			for _, arg := range args {
				r, err := parseRule(arg)
				if err != nil {
					return writeErr(cmd, err)
				}
				rules = append(rules, r)
			}
			if err := sess.Model.SetField(model.FieldQuotaRules, model.RulesValue(rules)); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"rules": rules}})
		},
	}
}

func newRulesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category>",
		Short: "Remove every rule for a category and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			category := strings.TrimSpace(args[0])
			v, _ := sess.Model.Field(model.FieldQuotaRules)
			kept := make([]model.QuotaRule, 0, len(v.Rules))
			removed := 0
			for _, r := range v.Rules {
				if r.Category == category {
					removed++
					continue
				}
				kept = append(kept, r)
			}
			if err := sess.Model.SetField(model.FieldQuotaRules, model.RulesValue(kept)); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"removed": removed, "rules": kept,
			}})
		},
	}
}
