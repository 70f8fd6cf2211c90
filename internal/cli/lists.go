package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/bulk"
	"proxyconf/internal/model"
	"proxyconf/internal/session"
)

// listFields are the plain list fields editable through `proxyconf list`.
// API keys are sensitive and have their own command.
var listFields = map[string]bool{
	model.FieldProxies:        true,
	model.FieldAllowedOrigins: true,
}

func newListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <field>",
		Short: "Edit a plain list field (PROXIES, ALLOWED_ORIGINS)",
	}

	cmd.AddCommand(newListAddCmd(app))
	cmd.AddCommand(newListRemoveCmd(app))
	cmd.AddCommand(newListClearCmd(app))
	cmd.AddCommand(newListImportCmd(app))

	return cmd
}

func resolveListField(arg string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(arg))
	if !listFields[name] {
		return "", fmt.Errorf("%s is not a plain list field (use `proxyconf keys` for API keys)", name)
	}
	return name, nil
}

func newListAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <field> <value>...",
		Short: "Append values and save",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := resolveListField(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, v := range args[1:] {
				if _, err := sess.Model.Append(field, v); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"field": field, "items": sess.Model.ListValues(field),
			}})
		},
	}
}

func newListRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <field> <value>...",
		Short: "Remove values by exact match and save",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := resolveListField(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := bulk.BulkDelete(sess.Model.ListValues(field), args[1:])
			if _, err := sess.Model.ReplaceList(field, res.Remaining); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"field": field, "deleted": res.Deleted, "items": res.Remaining,
			}})
		},
	}
}

func newListClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <field>",
		Short: "Remove every entry and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := resolveListField(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := sess.Model.ReplaceList(field, nil); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"field": field, "items": []string{},
			}})
		},
	}
}

func newListImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <field>",
		Short: "Extract proxy URLs from stdin, merge and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := resolveListField(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if field != model.FieldProxies {
				return writeErr(cmd, fmt.Errorf("import extracts proxy URLs; %s takes plain values via `list add`", field))
			}
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := readAll(cmd.InOrStdin())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := bulk.Extract(raw, bulk.FamilyProxy)
			if err != nil {
				return writeErr(cmd, err)
			}
			outcome, merged := mergeOutcome(sess, field, res)
			if merged != nil {
				if _, err := sess.Model.ReplaceList(field, merged); err != nil {
					return writeErr(cmd, err)
				}
				if err := sess.Save(); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": outcome})
		},
	}
}

// mergeOutcome turns an extraction result into the import outcome map.
// The merged list is nil when there is nothing to apply (empty input or
// no matches — informational outcomes, not errors).
func mergeOutcome(sess *session.Session, field string, res bulk.ExtractResult) (map[string]any, []string) {
	switch {
	case res.EmptyInput:
		return map[string]any{"outcome": "empty input"}, nil
	case res.NoMatches:
		return map[string]any{"outcome": "no valid items found"}, nil
	}
	existing := sess.Model.ListValues(field)
	merged := bulk.MergeDedup(existing, res.Items)
	return map[string]any{
		"outcome":   "imported",
		"extracted": len(res.Items),
		"added":     len(merged) - len(bulk.MergeDedup(existing, nil)),
		"total":     len(merged),
	}, merged
}
