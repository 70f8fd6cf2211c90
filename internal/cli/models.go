package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/session"
)

func newModelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage thinking models and their budgets (kept in lockstep)",
	}

	cmd.AddCommand(newModelsListCmd(app))
	cmd.AddCommand(newModelsAddCmd(app))
	cmd.AddCommand(newModelsRenameCmd(app))
	cmd.AddCommand(newModelsRemoveCmd(app))
	cmd.AddCommand(newModelsBudgetCmd(app))

	return cmd
}

func newModelsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List models with their budgets, in list order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			type row struct {
				Model  string `json:"model" yaml:"model"`
				Budget int    `json:"budget" yaml:"budget"`
			}
			rows := []row{}
			for _, b := range sess.Budgets.Budgets() {
				rows = append(rows, row{Model: b.Key, Budget: b.Value})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"models": rows}})
		},
	}
}

func newModelsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Add models (each gets a default budget) and save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, name := range args {
				if _, err := sess.Budgets.AddEntry(name); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"added": len(args)}})
		},
	}
}

func newModelsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a model; its budget follows the new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := modelIDByName(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Budgets.Rename(id, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"model": args[1], "renamedFrom": args[0],
			}})
		},
	}
}

func newModelsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a model and its budget, then save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := modelIDByName(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Budgets.Remove(id); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
}

func newModelsBudgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "budget <name> <value>",
		Short: "Set a model's thinking budget (clamped; -1 means unlimited)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := modelIDByName(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("budget expects a number, got %q", args[1]))
			}
			stored, err := sess.Budgets.SetBudget(id, n)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"model": args[0], "budget": stored, "clamped": stored != n,
			}})
		},
	}
}

// modelIDByName resolves a model's entry by its current text. A duplicated
// name resolves to its first occurrence, matching budget ownership.
func modelIDByName(sess *session.Session, name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, e := range sess.Budgets.Entries() {
		if e.Value == name {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("model not found: %s", name)
}
