package cli

import (
	"io"

	"github.com/spf13/cobra"

	"proxyconf/internal/bulk"
	"proxyconf/internal/model"
)

func newKeysCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the API key list (sensitive; masked by default)",
	}

	cmd.AddCommand(newKeysAddCmd(app))
	cmd.AddCommand(newKeysImportCmd(app))
	cmd.AddCommand(newKeysDeleteCmd(app))

	return cmd
}

func newKeysAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <key>...",
		Short: "Append keys and save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, k := range args {
				if _, err := sess.AddSensitiveEntry(model.FieldAPIKeys, k); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"added": len(args), "total": len(sess.Model.ListValues(model.FieldAPIKeys)),
			}})
		},
	}
}

func newKeysImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Extract API keys from stdin, merge and save",
		Long:  "Reads arbitrary text from stdin, extracts everything that looks like an API key, merges it into the list with duplicates removed (first seen wins) and saves.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := readAll(cmd.InOrStdin())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := bulk.Extract(raw, bulk.FamilyAPIKey)
			if err != nil {
				return writeErr(cmd, err)
			}
			outcome, merged := mergeOutcome(sess, model.FieldAPIKeys, res)
			if merged != nil {
				if err := sess.ImportKeys(model.FieldAPIKeys, merged); err != nil {
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

func newKeysDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Extract API keys from stdin and delete matching entries",
		Long:  "Reads text from stdin, extracts API keys and removes every list entry that literally equals one of them. Each occurrence counts; patterns are not interpreted against the list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := readAll(cmd.InOrStdin())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := bulk.Extract(raw, bulk.FamilyAPIKey)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch {
			case res.EmptyInput:
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"outcome": "empty input"}})
			case res.NoMatches:
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"outcome": "no valid items found"}})
			}
			dr := bulk.BulkDelete(sess.Model.ListValues(model.FieldAPIKeys), res.Items)
			if err := sess.ImportKeys(model.FieldAPIKeys, dr.Remaining); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			outcome := "deleted"
			if dr.Deleted == 0 {
				outcome = "nothing matched"
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"outcome": outcome, "deleted": dr.Deleted, "total": len(dr.Remaining),
			}})
		},
	}
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
