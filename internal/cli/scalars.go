package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/model"
	"proxyconf/internal/session"
)

func newGetCmd(app *App) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <field>",
		Short: "Print one field's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			field := strings.ToUpper(strings.TrimSpace(args[0]))
			spec, known := model.Spec(field)
			if !known {
				// Unknown keys are preserved in the document; reading them
				// back is fair.
				raw := sess.Model.Serialize().ToMap()
				v, ok := raw[field]
				if !ok {
					return writeErr(cmd, fmt.Errorf("unknown field: %s (run `proxyconf show` for the full document)", field))
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"field": field, "value": v}})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"field": field,
				"value": fieldValue(sess, spec, reveal),
			}})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the real value of a sensitive field instead of the mask")

	return cmd
}

func newSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one scalar field and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			field := strings.ToUpper(strings.TrimSpace(args[0]))
			entered := args[1]

			spec, known := model.Spec(field)
			if !known {
				return writeErr(cmd, fmt.Errorf("unknown field: %s", field))
			}

			switch spec.Kind {
			case model.KindString:
				if spec.Sensitive {
					sess.CommitScalar(field, entered)
				} else if err := sess.Model.SetField(field, model.StringValue(entered)); err != nil {
					return writeErr(cmd, err)
				}
			case model.KindNumber:
				n, err := strconv.Atoi(strings.TrimSpace(entered))
				if err != nil {
					return writeErr(cmd, fmt.Errorf("%s expects a number, got %q", field, entered))
				}
				if err := sess.Model.SetField(field, model.NumberValue(n)); err != nil {
					return writeErr(cmd, err)
				}
			case model.KindBool:
				b, err := strconv.ParseBool(strings.TrimSpace(entered))
				if err != nil {
					return writeErr(cmd, fmt.Errorf("%s expects true or false, got %q", field, entered))
				}
				if err := sess.Model.SetField(field, model.BoolValue(b)); err != nil {
					return writeErr(cmd, err)
				}
			default:
				return writeErr(cmd, fmt.Errorf("%s is not a scalar; use the list, keys, models or rules commands", field))
			}

			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"field": field,
				"value": fieldValue(sess, spec, false),
			}})
		},
	}

	return cmd
}

// fieldValue renders one known field for output. Sensitive values come
// through the ledger so the mask holds unless reveal is set.
func fieldValue(sess *session.Session, spec model.FieldSpec, reveal bool) any {
	v, _ := sess.Model.Field(spec.Name)
	switch spec.Kind {
	case model.KindString:
		if spec.Sensitive && !reveal {
			return sess.Ledger.Display(spec.Name)
		}
		return v.Str
	case model.KindNumber:
		return v.Num
	case model.KindBool:
		return v.Bool
	case model.KindStringList:
		if spec.Sensitive && !reveal {
			entries, _ := sess.Model.Entries(spec.Name)
			out := make([]string, 0, len(entries))
			for _, e := range entries {
				out = append(out, sess.Ledger.Display(session.Ref(spec.Name, e.ID)))
			}
			return out
		}
		return sess.Model.ListValues(spec.Name)
	case model.KindRecordList:
		return v.Rules
	case model.KindIntMap:
		return v.IntMap
	default:
		return v.Raw
	}
}
