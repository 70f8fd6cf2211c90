package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/document"
	"proxyconf/internal/model"
	"proxyconf/internal/pageview"
	"proxyconf/internal/session"
)

func newShowCmd(app *App) *cobra.Command {
	var (
		reveal bool
		field  string
		page   int
		size   int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the document, or one page of a list field",
		Example: strings.TrimSpace(`
  # Whole document, secrets masked
  proxyconf show

  # Page 2 of the proxy list, 10 per page
  proxyconf show --field PROXIES --page 2

  # Filtered view; the page count follows the filter
  proxyconf show --field API_KEYS --filter sk-test --reveal
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, rep, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			if field == "" {
				return writeOut(cmd, app, map[string]any{
					"data": documentView(sess, reveal),
					"meta": map[string]any{"defaulted": rep.Defaulted, "droppedOrphans": rep.DroppedOrphans},
				})
			}

			name := strings.ToUpper(strings.TrimSpace(field))
			spec, known := model.Spec(name)
			if !known || spec.Kind != model.KindStringList {
				return writeErr(cmd, fmt.Errorf("%s is not a list field", name))
			}

			v := pageview.New(sess.Model, name)
			v.SetPageSize(size)
			if f := strings.TrimSpace(filter); f != "" {
				v.SetFilter(func(e document.Entry) bool {
					return strings.Contains(e.Value, f)
				})
			}
			actual := v.SetPage(page)

			items := make([]string, 0, len(v.Window()))
			for _, e := range v.Window() {
				if spec.Sensitive && !reveal {
					items = append(items, sess.Ledger.Display(session.Ref(name, e.ID)))
				} else {
					items = append(items, e.Value)
				}
			}

			var empty string
			switch v.Empty() {
			case pageview.EmptyList:
				empty = "list"
			case pageview.EmptyFiltered:
				empty = "filtered"
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"field": name, "items": items},
				"meta": map[string]any{
					"page":     actual,
					"pages":    v.PageCount(),
					"filtered": v.FilteredCount(),
					"total":    v.TotalCount(),
					"empty":    empty,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print real values instead of masks")
	cmd.Flags().StringVar(&field, "field", "", "Page through one list field instead of printing the whole document")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (clamped to the last page)")
	cmd.Flags().IntVar(&size, "size", pageview.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&filter, "filter", "", "Substring filter; resets to page 1 unless --page is given")

	return cmd
}

// documentView renders every known field plus preserved unknown keys.
func documentView(sess *session.Session, reveal bool) map[string]any {
	out := sess.Model.Serialize().ToMap()
	for _, spec := range model.Catalog {
		out[spec.Name] = fieldValue(sess, spec, reveal)
	}
	return out
}
