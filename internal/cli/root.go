package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/format"
	"proxyconf/internal/session"
	"proxyconf/internal/store"
	"proxyconf/internal/tui"
)

type App struct {
	Store      string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "proxyconf",
		Short:        "Proxy configuration editor (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  proxyconf

  # Scriptable commands
  proxyconf get PORT
  proxyconf set HOST 0.0.0.0
  proxyconf keys import < keys.txt

  # Serve the management API
  proxyconf serve --addr 127.0.0.1:8317
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runEditor(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Store, "store", "", "Store target: file path, sqlite path or http(s) URL (default: $PROXYCONF_STORE or ~/.proxyconf/proxyconf.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROXYCONF_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newGetCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newKeysCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newRulesCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runEditor(app *App) error {
	sess, rep, err := loadSession(app)
	if err != nil {
		return err
	}
	return tui.Run(sess, rep)
}

// loadSession resolves the store target, opens the backend and loads the
// document into a fresh session.
func loadSession(app *App) (*session.Session, session.LoadReport, error) {
	target, err := store.DefaultTarget(app.Store)
	if err != nil {
		return nil, session.LoadReport{}, err
	}
	st, err := store.Open(target)
	if err != nil {
		return nil, session.LoadReport{}, err
	}
	sess := session.New(st)
	rep, err := sess.Load()
	if err != nil {
		return nil, session.LoadReport{}, fmt.Errorf("load %s: %w", target, err)
	}
	return sess, rep, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
