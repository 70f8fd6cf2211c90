package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"proxyconf/internal/store"
	"proxyconf/internal/web"
)

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Start the interactive editor (same as running proxyconf with no arguments)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(app)
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var (
		addr       string
		token      string
		requestLog bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the management API over HTTP",
		Long: strings.TrimSpace(`
Serve the configuration document over a small management API:

  GET  /api/config        current document
  PUT  /api/config        replace and save the document
  POST /api/config/reset  restore the baseline
  GET  /api/config/ws     websocket change feed (revision numbers)

A remote store target (--store https://host) on any other command talks
to this API.
`),
		Example: strings.TrimSpace(`
  proxyconf serve --addr 127.0.0.1:8317 --auth-token s3cret
  proxyconf --store /etc/proxyconf.yaml serve --request-log
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := store.DefaultTarget(app.Store)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := store.Open(target)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv := web.New(web.ServerConfig{
				Addr:       addr,
				AuthToken:  token,
				RequestLog: requestLog,
			}, st)
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", target, addr)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8317", "Listen address")
	cmd.Flags().StringVar(&token, "auth-token", envOr("PROXYCONF_TOKEN", ""), "Bearer token required on every request (empty disables auth)")
	cmd.Flags().BoolVar(&requestLog, "request-log", false, "Log every request")

	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the store's baseline document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, fmt.Errorf("reset replaces the whole document; pass --yes to confirm"))
			}
			sess, _, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rep, err := sess.Reset()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"outcome":   "reset",
				"defaulted": rep.Defaulted,
			}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved snapshots (SQLite store targets only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := store.DefaultTarget(app.Store)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := store.Open(target)
			if err != nil {
				return writeErr(cmd, err)
			}
			snaps, ok := st.(*store.Snapshots)
			if !ok {
				return writeErr(cmd, fmt.Errorf("history needs a SQLite store target (.sqlite/.db), got %s", target))
			}
			defer snaps.Close()
			rows, err := snaps.History()
			if err != nil {
				return writeErr(cmd, err)
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"snapshots": rows}})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Most recent snapshots to list")

	return cmd
}
