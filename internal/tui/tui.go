package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"proxyconf/internal/session"
)

// Run starts the interactive editor over an already loaded session.
func Run(sess *session.Session, report session.LoadReport) error {
	m := newEditorModel(sess, report)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
