package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. The editor must stay readable on both light and dark
// terminal backgrounds, so everything routes through adaptive colors.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(ac("240", "245"))
	tabActiveStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(ac("232", "255")).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ac("232", "255"))
	emptyStyle    = lipgloss.NewStyle().Foreground(ac("241", "245")).Italic(true)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(ac("124", "203"))
	statusStyle   = lipgloss.NewStyle().Foreground(ac("22", "114"))
	pagerStyle    = lipgloss.NewStyle().Foreground(ac("240", "245"))
	helpStyle     = lipgloss.NewStyle().Foreground(ac("240", "243"))
)

// faintIfDark avoids faint text on light terminals, where it often becomes
// illegible.
func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if termenv.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}
