package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"proxyconf/internal/model"
	"proxyconf/internal/pageview"
	"proxyconf/internal/session"
)

func (m editorModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.mode {
	case modePaste:
		verb := "import"
		if m.pasteFor == pasteDelete {
			verb = "bulk delete"
		}
		b.WriteString(titleStyle.Render(verb+" — paste text, ctrl+d to apply, esc to cancel") + "\n")
		b.WriteString(m.paste.View())
	case modeConfirmReset:
		b.WriteString(warnStyle.Render("Reset the document to its baseline? All unsaved and saved edits are replaced. [y/N]"))
	default:
		b.WriteString(m.renderBody())
		if m.mode == modeInput {
			b.WriteString("\n" + m.input.View())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(faintIfDark(helpStyle).Render(m.helpLine()))
	return b.String()
}

func (m editorModel) renderTabs() string {
	parts := make([]string, 0, int(tabCount))
	for t := tab(0); t < tabCount; t++ {
		title := tabTitles[t]
		if t == m.tab {
			parts = append(parts, tabActiveStyle.Render(title))
		} else {
			parts = append(parts, tabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m editorModel) renderBody() string {
	switch m.tab {
	case tabGeneral:
		return m.renderGeneral()
	case tabModels:
		return m.renderModels()
	case tabRules:
		return m.renderRules()
	default:
		return m.renderList()
	}
}

func (m editorModel) renderGeneral() string {
	var b strings.Builder
	for i, field := range scalarFields {
		v, _ := m.sess.Model.Field(field)
		var val string
		switch v.Kind {
		case model.KindBool:
			val = strconv.FormatBool(v.Bool)
		case model.KindNumber:
			val = strconv.Itoa(v.Num)
		default:
			val = v.Str
			if model.Sensitive(field) {
				val = m.sess.Ledger.Display(field)
				if val == "" {
					val = emptyStyle.Render("(not set)")
				}
			}
		}
		b.WriteString(m.row(i, fmt.Sprintf("%-16s %s", field, val)))
	}
	return b.String()
}

func (m editorModel) renderList() string {
	field, _ := m.currentField()
	v := m.views[field]
	var b strings.Builder

	switch v.Empty() {
	case pageview.EmptyList:
		return emptyStyle.Render("(no entries)")
	case pageview.EmptyFiltered:
		return emptyStyle.Render("(no entries match the filter)")
	}

	for i, e := range v.Window() {
		text := e.Value
		if m.tab == tabKeys {
			text = m.sess.Ledger.Display(session.Ref(model.FieldAPIKeys, e.ID))
			if text == "" {
				text = emptyStyle.Render("(empty)")
			}
		}
		b.WriteString(m.row(i, text))
	}
	b.WriteString("\n" + pagerStyle.Render(m.pagerLine(v)))
	return b.String()
}

func (m editorModel) renderModels() string {
	v := m.views[model.FieldThinkingModels]
	if v.Empty() == pageview.EmptyList {
		return emptyStyle.Render("(no thinking models)")
	}
	var b strings.Builder
	for i, e := range v.Window() {
		budget := "—"
		if n, ok := m.sess.Budgets.Budget(e.ID); ok {
			budget = strconv.Itoa(n)
		}
		b.WriteString(m.row(i, fmt.Sprintf("%-32s budget %s", e.Value, budget)))
	}
	b.WriteString("\n" + pagerStyle.Render(m.pagerLine(v)))
	return b.String()
}

func (m editorModel) renderRules() string {
	v, _ := m.sess.Model.Field(model.FieldQuotaRules)
	if len(v.Rules) == 0 {
		return emptyStyle.Render("(no quota rules)")
	}
	var b strings.Builder
	for i, r := range v.Rules {
		b.WriteString(m.row(i, fmt.Sprintf("%-24s threshold %d", r.Category, r.Threshold)))
	}
	return b.String()
}

func (m editorModel) row(i int, text string) string {
	if i == m.cursor && m.mode == modeBrowse {
		return selectedStyle.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}

func (m editorModel) pagerLine(v *pageview.View) string {
	line := fmt.Sprintf("page %d/%d · %d entr(ies)", v.Page(), v.PageCount(), v.FilteredCount())
	if v.FilteredCount() != v.TotalCount() {
		line += fmt.Sprintf(" (of %d)", v.TotalCount())
	}
	return line
}

func (m editorModel) helpLine() string {
	common := "tab switch · s save · L reload · R reset · q quit"
	switch m.tab {
	case tabGeneral:
		return "enter edit/toggle · r reveal · " + common
	case tabKeys:
		return "a add · e edit · d delete · r reveal · i import · x bulk delete · / filter · n/p page · " + common
	case tabProxies:
		return "a add · e edit · d delete · i import · x bulk delete · / filter · n/p page · " + common
	case tabModels:
		return "a add · e rename · b budget · d delete · n/p page · " + common
	case tabRules:
		return "a add · e edit · d delete · " + common
	default:
		return "a add · e edit · d delete · / filter · n/p page · " + common
	}
}
