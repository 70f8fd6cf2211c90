package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"proxyconf/internal/model"
	"proxyconf/internal/pageview"
	"proxyconf/internal/session"
)

type tab int

const (
	tabGeneral tab = iota
	tabKeys
	tabProxies
	tabOrigins
	tabModels
	tabRules
	tabCount
)

var tabTitles = map[tab]string{
	tabGeneral: "General",
	tabKeys:    "API Keys",
	tabProxies: "Proxies",
	tabOrigins: "Origins",
	tabModels:  "Models",
	tabRules:   "Quota Rules",
}

// listField maps list tabs to their document field.
var listField = map[tab]string{
	tabKeys:    model.FieldAPIKeys,
	tabProxies: model.FieldProxies,
	tabOrigins: model.FieldAllowedOrigins,
}

// scalarFields is the General tab's rows, in display order.
var scalarFields = []string{
	model.FieldHost,
	model.FieldPort,
	model.FieldDebug,
	model.FieldRequestLog,
	model.FieldRetryCount,
	model.FieldProxyURL,
	model.FieldAdminPassword,
}

type mode int

const (
	modeBrowse mode = iota
	modeInput
	modePaste
	modeConfirmReset
)

type inputKind int

const (
	inputAdd inputKind = iota
	inputEdit
	inputScalar
	inputRename
	inputBudget
	inputFilter
	inputRule
)

type pasteKind int

const (
	pasteImport pasteKind = iota
	pasteDelete
)

type editorModel struct {
	sess *session.Session

	width  int
	height int

	tab    tab
	cursor int

	// One pagination window per list field; mutations go through these so
	// the page clamp stays correct.
	views map[string]*pageview.View

	mode      mode
	inputFor  inputKind
	pasteFor  pasteKind
	editingID string
	input     textinput.Model
	paste     textarea.Model

	status string
}

func newEditorModel(sess *session.Session, report session.LoadReport) editorModel {
	in := textinput.New()
	in.CharLimit = 512
	ta := textarea.New()
	ta.Placeholder = "Paste here…"

	m := editorModel{
		sess:  sess,
		views: map[string]*pageview.View{},
		input: in,
		paste: ta,
	}
	for _, field := range []string{
		model.FieldAPIKeys, model.FieldProxies, model.FieldAllowedOrigins,
		model.FieldThinkingModels,
	} {
		m.views[field] = pageview.New(sess.Model, field)
	}
	m.status = loadStatus(report)
	return m
}

func (m editorModel) Init() tea.Cmd { return nil }

// loadStatus summarizes what loading had to repair.
func loadStatus(rep session.LoadReport) string {
	s := "loaded"
	if n := len(rep.Defaulted); n > 0 {
		s += fmt.Sprintf(", %d field(s) defaulted", n)
	}
	if rep.DroppedOrphans > 0 {
		s += fmt.Sprintf(", %d orphaned budget(s) dropped", rep.DroppedOrphans)
	}
	return s
}

// currentField resolves the list field behind the active tab; Models uses
// the linked list field.
func (m editorModel) currentField() (string, bool) {
	if f, ok := listField[m.tab]; ok {
		return f, true
	}
	if m.tab == tabModels {
		return model.FieldThinkingModels, true
	}
	return "", false
}

func (m editorModel) currentView() *pageview.View {
	if f, ok := m.currentField(); ok {
		return m.views[f]
	}
	return nil
}

// clampCursor keeps the cursor inside the visible window after mutations.
func (m *editorModel) clampCursor() {
	var max int
	switch {
	case m.tab == tabGeneral:
		max = len(scalarFields) - 1
	case m.tab == tabRules:
		v, _ := m.sess.Model.Field(model.FieldQuotaRules)
		max = len(v.Rules) - 1
	default:
		if v := m.currentView(); v != nil {
			max = len(v.Window()) - 1
		}
	}
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
