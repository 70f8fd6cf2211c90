package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"proxyconf/internal/bulk"
	"proxyconf/internal/document"
	"proxyconf/internal/mask"
	"proxyconf/internal/model"
	"proxyconf/internal/pageview"
	"proxyconf/internal/session"
)

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.paste.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modePaste:
			return m.updatePaste(msg)
		case modeConfirmReset:
			return m.updateConfirmReset(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % tabCount
		m.cursor = 0
		return m, nil
	case "shift+tab":
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.cursor = 0
		return m, nil

	case "up", "k":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "down", "j":
		m.cursor++
		m.clampCursor()
		return m, nil

	case "right", "n":
		if v := m.currentView(); v != nil {
			v.SetPage(v.Page() + 1)
			m.clampCursor()
		}
		return m, nil
	case "left", "p":
		if v := m.currentView(); v != nil {
			v.SetPage(v.Page() - 1)
			m.clampCursor()
		}
		return m, nil

	case "/":
		if m.currentView() != nil {
			return m.openInput(inputFilter, "filter: ", ""), nil
		}
		return m, nil

	case "a":
		switch m.tab {
		case tabGeneral:
			return m, nil
		case tabRules:
			return m.openInput(inputRule, "rule (category:threshold): ", ""), nil
		default:
			return m.openInput(inputAdd, "add: ", ""), nil
		}

	case "e", "enter":
		return m.startEdit()

	case "d":
		return m.deleteSelected()

	case "r":
		return m.toggleReveal()

	case "b":
		if m.tab == tabModels {
			if e, ok := m.selectedEntry(); ok {
				cur, _ := m.sess.Budgets.Budget(e.ID)
				return m.openInputFor(inputBudget, "budget: ", strconv.Itoa(cur), e.ID), nil
			}
		}
		return m, nil

	case "i":
		if m.tab == tabKeys || m.tab == tabProxies {
			m.mode = modePaste
			m.pasteFor = pasteImport
			m.paste.Reset()
			m.paste.Focus()
		}
		return m, nil
	case "x":
		if m.tab == tabKeys || m.tab == tabProxies {
			m.mode = modePaste
			m.pasteFor = pasteDelete
			m.paste.Reset()
			m.paste.Focus()
		}
		return m, nil

	case "s":
		if err := m.sess.Save(); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved"
		}
		return m, nil

	case "L":
		rep, err := m.sess.Load()
		if err != nil {
			m.status = "reload failed: " + err.Error()
			return m, nil
		}
		m.rebindViews()
		m.status = "re" + loadStatus(rep)
		return m, nil

	case "R":
		m.mode = modeConfirmReset
		return m, nil
	}
	return m, nil
}

func (m editorModel) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		rep, err := m.sess.Reset()
		if err != nil {
			m.status = "reset failed: " + err.Error()
		} else {
			m.rebindViews()
			m.status = "reset; " + loadStatus(rep)
		}
	default:
		m.status = "reset cancelled"
	}
	m.mode = modeBrowse
	m.clampCursor()
	return m, nil
}

func (m editorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		return m.applyInput(value), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.paste.Blur()
		return m, nil
	case "ctrl+d":
		raw := m.paste.Value()
		m.mode = modeBrowse
		m.paste.Blur()
		return m.applyPaste(raw), nil
	}
	var cmd tea.Cmd
	m.paste, cmd = m.paste.Update(msg)
	return m, cmd
}

func (m editorModel) openInput(kind inputKind, prompt, prefill string) editorModel {
	return m.openInputFor(kind, prompt, prefill, "")
}

func (m editorModel) openInputFor(kind inputKind, prompt, prefill, id string) editorModel {
	m.mode = modeInput
	m.inputFor = kind
	m.editingID = id
	m.input.Prompt = prompt
	m.input.SetValue(prefill)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

// startEdit opens the right editor for the current selection.
func (m editorModel) startEdit() (tea.Model, tea.Cmd) {
	switch m.tab {
	case tabGeneral:
		return m.startScalarEdit()
	case tabRules:
		v, _ := m.sess.Model.Field(model.FieldQuotaRules)
		if m.cursor < len(v.Rules) {
			r := v.Rules[m.cursor]
			return m.openInputFor(inputRule, "rule (category:threshold): ",
				fmt.Sprintf("%s:%d", r.Category, r.Threshold), strconv.Itoa(m.cursor)), nil
		}
		return m, nil
	case tabModels:
		if e, ok := m.selectedEntry(); ok {
			return m.openInputFor(inputRename, "rename: ", e.Value, e.ID), nil
		}
		return m, nil
	default:
		if e, ok := m.selectedEntry(); ok {
			prefill := e.Value
			if m.tab == tabKeys {
				// Editing a masked key reveals it into the input; commit
				// decides what becomes canonical.
				prefill = m.sess.Ledger.Reveal(session.Ref(model.FieldAPIKeys, e.ID))
			}
			return m.openInputFor(inputEdit, "edit: ", prefill, e.ID), nil
		}
		return m, nil
	}
}

func (m editorModel) startScalarEdit() (tea.Model, tea.Cmd) {
	field := scalarFields[m.cursor]
	v, _ := m.sess.Model.Field(field)
	switch v.Kind {
	case model.KindBool:
		// Booleans toggle in place.
		_ = m.sess.Model.SetField(field, model.BoolValue(!v.Bool))
		return m, nil
	case model.KindNumber:
		return m.openInputFor(inputScalar, field+": ", strconv.Itoa(v.Num), field), nil
	default:
		prefill := v.Str
		if model.Sensitive(field) {
			prefill = m.sess.Ledger.Reveal(field)
		}
		return m.openInputFor(inputScalar, field+": ", prefill, field), nil
	}
}

func (m editorModel) applyInput(value string) editorModel {
	switch m.inputFor {
	case inputFilter:
		if v := m.currentView(); v != nil {
			needle := strings.TrimSpace(value)
			if needle == "" {
				v.SetFilter(nil)
				m.status = "filter cleared"
			} else {
				v.SetFilter(func(e document.Entry) bool {
					return strings.Contains(e.Value, needle)
				})
				if v.Empty() == pageview.EmptyFiltered {
					m.status = "no entries match the filter"
				} else {
					m.status = fmt.Sprintf("%d of %d match", v.FilteredCount(), v.TotalCount())
				}
			}
			m.cursor = 0
		}

	case inputAdd:
		field, _ := m.currentField()
		value = strings.TrimSpace(value)
		if value == "" {
			m.status = "nothing added"
			break
		}
		var err error
		switch m.tab {
		case tabKeys:
			_, err = m.sess.AddSensitiveEntry(field, value)
		case tabModels:
			// Through the synchronizer, so the new model gets its
			// dependent budget entry in the same step.
			_, err = m.sess.Budgets.AddEntry(value)
		default:
			_, err = m.views[field].Add(value)
		}
		if err != nil {
			m.status = err.Error()
			break
		}
		m.status = "added"

	case inputEdit:
		field, _ := m.currentField()
		if m.tab == tabKeys {
			if _, err := m.sess.CommitEntry(field, m.editingID, value); err != nil {
				m.status = err.Error()
				break
			}
		} else if err := m.views[field].Edit(m.editingID, value); err != nil {
			m.status = err.Error()
			break
		}
		m.status = "updated"

	case inputRename:
		if err := m.sess.Budgets.Rename(m.editingID, strings.TrimSpace(value)); err != nil {
			m.status = err.Error()
			break
		}
		m.status = "renamed; budget key follows"

	case inputBudget:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			m.status = "budget must be a number"
			break
		}
		stored, err := m.sess.Budgets.SetBudget(m.editingID, n)
		if err != nil {
			m.status = err.Error()
			break
		}
		if stored != n {
			m.status = fmt.Sprintf("budget clamped to %d", stored)
		} else {
			m.status = fmt.Sprintf("budget set to %d", stored)
		}

	case inputScalar:
		m = m.applyScalar(m.editingID, value)

	case inputRule:
		m = m.applyRule(value)
	}
	m.clampCursor()
	return m
}

func (m editorModel) applyScalar(field, value string) editorModel {
	spec, _ := model.Spec(field)
	switch spec.Kind {
	case model.KindNumber:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			m.status = field + " must be a number"
			return m
		}
		_ = m.sess.Model.SetField(field, model.NumberValue(n))
	default:
		if spec.Sensitive {
			m.sess.CommitScalar(field, value)
		} else {
			_ = m.sess.Model.SetField(field, model.StringValue(value))
		}
	}
	m.status = field + " updated"
	return m
}

// applyRule parses "category:threshold". editingID carries the row index
// when editing an existing rule.
func (m editorModel) applyRule(value string) editorModel {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		m.status = "expected category:threshold"
		return m
	}
	thr, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		m.status = "threshold must be a number"
		return m
	}
	rule := model.QuotaRule{Category: strings.TrimSpace(parts[0]), Threshold: thr}

	v, _ := m.sess.Model.Field(model.FieldQuotaRules)
	rules := v.Rules
	if m.editingID != "" {
		idx, _ := strconv.Atoi(m.editingID)
		if idx >= 0 && idx < len(rules) {
			rules[idx] = rule
		}
	} else {
		rules = append(rules, rule)
	}
	_ = m.sess.Model.SetField(model.FieldQuotaRules, model.RulesValue(rules))
	m.status = "rule saved"
	return m
}

func (m editorModel) applyPaste(raw string) editorModel {
	field, ok := m.currentField()
	if !ok {
		return m
	}
	family := bulk.FamilyProxy
	if m.tab == tabKeys {
		family = bulk.FamilyAPIKey
	}
	res, err := bulk.Extract(raw, family)
	if err != nil {
		m.status = err.Error()
		return m
	}
	switch {
	case res.EmptyInput:
		m.status = "paste was empty"
		return m
	case res.NoMatches:
		m.status = "no valid items found"
		return m
	}

	existing := m.sess.Model.ListValues(field)
	switch m.pasteFor {
	case pasteImport:
		merged := bulk.MergeDedup(existing, res.Items)
		added := len(merged) - len(bulk.MergeDedup(existing, nil))
		if m.tab == tabKeys {
			if err := m.sess.ImportKeys(field, merged); err != nil {
				m.status = err.Error()
				return m
			}
		} else if _, err := m.sess.Model.ReplaceList(field, merged); err != nil {
			m.status = err.Error()
			return m
		}
		m.status = fmt.Sprintf("%d extracted, %d new after dedup", len(res.Items), added)

	case pasteDelete:
		dr := bulk.BulkDelete(existing, res.Items)
		if m.tab == tabKeys {
			if err := m.sess.ImportKeys(field, dr.Remaining); err != nil {
				m.status = err.Error()
				return m
			}
		} else if _, err := m.sess.Model.ReplaceList(field, dr.Remaining); err != nil {
			m.status = err.Error()
			return m
		}
		if dr.Deleted == 0 {
			m.status = "no matching entries to delete"
		} else {
			m.status = fmt.Sprintf("deleted %d entr(ies)", dr.Deleted)
		}
	}
	m.clampCursor()
	return m
}

func (m editorModel) deleteSelected() (tea.Model, tea.Cmd) {
	switch m.tab {
	case tabGeneral:
		return m, nil
	case tabRules:
		v, _ := m.sess.Model.Field(model.FieldQuotaRules)
		if m.cursor < len(v.Rules) {
			rules := append(v.Rules[:m.cursor:m.cursor], v.Rules[m.cursor+1:]...)
			_ = m.sess.Model.SetField(model.FieldQuotaRules, model.RulesValue(rules))
			m.status = "rule removed"
		}
	case tabModels:
		if e, ok := m.selectedEntry(); ok {
			if err := m.sess.Budgets.Remove(e.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = "model and budget removed"
			}
		}
	case tabKeys:
		if e, ok := m.selectedEntry(); ok {
			if err := m.sess.RemoveSensitiveEntry(model.FieldAPIKeys, e.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = "key removed"
			}
		}
	default:
		if e, ok := m.selectedEntry(); ok {
			if err := m.currentView().Remove(e.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = "removed"
			}
		}
	}
	m.clampCursor()
	return m, nil
}

func (m editorModel) toggleReveal() (tea.Model, tea.Cmd) {
	switch m.tab {
	case tabGeneral:
		field := scalarFields[m.cursor]
		if !model.Sensitive(field) {
			return m, nil
		}
		m.flipMask(field)
	case tabKeys:
		if e, ok := m.selectedEntry(); ok {
			m.flipMask(session.Ref(model.FieldAPIKeys, e.ID))
		}
	}
	return m, nil
}

// flipMask toggles between showing the placeholder and the real value.
// Re-masking commits the placeholder, which by contract keeps the stored
// real value untouched.
func (m *editorModel) flipMask(ref string) {
	if m.sess.Ledger.CurrentState(ref) == mask.Masked {
		m.sess.Ledger.Reveal(ref)
	} else {
		m.sess.Ledger.Commit(ref, mask.Placeholder)
	}
}

func (m editorModel) selectedEntry() (document.Entry, bool) {
	v := m.currentView()
	if v == nil {
		return document.Entry{}, false
	}
	win := v.Window()
	if m.cursor < 0 || m.cursor >= len(win) {
		return document.Entry{}, false
	}
	return win[m.cursor], true
}

// rebindViews recreates the pagination windows after a full document
// replacement; old entry handles are gone.
func (m *editorModel) rebindViews() {
	for field := range m.views {
		m.views[field] = pageview.New(m.sess.Model, field)
	}
	m.cursor = 0
}
