// Package linked keeps an ordered list field and its dependent map field
// consistent. The pairing is carried by the list entry's synthetic
// identifier, never inferred from positional order or text equality: the
// text is user-editable and not unique.
package linked

import (
	"proxyconf/internal/document"
	"proxyconf/internal/model"
)

// Budget clamp range. -1 means provider-dynamic budgeting.
const (
	BudgetMin = -1
	BudgetMax = 32768

	// DefaultBudget is assigned when a linked entry is created in-session.
	DefaultBudget = 0
)

// BudgetEntry is one dependent map entry. Key mirrors the owning list
// entry's current text; OwnerID is its identity for matching and never
// changes.
type BudgetEntry struct {
	OwnerID string
	Key     string
	Value   int
}

// ReconcileResult reports what load-time reconciliation did.
type ReconcileResult struct {
	Linked         int
	DroppedOrphans int
}

// Synchronizer owns the dependent map entries for one list/map field pair
// and applies every linked mutation to the canonical model and its own
// state as one transaction.
type Synchronizer struct {
	m         *document.Model
	listField string
	mapField  string
	budgets   []BudgetEntry
}

func New(m *document.Model, listField, mapField string) *Synchronizer {
	return &Synchronizer{m: m, listField: listField, mapField: mapField}
}

// NewThinking wires the synchronizer over THINKING_MODELS and
// THINKING_BUDGET_MAP.
func NewThinking(m *document.Model) *Synchronizer {
	return New(m, model.FieldThinkingModels, model.FieldThinkingBudgets)
}

// ReconcileOnLoad rebuilds pairings from the separately stored list and map
// data. For each list entry, in list order, a map key textually equal to the
// entry's value becomes a linked map entry under the entry's identifier.
// When several entries share a text, the first one claims the key. Map keys
// with no matching list value are dropped silently and only counted; a
// typo'd model name loses its configured budget. That is the documented
// lossy policy, preserved deliberately.
func (s *Synchronizer) ReconcileOnLoad() ReconcileResult {
	s.budgets = nil
	entries, err := s.m.Entries(s.listField)
	if err != nil {
		return ReconcileResult{}
	}
	raw := map[string]int{}
	if v, ok := s.m.Field(s.mapField); ok {
		for k, n := range v.IntMap {
			raw[k] = n
		}
	}
	var res ReconcileResult
	for _, e := range entries {
		n, ok := raw[e.Value]
		if !ok {
			continue
		}
		s.budgets = append(s.budgets, BudgetEntry{OwnerID: e.ID, Key: e.Value, Value: n})
		delete(raw, e.Value)
		res.Linked++
	}
	res.DroppedOrphans = len(raw)
	s.flush()
	return res
}

// AddEntry appends a new list entry and its dependent map entry (at the
// default budget) in one transaction, returning the synthetic identifier.
func (s *Synchronizer) AddEntry(text string) (string, error) {
	e, err := s.m.Append(s.listField, text)
	if err != nil {
		return "", err
	}
	s.budgets = append(s.budgets, BudgetEntry{OwnerID: e.ID, Key: text, Value: DefaultBudget})
	s.flush()
	return e.ID, nil
}

// Rename rewrites a linked entry's text and propagates it into the
// dependent map entry's key. The map entry's value and owning identifier
// are untouched.
func (s *Synchronizer) Rename(id, newText string) error {
	if err := s.m.SetEntryValue(s.listField, id, newText); err != nil {
		return err
	}
	for i := range s.budgets {
		if s.budgets[i].OwnerID == id {
			s.budgets[i].Key = newText
		}
	}
	s.flush()
	return nil
}

// Remove deletes the list entry and its dependent map entry as one
// transaction.
func (s *Synchronizer) Remove(id string) error {
	if err := s.m.Remove(s.listField, id); err != nil {
		return err
	}
	for i := range s.budgets {
		if s.budgets[i].OwnerID == id {
			s.budgets = append(s.budgets[:i:i], s.budgets[i+1:]...)
			break
		}
	}
	s.flush()
	return nil
}

// SetBudget stores a budget for the linked entry, clamped to
// [BudgetMin, BudgetMax], and returns the value actually stored. An entry
// that lost its map pairing during reconciliation gets a fresh one,
// appended in creation order.
func (s *Synchronizer) SetBudget(id string, v int) (int, error) {
	e, ok := s.m.EntryByID(s.listField, id)
	if !ok {
		return 0, document.EntryNotFoundError{Field: s.listField, ID: id}
	}
	v = clampBudget(v)
	for i := range s.budgets {
		if s.budgets[i].OwnerID == id {
			s.budgets[i].Value = v
			s.budgets[i].Key = e.Value
			s.flush()
			return v, nil
		}
	}
	s.budgets = append(s.budgets, BudgetEntry{OwnerID: id, Key: e.Value, Value: v})
	s.flush()
	return v, nil
}

// Budget reads the linked entry's budget, if it has one.
func (s *Synchronizer) Budget(id string) (int, bool) {
	for _, b := range s.budgets {
		if b.OwnerID == id {
			return b.Value, true
		}
	}
	return 0, false
}

// Budgets returns the dependent map entries in the order their owning list
// entries were (re)created.
func (s *Synchronizer) Budgets() []BudgetEntry {
	return append([]BudgetEntry(nil), s.budgets...)
}

// Entries exposes the linked list entries in canonical order.
func (s *Synchronizer) Entries() []document.Entry {
	entries, _ := s.m.Entries(s.listField)
	return entries
}

// flush writes the dependent map back into the canonical model so a
// serialize at any moment sees consistent list/map state.
func (s *Synchronizer) flush() {
	out := make(map[string]int, len(s.budgets))
	for _, b := range s.budgets {
		out[b.Key] = b.Value
	}
	// The map field is not a list field, so SetField cannot fail here.
	_ = s.m.SetField(s.mapField, model.IntMapValue(out))
}

func clampBudget(v int) int {
	if v < BudgetMin {
		return BudgetMin
	}
	if v > BudgetMax {
		return BudgetMax
	}
	return v
}
