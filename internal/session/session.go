// Package session wires the canonical model, the masking ledger, the
// linked-field synchronizer and a store into one editing session: load,
// edit, save, reset. It is single-writer and synchronous; the only
// asynchronous boundary is inside the store.
package session

import (
	"proxyconf/internal/document"
	"proxyconf/internal/linked"
	"proxyconf/internal/mask"
	"proxyconf/internal/model"
	"proxyconf/internal/store"
)

// LoadReport describes what load-time normalization and reconciliation did,
// for the view to surface ("2 fields defaulted, 1 orphaned budget dropped").
type LoadReport struct {
	Defaulted      []string
	Linked         int
	DroppedOrphans int
}

// Session is one editing session over one store.
type Session struct {
	store store.Store

	Model   *document.Model
	Ledger  *mask.Ledger
	Budgets *linked.Synchronizer
}

// New creates an unloaded session; call Load before editing.
func New(st store.Store) *Session {
	return &Session{store: st}
}

// Load fetches the document, applies the defaulting policy, rebuilds the
// linked pairings and registers sensitive values with a fresh ledger.
func (s *Session) Load() (LoadReport, error) {
	raw, err := s.store.Load()
	if err != nil {
		return LoadReport{}, err
	}
	return s.adopt(raw), nil
}

// Reset asks the store for its baseline document and treats the result
// exactly like a load: full model replacement, defaulting, reconciliation.
func (s *Session) Reset() (LoadReport, error) {
	raw, err := s.store.Reset()
	if err != nil {
		return LoadReport{}, err
	}
	return s.adopt(raw), nil
}

func (s *Session) adopt(raw map[string]any) LoadReport {
	doc, norm := model.FromMap(raw)
	if s.Model == nil {
		s.Model = document.Load(doc)
	} else {
		s.Model.Replace(doc)
	}
	s.Budgets = linked.NewThinking(s.Model)
	res := s.Budgets.ReconcileOnLoad()

	s.Ledger = mask.NewLedger()
	for _, spec := range model.Catalog {
		if !spec.Sensitive {
			continue
		}
		switch spec.Kind {
		case model.KindString:
			v, _ := s.Model.Field(spec.Name)
			s.Ledger.Register(spec.Name, v.Str)
		case model.KindStringList:
			entries, _ := s.Model.Entries(spec.Name)
			for _, e := range entries {
				s.Ledger.Register(Ref(spec.Name, e.ID), e.Value)
			}
		}
	}

	return LoadReport{
		Defaulted:      norm.Defaulted,
		Linked:         res.Linked,
		DroppedOrphans: res.DroppedOrphans,
	}
}

// Save serializes whatever is canonical right now — real values, never
// masked ones — and hands it to the store. On failure nothing is reverted;
// edits made meanwhile are simply part of the next attempt.
func (s *Session) Save() error {
	return s.store.Save(s.Model.Serialize().ToMap())
}

// CommitScalar ends an editing scope on a sensitive scalar: the ledger
// decides what entered text becomes canonical (placeholder and emptiness
// rules), and the model adopts the resulting real value. Returns the
// display form.
func (s *Session) CommitScalar(field, entered string) string {
	display := s.Ledger.Commit(field, entered)
	_ = s.Model.SetField(field, model.StringValue(s.Ledger.CurrentReal(field)))
	return display
}

// CommitEntry is CommitScalar for one sensitive list item.
func (s *Session) CommitEntry(field, entryID, entered string) (string, error) {
	ref := Ref(field, entryID)
	display := s.Ledger.Commit(ref, entered)
	if err := s.Model.SetEntryValue(field, entryID, s.Ledger.CurrentReal(ref)); err != nil {
		return "", err
	}
	return display, nil
}

// AddSensitiveEntry appends a list item and registers it with the ledger.
func (s *Session) AddSensitiveEntry(field, value string) (document.Entry, error) {
	e, err := s.Model.Append(field, value)
	if err != nil {
		return document.Entry{}, err
	}
	s.Ledger.Register(Ref(field, e.ID), value)
	return e, nil
}

// RemoveSensitiveEntry removes a list item and drops its ledger state.
func (s *Session) RemoveSensitiveEntry(field, entryID string) error {
	if err := s.Model.Remove(field, entryID); err != nil {
		return err
	}
	s.Ledger.Drop(Ref(field, entryID))
	return nil
}

// ImportKeys runs a bulk import against a sensitive list field: replaces
// the canonical list with the merged result and re-registers ledger state
// for the fresh entries.
func (s *Session) ImportKeys(field string, merged []string) error {
	old, err := s.Model.Entries(field)
	if err != nil {
		return err
	}
	entries, err := s.Model.ReplaceList(field, merged)
	if err != nil {
		return err
	}
	for _, e := range old {
		s.Ledger.Drop(Ref(field, e.ID))
	}
	for _, e := range entries {
		s.Ledger.Register(Ref(field, e.ID), e.Value)
	}
	return nil
}

// Ref builds the ledger reference for one list item.
func Ref(field, entryID string) string {
	return field + "/" + entryID
}
