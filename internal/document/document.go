// Package document owns the canonical in-memory configuration model.
// Every mutation in the editor flows through Model; views (pagination
// windows, the TUI, the web API) only ever hold projections of it.
package document

import (
	"github.com/google/uuid"

	"proxyconf/internal/model"
)

// Entry is one element of a list field. ID is a synthetic identifier:
// generated when the entry is created, unique within the session, immutable
// for the entry's lifetime, and never derived from Value (values are
// user-editable and not guaranteed unique).
type Entry struct {
	ID    string
	Value string
}

// Model is the single source of truth for the loaded document. Scalars,
// maps and record lists live in the underlying document; string-list fields
// are materialized as entries so list items keep a stable identity across
// edits, reordering and windowed rendering.
type Model struct {
	doc   *model.Document
	lists map[string][]Entry
}

// Load wraps a well-typed document (see model.FromMap) in a canonical model.
func Load(doc *model.Document) *Model {
	m := &Model{}
	m.Replace(doc)
	return m
}

// Replace swaps in a new document wholesale, as after a load or reset.
// All list entries get fresh identifiers; handles from the previous
// document are invalid afterwards.
func (m *Model) Replace(doc *model.Document) {
	m.doc = doc
	m.lists = map[string][]Entry{}
	for _, spec := range model.Catalog {
		if spec.Kind != model.KindStringList {
			continue
		}
		v, _ := doc.Get(spec.Name)
		entries := make([]Entry, 0, len(v.List))
		for _, s := range v.List {
			entries = append(entries, Entry{ID: uuid.New().String(), Value: s})
		}
		m.lists[spec.Name] = entries
	}
}

// Field returns the current value of a non-list field.
func (m *Model) Field(name string) (model.Value, bool) {
	if _, ok := m.lists[name]; ok {
		return model.ListValue(m.ListValues(name)), true
	}
	v, ok := m.doc.Get(name)
	return v.Clone(), ok
}

// SetField stores a scalar, map or record value. List fields must go
// through the entry operations so identifiers stay stable.
func (m *Model) SetField(name string, v model.Value) error {
	if _, ok := m.lists[name]; ok {
		return NotListOpError{Field: name}
	}
	m.doc.Set(name, v)
	return nil
}

// Entries returns a copy of a list field's entries in canonical order.
func (m *Model) Entries(field string) ([]Entry, error) {
	entries, ok := m.lists[field]
	if !ok {
		return nil, NotListError{Field: field}
	}
	return append([]Entry(nil), entries...), nil
}

// ListValues projects a list field's textual values in canonical order.
func (m *Model) ListValues(field string) []string {
	entries := m.lists[field]
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// Append adds a value to the end of a list field and returns its entry.
func (m *Model) Append(field, value string) (Entry, error) {
	if _, ok := m.lists[field]; !ok {
		return Entry{}, NotListError{Field: field}
	}
	e := Entry{ID: uuid.New().String(), Value: value}
	m.lists[field] = append(m.lists[field], e)
	return e, nil
}

// Remove deletes the entry with the given identifier from a list field.
func (m *Model) Remove(field, id string) error {
	entries, ok := m.lists[field]
	if !ok {
		return NotListError{Field: field}
	}
	for i, e := range entries {
		if e.ID == id {
			m.lists[field] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return EntryNotFoundError{Field: field, ID: id}
}

// SetEntryValue rewrites an entry's text in place. The identifier is
// untouched; order is untouched.
func (m *Model) SetEntryValue(field, id, value string) error {
	entries, ok := m.lists[field]
	if !ok {
		return NotListError{Field: field}
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Value = value
			return nil
		}
	}
	return EntryNotFoundError{Field: field, ID: id}
}

// EntryByID looks up a single entry.
func (m *Model) EntryByID(field, id string) (Entry, bool) {
	for _, e := range m.lists[field] {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ReplaceList swaps a list field's full contents, as after a bulk import
// or bulk delete. Fresh identifiers are generated for every value.
func (m *Model) ReplaceList(field string, values []string) ([]Entry, error) {
	if _, ok := m.lists[field]; !ok {
		return nil, NotListError{Field: field}
	}
	entries := make([]Entry, 0, len(values))
	for _, s := range values {
		entries = append(entries, Entry{ID: uuid.New().String(), Value: s})
	}
	m.lists[field] = entries
	return append([]Entry(nil), entries...), nil
}

// Serialize projects the canonical state into a plain document carrying
// real (never masked) values. It reads whatever is canonical at call time;
// there is no snapshot isolation.
func (m *Model) Serialize() *model.Document {
	out := m.doc.Clone()
	for field := range m.lists {
		out.Set(field, model.ListValue(m.ListValues(field)))
	}
	return out
}
