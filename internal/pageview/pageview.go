// Package pageview projects a window of a potentially large list field for
// editing. The window is never authoritative: every page materializes a
// fresh slice of the canonical list, so edits on other pages are never
// copied anywhere they could be lost.
package pageview

import "proxyconf/internal/document"

const DefaultPageSize = 10

// EmptyState distinguishes a list with no entries at all from one where the
// active filter matches nothing; the view collaborator surfaces them
// differently.
type EmptyState int

const (
	NotEmpty EmptyState = iota
	EmptyList
	EmptyFiltered
)

// View is a pagination window over one list field of the canonical model.
type View struct {
	m      *document.Model
	field  string
	filter func(document.Entry) bool
	page   int
	size   int
}

func New(m *document.Model, field string) *View {
	return &View{m: m, field: field, page: 1, size: DefaultPageSize}
}

// SetFilter installs a predicate over entries and resets to page 1.
// A nil predicate clears filtering.
func (v *View) SetFilter(pred func(document.Entry) bool) {
	v.filter = pred
	v.page = 1
}

func (v *View) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	v.size = n
	v.clamp()
}

func (v *View) PageSize() int { return v.size }

// SetPage navigates to page n (1-based), clamped to the filtered page
// count, and returns the page actually selected.
func (v *View) SetPage(n int) int {
	v.page = n
	v.clamp()
	return v.page
}

func (v *View) Page() int { return v.page }

// PageCount is at least 1, even over an empty list.
func (v *View) PageCount() int {
	n := len(v.filtered())
	count := (n + v.size - 1) / v.size
	if count < 1 {
		count = 1
	}
	return count
}

// Window returns the current page's entries: a fresh slice computed from
// the canonical list at call time.
func (v *View) Window() []document.Entry {
	return v.GetPage(v.page)
}

// GetPage materializes page n of the filtered list without moving the
// current page.
func (v *View) GetPage(n int) []document.Entry {
	filtered := v.filtered()
	if n < 1 {
		n = 1
	}
	start := (n - 1) * v.size
	if start >= len(filtered) {
		return nil
	}
	end := start + v.size
	if end > len(filtered) {
		end = len(filtered)
	}
	return append([]document.Entry(nil), filtered[start:end]...)
}

func (v *View) TotalCount() int {
	entries, _ := v.m.Entries(v.field)
	return len(entries)
}

func (v *View) FilteredCount() int {
	return len(v.filtered())
}

func (v *View) Empty() EmptyState {
	if v.TotalCount() == 0 {
		return EmptyList
	}
	if v.FilteredCount() == 0 {
		return EmptyFiltered
	}
	return NotEmpty
}

// Add appends to the canonical list and re-clamps the window.
func (v *View) Add(value string) (document.Entry, error) {
	e, err := v.m.Append(v.field, value)
	if err != nil {
		return document.Entry{}, err
	}
	v.clamp()
	return e, nil
}

// Remove deletes from the canonical list and re-clamps the window; deleting
// the last entry of the last page steps the window back.
func (v *View) Remove(id string) error {
	if err := v.m.Remove(v.field, id); err != nil {
		return err
	}
	v.clamp()
	return nil
}

// Edit rewrites an entry's text in the canonical list.
func (v *View) Edit(id, value string) error {
	if err := v.m.SetEntryValue(v.field, id, value); err != nil {
		return err
	}
	v.clamp()
	return nil
}

func (v *View) filtered() []document.Entry {
	entries, _ := v.m.Entries(v.field)
	if v.filter == nil {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if v.filter(e) {
			out = append(out, e)
		}
	}
	return out
}

func (v *View) clamp() {
	if v.page < 1 {
		v.page = 1
	}
	if max := v.PageCount(); v.page > max {
		v.page = max
	}
}
