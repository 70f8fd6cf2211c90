package pageview

import (
	"fmt"
	"strings"
	"testing"

	"proxyconf/internal/document"
	"proxyconf/internal/model"
)

func listOf(t *testing.T, n int) *document.Model {
	t.Helper()
	var raw []any
	for i := 0; i < n; i++ {
		raw = append(raw, fmt.Sprintf("proxy-%02d", i))
	}
	doc, _ := model.FromMap(map[string]any{"PROXIES": raw})
	return document.Load(doc)
}

func TestPagesCoverListExactlyOnce(t *testing.T) {
	m := listOf(t, 23)
	v := New(m, model.FieldProxies)
	v.SetPageSize(5)

	seen := map[string]int{}
	total := 0
	for p := 1; p <= v.PageCount(); p++ {
		for _, e := range v.GetPage(p) {
			seen[e.ID]++
			total++
		}
	}
	if total != 23 {
		t.Fatalf("union of pages: got %d entries, want 23", total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("entry %s appeared %d times", id, n)
		}
	}
	if v.PageCount() != 5 {
		t.Fatalf("PageCount: got %d, want 5", v.PageCount())
	}
}

func TestWindowIsFreshSliceOfCanonicalList(t *testing.T) {
	m := listOf(t, 8)
	v := New(m, model.FieldProxies)
	v.SetPageSize(5)

	v.SetPage(2)
	first := v.Window()
	if len(first) != 3 {
		t.Fatalf("page 2: got %d entries", len(first))
	}

	// An edit on page 1 shows up without the window holding any copy.
	page1 := v.GetPage(1)
	if err := v.Edit(page1[0].ID, "edited"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := v.GetPage(1)[0].Value; got != "edited" {
		t.Fatalf("edit not visible on rerender: %q", got)
	}
	// Navigating back and forth loses nothing.
	v.SetPage(1)
	v.SetPage(2)
	if got := v.GetPage(1)[0].Value; got != "edited" {
		t.Fatalf("navigation discarded an edit: %q", got)
	}
}

func TestPageClampAfterRemoval(t *testing.T) {
	m := listOf(t, 11)
	v := New(m, model.FieldProxies)
	v.SetPageSize(5) // pages: 5 + 5 + 1

	v.SetPage(3)
	last := v.Window()
	if len(last) != 1 {
		t.Fatalf("page 3: got %d entries", len(last))
	}
	if err := v.Remove(last[0].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if v.Page() != 2 {
		t.Fatalf("page should clamp to 2 after the last page emptied; got %d", v.Page())
	}
	if v.TotalCount() != 10 {
		t.Fatalf("TotalCount: %d", v.TotalCount())
	}
}

func TestSetPageClampsBothEnds(t *testing.T) {
	m := listOf(t, 6)
	v := New(m, model.FieldProxies)
	v.SetPageSize(5)
	if got := v.SetPage(99); got != 2 {
		t.Fatalf("SetPage(99): got %d, want 2", got)
	}
	if got := v.SetPage(0); got != 1 {
		t.Fatalf("SetPage(0): got %d, want 1", got)
	}
}

func TestFilterResetsToPageOneAndReportsDistinctEmpty(t *testing.T) {
	m := listOf(t, 12)
	v := New(m, model.FieldProxies)
	v.SetPageSize(5)
	v.SetPage(3)

	v.SetFilter(func(e document.Entry) bool { return strings.HasSuffix(e.Value, "1") })
	if v.Page() != 1 {
		t.Fatalf("filter must reset to page 1; got %d", v.Page())
	}
	if v.FilteredCount() != 2 { // proxy-01, proxy-11
		t.Fatalf("FilteredCount: %d", v.FilteredCount())
	}

	v.SetFilter(func(document.Entry) bool { return false })
	if v.Empty() != EmptyFiltered {
		t.Fatalf("zero matches over a non-empty list must read EmptyFiltered")
	}

	v.SetFilter(nil)
	if v.Empty() != NotEmpty {
		t.Fatalf("cleared filter: want NotEmpty")
	}

	empty := New(document.Load(model.New()), model.FieldProxies)
	if empty.Empty() != EmptyList {
		t.Fatalf("truly empty list must read EmptyList")
	}
}

func TestMutationsApplyToCanonicalListWhileFiltered(t *testing.T) {
	m := listOf(t, 5)
	v := New(m, model.FieldProxies)
	v.SetFilter(func(e document.Entry) bool { return e.Value == "proxy-03" })

	if _, err := v.Add("proxy-99"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Hidden by the filter, present in the canonical list.
	if v.FilteredCount() != 1 {
		t.Fatalf("FilteredCount: %d", v.FilteredCount())
	}
	if v.TotalCount() != 6 {
		t.Fatalf("TotalCount: %d", v.TotalCount())
	}
	vals := m.ListValues(model.FieldProxies)
	if vals[len(vals)-1] != "proxy-99" {
		t.Fatalf("canonical list missing the addition: %v", vals)
	}
}
