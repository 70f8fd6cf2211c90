package document

import (
	"errors"
	"reflect"
	"testing"

	"proxyconf/internal/model"
)

func loadFrom(t *testing.T, raw map[string]any) *Model {
	t.Helper()
	doc, _ := model.FromMap(raw)
	return Load(doc)
}

func TestLoadAssignsUniqueStableIDs(t *testing.T) {
	m := loadFrom(t, map[string]any{
		"PROXIES": []any{"a", "b", "a"},
	})
	entries, err := m.Entries(model.FieldProxies)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("identifiers must be unique and non-empty: %+v", entries)
		}
		seen[e.ID] = true
	}
	// Duplicate values are distinct entries; identity never derives from text.
	if entries[0].Value != "a" || entries[2].Value != "a" {
		t.Fatalf("load order lost: %+v", entries)
	}
}

func TestAppendRemoveEdit(t *testing.T) {
	m := loadFrom(t, nil)
	e1, err := m.Append(model.FieldAPIKeys, "sk-one")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	e2, _ := m.Append(model.FieldAPIKeys, "sk-two")

	if err := m.SetEntryValue(model.FieldAPIKeys, e1.ID, "sk-one-edited"); err != nil {
		t.Fatalf("SetEntryValue: %v", err)
	}
	got, ok := m.EntryByID(model.FieldAPIKeys, e1.ID)
	if !ok || got.Value != "sk-one-edited" || got.ID != e1.ID {
		t.Fatalf("edit must keep ID, change value: %+v", got)
	}

	if err := m.Remove(model.FieldAPIKeys, e2.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if vals := m.ListValues(model.FieldAPIKeys); !reflect.DeepEqual(vals, []string{"sk-one-edited"}) {
		t.Fatalf("ListValues after remove: %v", vals)
	}

	err = m.Remove(model.FieldAPIKeys, e2.ID)
	var nf EntryNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("removing a removed entry: got %v", err)
	}
}

func TestListOpsRejectNonListFields(t *testing.T) {
	m := loadFrom(t, nil)
	if _, err := m.Append(model.FieldPort, "x"); err == nil {
		t.Fatalf("Append on a scalar must fail")
	}
	if err := m.SetField(model.FieldProxies, model.ListValue([]string{"x"})); err == nil {
		t.Fatalf("SetField on a list must fail; entry ops own list state")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	raw := map[string]any{
		"HOST":            "h",
		"PROXIES":         []any{"p1", "p2"},
		"THINKING_MODELS": []any{"m1"},
	}
	m := loadFrom(t, raw)
	out := m.Serialize()

	if v, _ := out.Get(model.FieldHost); v.Str != "h" {
		t.Fatalf("HOST: %q", v.Str)
	}
	if v, _ := out.Get(model.FieldProxies); !reflect.DeepEqual(v.List, []string{"p1", "p2"}) {
		t.Fatalf("PROXIES: %v", v.List)
	}

	// Serialize reads canonical state at call time.
	if _, err := m.Append(model.FieldProxies, "p3"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	out2 := m.Serialize()
	if v, _ := out2.Get(model.FieldProxies); len(v.List) != 3 {
		t.Fatalf("second serialize must see the new entry: %v", v.List)
	}
	// The first serialize result is unaffected.
	if v, _ := out.Get(model.FieldProxies); len(v.List) != 2 {
		t.Fatalf("earlier serialize result mutated: %v", v.List)
	}
}

func TestReplaceInvalidatesOldHandles(t *testing.T) {
	m := loadFrom(t, map[string]any{"PROXIES": []any{"a"}})
	old, _ := m.Entries(model.FieldProxies)

	doc, _ := model.FromMap(map[string]any{"PROXIES": []any{"a"}})
	m.Replace(doc)

	if _, ok := m.EntryByID(model.FieldProxies, old[0].ID); ok {
		t.Fatalf("handles must not survive a full document replacement")
	}
}

func TestReplaceListGeneratesFreshIDs(t *testing.T) {
	m := loadFrom(t, map[string]any{"PROXIES": []any{"a", "b"}})
	before, _ := m.Entries(model.FieldProxies)
	after, err := m.ReplaceList(model.FieldProxies, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ReplaceList: %v", err)
	}
	if len(after) != 3 {
		t.Fatalf("expected 3 entries: %+v", after)
	}
	for _, b := range before {
		for _, a := range after {
			if a.ID == b.ID {
				t.Fatalf("ReplaceList must mint fresh identifiers")
			}
		}
	}
}
