package store

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"proxyconf/internal/model"
)

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxyconf.json")
	s := NewJSONFile(path)

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("missing file should load empty: %v", doc)
	}

	in := map[string]any{"HOST": "h", "PORT": 9000, "API_KEYS": []string{"sk-x"}}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["HOST"] != "h" {
		t.Fatalf("round-trip: %v", out)
	}

	// Second save keeps a .bak of the previous contents.
	if err := s.Save(map[string]any{"HOST": "h2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected .bak safety copy: %v", err)
	}
}

func TestYAMLFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	s := NewYAMLFile(path)
	if err := s.Save(map[string]any{"PORT": 9000, "PROXIES": []string{"socks5://p:1080"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// yaml.v3 decodes numbers as int.
	if out["PORT"] != 9000 {
		t.Fatalf("PORT: %[1]v (%[1]T)", out["PORT"])
	}
}

func TestFileResetWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxyconf.json")
	s := NewJSONFile(path)
	if err := s.Save(map[string]any{"PORT": 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if doc[model.FieldPort] != float64(8317) {
		t.Fatalf("Reset should restore defaults: %v", doc[model.FieldPort])
	}
	// And the reset survives a reload.
	out, _ := s.Load()
	if out[model.FieldPort] != float64(8317) {
		t.Fatalf("reloaded: %v", out[model.FieldPort])
	}
}

func TestSnapshotsNewestWinsAndResetSeedsFromOldest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	s, err := OpenSnapshots(path)
	if err != nil {
		t.Fatalf("OpenSnapshots: %v", err)
	}
	defer s.Close()

	if doc, err := s.Load(); err != nil || len(doc) != 0 {
		t.Fatalf("empty history: %v %v", doc, err)
	}

	if err := s.Save(map[string]any{"HOST": "first"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(map[string]any{"HOST": "second"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := s.Load()
	if err != nil || doc["HOST"] != "second" {
		t.Fatalf("Load newest: %v %v", doc, err)
	}

	doc, err = s.Reset()
	if err != nil || doc["HOST"] != "first" {
		t.Fatalf("Reset should re-seed from the oldest snapshot: %v %v", doc, err)
	}
	doc, _ = s.Load()
	if doc["HOST"] != "first" {
		t.Fatalf("reset snapshot must become the newest: %v", doc)
	}

	hist, err := s.History()
	if err != nil || len(hist) != 3 {
		t.Fatalf("History: %v %v", hist, err)
	}
}

func TestRemoteSurfacesStatusVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"HOST":"remote"}`))
		case http.MethodPut:
			http.Error(w, "schema rejected", http.StatusUnprocessableEntity)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "")
	doc, err := r.Load()
	if err != nil || doc["HOST"] != "remote" {
		t.Fatalf("Load: %v %v", doc, err)
	}

	err = r.Save(map[string]any{})
	var se StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusUnprocessableEntity || se.Body == "" {
		t.Fatalf("status must pass through verbatim: %+v", se)
	}
}

func TestOpenPicksBackendByTarget(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		target string
		want   string
	}{
		{filepath.Join(dir, "a.json"), "*store.JSONFile"},
		{filepath.Join(dir, "a.yaml"), "*store.YAMLFile"},
		{filepath.Join(dir, "a.yml"), "*store.YAMLFile"},
		{filepath.Join(dir, "a.sqlite"), "*store.Snapshots"},
		{"http://127.0.0.1:1/api", "*store.Remote"},
	}
	for _, c := range cases {
		s, err := Open(c.target)
		if err != nil {
			t.Fatalf("Open(%s): %v", c.target, err)
		}
		if got := fmt.Sprintf("%T", s); got != c.want {
			t.Fatalf("Open(%s): got %s, want %s", c.target, got, c.want)
		}
		if snap, ok := s.(*Snapshots); ok {
			_ = snap.Close()
		}
	}
	if _, err := Open(""); err == nil {
		t.Fatalf("empty target must fail")
	}
}
