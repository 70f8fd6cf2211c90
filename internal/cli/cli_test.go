package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"proxyconf/internal/mask"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func runCLI(t *testing.T, stdin string, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustEnv(t *testing.T, stdin string, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, stdin, args)
	if err != nil {
		t.Fatalf("command failed: proxyconf %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func data(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object; got %#v", env["data"])
	}
	return d
}

func TestCLISmoke(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	// A fresh store loads as defaults.
	got := mustEnv(t, "", "--store", target, "get", "PORT")
	if v := data(t, got)["value"]; v != float64(8317) {
		t.Fatalf("default PORT: %#v", v)
	}

	// Scalar set round-trips through the file.
	mustEnv(t, "", "--store", target, "set", "HOST", "0.0.0.0")
	got = mustEnv(t, "", "--store", target, "get", "HOST")
	if v := data(t, got)["value"]; v != "0.0.0.0" {
		t.Fatalf("HOST after set: %#v", v)
	}

	// Bool parsing.
	mustEnv(t, "", "--store", target, "set", "DEBUG", "true")
	got = mustEnv(t, "", "--store", target, "get", "DEBUG")
	if v := data(t, got)["value"]; v != true {
		t.Fatalf("DEBUG after set: %#v", v)
	}

	// List edits.
	mustEnv(t, "", "--store", target, "list", "add", "PROXIES", "socks5://p1:1080", "socks5://p2:1080")
	got = mustEnv(t, "", "--store", target, "show", "--field", "PROXIES")
	items, _ := data(t, got)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("proxies: %#v", items)
	}
	del := mustEnv(t, "", "--store", target, "list", "remove", "PROXIES", "socks5://p1:1080")
	if v := data(t, del)["deleted"]; v != float64(1) {
		t.Fatalf("deleted: %#v", v)
	}
}

func TestCLISensitiveFieldsStayMasked(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	mustEnv(t, "", "--store", target, "set", "ADMIN_PASSWORD", "hunter2")

	got := mustEnv(t, "", "--store", target, "get", "ADMIN_PASSWORD")
	if v := data(t, got)["value"]; v != mask.Placeholder {
		t.Fatalf("masked get should print the placeholder; got %#v", v)
	}

	got = mustEnv(t, "", "--store", target, "get", "ADMIN_PASSWORD", "--reveal")
	if v := data(t, got)["value"]; v != "hunter2" {
		t.Fatalf("reveal: %#v", v)
	}

	// An empty secret is shown empty, never masked.
	empty := filepath.Join(t.TempDir(), "empty.json")
	got = mustEnv(t, "", "--store", empty, "get", "ADMIN_PASSWORD")
	if v := data(t, got)["value"]; v != "" {
		t.Fatalf("empty secret must not be masked: %#v", v)
	}
}

func TestCLIKeysImportAndDelete(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	paste := "here are keys: sk-aaaaaaaaaaaaaaaa, sk-bbbbbbbbbbbbbbbb and sk-aaaaaaaaaaaaaaaa again"
	got := mustEnv(t, paste, "--store", target, "keys", "import")
	d := data(t, got)
	if d["outcome"] != "imported" || d["extracted"] != float64(3) || d["added"] != float64(2) {
		t.Fatalf("import outcome: %#v", d)
	}

	// Zero extracted items is informational, never an error, and uses the
	// same phrasing as the interactive editor.
	got = mustEnv(t, "nothing keylike", "--store", target, "keys", "import")
	if data(t, got)["outcome"] != "no valid items found" {
		t.Fatalf("outcome: %#v", data(t, got))
	}

	got = mustEnv(t, "sk-bbbbbbbbbbbbbbbb", "--store", target, "keys", "delete")
	d = data(t, got)
	if d["deleted"] != float64(1) || d["total"] != float64(1) {
		t.Fatalf("delete outcome: %#v", d)
	}
}

func TestCLIModelsLockstep(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	mustEnv(t, "", "--store", target, "models", "add", "m1", "m2")
	mustEnv(t, "", "--store", target, "models", "budget", "m1", "4096")
	mustEnv(t, "", "--store", target, "models", "rename", "m1", "m1-pro")

	got := mustEnv(t, "", "--store", target, "models", "list")
	rows, _ := data(t, got)["models"].([]any)
	if len(rows) != 2 {
		t.Fatalf("models: %#v", rows)
	}
	first, _ := rows[0].(map[string]any)
	if first["model"] != "m1-pro" || first["budget"] != float64(4096) {
		t.Fatalf("budget must follow the rename: %#v", first)
	}

	// Clamp is reported.
	got = mustEnv(t, "", "--store", target, "models", "budget", "m2", "999999")
	d := data(t, got)
	if d["budget"] != float64(32768) || d["clamped"] != true {
		t.Fatalf("clamp outcome: %#v", d)
	}

	mustEnv(t, "", "--store", target, "models", "remove", "m2")
	got = mustEnv(t, "", "--store", target, "models", "list")
	rows, _ = data(t, got)["models"].([]any)
	if len(rows) != 1 {
		t.Fatalf("after remove: %#v", rows)
	}
}

func TestCLIShowPaginationClamp(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	args := []string{"--store", target, "list", "add", "ALLOWED_ORIGINS"}
	for _, o := range []string{"a.example", "b.example", "c.example", "d.example", "e.example"} {
		args = append(args, "https://"+o)
	}
	mustEnv(t, "", args...)

	got := mustEnv(t, "", "--store", target, "show", "--field", "ALLOWED_ORIGINS", "--size", "2", "--page", "99")
	meta, _ := got["meta"].(map[string]any)
	// 5 origins plus the default "*" make 6 entries = 3 pages of 2.
	if meta["page"] != float64(3) || meta["pages"] != float64(3) {
		t.Fatalf("page clamp: %#v", meta)
	}

	got = mustEnv(t, "", "--store", target, "show", "--field", "ALLOWED_ORIGINS", "--filter", "no-such-origin")
	meta, _ = got["meta"].(map[string]any)
	if meta["empty"] != "filtered" {
		t.Fatalf("empty-filtered: %#v", meta)
	}
}

func TestCLIResetRequiresConfirmation(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	mustEnv(t, "", "--store", target, "set", "PORT", "9000")

	if _, _, err := runCLI(t, "", []string{"--store", target, "reset"}); err == nil {
		t.Fatalf("reset without --yes must fail")
	}
	got := mustEnv(t, "", "--store", target, "get", "PORT")
	if v := data(t, got)["value"]; v != float64(9000) {
		t.Fatalf("refused reset must not touch the document: %#v", v)
	}

	mustEnv(t, "", "--store", target, "reset", "--yes")
	got = mustEnv(t, "", "--store", target, "get", "PORT")
	if v := data(t, got)["value"]; v != float64(8317) {
		t.Fatalf("PORT after reset: %#v", v)
	}
}

func TestCLIDocsTopics(t *testing.T) {
	stdout, _, err := runCLI(t, "", []string{"docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout)
	}
	topics, _ := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected embedded topics; got %#v", env)
	}

	raw, _, err := runCLI(t, "", []string{"docs", "masking", "--raw"})
	if err != nil {
		t.Fatalf("docs masking: %v", err)
	}
	if !strings.Contains(string(raw), "***REDACTED***") {
		t.Fatalf("masking doc should mention the placeholder:\n%s", raw)
	}
}

func TestCLIUnknownFieldIsPreservedAndReadable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "proxyconf.json")

	// Seed a document with an unknown key through the normal save path.
	mustEnv(t, "", "--store", target, "set", "HOST", "10.0.0.1")

	// Hand-edit the file the way an older version might have written it.
	// The CLI must carry the key through its own edits.
	raw := `{"HOST":"10.0.0.1","FUTURE_FLAG":{"nested":true}}`
	if err := writeTestFile(target, raw); err != nil {
		t.Fatalf("seed: %v", err)
	}
	mustEnv(t, "", "--store", target, "set", "PORT", "9000")

	got := mustEnv(t, "", "--store", target, "get", "FUTURE_FLAG")
	v, _ := data(t, got)["value"].(map[string]any)
	if v["nested"] != true {
		t.Fatalf("unknown key lost: %#v", got)
	}
}
