// Package store is the transport boundary: backends fetch and persist the
// raw configuration document. Defaulting and reconciliation happen above,
// in the session; backends move plain mappings and report failures
// verbatim. No backend retries or backs off.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store fetches and persists a JSON-like configuration document.
type Store interface {
	// Load fetches the current document. A missing document is not an
	// error; backends return an empty mapping and let defaulting fill it.
	Load() (map[string]any, error)

	// Save persists the document. On failure the caller's state is
	// untouched and a retry with the same serialization is valid.
	Save(doc map[string]any) error

	// Reset restores the backend's baseline document and returns it; the
	// caller treats the result exactly like a Load result.
	Reset() (map[string]any, error)
}

// EnvStoreTarget overrides the default store target (keeps tests and
// scripts away from the user's real config).
const EnvStoreTarget = "PROXYCONF_STORE"

// DefaultTarget resolves the store target: flag value, then the
// environment override, then proxyconf.json in the user config dir.
func DefaultTarget(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreTarget)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".proxyconf", "proxyconf.json"), nil
}

// Open picks a backend from the target's shape: an http(s) URL gets the
// remote backend, a .yaml/.yml path the YAML file backend, .sqlite/.db the
// snapshot backend, anything else the JSON file backend.
func Open(target string) (Store, error) {
	switch {
	case target == "":
		return nil, fmt.Errorf("empty store target")
	case strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://"):
		return NewRemote(target, ""), nil
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".yaml", ".yml":
		return NewYAMLFile(target), nil
	case ".sqlite", ".db":
		return OpenSnapshots(target)
	default:
		return NewJSONFile(target), nil
	}
}
