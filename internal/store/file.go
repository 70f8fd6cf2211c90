package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"proxyconf/internal/model"
)

// JSONFile persists the document as pretty-printed JSON at a fixed path.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile { return &JSONFile{Path: path} }

func (f *JSONFile) Load() (map[string]any, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *JSONFile) Save(doc map[string]any) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileSafely(f.Path, b, 0o600)
}

func (f *JSONFile) Reset() (map[string]any, error) {
	doc := model.New().ToMap()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFileSafely(f.Path, b, 0o600); err != nil {
		return nil, err
	}
	// Round-trip through JSON so the caller sees the same shapes a Load
	// would produce.
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// YAMLFile persists the document as YAML; gateway configs in the wild are
// usually YAML files.
type YAMLFile struct {
	Path string
}

func NewYAMLFile(path string) *YAMLFile { return &YAMLFile{Path: path} }

func (f *YAMLFile) Load() (map[string]any, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (f *YAMLFile) Save(doc map[string]any) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return writeFileSafely(f.Path, b, 0o600)
}

func (f *YAMLFile) Reset() (map[string]any, error) {
	if err := f.Save(model.New().ToMap()); err != nil {
		return nil, err
	}
	return f.Load()
}

// writeFileSafely writes through a unique temp file plus atomic rename, and
// keeps a .bak copy of the previous contents as a recovery safety net.
// Backup errors never block the write itself.
func writeFileSafely(path string, b []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, filepath.Base(path)+".bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, perm)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
