package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"proxyconf/internal/model"
)

// Snapshots keeps an append-only history of the document in a SQLite file:
// every save is a new row, Load reads the newest, Reset re-seeds from the
// oldest snapshot (the original baseline) or the catalog defaults when the
// history is empty.
type Snapshots struct {
	db *sql.DB
}

func OpenSnapshots(path string) (*Snapshots, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows one writer plus readers; busy_timeout avoids "database is
	// locked" flakiness when a serve process and the CLI share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		doc TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Snapshots{db: db}, nil
}

func (s *Snapshots) Close() error { return s.db.Close() }

func (s *Snapshots) Load() (map[string]any, error) {
	var raw string
	err := s.db.QueryRow(`SELECT doc FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Snapshots) Save(doc map[string]any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO snapshots (doc) VALUES (?)`, string(b))
	return err
}

func (s *Snapshots) Reset() (map[string]any, error) {
	var raw string
	err := s.db.QueryRow(`SELECT doc FROM snapshots ORDER BY id ASC LIMIT 1`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		b, merr := json.Marshal(model.New().ToMap())
		if merr != nil {
			return nil, merr
		}
		raw = string(b)
	case err != nil:
		return nil, err
	}
	if _, err := s.db.Exec(`INSERT INTO snapshots (doc) VALUES (?)`, raw); err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// History returns snapshot timestamps, newest first, for `proxyconf history`.
func (s *Snapshots) History() ([]string, error) {
	rows, err := s.db.Query(`SELECT created_at FROM snapshots ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var ts string
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
