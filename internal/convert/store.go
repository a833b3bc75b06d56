// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TextStore persists conversion results in SQLite, keyed by the SHA-256
// of the source file's content.
type TextStore struct {
	db *sql.DB
}

// OpenTextStore opens or creates the conversion cache database at path,
// creating the schema when needed.
func OpenTextStore(path string) (*TextStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening conversion cache: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS conversions (
		content_hash TEXT PRIMARY KEY,
		markdown     TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &TextStore{db: db}, nil
}

// Close releases the database connection.
func (s *TextStore) Close() error {
	return s.db.Close()
}

// Get returns the cached Markdown for a content hash. The second return
// reports whether an entry was found.
func (s *TextStore) Get(hash string) (string, bool, error) {
	var text string
	err := s.db.QueryRow(
		`SELECT markdown FROM conversions WHERE content_hash = ?`, hash,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading conversion cache: %w", err)
	}
	return text, true, nil
}

// Put stores the Markdown for a content hash, replacing any prior entry.
func (s *TextStore) Put(hash, text string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO conversions (content_hash, markdown, created_at) VALUES (?, ?, ?)`,
		hash, text, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing conversion cache: %w", err)
	}
	return nil
}
