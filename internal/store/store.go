// Package store is the local SQLite catalog and analysis history used by
// the CLI when no PostgreSQL database is configured.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS Track (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  artist TEXT NOT NULL,
  popularity INTEGER NOT NULL DEFAULT 0,
  valence REAL,
  energy REAL,
  danceability REAL,
  acousticness REAL,
  tempo REAL,
  liked INTEGER NOT NULL DEFAULT 0,
  imported_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS Analysis (
  id TEXT PRIMARY KEY,
  text_hash TEXT NOT NULL,
  text TEXT NOT NULL,
  primary_emotion TEXT NOT NULL,
  sentiment REAL NOT NULL,
  confidence REAL NOT NULL,
  result TEXT NOT NULL,
  created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS Analysis_created_at ON Analysis (created_at);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}
