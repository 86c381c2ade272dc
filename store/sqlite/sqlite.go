// Package sqlite implements the device-local bookmark store used while no
// account is signed in.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	movie_id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	poster_path TEXT NOT NULL DEFAULT '',
	backdrop_path TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_created_at ON bookmarks(created_at);
`

// Store is the local bookmark table. It has a single owner: the device.
type Store struct {
	db *sql.DB
}

// New opens the database at path. ":memory:" is supported; the pool is pinned
// to one connection so every query sees the same in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Init creates the bookmarks table if it does not exist. Safe to call more than once.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create bookmarks table: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
