// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attachments downloads card attachment bytes ahead of archive
// building. Downloads go through a local SQLite cache so that re-running
// a migration after an upstream fix does not re-fetch every file.
package attachments

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheFile = "attachments.db"

// Cache is a content cache for downloaded attachment bytes, keyed by the
// board API's attachment ID.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database in dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, cacheFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS attachments (
		id TEXT PRIMARY KEY,
		name TEXT,
		data BLOB NOT NULL,
		fetched_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached bytes for an attachment ID, and whether they
// were present.
func (c *Cache) Get(ctx context.Context, id string) ([]byte, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM attachments WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", id, err)
	}
	return data, true, nil
}

// Put stores the bytes for an attachment ID, replacing any previous
// entry.
func (c *Cache) Put(ctx context.Context, id, name string, data []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO attachments (id, name, data, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, data=excluded.data, fetched_at=excluded.fetched_at`,
		id, name, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", id, err)
	}
	return nil
}
