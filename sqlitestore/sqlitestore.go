// Package sqlitestore provides a SQLite-backed blob repository for blogvault.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/blogvault/blogvault"
)

const dbFile = "blogvault.db"

// SQLiteStore persists keyed blobs in a single key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database inside dataDir.
func Open(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blogvault.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blob %s: %w", key, err)
	}
	return data, nil
}

func (s *SQLiteStore) Save(key string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO blobs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
