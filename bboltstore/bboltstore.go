// Package bboltstore provides a bbolt-backed blob repository for blogvault.
package bboltstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/blogvault/blogvault"
)

const (
	dbFile      = "blogvault.db"
	bucketBlobs = "blobs"
)

// BBoltStore persists keyed blobs in a single bbolt bucket.
type BBoltStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the bbolt database inside dataDir.
func Open(dataDir string) (*BBoltStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, dbFile), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketBlobs))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blobs bucket: %w", err)
	}

	return &BBoltStore{db: db}, nil
}

func (s *BBoltStore) Load(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketBlobs))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		v := b.Get([]byte(key))
		if v == nil {
			return blogvault.ErrKeyNotFound
		}

		// The slice is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BBoltStore) Save(key string, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketBlobs))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	return nil
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}
