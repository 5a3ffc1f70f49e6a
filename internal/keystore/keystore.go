// Package keystore persists wrapped TR-31 key blocks in a bbolt database.
// Only key blocks are stored; clear key material never reaches disk.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/andrei-cloud/go_tr31/pkg/tr31"
)

var bucketKeyBlocks = []byte("key_blocks_by_id")

var (
	ErrNotFound     = errors.New("key block not found")
	ErrInvalidEntry = errors.New("invalid key block entry")
)

// Entry is a stored key block with its metadata.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	KeyBlock  string    `json:"key_block"`
	KeyUsage  string    `json:"key_usage"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a bbolt backed key block store.
type Store struct {
	path string
	db   *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("keystore path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketKeyBlocks); err != nil {
			return fmt.Errorf("create bucket %s: %w", string(bucketKeyBlocks), err)
		}

		return nil
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{path: path, db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Put stores keyBlock under a new time ordered ID. The header is parsed and
// the declared length checked; the block is not authenticated.
func (s *Store) Put(label, keyBlock string) (Entry, error) {
	h, err := tr31.ParseHeader(keyBlock)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if h.KBLength() != len(keyBlock) {
		return Entry{}, fmt.Errorf("%w: header declares %d characters, got %d",
			ErrInvalidEntry, h.KBLength(), len(keyBlock))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("generate id: %w", err)
	}
	e := Entry{
		ID:        id,
		Label:     label,
		KeyBlock:  keyBlock,
		KeyUsage:  string(h.KeyUsage()),
		Algorithm: string(h.Algorithm()),
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("encode entry: %w", err)
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKeyBlocks).Put([]byte(id.String()), raw)
	}); err != nil {
		return Entry{}, err
	}

	return e, nil
}

// Get returns the entry stored under id.
func (s *Store) Get(id uuid.UUID) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketKeyBlocks).Get([]byte(id.String()))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return Entry{}, err
	}

	return e, nil
}

// List returns all entries in creation order.
func (s *Store) List() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKeyBlocks).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode entry %s: %w", string(k), err)
			}
			out = append(out, e)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the entry stored under id.
func (s *Store) Delete(id uuid.UUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKeyBlocks)
		key := []byte(id.String())
		if b.Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return b.Delete(key)
	})
}
