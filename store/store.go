// ABOUTME: Local cache store holding the whole dataset as one blob
// ABOUTME: Badger-backed fixed-key get/set plus a single draft slot
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/harperreed/visitlog/models"
)

const (
	datasetKey = "dataset"
	draftKey   = "draft"
)

// Store is the local cache: the single source of truth for rendering.
// All reads and writes are synchronous.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Clean(path)).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process. Used by
// tests and ephemeral sessions.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the dataset. A missing or unparseable blob falls back to
// the seed dataset: a corrupt local cache must never be fatal.
func (s *Store) Load() (*models.Dataset, error) {
	raw, err := s.get(datasetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if raw == nil {
		return SeedDataset(), nil
	}

	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return SeedDataset(), nil
	}
	return &ds, nil
}

// Save replaces the persisted dataset wholesale.
func (s *Store) Save(ds *models.Dataset) error {
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to serialize dataset: %w", err)
	}
	if err := s.set(datasetKey, raw); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// LoadDraft returns the raw draft snapshot, or nil when the slot is
// empty. The draft package owns the snapshot encoding.
func (s *Store) LoadDraft() ([]byte, error) {
	raw, err := s.get(draftKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	return raw, nil
}

// SaveDraft overwrites the single draft slot.
func (s *Store) SaveDraft(raw []byte) error {
	if err := s.set(draftKey, raw); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return nil
}

// DeleteDraft clears the draft slot. Deleting an empty slot is not an
// error.
func (s *Store) DeleteDraft() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(draftKey))
	})
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Store) set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}
