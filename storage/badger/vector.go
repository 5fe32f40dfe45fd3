package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a VectorRepository on a database at the
// given path.
func NewVectorRepository(filePath string) (storage.VectorRepository, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newVectorRepository(backend), nil
}

func newVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{backend: backend}
}

// Close closes the underlying database.
func (r *VectorRepository) Close() error {
	if r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// Upsert writes an index entry keyed by its VectorID.
func (r *VectorRepository) Upsert(ctx context.Context, entry *core.IndexEntry) error {
	if entry.VectorID == "" {
		return fmt.Errorf("%w: empty vector id", storage.ErrInvalidQuery)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(entry.VectorID)
		if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves an index entry by vector ID.
// Returns (nil, nil) when no entry exists.
func (r *VectorRepository) Get(ctx context.Context, vectorID string) (*core.IndexEntry, error) {
	var result *core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(vectorID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalIndexEntry(val)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Exists reports whether a vector ID is present.
func (r *VectorRepository) Exists(ctx context.Context, vectorID string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeVectorKey(vectorID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// All returns every index entry in key order.
func (r *VectorRepository) All(ctx context.Context) ([]*core.IndexEntry, error) {
	var entries []*core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalIndexEntry(val)
				if err != nil {
					return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindSimilar delegates to the backend.
func (r *VectorRepository) FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minScore, limit)
}

// Count returns the number of indexed entries.
func (r *VectorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
