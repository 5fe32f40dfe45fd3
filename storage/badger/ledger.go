package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/storage"
)

// LedgerRepository implements storage.LedgerRepository for BadgerDB.
type LedgerRepository struct {
	backend *Backend
}

var _ storage.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a LedgerRepository on an existing database
// at the given path.
func NewLedgerRepository(filePath string) (storage.LedgerRepository, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newLedgerRepository(backend), nil
}

func newLedgerRepository(backend *Backend) *LedgerRepository {
	return &LedgerRepository{backend: backend}
}

// Close closes the underlying database.
func (r *LedgerRepository) Close() error {
	if r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// Lookup retrieves the processing state for an attachment.
// Returns (nil, nil) when the attachment has never been recorded.
func (r *LedgerRepository) Lookup(ctx context.Context, attachmentID string) (*core.ProcessingState, error) {
	var result *core.ProcessingState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeLedgerKey(attachmentID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalProcessingState(val)
			if err != nil {
				// A record that cannot be decoded means the exactly-once
				// guarantee is gone. Surface it, never repair it.
				return fmt.Errorf("%w: attachment %s: %w", storage.ErrLedgerCorrupt, attachmentID, err)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordTransition persists a processing state, stamping UpdatedAt. The
// transition is validated against the stored record so the state machine
// can only move forward.
func (r *LedgerRepository) RecordTransition(ctx context.Context, state *core.ProcessingState) error {
	if state.AttachmentID == "" {
		return core.ErrEmptyAttachmentID
	}

	existing, err := r.Lookup(ctx, state.AttachmentID)
	if err != nil {
		return err
	}
	var from core.Stage
	if existing != nil {
		from = existing.EffectiveStage()
	}
	if err := core.ValidateTransition(from, state.Stage); err != nil {
		return err
	}

	state.UpdatedAt = time.Now().UTC()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLedgerKey(state.AttachmentID)
		if err := tx.Set(key, storage.MarshalProcessingState(state)); err != nil {
			return err
		}

		// Claim the content hash in the same transaction
		if state.ContentHash != "" {
			hashKey := makeHashKey(state.ContentHash)
			if err := tx.Set(hashKey, []byte(state.AttachmentID)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// IsDuplicate reports whether a content hash has been claimed.
func (r *LedgerRepository) IsDuplicate(ctx context.Context, contentHash string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeHashKey(contentHash))
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

// Count returns the number of ledger records.
func (r *LedgerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ledgerRecordPrefix + ":")
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
