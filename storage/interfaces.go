package storage

import (
	"context"

	"github.com/inkdex/inkdex/core"
)

// LedgerRepository provides operations for the processing ledger: one
// durable ProcessingState per attachment plus a content-hash index for
// duplicate detection. Implementations must be thread-safe, but callers
// are expected to funnel writes through a single goroutine.
type LedgerRepository interface {
	// Lookup retrieves the processing state for an attachment.
	// Returns (nil, nil) when the attachment has never been recorded.
	// Returns ErrLedgerCorrupt when the stored record cannot be decoded.
	Lookup(ctx context.Context, attachmentID string) (*core.ProcessingState, error)

	// RecordTransition persists a processing state, stamping UpdatedAt.
	// When the state carries a ContentHash, the hash index entry is
	// written in the same transaction.
	RecordTransition(ctx context.Context, state *core.ProcessingState) error

	// IsDuplicate reports whether a content hash is already claimed by a
	// previously indexed attachment.
	IsDuplicate(ctx context.Context, contentHash string) (bool, error)

	// Count returns the number of ledger records.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorRepository provides operations for indexed note entries and
// similarity search over their embedding vectors.
type VectorRepository interface {
	// Upsert writes an index entry keyed by its VectorID, replacing any
	// existing entry with the same key.
	Upsert(ctx context.Context, entry *core.IndexEntry) error

	// Get retrieves an index entry by vector ID.
	// Returns (nil, nil) when no entry exists.
	Get(ctx context.Context, vectorID string) (*core.IndexEntry, error)

	// Exists reports whether a vector ID is present without decoding the
	// full entry.
	Exists(ctx context.Context, vectorID string) (bool, error)

	// All returns every index entry. Intended for maintenance operations
	// such as re-embedding after a model change; the result is unordered.
	All(ctx context.Context) ([]*core.IndexEntry, error)

	// FindSimilar finds index entries similar to the given vector.
	// Returns entries with similarity >= minScore, up to limit results,
	// ordered by score (highest first), ties broken by most recent
	// UpdatedAt.
	FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
