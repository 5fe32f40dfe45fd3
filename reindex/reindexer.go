package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/storage"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of entries to embed between progress updates
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts per entry
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		ReportInterval: 50,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every entry in the vector collection.
type Reindexer struct {
	vectors  storage.VectorRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(vectors storage.VectorRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reindexer{
		vectors:  vectors,
		embedder: embedder,
		config:   config,
		progress: progress,
	}, nil
}

// Run re-embeds all index entries with the configured embedder, upserting
// each entry in place. Entries keep their vector id, so ledger records and
// exported notes stay valid.
func (r *Reindexer) Run(ctx context.Context) error {
	entries, err := r.vectors.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index entries: %w", err)
	}

	total := len(entries)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entries found in index (0 entries)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d entries (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for i, entry := range entries {
		entry := entry
		err := RetryWithBackoff(ctx, func() error {
			vector, embedErr := r.embedder.EmbedText(ctx, entry.Document)
			if embedErr != nil {
				return embedErr
			}
			entry.Vector = vector
			return r.vectors.Upsert(ctx, entry)
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to reindex %s: %w", entry.VectorID, err)
		}

		tracker.Update(i + 1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d entries in %v (%.1f entries/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
