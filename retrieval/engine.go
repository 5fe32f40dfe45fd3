package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/storage"
)

// Engine provides semantic search over the note index.
type Engine struct {
	vectors  storage.VectorRepository
	embedder ai.Embedder
	minScore float32
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithMinScore sets a minimum similarity score for a match. By default
// no floor is applied: the nearest maxHits entries are returned however
// weak. Handwritten notes are short, so similarity concentrates in a
// narrow band; callers that surface results to a user typically want a
// floor to cut noise.
func WithMinScore(score float32) Option {
	return func(e *Engine) error {
		e.minScore = score
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(vectors storage.VectorRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		vectors:  vectors,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Retrieve searches for notes similar to the query.
// Returns up to maxHits results ordered by similarity, ties broken by
// most recently updated.
func (e *Engine) Retrieve(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	results, err := e.vectors.FindSimilar(ctx, embedding, e.minScore, maxHits)
	if err != nil {
		e.logger.Error("error querying for similar notes", "err", err)
		return nil, err
	}

	e.logger.Debug("retrieval complete", "query", query, "hits", len(results))
	return results, nil
}
