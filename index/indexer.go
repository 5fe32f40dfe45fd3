// Copyright 2026 The Inkdex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package index writes structured notes into the vector store.
//
// The vector ID is the note's content hash, so identical content from
// different attachments lands on the same entry and the embedding call is
// skipped for anything already indexed.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/storage"
)

const defaultEmbedTimeout = 60 * time.Second

// Indexer embeds structured notes and upserts them into the vector store.
type Indexer struct {
	vectors  storage.VectorRepository
	embedder ai.Embedder
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithEmbedTimeout bounds each embedding call.
// Default is 60 seconds.
func WithEmbedTimeout(d time.Duration) Option {
	return func(ix *Indexer) error {
		if d <= 0 {
			return fmt.Errorf("index: timeout must be positive, got %v", d)
		}
		ix.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer over the given vector store and embedder.
func NewIndexer(vectors storage.VectorRepository, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Indexer{
		vectors:  vectors,
		embedder: embedder,
		timeout:  defaultEmbedTimeout,
		logger:   slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// Index writes a note into the vector store. When an entry with the same
// content hash already exists it is returned untouched and no embedding
// call is made; created reports whether a new entry was written.
func (ix *Indexer) Index(ctx context.Context, note *core.StructuredNote, attachmentID string, updatedAt time.Time) (*core.IndexEntry, bool, error) {
	if err := core.ValidateNote(note); err != nil {
		return nil, false, err
	}

	document := note.CanonicalText()
	vectorID := core.HashContent(document)

	existing, err := ix.vectors.Get(ctx, vectorID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		ix.logger.Debug("content already indexed", "vector_id", vectorID, "attachment", attachmentID)
		return existing, false, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, ix.timeout)
	vector, err := ix.embedder.EmbedText(embedCtx, document)
	cancel()
	if err != nil {
		return nil, false, err
	}
	if len(vector) == 0 {
		return nil, false, ErrEmptyEmbedding
	}

	entry := &core.IndexEntry{
		VectorID: vectorID,
		Vector:   vector,
		Meta:     buildMeta(note, attachmentID, updatedAt),
		Document: document,
	}
	if err := ix.vectors.Upsert(ctx, entry); err != nil {
		return nil, false, err
	}

	ix.logger.Info("indexed note", "vector_id", vectorID, "attachment", attachmentID, "title", note.Title)
	return entry, true, nil
}

// buildMeta derives the searchable metadata stored next to the vector.
func buildMeta(note *core.StructuredNote, attachmentID string, updatedAt time.Time) core.NoteMeta {
	done := 0
	for _, t := range note.Tasks {
		if t.Status == core.TaskDone {
			done++
		}
	}

	return core.NoteMeta{
		Title:        note.Title,
		Date:         note.Date,
		Summary:      note.Summary,
		Keywords:     strings.Join(note.Keywords, ", "),
		SourceID:     note.SourceID(),
		AttachmentID: attachmentID,
		TaskTotal:    len(note.Tasks),
		TaskDone:     done,
		TaskTodo:     len(note.Tasks) - done,
		UpdatedAt:    updatedAt,
	}
}
