package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/ai/mock"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/fetch"
	"github.com/inkdex/inkdex/index"
	"github.com/inkdex/inkdex/retrieval"
	"github.com/inkdex/inkdex/source"
	"github.com/inkdex/inkdex/storage"
	"github.com/inkdex/inkdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConnector implements source.Connector for testing
type testConnector struct {
	notes []*core.NoteRecord
	err   error
}

func (c *testConnector) ListNotes(ctx context.Context, filter source.Filter) ([]*core.NoteRecord, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.notes, nil
}

// corruptLedger wraps a real ledger and reports the record for one
// attachment as undecodable.
type corruptLedger struct {
	storage.LedgerRepository
	corruptID string
}

func (l *corruptLedger) Lookup(ctx context.Context, attachmentID string) (*core.ProcessingState, error) {
	if attachmentID == l.corruptID {
		return nil, storage.ErrLedgerCorrupt
	}
	return l.LedgerRepository.Lookup(ctx, attachmentID)
}

func inkNote(sourceID, title string, attachments ...core.AttachmentRecord) *core.NoteRecord {
	return &core.NoteRecord{
		SourceID:    sourceID,
		Title:       title,
		UpdatedAt:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Attachments: attachments,
	}
}

func inlineAttachment(id string, data []byte) core.AttachmentRecord {
	return core.AttachmentRecord{
		ID:        id,
		MediaKind: "image/png",
		Data:      data,
	}
}

type pipelineFixture struct {
	pipeline  *Pipeline
	connector *testConnector
	ledger    storage.LedgerRepository
	vectors   storage.VectorRepository
	provider  *mock.Provider
}

func setupPipeline(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	ledger, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewProvider().(*mock.Provider)

	fetcher, err := fetch.NewFetcher()
	require.NoError(t, err)

	indexer, err := index.NewIndexer(vectors, provider.Embedder())
	require.NoError(t, err)

	connector := &testConnector{}

	pipeline, err := NewPipeline(connector, fetcher, ledger, indexer, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline:  pipeline,
		connector: connector,
		ledger:    ledger,
		vectors:   vectors,
		provider:  provider,
	}
}

func TestNewPipeline(t *testing.T) {
	ledger, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewProvider()
	fetcher, err := fetch.NewFetcher()
	require.NoError(t, err)
	indexer, err := index.NewIndexer(vectors, provider.Embedder())
	require.NoError(t, err)
	connector := &testConnector{}

	t.Run("valid pipeline", func(t *testing.T) {
		p, err := NewPipeline(connector, fetcher, ledger, indexer, provider)
		require.NoError(t, err)
		require.NotNil(t, p)
		defer p.Release()

		assert.NotNil(t, p.fetchPool)
		assert.NotNil(t, p.transcriber)
		assert.NotNil(t, p.structurer)
	})

	t.Run("nil connector", func(t *testing.T) {
		_, err := NewPipeline(nil, fetcher, ledger, indexer, provider)
		assert.Equal(t, ErrConnectorRequired, err)
	})

	t.Run("nil fetcher", func(t *testing.T) {
		_, err := NewPipeline(connector, nil, ledger, indexer, provider)
		assert.Equal(t, ErrFetcherRequired, err)
	})

	t.Run("nil ledger", func(t *testing.T) {
		_, err := NewPipeline(connector, fetcher, nil, indexer, provider)
		assert.Equal(t, ErrLedgerRequired, err)
	})

	t.Run("nil indexer", func(t *testing.T) {
		_, err := NewPipeline(connector, fetcher, ledger, nil, provider)
		assert.Equal(t, ErrIndexerRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(connector, fetcher, ledger, indexer, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestRunPass_IndexesAttachment(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.provider.GetStructurer().StructureFunc = func(ctx context.Context, text string) (*core.StructuredNote, error) {
		return &core.StructuredNote{
			Title:    "Groceries",
			Date:     "15/01/26",
			Summary:  "Shopping list",
			Keywords: []string{"shopping"},
			Tasks:    []core.Task{{Text: "buy milk", Status: core.TaskTodo}},
		}, nil
	}

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Notes)
	assert.Equal(t, 1, stats.Attachments)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 0, stats.Duplicates)

	// Ledger reached the terminal stage with all artifacts persisted
	state, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, core.StageIndexed, state.Stage)
	assert.NotEmpty(t, state.Transcript)
	assert.NotEmpty(t, state.NotePayload)
	assert.NotEmpty(t, state.ContentHash)
	assert.Equal(t, 1, state.Attempts)

	// Vector entry is keyed by the note's content hash
	entry, err := f.vectors.Get(ctx, state.ContentHash)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Groceries", entry.Meta.Title)
	assert.Equal(t, "note1/img.png", entry.Meta.AttachmentID)
}

func TestRunPass_SecondPassIsIdempotent(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Indexed)

	transcribeCalls := f.provider.GetTranscriber().CallCount()
	embedCalls := f.provider.GetEmbedder().CallCount()

	stats, err = f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Indexed)
	assert.Equal(t, transcribeCalls, f.provider.GetTranscriber().CallCount())
	assert.Equal(t, embedCalls, f.provider.GetEmbedder().CallCount())
}

func TestRunPass_ResumesFromLastCompletedStage(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	// First pass: structuring is down
	f.provider.GetStructurer().StructureFunc = func(ctx context.Context, text string) (*core.StructuredNote, error) {
		return nil, errors.New("model host unreachable")
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Indexed)

	state, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	assert.Equal(t, core.StageFailed, state.Stage)
	assert.Equal(t, core.StageTranscribed, state.Resume)
	assert.Contains(t, state.LastError, "unreachable")
	assert.NotEmpty(t, state.Transcript)

	// Second pass: structuring recovered; the persisted transcript is
	// reused instead of calling the vision model again
	f.provider.GetStructurer().StructureFunc = nil

	stats, err = f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Resumed)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 1, f.provider.GetTranscriber().CallCount())

	state, err = f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	assert.Equal(t, core.StageIndexed, state.Stage)
	assert.Equal(t, 2, state.Attempts)
}

func TestRunPass_InvalidStructuredOutputFallsBackToRawText(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.provider.GetStructurer().StructureFunc = func(ctx context.Context, text string) (*core.StructuredNote, error) {
		return nil, ai.ErrInvalidStructuredOutput
	}

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Scribbles", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	// Unparseable structuring output is not a failure, the transcription
	// is indexed verbatim under the note's title
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 0, stats.Failed)

	state, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	require.Equal(t, core.StageIndexed, state.Stage)

	entry, err := f.vectors.Get(ctx, state.ContentHash)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Scribbles", entry.Meta.Title)
	assert.Contains(t, entry.Document, "transcription of")
}

func TestRunPass_DuplicateContentSkipsEmbedding(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// Two attachments with identical bytes transcribe to identical text
	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
		inkNote("note2", "Groceries", inlineAttachment("note2/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Indexed)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, f.provider.GetEmbedder().CallCount())

	// Both ledger records are terminal and share a content hash
	first, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	second, err := f.ledger.Lookup(ctx, "note2/img.png")
	require.NoError(t, err)
	assert.Equal(t, core.StageIndexed, first.Stage)
	assert.Equal(t, core.StageIndexed, second.Stage)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	count, err := f.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunPass_TranscriptionFailureResumesAtDownloaded(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.provider.GetTranscriber().TranscribeFunc = func(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error) {
		return nil, errors.New("vision model timeout")
	}

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	state, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	assert.Equal(t, core.StageFailed, state.Stage)
	assert.Equal(t, core.StageDownloaded, state.Resume)
}

func TestRunPass_StructuredTranscriptSkipsStructuring(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// The vision model already produced a well-formed note
	f.provider.GetTranscriber().TranscribeFunc = func(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error) {
		return &core.Transcript{
			Kind: core.TranscriptStructured,
			Note: &core.StructuredNote{Title: "Groceries", Notes: []string{"buy milk"}},
		}, nil
	}

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 0, f.provider.GetStructurer().CallCount())
}

func TestRunPass_FetchFailureRecorded(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// No inline data, no URL, no media id: the attachment is invalid and
	// every strategy is inapplicable
	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", core.AttachmentRecord{ID: "note1/img.png", MediaKind: "image/png"}),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	state, err := f.ledger.Lookup(ctx, "note1/img.png")
	require.NoError(t, err)
	assert.Equal(t, core.StageFailed, state.Stage)
	assert.Equal(t, core.StageDiscovered, state.Resume)
	assert.NotEmpty(t, state.LastError)
}

func TestRunPass_CorruptLedgerAbortsPass(t *testing.T) {
	ledger, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewProvider()
	fetcher, err := fetch.NewFetcher()
	require.NoError(t, err)
	indexer, err := index.NewIndexer(vectors, provider.Embedder())
	require.NoError(t, err)

	connector := &testConnector{notes: []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("pixels"))),
	}}

	wrapped := &corruptLedger{LedgerRepository: ledger, corruptID: "note1/img.png"}
	pipeline, err := NewPipeline(connector, fetcher, wrapped, indexer, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.RunPass(context.Background(), source.Filter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrLedgerCorrupt))
}

func TestRunPass_ConnectorError(t *testing.T) {
	f := setupPipeline(t)
	f.connector.err = errors.New("takeout directory missing")

	_, err := f.pipeline.RunPass(context.Background(), source.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takeout directory missing")
}

func TestRunPass_ThenRetrieve(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// Toy semantic embedder shared by indexing and querying: milk-related
	// text lands on one axis, everything else on the other
	f.provider.GetEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(strings.ToLower(text), "milk") {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}

	f.provider.GetTranscriber().TranscribeFunc = func(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error) {
		if string(image) == "grocery scan" {
			return &core.Transcript{
				Kind: core.TranscriptStructured,
				Note: &core.StructuredNote{
					Title: "Groceries",
					Date:  "15/01/26",
					Tasks: []core.Task{{Text: "buy milk", Status: core.TaskTodo}},
				},
			}, nil
		}
		return &core.Transcript{
			Kind: core.TranscriptStructured,
			Note: &core.StructuredNote{
				Title: "Meeting",
				Notes: []string{"quarterly planning"},
			},
		}, nil
	}

	f.connector.notes = []*core.NoteRecord{
		inkNote("note1", "Groceries", inlineAttachment("note1/img.png", []byte("grocery scan"))),
		inkNote("note2", "Meeting", inlineAttachment("note2/img.png", []byte("meeting scan"))),
	}

	stats, err := f.pipeline.RunPass(ctx, source.Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Indexed)

	engine, err := retrieval.NewEngine(f.vectors, f.provider.Embedder(), retrieval.WithMinScore(0.6))
	require.NoError(t, err)

	results, err := engine.Retrieve(ctx, "buy milk", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Groceries", results[0].Entry.Meta.Title)
	assert.Contains(t, results[0].Entry.Document, "buy milk")

	block := retrieval.BuildContext(results, 500)
	assert.Contains(t, block.Text, "## Groceries")
	assert.Contains(t, block.Text, "buy milk")
	require.Len(t, block.Citations, 1)
	assert.Equal(t, results[0].Entry.Meta.SourceID, block.Citations[0].SourceID)
	assert.Equal(t, results[0].Score, block.Citations[0].Similarity)
}

func TestPipeline_Release(t *testing.T) {
	f := setupPipeline(t)

	// Multiple releases should not panic
	f.pipeline.Release()
	f.pipeline.Release()
}
