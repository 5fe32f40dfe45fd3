package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/fetch"
	"github.com/inkdex/inkdex/index"
	"github.com/inkdex/inkdex/source"
	"github.com/inkdex/inkdex/storage"
	"github.com/panjf2000/ants/v2"
)

const defaultCallTimeout = 2 * time.Minute

// Exporter receives every note indexed during a pass. Export failures are
// logged and do not fail the attachment.
type Exporter interface {
	Export(note *core.StructuredNote, entry *core.IndexEntry) error
}

// PassStats summarizes one pipeline pass.
type PassStats struct {
	Notes       int // notes returned by the connector
	Attachments int // attachments considered
	Skipped     int // already indexed before this pass
	Resumed     int // previously failed, picked up again
	Indexed     int // reached the indexed stage this pass
	Duplicates  int // indexed entries whose content already existed
	Failed      int // failed this pass, will be resumed next time
}

// Pipeline orchestrates one ingestion pass: listing notes from the source,
// fetching attachment bytes, transcribing, structuring, and indexing, with
// every stage transition recorded in the processing ledger.
type Pipeline struct {
	connector   source.Connector
	fetcher     *fetch.Fetcher
	ledger      storage.LedgerRepository
	indexer     *index.Indexer
	transcriber ai.Transcriber
	structurer  ai.Structurer
	fetchPool   *ants.Pool
	callTimeout time.Duration
	exporter    Exporter
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent attachment fetching.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.fetchPool != nil {
			p.fetchPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.fetchPool = pool
		return nil
	}
}

// WithCallTimeout bounds each transcription and structuring call.
// Default is 2 minutes.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.callTimeout = d
		}
		return nil
	}
}

// WithExporter sets a sink that receives every note indexed during a pass.
func WithExporter(e Exporter) Option {
	return func(p *Pipeline) error {
		p.exporter = e
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	connector source.Connector,
	fetcher *fetch.Fetcher,
	ledger storage.LedgerRepository,
	indexer *index.Indexer,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if connector == nil {
		return nil, ErrConnectorRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if ledger == nil {
		return nil, ErrLedgerRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		connector:   connector,
		fetcher:     fetcher,
		ledger:      ledger,
		indexer:     indexer,
		transcriber: provider.Transcriber(),
		structurer:  provider.Structurer(),
		fetchPool:   pool,
		callTimeout: defaultCallTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// workItem carries one attachment through a pass. The fetch fields are
// written by a pool worker before the orchestration loop reads them.
type workItem struct {
	note     *core.NoteRecord
	att      *core.AttachmentRecord
	state    *core.ProcessingState
	data     []byte
	strategy string
	fetchErr error
}

// RunPass executes one full ingestion pass over the notes matching filter.
// Attachments already indexed are skipped; failed ones resume from their
// last completed stage. A corrupt ledger record aborts the pass so the
// operator can intervene rather than silently re-paying for work.
func (p *Pipeline) RunPass(ctx context.Context, filter source.Filter) (*PassStats, error) {
	stats := &PassStats{}

	notes, err := p.connector.ListNotes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	stats.Notes = len(notes)

	items, err := p.collect(ctx, notes, stats)
	if err != nil {
		return nil, err
	}

	p.prefetch(ctx, items)

	for _, item := range items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		if err := p.processAttachment(ctx, item, stats); err != nil {
			return stats, err
		}
	}

	p.logger.Info("pass complete",
		"notes", stats.Notes,
		"attachments", stats.Attachments,
		"indexed", stats.Indexed,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return stats, nil
}

// collect resolves ledger state for every attachment and returns the work
// items that still need processing, recording newly discovered attachments.
func (p *Pipeline) collect(ctx context.Context, notes []*core.NoteRecord, stats *PassStats) ([]*workItem, error) {
	var items []*workItem
	for _, note := range notes {
		for i := range note.Attachments {
			att := &note.Attachments[i]
			stats.Attachments++

			state, err := p.ledger.Lookup(ctx, att.ID)
			if err != nil {
				return nil, err
			}

			switch {
			case state == nil:
				state = &core.ProcessingState{
					AttachmentID: att.ID,
					Stage:        core.StageDiscovered,
				}
				if err := p.ledger.RecordTransition(ctx, state); err != nil {
					return nil, fmt.Errorf("recording discovery of %s: %w", att.ID, err)
				}
			case state.Stage == core.StageIndexed:
				stats.Skipped++
				continue
			case state.Stage == core.StageFailed:
				stats.Resumed++
			}

			items = append(items, &workItem{note: note, att: att, state: state})
		}
	}
	return items, nil
}

// prefetch downloads attachment bytes concurrently for every item that has
// not been transcribed yet. Each worker writes only its own item; Wait
// publishes the results to the orchestration loop.
func (p *Pipeline) prefetch(ctx context.Context, items []*workItem) {
	var wg sync.WaitGroup
	for _, item := range items {
		if item.state.EffectiveStage() >= core.StageTranscribed {
			continue
		}

		item := item
		wg.Add(1)
		err := p.fetchPool.Submit(func() {
			defer wg.Done()
			item.data, item.strategy, item.fetchErr = p.fetcher.Fetch(ctx, item.att)
		})
		if err != nil {
			item.fetchErr = err
			wg.Done()
		}
	}
	wg.Wait()
}

// processAttachment walks one attachment forward through the state machine,
// persisting each completed stage. A returned error aborts the pass; model
// and fetch failures are recorded in the ledger and do not.
func (p *Pipeline) processAttachment(ctx context.Context, item *workItem, stats *PassStats) error {
	state := item.state
	state.Attempts++

	stage := state.EffectiveStage()
	var note *core.StructuredNote

	if stage < core.StageDownloaded {
		if item.fetchErr != nil {
			return p.recordFailure(ctx, state, core.StageDiscovered, item.fetchErr, stats)
		}
		item.att.Strategy = item.strategy
		if err := p.advance(ctx, state, core.StageDownloaded); err != nil {
			return err
		}
		stage = core.StageDownloaded
	}

	if stage < core.StageTranscribed {
		// Resuming at downloaded refetches: attachment bytes are never
		// persisted, only stage outputs are.
		if item.fetchErr != nil {
			return p.recordFailure(ctx, state, stage, item.fetchErr, stats)
		}

		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		transcript, err := p.transcriber.Transcribe(callCtx, item.data, item.att.MediaKind)
		cancel()
		if err != nil {
			return p.recordFailure(ctx, state, core.StageDownloaded, err, stats)
		}

		state.Transcript = transcript.Raw
		if transcript.Kind == core.TranscriptStructured {
			note = transcript.Note
			state.Transcript = transcript.Note.CanonicalText()
		}
		if err := p.advance(ctx, state, core.StageTranscribed); err != nil {
			return err
		}
		stage = core.StageTranscribed
	}

	if stage < core.StageStructured {
		if note == nil {
			callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
			parsed, err := p.structurer.Structure(callCtx, state.Transcript)
			cancel()
			switch {
			case errors.Is(err, ai.ErrInvalidStructuredOutput):
				p.logger.Warn("structuring produced invalid output, keeping raw text",
					"attachment", state.AttachmentID)
				note = core.RawTextNote(item.note.Title, state.Transcript)
			case err != nil:
				return p.recordFailure(ctx, state, core.StageTranscribed, err, stats)
			default:
				note = parsed
			}
		}

		payload, err := json.Marshal(note)
		if err != nil {
			return p.recordFailure(ctx, state, core.StageTranscribed, err, stats)
		}
		state.NotePayload = payload
		state.ContentHash = note.ContentHash()
		if err := p.advance(ctx, state, core.StageStructured); err != nil {
			return err
		}
		stage = core.StageStructured
	}

	if stage < core.StageIndexed {
		if note == nil {
			note = &core.StructuredNote{}
			if err := json.Unmarshal(state.NotePayload, note); err != nil {
				return fmt.Errorf("%w: note payload for %s: %w",
					storage.ErrLedgerCorrupt, state.AttachmentID, err)
			}
		}

		entry, created, err := p.indexer.Index(ctx, note, state.AttachmentID, item.note.UpdatedAt)
		if err != nil {
			return p.recordFailure(ctx, state, core.StageStructured, err, stats)
		}
		if !created {
			stats.Duplicates++
		}

		if err := p.advance(ctx, state, core.StageIndexed); err != nil {
			return err
		}
		stats.Indexed++

		if p.exporter != nil {
			if err := p.exporter.Export(note, entry); err != nil {
				p.logger.Warn("export failed", "attachment", state.AttachmentID, "err", err)
			}
		}
	}

	return nil
}

// advance records a completed stage. A rejected transition means the
// ledger disagrees with in-memory state and the pass must stop.
func (p *Pipeline) advance(ctx context.Context, state *core.ProcessingState, to core.Stage) error {
	state.Stage = to
	state.Resume = to
	state.LastError = ""
	if err := p.ledger.RecordTransition(ctx, state); err != nil {
		return fmt.Errorf("recording %s for %s: %w", to, state.AttachmentID, err)
	}
	p.logger.Debug("stage complete", "attachment", state.AttachmentID, "stage", to.String())
	return nil
}

// recordFailure marks the attachment failed for this pass, remembering the
// last completed stage so the next pass resumes there.
func (p *Pipeline) recordFailure(ctx context.Context, state *core.ProcessingState, resume core.Stage, cause error, stats *PassStats) error {
	p.logger.Warn("attachment failed",
		"attachment", state.AttachmentID,
		"resume", resume.String(),
		"err", cause)

	state.Stage = core.StageFailed
	state.Resume = resume
	state.LastError = cause.Error()
	if err := p.ledger.RecordTransition(ctx, state); err != nil {
		return fmt.Errorf("recording failure of %s: %w", state.AttachmentID, err)
	}
	stats.Failed++
	return nil
}

// Release releases the fetch worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.fetchPool != nil {
		p.fetchPool.Release()
	}
}
