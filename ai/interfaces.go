package ai

import (
	"context"

	"github.com/inkdex/inkdex/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Transcriber extracts text from a handwritten-note image.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe reads the image and returns its textual content. When
	// the vision model already emits a well-formed structured note, the
	// transcript carries it directly and the structuring step can be
	// skipped; otherwise the transcript holds raw text.
	// mediaKind is the image MIME type, e.g. "image/png".
	Transcribe(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error)
}

// Structurer turns a raw transcription into a structured note.
// Implementations must be thread-safe for concurrent use.
type Structurer interface {
	// Structure parses raw transcription text into a StructuredNote.
	// Returns ErrInvalidStructuredOutput when the model's output cannot
	// be parsed as a note even after retries; callers fall back to a
	// raw-text note in that case rather than failing the attachment.
	Structure(ctx context.Context, text string) (*core.StructuredNote, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder,
// Transcriber, and Structurer instances, ensuring they share
// configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Transcriber returns the image transcription service.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// Structurer returns the note structuring service.
	// The returned Structurer is safe for concurrent use.
	Structurer() Structurer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
