package mock

import (
	"context"
	"fmt"

	"github.com/inkdex/inkdex/core"
)

// Transcriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type Transcriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, uses default deterministic behavior.
	TranscribeFunc func(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error)

	callCount int
}

// NewTranscriber creates a mock transcriber with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewTranscriber() *Transcriber {
	return &Transcriber{}
}

// Transcribe returns a deterministic raw-text transcript derived from the
// image bytes, so tests get stable content hashes without a vision model.
func (m *Transcriber) Transcribe(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, image, mediaKind)
	}

	return &core.Transcript{
		Kind: core.TranscriptRawText,
		Raw:  fmt.Sprintf("transcription of %d bytes (%s)", len(image), mediaKind),
	}, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *Transcriber) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *Transcriber) Reset() {
	m.callCount = 0
	m.TranscribeFunc = nil
}
