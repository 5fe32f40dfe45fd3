package mock

import (
	"context"

	"github.com/inkdex/inkdex/core"
)

// Structurer is a test double for ai.Structurer.
// It allows custom behavior injection via function fields.
type Structurer struct {
	// StructureFunc is called by Structure if set.
	// If nil, uses default behavior.
	StructureFunc func(ctx context.Context, text string) (*core.StructuredNote, error)

	callCount int
}

// NewStructurer creates a mock structurer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewStructurer() *Structurer {
	return &Structurer{}
}

// Structure wraps the text into a minimal structured note. The default is
// deliberately close to the raw-text fallback shape so hashes stay stable.
func (m *Structurer) Structure(ctx context.Context, text string) (*core.StructuredNote, error) {
	m.callCount++

	if m.StructureFunc != nil {
		return m.StructureFunc(ctx, text)
	}

	return core.RawTextNote("", text), nil
}

// CallCount returns the number of times Structure was called.
func (m *Structurer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *Structurer) Reset() {
	m.callCount = 0
	m.StructureFunc = nil
}
