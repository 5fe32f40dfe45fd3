// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Transcriber,
// ai.Structurer, and ai.Provider for use in unit tests. The mocks allow tests
// to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewProvider()
//	transcript, err := provider.Transcriber().Transcribe(ctx, imageData, "image/png")
//
//	// Custom behavior injection
//	embedder := mock.NewEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - Embedder: Returns deterministic vectors based on text hash
//   - Transcriber: Returns a raw-text transcript derived from the image bytes
//   - Structurer: Wraps text into a minimal structured note
//   - Provider: Aggregates the three mocks
package mock
