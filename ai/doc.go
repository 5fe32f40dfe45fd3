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


// Package ai provides abstractions for AI services used in inkdex.
//
// This package defines interfaces for the three paid model operations in
// the ingestion pipeline: image transcription, note structuring, and text
// embedding. It follows the dependency inversion principle, allowing the
// core domain and business logic to depend on abstractions rather than
// concrete implementations.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Transcriber: Extracts text from handwritten-note images
//   - Structurer: Turns raw transcriptions into structured notes
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewEmbedder, mock.NewTranscriber, etc.)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public fields and methods (CallCount, func fields, Reset).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	transcript, err := provider.Transcriber().Transcribe(ctx, imageData, "image/png")
//	note, err := provider.Structurer().Structure(ctx, transcript.Raw)
//	vector, err := provider.Embedder().EmbedText(ctx, note.CanonicalText())
package ai
