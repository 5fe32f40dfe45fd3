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


package mock

import "github.com/inkdex/inkdex/ai"

// Provider is a test double for ai.Provider.
// It aggregates mock embedder, transcriber, and structurer instances.
type Provider struct {
	embedder    *Embedder
	transcriber *Transcriber
	structurer  *Structurer
}

// NewProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetEmbedder()/GetTranscriber()/GetStructurer() to access concrete
// types for test assertions.
func NewProvider() ai.Provider {
	return &Provider{
		embedder:    NewEmbedder(),
		transcriber: NewTranscriber(),
		structurer:  NewStructurer(),
	}
}

// NewProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewProviderWithServices(embedder *Embedder, transcriber *Transcriber, structurer *Structurer) ai.Provider {
	return &Provider{
		embedder:    embedder,
		transcriber: transcriber,
		structurer:  structurer,
	}
}

// Embedder returns the mock embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Transcriber returns the mock transcriber.
func (p *Provider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// Structurer returns the mock structurer.
func (p *Provider) Structurer() ai.Structurer {
	return p.structurer
}

// Close is a no-op for mock provider.
func (p *Provider) Close() error {
	return nil
}

// GetEmbedder returns the underlying mock embedder for test assertions.
func (p *Provider) GetEmbedder() *Embedder {
	return p.embedder
}

// GetTranscriber returns the underlying mock transcriber for test assertions.
func (p *Provider) GetTranscriber() *Transcriber {
	return p.transcriber
}

// GetStructurer returns the underlying mock structurer for test assertions.
func (p *Provider) GetStructurer() *Structurer {
	return p.structurer
}
