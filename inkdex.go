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


package inkdex

import (
	"log/slog"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/ai/openai"
	"github.com/inkdex/inkdex/fetch"
	"github.com/inkdex/inkdex/index"
	"github.com/inkdex/inkdex/ingest"
	"github.com/inkdex/inkdex/retrieval"
	"github.com/inkdex/inkdex/source"
	"github.com/inkdex/inkdex/storage"
	"github.com/inkdex/inkdex/storage/badger"
)

// System bundles the storage backend and AI provider behind factory
// methods for pipelines and retrieval engines.
type System struct {
	backend  *badger.Backend
	ledger   storage.LedgerRepository
	vectors  storage.VectorRepository
	provider ai.Provider
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI host and model configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// NewSystem opens the databases at filePath and connects the AI provider.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	ledger, vectors, backend, err := badger.NewRepositories(filePath)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &System{
		backend:  backend,
		ledger:   ledger,
		vectors:  vectors,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *System) LedgerRepository() storage.LedgerRepository {
	return s.ledger
}

func (s *System) VectorRepository() storage.VectorRepository {
	return s.vectors
}

func (s *System) Provider() ai.Provider {
	return s.provider
}

// NewIngestionPipeline wires a pipeline over the system's ledger, index,
// and AI provider. A nil fetcher gets the default strategy chain.
func (s *System) NewIngestionPipeline(connector source.Connector, fetcher *fetch.Fetcher, opts ...ingest.Option) (*ingest.Pipeline, error) {
	if fetcher == nil {
		var err error
		fetcher, err = fetch.NewFetcher()
		if err != nil {
			return nil, err
		}
	}

	indexer, err := index.NewIndexer(s.vectors, s.provider.Embedder())
	if err != nil {
		return nil, err
	}

	return ingest.NewPipeline(connector, fetcher, s.ledger, indexer, s.provider, opts...)
}

func (s *System) NewRetrievalEngine(opts ...retrieval.Option) (*retrieval.Engine, error) {
	return retrieval.NewEngine(s.vectors, s.provider.Embedder(), opts...)
}
