package ingest

import "errors"

var (
	// ErrConnectorRequired is returned when a source connector is not provided.
	ErrConnectorRequired = errors.New("source connector required")

	// ErrFetcherRequired is returned when a fetcher is not provided.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrLedgerRequired is returned when a ledger repository is not provided.
	ErrLedgerRequired = errors.New("ledger repository required")

	// ErrIndexerRequired is returned when an indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
