package index

import "errors"

var (
	// ErrVectorRepositoryRequired indicates a nil vector repository was provided.
	ErrVectorRepositoryRequired = errors.New("vector repository is required")

	// ErrEmbedderRequired indicates a nil embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyEmbedding indicates the embedder returned no vector.
	ErrEmptyEmbedding = errors.New("embedder returned an empty vector")
)
