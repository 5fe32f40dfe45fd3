package fetch

import "errors"

var (
	// ErrNotApplicable indicates a strategy cannot serve this attachment
	// (e.g. no URL to download). The fetcher moves on to the next one.
	ErrNotApplicable = errors.New("strategy not applicable")

	// ErrExhausted indicates every strategy was tried and none produced
	// the attachment bytes.
	ErrExhausted = errors.New("all fetch strategies exhausted")

	// ErrEmptyPayload indicates a strategy produced zero bytes.
	ErrEmptyPayload = errors.New("empty payload")
)
