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


// Package fetch obtains attachment bytes through an ordered list of
// strategies. Each strategy is tried in turn; the first success wins and
// tags the bytes with its name, so the ledger records how an attachment
// was actually downloaded.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkdex/inkdex/core"
)

const defaultTimeout = 30 * time.Second

// Fetcher resolves attachment bytes via ordered strategy fallback.
type Fetcher struct {
	strategies []Strategy
	client     *http.Client
	timeout    time.Duration
	mediaURL   string
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithTimeout bounds each strategy attempt.
// Default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) error {
		if d <= 0 {
			return fmt.Errorf("fetch: timeout must be positive, got %v", d)
		}
		f.timeout = d
		return nil
	}
}

// WithHTTPClient sets the HTTP client used by downloading strategies.
// Default is http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client == nil {
			client = http.DefaultClient
		}
		f.client = client
		return nil
	}
}

// WithMediaBaseURL sets the service media endpoint used to construct
// download URLs from media IDs. Empty disables the media strategy.
func WithMediaBaseURL(url string) Option {
	return func(f *Fetcher) error {
		f.mediaURL = url
		return nil
	}
}

// WithStrategies replaces the default strategy order entirely.
func WithStrategies(strategies ...Strategy) Option {
	return func(f *Fetcher) error {
		if len(strategies) == 0 {
			return errors.New("fetch: at least one strategy required")
		}
		f.strategies = strategies
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a fetcher with the default strategy order:
// resolved link, inline payload, constructed media URL.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:  http.DefaultClient,
		timeout: defaultTimeout,
		logger:  slog.Default().With("component", "fetcher"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	if f.strategies == nil {
		f.strategies = []Strategy{
			&linkStrategy{client: f.client},
			&payloadStrategy{},
			&mediaStrategy{client: f.client, baseURL: f.mediaURL},
		}
	}

	return f, nil
}

// Fetch tries each strategy in order and returns the first successful
// bytes together with the name of the strategy that produced them.
// Every attempt is bounded by the fetcher's timeout. When no strategy
// succeeds, the returned error wraps ErrExhausted and each failure.
func (f *Fetcher) Fetch(ctx context.Context, att *core.AttachmentRecord) ([]byte, string, error) {
	if err := core.ValidateAttachment(att); err != nil {
		return nil, "", err
	}

	var failures []error
	for _, s := range f.strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		data, err := s.Fetch(attemptCtx, att)
		cancel()

		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		if err != nil {
			f.logger.Debug("fetch strategy failed", "strategy", s.Name(), "attachment", att.ID, "err", err)
			failures = append(failures, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		if len(data) == 0 {
			failures = append(failures, fmt.Errorf("%s: %w", s.Name(), ErrEmptyPayload))
			continue
		}

		f.logger.Debug("fetched attachment", "strategy", s.Name(), "attachment", att.ID, "bytes", len(data))
		return data, s.Name(), nil
	}

	if len(failures) == 0 {
		return nil, "", fmt.Errorf("%w: attachment %s: no applicable strategy", ErrExhausted, att.ID)
	}
	return nil, "", fmt.Errorf("%w: attachment %s: %w", ErrExhausted, att.ID, errors.Join(failures...))
}
