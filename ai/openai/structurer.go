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


package openai

import (
	"context"
	"log/slog"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Structurer implements ai.Structurer using OpenAI-compatible chat APIs.
type Structurer struct {
	client llms.Model
	logger *slog.Logger
}

// newStructurer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newStructurer(config *ai.Config) (*Structurer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.StructuringModel),
	)
	if err != nil {
		return nil, err
	}

	return &Structurer{
		client: client,
		logger: slog.Default().With("component", "openai-structurer"),
	}, nil
}

// NewStructurer creates a new structurer using the provided configuration.
//
// Returns ai.Structurer interface to enforce abstraction.
func NewStructurer(config *ai.Config) (ai.Structurer, error) {
	return newStructurer(config)
}

// Structure parses raw transcription text into a StructuredNote using an LLM.
// Malformed JSON is retried up to 3 times; after that the call returns
// ErrInvalidStructuredOutput so the caller can fall back to a raw-text note.
func (s *Structurer) Structure(ctx context.Context, text string) (*core.StructuredNote, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildStructuringPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart("Text to structure:\n\n" + text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var note *core.StructuredNote
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			return nil, ai.ErrEmptyResponse
		}

		note, lastErr = parseNoteJSON(response.Choices[0].Content)
		if lastErr != nil {
			s.logger.Warn("error parsing structurer response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", lastErr)
			continue
		}
		break
	}

	if lastErr != nil {
		s.logger.Error("failed to parse structurer response after retries", "err", lastErr)
		return nil, lastErr
	}

	return note, nil
}
