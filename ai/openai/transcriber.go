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
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Transcriber implements ai.Transcriber using OpenAI-compatible vision APIs.
type Transcriber struct {
	client llms.Model
	logger *slog.Logger
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Transcriber{
		client: client,
		logger: slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe reads a handwritten-note image with a vision model. When the
// model's answer parses as a structured note it is returned directly so the
// structuring call can be skipped; otherwise the raw transcription is kept.
func (t *Transcriber) Transcribe(ctx context.Context, image []byte, mediaKind string) (*core.Transcript, error) {
	if len(image) == 0 {
		return nil, core.ErrInvalidAttachment
	}
	if mediaKind == "" {
		mediaKind = "image/png"
	}

	t.logger.Debug("transcribing image", "bytes", len(image), "media_kind", mediaKind)

	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaKind, base64.StdEncoding.EncodeToString(image))
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(transcriptionPrompt),
				llms.ImageURLPart(dataURL),
			},
		},
	}

	response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		t.logger.Error("failed to transcribe image", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		return nil, ai.ErrEmptyResponse
	}

	responseText := strings.TrimSpace(response.Choices[0].Content)
	if responseText == "" {
		return nil, ai.ErrEmptyResponse
	}

	if looksLikeJSON(stripFences(responseText)) {
		if note, err := parseNoteJSON(responseText); err == nil {
			t.logger.Debug("vision model returned a structured note")
			return &core.Transcript{Kind: core.TranscriptStructured, Raw: responseText, Note: note}, nil
		}
	}

	return &core.Transcript{Kind: core.TranscriptRawText, Raw: responseText}, nil
}
