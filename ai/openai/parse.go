package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
)

// stripFences removes markdown code fences around a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// looksLikeJSON reports whether a response is plausibly a JSON object.
func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// parseNoteJSON decodes a model response into a StructuredNote. Fences are
// stripped and common JSON damage repaired first. Missing fields default to
// empty; only a response that cannot be decoded at all is an error.
func parseNoteJSON(responseText string) (*core.StructuredNote, error) {
	responseText = stripFences(responseText)
	responseText = repairJSON(responseText)

	var note core.StructuredNote
	if err := json.Unmarshal([]byte(responseText), &note); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidStructuredOutput, err)
	}

	core.NormalizeNote(&note)
	return &note, nil
}
