package openai

import (
	"errors"
	"testing"

	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"title":"A"}`, `{"title":"A"}`},
		{"json fence", "```json\n{\"title\":\"A\"}\n```", `{"title":"A"}`},
		{"bare fence", "```\n{\"title\":\"A\"}\n```", `{"title":"A"}`},
		{"surrounding whitespace", "  {\"title\":\"A\"}  ", `{"title":"A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON(`{"title":"A"}`))
	assert.True(t, looksLikeJSON("  {\n}\n"))
	assert.False(t, looksLikeJSON("buy milk\nbuy eggs"))
	assert.False(t, looksLikeJSON(`["a","b"]`))
}

func TestParseNoteJSON(t *testing.T) {
	t.Run("full note", func(t *testing.T) {
		note, err := parseNoteJSON(`{
			"title": "Weekly plan",
			"data": "28/05/25",
			"summary": "Task planning",
			"keywords": ["planning"],
			"tasks": [
				{"task": "Meet client", "status": "done"},
				{"task": "Finish report", "status": "todo"}
			],
			"notes": ["prioritize urgent work"],
			"reminders": ["Call John at 2pm"]
		}`)
		require.NoError(t, err)

		assert.Equal(t, "Weekly plan", note.Title)
		assert.Equal(t, "28/05/25", note.Date)
		assert.Len(t, note.Tasks, 2)
		assert.Equal(t, core.TaskDone, note.Tasks[0].Status)
		assert.Equal(t, []string{"Call John at 2pm"}, note.Reminders)
	})

	t.Run("fenced response", func(t *testing.T) {
		note, err := parseNoteJSON("```json\n{\"title\":\"A\",\"notes\":[\"b\"]}\n```")
		require.NoError(t, err)
		assert.Equal(t, "A", note.Title)
	})

	t.Run("missing fields default to empty", func(t *testing.T) {
		note, err := parseNoteJSON(`{"title":"Sparse"}`)
		require.NoError(t, err)
		assert.Equal(t, "Sparse", note.Title)
		assert.Empty(t, note.Tasks)
		assert.Empty(t, note.Keywords)
	})

	t.Run("unknown task status becomes todo", func(t *testing.T) {
		note, err := parseNoteJSON(`{"tasks":[{"task":"call","status":"pending"}]}`)
		require.NoError(t, err)
		require.Len(t, note.Tasks, 1)
		assert.Equal(t, core.TaskTodo, note.Tasks[0].Status)
	})

	t.Run("repairs missing opening key quote", func(t *testing.T) {
		note, err := parseNoteJSON(`{title": "Repaired", "data": ""}`)
		require.NoError(t, err)
		assert.Equal(t, "Repaired", note.Title)
	})

	t.Run("plain text is rejected", func(t *testing.T) {
		_, err := parseNoteJSON("buy milk\nbuy eggs")
		assert.True(t, errors.Is(err, ai.ErrInvalidStructuredOutput))
	})

	t.Run("json array is rejected", func(t *testing.T) {
		_, err := parseNoteJSON(`["not","an","object"]`)
		assert.True(t, errors.Is(err, ai.ErrInvalidStructuredOutput))
	})
}
