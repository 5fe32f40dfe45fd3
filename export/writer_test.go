package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inkdex/inkdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testNote() *core.StructuredNote {
	return &core.StructuredNote{
		Title:    "Groceries",
		Date:     "15/01/26",
		Summary:  "Weekly shopping list",
		Keywords: []string{"shopping", "food"},
		Tasks: []core.Task{
			{Text: "buy milk", Status: core.TaskDone},
			{Text: "buy eggs", Status: core.TaskTodo},
		},
		Notes:     []string{"prefer the market on Thursdays"},
		Reminders: []string{"check the pantry first"},
	}
}

func exportNote(t *testing.T, note *core.StructuredNote) (string, string) {
	t.Helper()

	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)
	w.now = func() time.Time {
		return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	}

	entry := &core.IndexEntry{VectorID: note.ContentHash()}
	require.NoError(t, w.Export(note, entry))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	return entries[0].Name(), string(data)
}

func TestExportWritesFrontMatterAndBody(t *testing.T) {
	note := testNote()
	name, content := exportNote(t, note)

	assert.Equal(t, "groceries-15-01-26.md", name)

	// Front matter parses back and round-trips the note fields
	parts := strings.SplitN(content, "---\n", 3)
	require.Len(t, parts, 3)

	var fm frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, "Groceries", fm.Title)
	assert.Equal(t, "2026-01-15T00:00:00", fm.Created)
	assert.Equal(t, "2026-02-01T12:00:00", fm.LastModified)
	assert.Equal(t, note.SourceID(), fm.SourceID)
	assert.Equal(t, note.ContentHash(), fm.VectorID)
	assert.Equal(t, []string{"shopping", "food"}, fm.Keywords)
	require.Len(t, fm.Tasks, 2)
	assert.Equal(t, "buy milk", fm.Tasks[0].Task)
	assert.Equal(t, "done", fm.Tasks[0].Status)

	// Body sections
	assert.Contains(t, content, "# Groceries")
	assert.Contains(t, content, "## Summary")
	assert.Contains(t, content, "- ✅ buy milk")
	assert.Contains(t, content, "- 📋 buy eggs")
	assert.Contains(t, content, "- prefer the market on Thursdays")
	assert.Contains(t, content, "- 🔔 check the pantry first")
}

func TestExportSparseNote(t *testing.T) {
	note := &core.StructuredNote{Title: "Just a thought", Notes: []string{"it rained today"}}
	_, content := exportNote(t, note)

	assert.Contains(t, content, "# Just a thought")
	assert.Contains(t, content, "- it rained today")
	assert.NotContains(t, content, "## Tasks")
	assert.NotContains(t, content, "## Reminders")
	assert.Contains(t, content, "keywords: []")
}

func TestExportUntitledNoteFallsBackToHash(t *testing.T) {
	note := &core.StructuredNote{Notes: []string{"loose scribble"}}
	name, content := exportNote(t, note)

	hash := note.ContentHash()
	assert.Equal(t, "note-"+hash[:12]+".md", name)
	// Created date stands in for the missing title
	assert.Contains(t, content, "# Note 2026-02-01")
}

func TestExportOverwritesSameNote(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	note := testNote()
	entry := &core.IndexEntry{VectorID: note.ContentHash()}

	require.NoError(t, w.Export(note, entry))
	require.NoError(t, w.Export(note, entry))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
