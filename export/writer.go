// Package export writes indexed notes as Obsidian-compatible markdown
// files with YAML front matter.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkdex/inkdex/core"
	"gopkg.in/yaml.v3"
)

// noteDateFormats are the handwritten date shapes the structuring model
// produces, most common first.
var noteDateFormats = []string{
	"02/01/2006",
	"02/01/06",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
}

// Writer saves structured notes as markdown files in a vault directory.
type Writer struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Writer.
type Option func(*Writer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWriter creates a writer that saves notes under dir, creating it if
// needed.
func NewWriter(dir string, opts ...Option) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	w := &Writer{
		dir:    dir,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// frontMatter is the YAML header of an exported note.
type frontMatter struct {
	Title        string      `yaml:"title"`
	Created      string      `yaml:"created"`
	LastModified string      `yaml:"last_modified"`
	SourceID     string      `yaml:"source_id"`
	VectorID     string      `yaml:"vector_id"`
	Summary      string      `yaml:"summary"`
	Keywords     []string    `yaml:"keywords"`
	Tasks        []taskEntry `yaml:"tasks"`
	Notes        []string    `yaml:"notes"`
	Reminders    []string    `yaml:"reminders"`
}

type taskEntry struct {
	Task   string `yaml:"task"`
	Status string `yaml:"status"`
}

// Export writes one note as a markdown file named after its source id.
// Re-exporting the same note overwrites the existing file.
func (w *Writer) Export(note *core.StructuredNote, entry *core.IndexEntry) error {
	content, err := w.render(note, entry)
	if err != nil {
		return err
	}

	name := note.SourceID()
	if name == "note" && entry.VectorID != "" {
		name = "note-" + entry.VectorID[:12]
	}
	path := filepath.Join(w.dir, name+".md")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	w.logger.Debug("note exported", "path", path)
	return nil
}

func (w *Writer) render(note *core.StructuredNote, entry *core.IndexEntry) (string, error) {
	now := w.now().Format("2006-01-02T15:04:05")

	created := now
	if t, ok := parseNoteDate(note.Date); ok {
		created = t.Format("2006-01-02T00:00:00")
	}

	title := note.Title
	if title == "" {
		title = "Note " + created[:10]
	}

	fm := frontMatter{
		Title:        title,
		Created:      created,
		LastModified: now,
		SourceID:     note.SourceID(),
		VectorID:     entry.VectorID,
		Summary:      note.Summary,
		Keywords:     emptyIfNil(note.Keywords),
		Tasks:        make([]taskEntry, 0, len(note.Tasks)),
		Notes:        emptyIfNil(note.Notes),
		Reminders:    emptyIfNil(note.Reminders),
	}
	for _, t := range note.Tasks {
		fm.Tasks = append(fm.Tasks, taskEntry{Task: t.Text, Status: string(t.Status)})
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshaling front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")

	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n")

	if note.Summary != "" {
		b.WriteString("\n## Summary\n")
		b.WriteString(note.Summary)
		b.WriteString("\n")
	}

	if len(note.Tasks) > 0 {
		b.WriteString("\n## Tasks\n\n")
		for _, t := range note.Tasks {
			mark := "📋"
			if t.Status == core.TaskDone {
				mark = "✅"
			}
			fmt.Fprintf(&b, "- %s %s\n", mark, t.Text)
		}
	}

	if len(note.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range note.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	if len(note.Reminders) > 0 {
		b.WriteString("\n## Reminders\n\n")
		for _, r := range note.Reminders {
			fmt.Fprintf(&b, "- 🔔 %s\n", r)
		}
	}

	return b.String(), nil
}

func parseNoteDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range noteDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
