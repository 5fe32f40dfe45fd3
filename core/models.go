package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// HashContent computes the content-addressed identifier for a piece of text.
// It is a BLAKE2b-256 digest in hex, so identical content always produces the
// same identifier and distinct content practically never collides.
func HashContent(text string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// NoteRecord is an immutable snapshot of a note pulled from the source
// connector for one pipeline pass.
type NoteRecord struct {
	SourceID    string
	Title       string
	Labels      []string
	UpdatedAt   time.Time
	Attachments []AttachmentRecord // stable order, processed by index
}

// AttachmentRecord describes one attachment of a note. Raw bytes are
// transient: the pipeline holds them only between fetch and structuring and
// never persists them.
type AttachmentRecord struct {
	ID        string // unique across the source (note id qualified)
	MediaKind string // mime type, e.g. "image/png"
	SourceURL string // resolved download link, may be empty
	MediaID   string // server-side media id for constructed URLs, may be empty
	Data      []byte // inline payload, may be nil
	Strategy  string // fetch strategy that produced the bytes, set by the fetcher
}

// Stage is a step in the per-attachment processing state machine.
// Stages only move forward; StageFailed is terminal for the current pass
// and is revisited on the next one.
type Stage int

const (
	StageDiscovered Stage = iota + 1
	StageDownloaded
	StageTranscribed
	StageStructured
	StageIndexed
	StageFailed
)

var stageNames = map[Stage]string{
	StageDiscovered:  "discovered",
	StageDownloaded:  "downloaded",
	StageTranscribed: "transcribed",
	StageStructured:  "structured",
	StageIndexed:     "indexed",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further work remains for the current pass.
func (s Stage) Terminal() bool {
	return s == StageIndexed || s == StageFailed
}

// ProcessingState is the durable per-attachment ledger record. Resume is the
// last completed stage and is what the next pass picks up from when Stage is
// StageFailed. Transcript and NotePayload carry the outputs of completed
// stages so a restart never repeats a paid external call.
type ProcessingState struct {
	AttachmentID string
	Stage        Stage
	Resume       Stage
	Attempts     int
	LastError    string
	ContentHash  string
	Transcript   string
	NotePayload  []byte
	UpdatedAt    time.Time
}

// EffectiveStage returns the stage processing should continue from.
func (s *ProcessingState) EffectiveStage() Stage {
	if s.Stage == StageFailed {
		return s.Resume
	}
	return s.Stage
}

// TaskStatus is the completion state of a task on a handwritten note.
type TaskStatus string

const (
	TaskDone TaskStatus = "done"
	TaskTodo TaskStatus = "todo"
)

// Task is a single task item extracted from a note.
type Task struct {
	Text   string     `json:"task"`
	Status TaskStatus `json:"status"`
}

// StructuredNote is the structured form of a transcribed handwritten note,
// following the schema produced by the structuring collaborator.
type StructuredNote struct {
	Title     string   `json:"title"`
	Date      string   `json:"data"`
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	Tasks     []Task   `json:"tasks"`
	Notes     []string `json:"notes"`
	Reminders []string `json:"reminders"`
}

// CanonicalText serializes the note in a fixed field order. The result is
// what gets hashed and embedded, so the order must never change.
func (n *StructuredNote) CanonicalText() string {
	var b strings.Builder
	b.WriteString("title: ")
	b.WriteString(n.Title)
	b.WriteString("\nsummary: ")
	b.WriteString(n.Summary)
	b.WriteString("\nkeywords: ")
	b.WriteString(strings.Join(n.Keywords, ", "))
	for _, t := range n.Tasks {
		b.WriteString("\ntask[")
		b.WriteString(string(t.Status))
		b.WriteString("]: ")
		b.WriteString(t.Text)
	}
	for _, note := range n.Notes {
		b.WriteString("\nnote: ")
		b.WriteString(note)
	}
	for _, r := range n.Reminders {
		b.WriteString("\nreminder: ")
		b.WriteString(r)
	}
	return b.String()
}

// ContentHash returns the dedup and vector-store key for the note.
func (n *StructuredNote) ContentHash() string {
	return HashContent(n.CanonicalText())
}

// SourceID derives a human-legible identifier from title and date.
// It is convenient for citations and filenames but not collision-resistant;
// ContentHash is the authoritative key.
func (n *StructuredNote) SourceID() string {
	slug := slugify(n.Title)
	date := slugify(n.Date)
	switch {
	case slug == "" && date == "":
		return "note"
	case slug == "":
		return "note-" + date
	case date == "":
		return slug
	}
	return slug + "-" + date
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// RawTextNote builds the fallback StructuredNote used when the structuring
// collaborator returns syntactically invalid output. The transcription is
// kept verbatim as a note entry.
func RawTextNote(title, text string) *StructuredNote {
	if title == "" {
		title = firstLine(text)
	}
	return &StructuredNote{
		Title: title,
		Notes: []string{text},
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	const max = 60
	if len(line) > max {
		line = line[:max]
	}
	return strings.TrimSpace(line)
}

// TranscriptKind discriminates the two shapes OCR output can take.
type TranscriptKind int

const (
	// TranscriptRawText is free-form transcribed text.
	TranscriptRawText TranscriptKind = iota + 1
	// TranscriptStructured is output that already parsed into a StructuredNote.
	TranscriptStructured
)

// Transcript is the tagged result of the OCR collaborator. The ambiguity
// between free text and JSON-looking text is resolved exactly once, at the
// AI boundary; downstream consumers switch on Kind and never re-sniff.
type Transcript struct {
	Kind TranscriptKind
	Raw  string          // set when Kind == TranscriptRawText
	Note *StructuredNote // set when Kind == TranscriptStructured
}

// NoteMeta is the metadata stored alongside a vector in the index.
type NoteMeta struct {
	Title        string
	Date         string
	Summary      string
	Keywords     string
	SourceID     string
	AttachmentID string
	TaskTotal    int
	TaskDone     int
	TaskTodo     int
	UpdatedAt    time.Time
}

// IndexEntry is one record in the vector collection, keyed by content hash.
// Re-submitting identical content upserts the same entry and never creates
// a duplicate.
type IndexEntry struct {
	VectorID string
	Vector   []float32
	Meta     NoteMeta
	Document string // canonical text, kept for context assembly
}

// SearchResult pairs an index entry with its similarity to a query.
type SearchResult struct {
	Entry *IndexEntry
	Score float32
}
