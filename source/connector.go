package source

import (
	"context"
	"strings"
	"time"

	"github.com/inkdex/inkdex/core"
)

// Connector lists notes from a note source. Implementations must resolve
// attachments far enough that the fetcher can obtain their bytes: inline
// data, a download URL, or a media ID.
type Connector interface {
	// ListNotes returns the notes matching the filter, with attachments
	// in a stable order. An empty filter matches everything.
	ListNotes(ctx context.Context, filter Filter) ([]*core.NoteRecord, error)
}

// Filter narrows a pass to a subset of the source's notes.
// Zero-valued fields match everything.
type Filter struct {
	// Label selects notes carrying this label, case-insensitively.
	Label string

	// Date selects notes last edited on this calendar day.
	Date time.Time
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Label == "" && f.Date.IsZero()
}

// Matches reports whether a note passes the filter.
func (f Filter) Matches(note *core.NoteRecord) bool {
	if f.Label != "" {
		found := false
		for _, l := range note.Labels {
			if strings.EqualFold(l, f.Label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Date.IsZero() {
		y1, m1, d1 := f.Date.Date()
		y2, m2, d2 := note.UpdatedAt.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	return true
}
