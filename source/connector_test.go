package source

import (
	"testing"
	"time"

	"github.com/inkdex/inkdex/core"
	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	updated := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)
	note := &core.NoteRecord{
		SourceID:  "n1",
		Labels:    []string{"Diario", "OCR"},
		UpdatedAt: updated,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"label match", Filter{Label: "diario"}, true},
		{"label miss", Filter{Label: "work"}, false},
		{"date match ignores time of day", Filter{Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}, true},
		{"date miss", Filter{Date: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)}, false},
		{"label and date", Filter{Label: "ocr", Date: time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)}, true},
		{"label match date miss", Filter{Label: "ocr", Date: time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(note))
		})
	}
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Label: "x"}.IsZero())
	assert.False(t, Filter{Date: time.Now()}.IsZero())
}
