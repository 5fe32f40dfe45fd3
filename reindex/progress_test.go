package reindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var out strings.Builder
	tracker := NewProgressTracker(&out, 100, 10)
	tracker.Start()

	tracker.Update(5)
	assert.Empty(t, out.String())

	tracker.Update(10)
	assert.Contains(t, out.String(), "10/100")
	assert.Contains(t, out.String(), "10.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var out strings.Builder
	tracker := NewProgressTracker(&out, 50, 100)
	tracker.Start()

	tracker.Update(20)
	tracker.Finish()

	assert.Contains(t, out.String(), "50/50")
	assert.Contains(t, out.String(), "100.0%")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var out strings.Builder
	tracker := NewProgressTracker(&out, 10, 1)
	tracker.Start()

	tracker.Update(25)
	assert.Contains(t, out.String(), "10/10")
}

func TestProgressTracker_IgnoresUpdatesBeforeStart(t *testing.T) {
	var out strings.Builder
	tracker := NewProgressTracker(&out, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, out.String())
	assert.Zero(t, tracker.Elapsed())
}
