package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

func TestDiff(t *testing.T) {
	prev := snapshot()
	cur := snapshot()
	cur.Draft.Title = "Staff Engineer"
	cur.SavedAt = time.Date(2026, 10, 1, 9, 30, 0, 0, time.Local)

	out := Diff(prev, cur)
	assert.Contains(t, out, "--- previous\n")
	assert.Contains(t, out, "+++ current (2026-10-01 09:30:00)\n")
	assert.Contains(t, out, "-# Backend Engineer")
	assert.Contains(t, out, "+# Staff Engineer")
	assert.NotContains(t, out, "-| Job type")
}

func TestDiff_StepChange(t *testing.T) {
	prev := snapshot()
	cur := snapshot()
	prev.Step = wizard.StepDetails

	out := Diff(prev, cur)
	assert.Contains(t, out, "-Step: details")
	assert.Contains(t, out, "+Step: review")
}

func TestDiff_Identical(t *testing.T) {
	assert.Empty(t, Diff(snapshot(), snapshot()))
}
