package review

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

// Diff is a unified diff between the summaries of two saved revisions of a
// draft. It is empty when the summaries match.
func Diff(prev, cur wizard.Snapshot) string {
	old := describe(prev)
	next := describe(cur)
	if old == next {
		return ""
	}
	return udiff.Unified(label("previous", prev), label("current", cur), old, next)
}

// describe is the summary plus the wizard position, which Markdown leaves
// out.
func describe(snap wizard.Snapshot) string {
	return fmt.Sprintf("Step: %s\n\n%s\n", snap.Step, Markdown(snap))
}

func label(name string, snap wizard.Snapshot) string {
	if snap.SavedAt.IsZero() {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, snap.SavedAt.Local().Format("2006-01-02 15:04:05"))
}
