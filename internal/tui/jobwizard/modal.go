package jobwizard

import (
	"charm.land/lipgloss/v2"
)

// renderCancelModal asks what to do with a draft that has unsaved changes.
func renderCancelModal() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorYellow).
		MarginBottom(1).
		Render("⚠ Leave the job wizard?")

	message := lipgloss.NewStyle().
		Foreground(colorText).
		Width(46).
		Render("This draft has unsaved changes. Keep it to continue later, or discard it.")

	actions := renderHintBar("c", "continue later", "d", "discard", "esc", "keep editing")

	content := lipgloss.JoinVertical(lipgloss.Left, title, message, "", actions)

	return lipgloss.NewStyle().
		Width(54).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorYellow).
		Background(colorBase).
		Render(content)
}
