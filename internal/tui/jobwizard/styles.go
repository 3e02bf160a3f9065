package jobwizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette (Catppuccin Mocha)
var (
	colorPrimary   = lipgloss.Color("#cba6f7") // Mauve
	colorSecondary = lipgloss.Color("#b4befe") // Lavender
	colorText      = lipgloss.Color("#cdd6f4")
	colorBase      = lipgloss.Color("#1e1e2e")
	colorSubtext0  = lipgloss.Color("#a6adc8")
	colorSubtext1  = lipgloss.Color("#bac2de")
	colorSurface0  = lipgloss.Color("#313244")
	colorSurface2  = lipgloss.Color("#585b70")
	colorOverlay0  = lipgloss.Color("#6c7086")
	colorGreen     = lipgloss.Color("#a6e3a1")
	colorYellow    = lipgloss.Color("#f9e2af")
	colorRed       = lipgloss.Color("#f38ba8")
)

var (
	styleModalContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorSecondary).
				Background(colorBase).
				Padding(1, 2)

	styleModalTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleStepDescription = lipgloss.NewStyle().
				Foreground(colorSubtext0).
				Italic(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Width(18)

	styleLabelFocused = styleLabel.
				Foreground(colorSecondary).
				Bold(true)

	styleValue = lipgloss.NewStyle().
			Foreground(colorText)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorOverlay0)

	styleSelected = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorSecondary)

	styleProblem = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleHintKey = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(colorSurface2)

	styleButton = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)

	styleButtonDisabled = styleButton.
				Foreground(colorOverlay0).
				Background(lipgloss.Color("#181825"))

	styleButtonPrimary = styleButton.
				Foreground(colorBase).
				Background(colorSecondary).
				Bold(true)
)

// renderHintBar renders key/description pairs:
// renderHintBar("tab", "next field", "esc", "cancel") gives
// "tab next field • esc cancel".
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, styleHintKey.Render(pairs[i])+" "+styleHintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, " "+styleHintSeparator.Render("•")+" ")
}

type button struct {
	label   string
	enabled bool
	primary bool
}

// renderButtons renders a centered row of buttons.
func renderButtons(width int, buttons ...button) string {
	rendered := make([]string, 0, len(buttons))
	for _, b := range buttons {
		switch {
		case !b.enabled:
			rendered = append(rendered, styleButtonDisabled.Render(b.label))
		case b.primary:
			rendered = append(rendered, styleButtonPrimary.Render(b.label))
		default:
			rendered = append(rendered, styleButton.Render(b.label))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rendered, ""))
}
