package jobwizard

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/recruitdash/recruitdash/internal/review"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// reviewPane shows the rendered job summary in a scrollable viewport.
type reviewPane struct {
	viewport viewport.Model
	markdown string
	width    int
}

func newReviewPane(snap wizard.Snapshot) *reviewPane {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	p := &reviewPane{viewport: vp, markdown: review.Markdown(snap), width: 60}
	p.viewport.SetContent(review.Terminal(p.markdown, p.width))
	return p
}

func (p *reviewPane) setSize(width, height int) {
	p.viewport.SetWidth(width)
	p.viewport.SetHeight(max(5, height))
	if width != p.width {
		p.width = width
		p.viewport.SetContent(review.Terminal(p.markdown, width))
	}
}

func (p *reviewPane) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *reviewPane) view() string {
	return p.viewport.View()
}
