package control

import (
	"github.com/Carmen-Shannon/oxy-circles/common"
	"golang.org/x/image/font"
)

// PanelBuilderOption is a functional option for configuring a Panel.
type PanelBuilderOption func(*panel)

// WithTitle sets the title label. An empty title keeps DefaultTitle.
//
// Parameters:
//   - title: the label drawn at the top of the panel
//
// Returns:
//   - PanelBuilderOption: a function that applies the title
func WithTitle(title string) PanelBuilderOption {
	return func(p *panel) {
		p.title = common.Coalesce(title, DefaultTitle)
	}
}

// WithFace sets the font face of every label. A nil face is ignored.
func WithFace(face font.Face) PanelBuilderOption {
	return func(p *panel) {
		if face != nil {
			p.face = face
		}
	}
}

// WithLimited sets the initial pacing state the toggle reflects.
// It must match the pacing the scene was created with.
func WithLimited(limited bool) PanelBuilderOption {
	return func(p *panel) {
		p.limited = limited
	}
}
