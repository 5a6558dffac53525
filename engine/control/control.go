// Package control implements the widget overlay drawn on top of the animation:
// a title, a button that recolors every shape and a toggle between limited and
// unlimited pacing.
//
// A Panel belongs to the UI thread. The render loop reaches it only through a
// dispatched call, so none of its methods lock.
package control

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	// DefaultTitle is the label drawn at the top of the panel.
	DefaultTitle = "Actively rendering graphics and widgets!"

	// LabelChangeColor is the label of the recolor button.
	LabelChangeColor = "Change color"

	// LabelUnlimit is shown by the pacing toggle while pacing is limited.
	LabelUnlimit = "Unlimit FPS"

	// LabelLimit is shown by the pacing toggle while pacing is unlimited.
	LabelLimit = "Limit FPS"
)

const (
	buttonWidth   = 140
	buttonHeight  = 30
	buttonRadius  = 6
	edgeMargin    = 20
	titleMargin   = 10
	colorButtonY  = 40
	buttonOutline = 1.5
)

var (
	buttonFill   = color.RGBA{R: 48, G: 48, B: 48, A: 200}
	buttonBorder = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Controls is the part of the scene the panel drives.
type Controls interface {
	RequestRandomColor()
	SetPacingSlow()
	SetPacingFast()
}

// Panel is the widget overlay.
type Panel interface {
	// Composite draws the panel onto dst inside the viewport rectangle.
	//
	// Parameters:
	//   - dst: the frame being composed
	//   - viewport: where the scene was stretched to within dst
	Composite(dst draw.Image, viewport image.Rectangle)

	// Click handles a primary button press at viewport-local coordinates.
	//
	// Parameters:
	//   - x, y: the press position relative to the viewport origin
	//
	// Returns:
	//   - bool: true if a widget handled the press
	Click(x, y int) bool

	// Key handles a key press.
	//
	// Parameters:
	//   - key: the key code, see common.KeyC and common.KeyF
	//
	// Returns:
	//   - bool: true if the key is a panel shortcut
	Key(key int) bool

	// Limited reports whether pacing is currently limited.
	Limited() bool

	// ToggleLabel returns the label the pacing toggle currently shows.
	ToggleLabel() string
}

type panel struct {
	controls Controls
	title    string
	face     font.Face
	limited  bool

	size   image.Point
	cache  *image.RGBA
	dirty  bool
	layout panelLayout
}

type panelLayout struct {
	title       image.Point
	changeColor image.Rectangle
	toggle      image.Rectangle
}

var _ Panel = &panel{}

// NewPanel creates a Panel driving controls. Pacing starts limited.
//
// Parameters:
//   - controls: the scene operations the widgets trigger
//   - options: optional PanelBuilderOption values
//
// Returns:
//   - Panel: the new panel
func NewPanel(controls Controls, options ...PanelBuilderOption) Panel {
	if controls == nil {
		panic("control: nil controls")
	}
	p := &panel{
		controls: controls,
		title:    DefaultTitle,
		face:     basicfont.Face7x13,
		limited:  true,
		dirty:    true,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *panel) Composite(dst draw.Image, viewport image.Rectangle) {
	size := viewport.Size()
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	if size != p.size || p.cache == nil {
		p.size = size
		p.layout = layoutFor(size)
		p.dirty = true
	}
	if p.dirty {
		p.cache = p.render()
		p.dirty = false
	}
	draw.Draw(dst, viewport, p.cache, image.Point{}, draw.Over)
}

// layoutFor centers both buttons horizontally: one near the top, one near the bottom.
func layoutFor(size image.Point) panelLayout {
	x := (size.X - buttonWidth) / 2
	toggleY := size.Y - buttonHeight - edgeMargin
	return panelLayout{
		title:       image.Pt(titleMargin, titleMargin),
		changeColor: image.Rect(x, colorButtonY, x+buttonWidth, colorButtonY+buttonHeight),
		toggle:      image.Rect(x, toggleY, x+buttonWidth, toggleY+buttonHeight),
	}
}

func (p *panel) render() *image.RGBA {
	dc := gg.NewContext(p.size.X, p.size.Y)
	drawButton(dc, p.layout.changeColor)
	drawButton(dc, p.layout.toggle)

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		img = image.NewRGBA(image.Rectangle{Max: p.size})
		draw.Draw(img, img.Rect, dc.Image(), image.Point{}, draw.Src)
	}

	common.DrawText(img, p.face, p.layout.title, p.title, common.Text)
	p.drawLabel(img, p.layout.changeColor, LabelChangeColor)
	p.drawLabel(img, p.layout.toggle, p.ToggleLabel())
	return img
}

func drawButton(dc *gg.Context, r image.Rectangle) {
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())

	dc.SetColor(buttonFill)
	dc.DrawRoundedRectangle(x, y, w, h, buttonRadius)
	_ = dc.Fill()

	dc.SetColor(buttonBorder)
	dc.SetLineWidth(buttonOutline)
	dc.DrawRoundedRectangle(x, y, w, h, buttonRadius)
	_ = dc.Stroke()
}

func (p *panel) drawLabel(dst draw.Image, r image.Rectangle, label string) {
	ts := common.TextSize(p.face, label)
	at := image.Pt(r.Min.X+(r.Dx()-ts.X)/2, r.Min.Y+(r.Dy()-ts.Y)/2)
	common.DrawText(dst, p.face, at, label, common.Text)
}

func (p *panel) Click(x, y int) bool {
	if p.cache == nil {
		// Nothing has been shown yet, so there is nothing to hit.
		return false
	}
	pt := image.Pt(x, y)
	switch {
	case pt.In(p.layout.changeColor):
		p.controls.RequestRandomColor()
		return true
	case pt.In(p.layout.toggle):
		p.toggle()
		return true
	}
	return false
}

func (p *panel) Key(key int) bool {
	switch key {
	case common.KeyC:
		p.controls.RequestRandomColor()
	case common.KeyF, common.KeySpace:
		p.toggle()
	default:
		return false
	}
	return true
}

func (p *panel) toggle() {
	if p.limited {
		p.controls.SetPacingFast()
	} else {
		p.controls.SetPacingSlow()
	}
	p.limited = !p.limited
	p.dirty = true
}

func (p *panel) Limited() bool {
	return p.limited
}

func (p *panel) ToggleLabel() string {
	if p.limited {
		return LabelUnlimit
	}
	return LabelLimit
}
