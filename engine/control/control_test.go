package control

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingControls struct {
	colors int
	slow   int
	fast   int
}

func (c *recordingControls) RequestRandomColor() { c.colors++ }
func (c *recordingControls) SetPacingSlow()      { c.slow++ }
func (c *recordingControls) SetPacingFast()      { c.fast++ }

func shownPanel(t *testing.T, c Controls, size image.Point) (Panel, *image.RGBA) {
	t.Helper()
	p := NewPanel(c)
	dst := image.NewRGBA(image.Rectangle{Max: size})
	p.Composite(dst, dst.Rect)
	return p, dst
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestNewPanelPanicsOnNilControls(t *testing.T) {
	assert.Panics(t, func() { NewPanel(nil) })
}

func TestClickChangeColor(t *testing.T) {
	c := &recordingControls{}
	p, _ := shownPanel(t, c, image.Pt(700, 500))

	at := center(layoutFor(image.Pt(700, 500)).changeColor)
	assert.True(t, p.Click(at.X, at.Y))
	assert.Equal(t, 1, c.colors)
	assert.Zero(t, c.slow+c.fast)
}

func TestClickToggleAlternatesPacing(t *testing.T) {
	c := &recordingControls{}
	p, _ := shownPanel(t, c, image.Pt(700, 500))
	at := center(layoutFor(image.Pt(700, 500)).toggle)

	assert.True(t, p.Limited())
	assert.Equal(t, LabelUnlimit, p.ToggleLabel())

	require.True(t, p.Click(at.X, at.Y))
	assert.Equal(t, 1, c.fast)
	assert.False(t, p.Limited())
	assert.Equal(t, LabelLimit, p.ToggleLabel())

	require.True(t, p.Click(at.X, at.Y))
	assert.Equal(t, 1, c.slow)
	assert.True(t, p.Limited())
}

func TestClickOutsideWidgets(t *testing.T) {
	c := &recordingControls{}
	p, _ := shownPanel(t, c, image.Pt(700, 500))
	assert.False(t, p.Click(1, 499))
	assert.Equal(t, recordingControls{}, *c)
}

func TestClickBeforeFirstComposite(t *testing.T) {
	c := &recordingControls{}
	p := NewPanel(c)
	at := center(layoutFor(image.Pt(700, 500)).changeColor)
	assert.False(t, p.Click(at.X, at.Y))
	assert.Zero(t, c.colors)
}

func TestKeyShortcuts(t *testing.T) {
	c := &recordingControls{}
	p := NewPanel(c)

	assert.True(t, p.Key(common.KeyC))
	assert.True(t, p.Key(common.KeyF))
	assert.False(t, p.Key(common.KeyEsc))

	assert.Equal(t, 1, c.colors)
	assert.Equal(t, 1, c.fast)
	assert.False(t, p.Limited())
}

func TestWithLimitedFalseStartsUnlimited(t *testing.T) {
	c := &recordingControls{}
	p := NewPanel(c, WithLimited(false))
	assert.Equal(t, LabelLimit, p.ToggleLabel())
	p.Key(common.KeyF)
	assert.Equal(t, 1, c.slow)
}

func TestWithTitleKeepsDefaultOnEmpty(t *testing.T) {
	p := NewPanel(&recordingControls{}, WithTitle("")).(*panel)
	assert.Equal(t, DefaultTitle, p.title)
	p = NewPanel(&recordingControls{}, WithTitle("hello")).(*panel)
	assert.Equal(t, "hello", p.title)
}

func TestCompositeLeavesBackgroundVisible(t *testing.T) {
	size := image.Pt(300, 200)
	dst := image.NewRGBA(image.Rectangle{Max: size})
	bg := color.RGBA{R: 10, G: 200, B: 30, A: 255}
	for i := 0; i < len(dst.Pix); i += 4 {
		copy(dst.Pix[i:], []byte{bg.R, bg.G, bg.B, bg.A})
	}

	p := NewPanel(&recordingControls{})
	p.Composite(dst, dst.Rect)

	l := layoutFor(size)
	assert.Equal(t, bg, dst.RGBAAt(size.X-2, size.Y/2), "the panel background is transparent")
	assert.NotEqual(t, bg, dst.RGBAAt(l.changeColor.Min.X+4, center(l.changeColor).Y), "buttons are drawn")
}

func TestCompositeOffsetsIntoViewport(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 400, 300))
	vp := image.Rect(50, 40, 350, 240)

	p := NewPanel(&recordingControls{})
	p.Composite(dst, vp)

	l := layoutFor(vp.Size())
	inside := center(l.toggle).Add(vp.Min)
	assert.NotZero(t, dst.RGBAAt(inside.X-40, inside.Y).A)
	assert.Zero(t, dst.RGBAAt(10, 10).A, "nothing is drawn outside the viewport")
}

func TestCompositeRebuildsCacheOnToggle(t *testing.T) {
	p, _ := shownPanel(t, &recordingControls{}, image.Pt(700, 500))
	impl := p.(*panel)
	before := impl.cache

	p.Key(common.KeyF)
	assert.True(t, impl.dirty)

	dst := image.NewRGBA(image.Rect(0, 0, 700, 500))
	p.Composite(dst, dst.Rect)
	assert.False(t, impl.dirty)
	assert.NotSame(t, before, impl.cache)
}

func TestCompositeIgnoresEmptyViewport(t *testing.T) {
	p := NewPanel(&recordingControls{})
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.NotPanics(t, func() { p.Composite(dst, image.Rectangle{}) })
	assert.Nil(t, p.(*panel).cache)
}
