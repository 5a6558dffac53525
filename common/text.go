package common

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawText draws s onto dst with its top-left corner at pt.
//
// Parameters:
//   - dst: the image to draw onto
//   - face: the font face to render with
//   - pt: the top-left corner of the text box
//   - s: the text
//   - col: the text color
func DrawText(dst draw.Image, face font.Face, pt image.Point, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// TextSize returns the width of s and the line height of face, in pixels.
func TextSize(face font.Face, s string) image.Point {
	return image.Pt(font.MeasureString(face, s).Ceil(), LineHeight(face))
}

// LineHeight returns the distance between two consecutive baselines of face, in pixels.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	if h := m.Height.Ceil(); h > 0 {
		return h
	}
	return (m.Ascent + m.Descent).Ceil()
}
