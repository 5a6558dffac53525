// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"image"
	"image/color"
	"math/rand/v2"
)

// Colors shared by the scene, the overlay and the diagnostics text.
var (
	// Background is the clear color of every simulated frame.
	Background = color.RGBA{R: 192, G: 192, B: 192, A: 255}

	// ShapeDefault is the color a shape starts with before any randomization.
	ShapeDefault = color.RGBA{R: 64, G: 64, B: 64, A: 255}

	// Text is the color of the diagnostics lines and widget labels.
	Text = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Letterbox fills the part of the window not covered by the viewport.
	Letterbox = color.RGBA{A: 255}
)

// FrameStagingData holds pixel data for a composited frame pending upload to a presentation surface.
// Pixels are tightly packed, 4 bytes per pixel, in the byte order requested by the surface.
type FrameStagingData struct {
	// Pixels is the byte slice holding the frame. Its length is always Width * Height * 4.
	Pixels []byte
	// Width is the width of the frame in pixels.
	Width uint32
	// Height is the height of the frame in pixels.
	Height uint32
}

// Stage copies img into the staging buffer, growing it when the frame size changed.
// When swapRB is true the red and blue channels are swapped so the result is BGRA.
//
// Parameters:
//   - img: the composited RGBA frame
//   - swapRB: true when the destination expects BGRA byte order
func (f *FrameStagingData) Stage(img *image.RGBA, swapRB bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	size := w * h * 4
	if cap(f.Pixels) < size {
		f.Pixels = make([]byte, size)
	}
	f.Pixels = f.Pixels[:size]
	f.Width, f.Height = uint32(w), uint32(h)

	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := f.Pixels[y*w*4 : (y+1)*w*4]
		copy(dst, src)
		if swapRB {
			SwapRedBlue(dst)
		}
	}
}

// RandomColor returns an opaque color with each channel drawn uniformly from [0, 255].
// Uses the global generator when r is nil.
//
// Parameters:
//   - r: the random source to draw from, may be nil
//
// Returns:
//   - color.RGBA: the random color
func RandomColor(r *rand.Rand) color.RGBA {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	return color.RGBA{
		R: uint8(intN(256)),
		G: uint8(intN(256)),
		B: uint8(intN(256)),
		A: 255,
	}
}
