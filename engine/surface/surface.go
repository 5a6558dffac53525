package surface

import (
	"errors"
	"image"
	"image/draw"
)

// ErrDrawState marks a transient fault of the platform drawing state, such as a
// swapchain image that could not be acquired while the window is being resized
// or moved between monitors. The render loop logs it and abandons the tick.
var ErrDrawState = errors.New("surface: drawing state fault")

// Surface is a double-buffered presentation target. Exactly one goroutine, the
// render loop, drives its frame lifecycle:
//
//	dst, err := s.Begin()
//	// draw into dst
//	err = s.End()
//	if !s.ContentsLost() {
//		err = s.Present()
//	}
type Surface interface {
	// Begin returns the back buffer to draw the next frame into.
	// Its bounds start at the origin and match Size.
	//
	// Returns:
	//   - draw.Image: the back buffer
	//   - error: an error wrapping ErrDrawState on a transient fault
	Begin() (draw.Image, error)

	// End finishes drawing and hands the frame to the platform.
	//
	// Returns:
	//   - error: an error wrapping ErrDrawState on a transient fault
	End() error

	// ContentsLost reports whether the frame ended by the last End was
	// invalidated by a system event and must not be presented.
	ContentsLost() bool

	// Present shows the frame ended by the last End.
	//
	// Returns:
	//   - error: an error wrapping ErrDrawState on a transient fault
	Present() error

	// Size returns the size of the buffers in pixels.
	Size() image.Point

	// Resize changes the buffer size. It takes effect on the next Begin.
	//
	// Parameters:
	//   - width, height: new size in pixels
	Resize(width, height int)
}
