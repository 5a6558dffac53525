// Package viewport tracks where, inside the drawable area granted by the host
// window, the fixed-resolution simulation image is stretched to.
package viewport

import (
	"image"
	"sync"
)

// Viewport is a mutex-guarded rectangle. Writers (resize notifications from the
// UI thread) and readers (the render goroutine) never observe a partial update.
type Viewport struct {
	mu   sync.Mutex
	rect image.Rectangle
}

// New creates a Viewport covering (x, y, width, height).
//
// Parameters:
//   - x, y: top-left corner in window coordinates
//   - width, height: size in pixels
//
// Returns:
//   - *Viewport: the viewport
func New(x, y, width, height int) *Viewport {
	return &Viewport{rect: image.Rect(x, y, x+width, y+height)}
}

// Set replaces the rectangle. Negative sizes are treated as empty.
// Set is shaped as a resize callback, so it can be handed to a window directly.
//
// Parameters:
//   - x, y: top-left corner in window coordinates
//   - width, height: size in pixels
func (v *Viewport) Set(x, y, width, height int) {
	r := image.Rect(x, y, x+max(width, 0), y+max(height, 0))

	v.mu.Lock()
	defer v.mu.Unlock()
	v.rect = r
}

// Rect returns a consistent snapshot of the rectangle.
func (v *Viewport) Rect() image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rect
}

// View runs fn with the rectangle while holding the lock, so no resize can land
// while fn is using it. fn must not call back into the Viewport.
//
// Parameters:
//   - fn: the function to run with the locked rectangle
//
// Returns:
//   - image.Rectangle: the rectangle fn saw
func (v *Viewport) View(fn func(r image.Rectangle)) image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.rect)
	return v.rect
}
