package surface

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
)

// MemorySurface is an in-memory Surface with a front and a back buffer that are
// swapped on Present. It backs headless hosts and tests, and can inject the
// system events a real swapchain produces.
type MemorySurface struct {
	mu sync.Mutex

	buffers [2]*image.RGBA
	back    int
	size    image.Point

	beginErr    error
	loseFrames  int
	lost        bool
	inFrame     bool
	presented   int
	lostFrames  int
	beginFaults int
}

var _ Surface = &MemorySurface{}

// NewMemorySurface creates a MemorySurface of width x height.
//
// Parameters:
//   - width, height: buffer size in pixels
//
// Returns:
//   - *MemorySurface: the surface
func NewMemorySurface(width, height int) *MemorySurface {
	s := &MemorySurface{size: image.Pt(max(width, 0), max(height, 0))}
	s.buffers[0] = image.NewRGBA(image.Rectangle{Max: s.size})
	s.buffers[1] = image.NewRGBA(image.Rectangle{Max: s.size})
	return s
}

func (s *MemorySurface) Begin() (draw.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beginErr != nil {
		err := s.beginErr
		s.beginErr = nil
		s.beginFaults++
		return nil, fmt.Errorf("%w: %w", ErrDrawState, err)
	}

	if s.buffers[s.back].Rect.Max != s.size {
		s.buffers[s.back] = image.NewRGBA(image.Rectangle{Max: s.size})
	}
	s.lost = s.loseFrames > 0
	if s.lost {
		s.loseFrames--
	}
	s.inFrame = true
	return s.buffers[s.back], nil
}

func (s *MemorySurface) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFrame {
		return fmt.Errorf("%w: End without Begin", ErrDrawState)
	}
	s.inFrame = false
	if s.lost {
		s.lostFrames++
	}
	return nil
}

func (s *MemorySurface) ContentsLost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

func (s *MemorySurface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFrame {
		return fmt.Errorf("%w: Present before End", ErrDrawState)
	}
	s.back = 1 - s.back
	s.presented++
	return nil
}

func (s *MemorySurface) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *MemorySurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = image.Pt(max(width, 0), max(height, 0))
}

// Front returns a copy of the most recently presented frame.
func (s *MemorySurface) Front() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	front := s.buffers[1-s.back]
	out := image.NewRGBA(front.Rect)
	copy(out.Pix, front.Pix)
	return out
}

// FailNextBegin makes the next Begin fail with an error wrapping ErrDrawState and err.
//
// Parameters:
//   - err: the underlying platform error to report
func (s *MemorySurface) FailNextBegin(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginErr = err
}

// LoseContents marks the next n frames as invalidated so they are not presented.
//
// Parameters:
//   - n: the number of frames to lose
func (s *MemorySurface) LoseContents(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loseFrames += n
}

// Presented returns the number of frames presented so far.
func (s *MemorySurface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// LostFrames returns the number of ended frames that were invalidated.
func (s *MemorySurface) LostFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lostFrames
}

// BeginFaults returns the number of Begin calls that failed.
func (s *MemorySurface) BeginFaults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginFaults
}
