package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawFrame(t *testing.T, s *MemorySurface, c color.RGBA) {
	t.Helper()
	dst, err := s.Begin()
	require.NoError(t, err)
	dst.Set(0, 0, c)
	require.NoError(t, s.End())
}

func TestPresentSwapsBuffers(t *testing.T) {
	s := NewMemorySurface(4, 3)
	assert.Equal(t, image.Pt(4, 3), s.Size())

	red := color.RGBA{R: 255, A: 255}
	drawFrame(t, s, red)
	assert.False(t, s.ContentsLost())
	require.NoError(t, s.Present())
	assert.Equal(t, red, s.Front().RGBAAt(0, 0))

	blue := color.RGBA{B: 255, A: 255}
	drawFrame(t, s, blue)
	assert.Equal(t, red, s.Front().RGBAAt(0, 0), "front is untouched until Present")
	require.NoError(t, s.Present())
	assert.Equal(t, blue, s.Front().RGBAAt(0, 0))
	assert.Equal(t, 2, s.Presented())
}

func TestFailNextBeginWrapsDrawState(t *testing.T) {
	s := NewMemorySurface(2, 2)
	platform := errors.New("device busy")
	s.FailNextBegin(platform)

	_, err := s.Begin()
	assert.ErrorIs(t, err, ErrDrawState)
	assert.ErrorIs(t, err, platform)
	assert.Equal(t, 1, s.BeginFaults())

	_, err = s.Begin()
	assert.NoError(t, err, "the fault only affects one frame")
}

func TestLoseContentsAffectsOnlyMarkedFrames(t *testing.T) {
	s := NewMemorySurface(2, 2)
	s.LoseContents(1)

	drawFrame(t, s, color.RGBA{A: 255})
	assert.True(t, s.ContentsLost())
	drawFrame(t, s, color.RGBA{A: 255})
	assert.False(t, s.ContentsLost())
	assert.Equal(t, 1, s.LostFrames())
}

func TestResizeTakesEffectOnBegin(t *testing.T) {
	s := NewMemorySurface(2, 2)
	s.Resize(5, 6)
	dst, err := s.Begin()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 6), dst.Bounds())
}

func TestLifecycleMisuse(t *testing.T) {
	s := NewMemorySurface(2, 2)
	assert.ErrorIs(t, s.End(), ErrDrawState)

	_, err := s.Begin()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Present(), ErrDrawState)
}
