package scene

import (
	"math/rand/v2"
	"time"

	"github.com/Carmen-Shannon/oxy-circles/engine/shape"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithClock replaces the wall clock used to measure elapsed time between updates.
//
// Parameters:
//   - now: function returning the current time
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClock(now func() time.Time) SceneBuilderOption {
	return func(s *scene) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandom sets the random source used for shape placement and colors.
// The scene only touches it while holding its lock.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRandom(r *rand.Rand) SceneBuilderOption {
	return func(s *scene) {
		s.rng = r
	}
}

// WithShapeSize sets the width and height of generated shapes. Defaults to 50x50.
//
// Parameters:
//   - width, height: shape size in pixels
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShapeSize(width, height int) SceneBuilderOption {
	return func(s *scene) {
		s.shapeWidth, s.shapeHeight = width, height
	}
}

// WithMaxSpeed sets the exclusive upper bound of generated shape speeds. Defaults to 0.5 pixels per millisecond.
//
// Parameters:
//   - pixelsPerMillisecond: the maximum speed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaxSpeed(pixelsPerMillisecond float64) SceneBuilderOption {
	return func(s *scene) {
		s.maxSpeed = pixelsPerMillisecond
	}
}

// WithSlowInterval sets the wait between ticks in RateSlow. Defaults to DefaultSlowInterval.
// Non-positive values are ignored.
//
// Parameters:
//   - d: the wait interval
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSlowInterval(d time.Duration) SceneBuilderOption {
	return func(s *scene) {
		if d > 0 {
			s.slowInterval = d
		}
	}
}

// WithRate sets the initial pacing mode. Defaults to RateSlow.
//
// Parameters:
//   - r: the initial pacing mode
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRate(r Rate) SceneBuilderOption {
	return func(s *scene) {
		s.rate = r
	}
}

// WithShapes uses the given shapes instead of generating random ones.
// The shapes should have been built with the scene's bounds.
//
// Parameters:
//   - shapes: the shapes to own
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShapes(shapes ...shape.Shape) SceneBuilderOption {
	return func(s *scene) {
		s.preset = append([]shape.Shape{}, shapes...)
	}
}

// WithUpdateWorkers sets the number of worker goroutines used to update large scenes.
// Defaults to runtime.NumCPU()-1. A value of 1 keeps updates on the calling goroutine.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.updateWorkers = max(n, 1)
	}
}

// WithParallelThreshold sets the shape count at which updates fan out to the worker pool. Defaults to 1024.
//
// Parameters:
//   - n: the minimum shape count for parallel updates
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithParallelThreshold(n int) SceneBuilderOption {
	return func(s *scene) {
		s.parallelThreshold = max(n, 1)
	}
}
