package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-circles/engine/handoff"
	"github.com/Carmen-Shannon/oxy-circles/engine/scene"
	"github.com/Carmen-Shannon/oxy-circles/engine/surface"
	"github.com/Carmen-Shannon/oxy-circles/engine/viewport"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithScene sets the animated scene. Required.
//
// Parameters:
//   - s: the Scene to update and draw each tick
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithHandoff sets the handoff the presentation surface is taken from. Required.
//
// Parameters:
//   - h: the oneshot handoff the setup thread publishes the surface on
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHandoff(h *handoff.Handoff[surface.Surface]) EngineBuilderOption {
	return func(e *engine) {
		e.handoff = h
	}
}

// WithDispatcher sets how the overlay reaches the UI thread.
// Without one the overlay is composited on the render goroutine.
//
// Parameters:
//   - c: the UI thread caller, usually a *uithread.Dispatcher
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDispatcher(c Caller) EngineBuilderOption {
	return func(e *engine) {
		e.dispatcher = c
	}
}

// WithHandoffTimeout sets how long Run waits for the presentation surface.
// Values <= 0 are treated as the default (DefaultHandoffTimeout).
//
// Parameters:
//   - d: the wait bound
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHandoffTimeout(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d <= 0 {
			d = DefaultHandoffTimeout
		}
		e.handoffTimeout = d
	}
}

// WithOverlayTimeout sets the bound of each overlay composite call.
// Values <= 0 are treated as the default (DefaultOverlayTimeout).
//
// Parameters:
//   - d: the call bound
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOverlayTimeout(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d <= 0 {
			d = DefaultOverlayTimeout
		}
		e.overlayTimeout = d
	}
}

// WithInterpolator sets the scaler used to stretch the scene into the viewport.
// Defaults to draw.ApproxBiLinear. A nil interpolator is ignored.
func WithInterpolator(i xdraw.Interpolator) EngineBuilderOption {
	return func(e *engine) {
		if i != nil {
			e.interpolator = i
		}
	}
}

// WithFace sets the font face of the FPS and UPS lines. A nil face is ignored.
func WithFace(f font.Face) EngineBuilderOption {
	return func(e *engine) {
		if f != nil {
			e.face = f
		}
	}
}

// WithViewport sets the draw area. Defaults to the scene bounds at the window origin.
func WithViewport(v *viewport.Viewport) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = v
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, logs loop and memory stats once per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithClock sets the time source used to measure tick duration for pacing.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
