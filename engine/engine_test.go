package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/Carmen-Shannon/oxy-circles/engine/handoff"
	"github.com/Carmen-Shannon/oxy-circles/engine/scene"
	"github.com/Carmen-Shannon/oxy-circles/engine/surface"
	"github.com/Carmen-Shannon/oxy-circles/engine/uithread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type harness struct {
	t       *testing.T
	engine  Engine
	surface *surface.MemorySurface
	done    chan error
	cancel  context.CancelFunc
}

// startLoop publishes surf, starts Run on its own goroutine and returns once the loop runs.
func startLoop(t *testing.T, surf *surface.MemorySurface, s scene.Scene, options ...EngineBuilderOption) *harness {
	t.Helper()
	h := handoff.New[surface.Surface]()
	require.NoError(t, h.Publish(surf))

	e := NewEngine(append([]EngineBuilderOption{WithScene(s), WithHandoff(h)}, options...)...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	hs := &harness{t: t, engine: e, surface: surf, done: done, cancel: cancel}
	t.Cleanup(func() {
		cancel()
		e.Quit()
	})
	require.Eventually(t, func() bool { return e.State() == StateRunning }, waitFor, time.Millisecond)
	return hs
}

func (h *harness) waitTicks(n uint64) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.engine.Stats().Ticks >= n }, waitFor, time.Millisecond)
}

func (h *harness) stop() {
	h.t.Helper()
	h.engine.Quit()
	select {
	case err := <-h.done:
		require.NoError(h.t, err)
	case <-time.After(waitFor):
		h.t.Fatal("render loop did not stop")
	}
	assert.Equal(h.t, StateStopped, h.engine.State())
}

func assertNearColor(t *testing.T, want, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, float64(want.R), float64(got.R), 2, "red of %v", got)
	assert.InDelta(t, float64(want.G), float64(got.G), 2, "green of %v", got)
	assert.InDelta(t, float64(want.B), float64(got.B), 2, "blue of %v", got)
	assert.Equal(t, want.A, got.A)
}

func fastScene(width, height, count int) scene.Scene {
	return scene.NewScene(width, height, count, scene.WithRate(scene.RateFast))
}

func TestNewEnginePanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { NewEngine(WithHandoff(handoff.New[surface.Surface]())) })
	assert.Panics(t, func() { NewEngine(WithScene(fastScene(100, 100, 0))) })
}

func TestRunFailsWhenNoSurfaceArrives(t *testing.T) {
	e := NewEngine(
		WithScene(fastScene(100, 100, 0)),
		WithHandoff(handoff.New[surface.Surface]()),
		WithHandoffTimeout(20*time.Millisecond),
	)
	assert.Equal(t, StateAwaitingSurface, e.State())

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.ErrorIs(t, err, handoff.ErrNotAvailable)
	assert.Equal(t, StateStopped, e.State())
	assert.Zero(t, e.Stats().Ticks)
}

func TestRunTwiceIsRejected(t *testing.T) {
	e := NewEngine(
		WithScene(fastScene(100, 100, 0)),
		WithHandoff(handoff.New[surface.Surface]()),
		WithHandoffTimeout(time.Millisecond),
	)
	_ = e.Run(context.Background())
	assert.ErrorIs(t, e.Run(context.Background()), ErrAlreadyStarted)
}

func TestQuitWhileAwaitingSurface(t *testing.T) {
	e := NewEngine(
		WithScene(fastScene(100, 100, 0)),
		WithHandoff(handoff.New[surface.Surface]()),
		WithHandoffTimeout(time.Minute),
	)
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	e.Quit()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Quit did not interrupt the surface wait")
	}
}

func TestQuitStopsRunningLoop(t *testing.T) {
	h := startLoop(t, surface.NewMemorySurface(100, 100), fastScene(100, 100, 3))
	h.waitTicks(5)
	h.stop()

	assert.NotPanics(t, h.engine.Quit, "Quit is idempotent")
	stats := h.engine.Stats()
	assert.Equal(t, stats.Ticks, stats.Presents)
	assert.Equal(t, uint64(h.surface.Presented()), stats.Presents)
}

func TestContextCancelStopsLoop(t *testing.T) {
	h := startLoop(t, surface.NewMemorySurface(100, 100), fastScene(100, 100, 0))
	h.waitTicks(2)
	h.cancel()
	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("cancel did not stop the loop")
	}
}

func TestDrawStateFaultDoesNotStopLoop(t *testing.T) {
	surf := surface.NewMemorySurface(100, 100)
	surf.FailNextBegin(errors.New("swapchain out of date"))

	h := startLoop(t, surf, fastScene(100, 100, 0))
	require.Eventually(t, func() bool { return surf.Presented() >= 3 }, waitFor, time.Millisecond)
	h.stop()

	stats := h.engine.Stats()
	assert.Equal(t, uint64(1), stats.DroppedTicks)
	assert.Zero(t, stats.Faults)
	assert.Equal(t, stats.Ticks-1, stats.Presents)
}

func TestLostContentsSkipPresentationOnly(t *testing.T) {
	surf := surface.NewMemorySurface(100, 100)
	surf.LoseContents(2)

	h := startLoop(t, surf, fastScene(100, 100, 0))
	h.waitTicks(6)
	h.stop()

	stats := h.engine.Stats()
	assert.Equal(t, uint64(2), stats.SkippedPresents)
	assert.Equal(t, stats.Ticks-2, stats.Presents)
	assert.Zero(t, stats.DroppedTicks)
}

func TestZeroWaitNeverPauses(t *testing.T) {
	h := startLoop(t, surface.NewMemorySurface(100, 100), fastScene(100, 100, 0))
	h.waitTicks(20)
	h.stop()
	assert.Zero(t, h.engine.Stats().Pauses)
}

func TestSlowPacingPausesEveryTick(t *testing.T) {
	frozen := time.Unix(0, 0)
	s := scene.NewScene(100, 100, 0, scene.WithSlowInterval(time.Millisecond))
	h := startLoop(t, surface.NewMemorySurface(100, 100), s, WithClock(func() time.Time { return frozen }))
	h.waitTicks(3)
	h.stop()

	stats := h.engine.Stats()
	assert.Equal(t, stats.Ticks, stats.Pauses)
}

func TestSwitchingToFastPacingStopsPauses(t *testing.T) {
	frozen := time.Unix(0, 0)
	s := scene.NewScene(100, 100, 0, scene.WithSlowInterval(time.Millisecond))
	h := startLoop(t, surface.NewMemorySurface(100, 100), s, WithClock(func() time.Time { return frozen }))
	h.waitTicks(2)

	s.SetPacingFast()
	paused := h.engine.Stats().Pauses
	ticks := h.engine.Stats().Ticks
	h.waitTicks(ticks + 20)
	h.stop()

	// At most the tick in flight when pacing changed still pauses.
	assert.LessOrEqual(t, h.engine.Stats().Pauses, paused+1)
}

func TestSetOverlayOnlyOnce(t *testing.T) {
	e := NewEngine(WithScene(fastScene(100, 100, 0)), WithHandoff(handoff.New[surface.Surface]()))
	require.NoError(t, e.SetOverlay(&markOverlay{}))
	assert.ErrorIs(t, e.SetOverlay(&markOverlay{}), ErrOverlayAlreadySet)
}

// markOverlay paints the viewport's top-right pixel red.
type markOverlay struct {
	calls atomic.Int64
}

var overlayMark = color.RGBA{R: 255, A: 255}

func (o *markOverlay) Composite(dst draw.Image, vp image.Rectangle) {
	o.calls.Add(1)
	dst.Set(vp.Max.X-1, vp.Min.Y, overlayMark)
}

func TestOverlayCompositedOnUIThread(t *testing.T) {
	d := uithread.NewDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	overlay := &markOverlay{}
	h := handoff.New[surface.Surface]()
	surf := surface.NewMemorySurface(100, 100)
	require.NoError(t, h.Publish(surf))
	e := NewEngine(WithScene(fastScene(100, 100, 0)), WithHandoff(h), WithDispatcher(d))
	require.NoError(t, e.SetOverlay(overlay))

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	require.Eventually(t, func() bool { return surf.Presented() >= 2 }, waitFor, time.Millisecond)
	e.Quit()
	require.NoError(t, <-done)

	assert.Positive(t, overlay.calls.Load())
	assert.Equal(t, overlayMark, surf.Front().RGBAAt(99, 0))
}

func TestOverlayTimeoutIsNonFatal(t *testing.T) {
	// Never drained: every composite call times out.
	d := uithread.NewDispatcher()
	overlay := &markOverlay{}

	h := startLoop(t, surface.NewMemorySurface(100, 100), fastScene(100, 100, 0),
		WithDispatcher(d), WithOverlayTimeout(2*time.Millisecond))
	require.NoError(t, h.engine.SetOverlay(overlay))
	h.waitTicks(5)
	h.stop()

	// Late draining must not run any of the cancelled calls.
	d.Drain()
	assert.Zero(t, overlay.calls.Load())
	stats := h.engine.Stats()
	assert.Positive(t, stats.OverlayTimeouts)
	assert.Equal(t, stats.Ticks, stats.Presents)
}

func TestOverlayWithoutDispatcherRunsInline(t *testing.T) {
	overlay := &markOverlay{}
	h := startLoop(t, surface.NewMemorySurface(100, 100), fastScene(100, 100, 0))
	require.NoError(t, h.engine.SetOverlay(overlay))
	h.waitTicks(h.engine.Stats().Ticks + 3)
	h.stop()
	assert.Positive(t, overlay.calls.Load())
}

func TestDrawAreaChangedStretchesIntoViewport(t *testing.T) {
	surf := surface.NewMemorySurface(100, 100)
	h := startLoop(t, surf, fastScene(100, 100, 0))
	h.engine.DrawAreaChanged(50, 50, 100, 100)
	assert.Equal(t, image.Rect(50, 50, 150, 150), h.engine.Viewport().Rect())

	require.Eventually(t, func() bool { return surf.Front().Rect.Max == image.Pt(150, 150) }, waitFor, time.Millisecond)
	h.waitTicks(h.engine.Stats().Ticks + 2)
	h.stop()

	front := surf.Front()
	assert.Equal(t, common.Letterbox, front.RGBAAt(10, 10), "outside the viewport")
	assert.Equal(t, common.Letterbox, front.RGBAAt(140, 20), "outside the viewport")
	assertNearColor(t, common.Background, front.RGBAAt(140, 140))
}

func TestRatesDrawnAtViewportOrigin(t *testing.T) {
	surf := surface.NewMemorySurface(200, 200)
	h := startLoop(t, surf, fastScene(200, 200, 0))
	h.waitTicks(3)
	h.stop()

	front := surf.Front()
	lit := 0
	for y := 0; y < 2*13; y++ {
		for x := 0; x < 7*6; x++ {
			if front.RGBAAt(x, y) == common.Text {
				lit++
			}
		}
	}
	assert.Positive(t, lit, "FPS and UPS lines are drawn")
	assertNearColor(t, common.Background, front.RGBAAt(150, 150))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-surface", StateAwaitingSurface.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}
