package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/Carmen-Shannon/oxy-circles/engine/handoff"
	"github.com/Carmen-Shannon/oxy-circles/engine/profiler"
	"github.com/Carmen-Shannon/oxy-circles/engine/scene"
	"github.com/Carmen-Shannon/oxy-circles/engine/surface"
	"github.com/Carmen-Shannon/oxy-circles/engine/viewport"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	// DefaultHandoffTimeout bounds the wait for the presentation surface.
	DefaultHandoffTimeout = time.Second

	// DefaultOverlayTimeout bounds each overlay composite call on the UI thread.
	DefaultOverlayTimeout = 250 * time.Millisecond
)

var (
	// ErrSurfaceUnavailable is returned by Run when no presentation surface was
	// published in time. It wraps the handoff error.
	ErrSurfaceUnavailable = errors.New("engine: presentation surface unavailable")

	// ErrOverlayAlreadySet is returned by SetOverlay after the first successful call.
	ErrOverlayAlreadySet = errors.New("engine: overlay already set")

	// ErrAlreadyStarted is returned by Run when the loop was started before.
	ErrAlreadyStarted = errors.New("engine: render loop already started")
)

// State is the lifecycle state of the render loop.
type State int32

const (
	// StateAwaitingSurface is the state before a presentation surface was taken.
	StateAwaitingSurface State = iota

	// StateRunning is the state while frames are produced.
	StateRunning

	// StateStopped is the final state.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateAwaitingSurface:
		return "awaiting-surface"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Overlay is drawn over each frame after the scene was stretched into the viewport.
// Composite is always invoked through the Caller, so an overlay may assume it runs on the UI thread.
type Overlay interface {
	Composite(dst draw.Image, viewport image.Rectangle)
}

// Caller runs fn on the UI thread and blocks until it ran or ctx ended.
// Once Call returned a ctx error, fn must never run. *uithread.Dispatcher implements it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// Stats are cumulative counters of the render loop.
type Stats struct {
	// Ticks is the number of loop iterations that updated the scene.
	Ticks uint64
	// Presents is the number of frames shown.
	Presents uint64
	// SkippedPresents counts frames not shown because the surface lost its contents.
	SkippedPresents uint64
	// DroppedTicks counts ticks abandoned on a transient drawing fault.
	DroppedTicks uint64
	// Faults counts ticks abandoned on any other presentation error.
	Faults uint64
	// OverlayTimeouts counts overlay composite calls that did not run.
	OverlayTimeouts uint64
	// Pauses counts ticks followed by a pacing sleep.
	Pauses uint64
}

type counters struct {
	ticks, presents, skipped, dropped, faults, overlayTimeouts, pauses atomic.Uint64
}

// engine implements the Engine interface.
// It owns the render goroutine: the only goroutine that drives the surface.
type engine struct {
	scene      scene.Scene
	handoff    *handoff.Handoff[surface.Surface]
	dispatcher Caller
	viewport   *viewport.Viewport

	handoffTimeout time.Duration
	overlayTimeout time.Duration
	interpolator   xdraw.Interpolator
	face           font.Face
	now            func() time.Time

	profilingEnabled bool

	started     atomic.Bool
	state       atomic.Int32
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	overlayMu sync.Mutex
	overlay   Overlay

	offscreen *gg.Context
	stats     counters
}

// Engine is the render loop of an animation host. It takes a presentation surface from a
// oneshot handoff, then repeatedly updates the scene, stretches it into the viewport,
// composites the overlay and the FPS/UPS lines, presents and paces.
type Engine interface {
	// Run waits for the presentation surface, then renders until ctx ends or Quit is called.
	// It blocks for the lifetime of the loop.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop after the current tick
	//
	// Returns:
	//   - error: nil on a requested stop, ErrSurfaceUnavailable if no surface arrived in time,
	//     ErrAlreadyStarted on a second call
	Run(ctx context.Context) error

	// Quit signals the loop to stop. Safe to call multiple times and before Run.
	Quit()

	// DrawAreaChanged is the host's resize callback. It sets where within the window
	// the scene is drawn. Safe to call from any goroutine.
	//
	// Parameters:
	//   - x, y: top-left corner of the draw area
	//   - width, height: size of the draw area
	DrawAreaChanged(x, y, width, height int)

	// SetOverlay installs the overlay drawn over each frame. It can be set once.
	//
	// Parameters:
	//   - o: the overlay
	//
	// Returns:
	//   - error: ErrOverlayAlreadySet if an overlay was set before
	SetOverlay(o Overlay) error

	// State returns the current lifecycle state.
	State() State

	// Stats returns a snapshot of the loop counters.
	Stats() Stats

	// Scene returns the animated scene.
	Scene() scene.Scene

	// Viewport returns the draw area the scene is stretched into.
	Viewport() *viewport.Viewport
}

// NewEngine creates a render loop. WithScene and WithHandoff are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		handoffTimeout: DefaultHandoffTimeout,
		overlayTimeout: DefaultOverlayTimeout,
		interpolator:   xdraw.ApproxBiLinear,
		face:           basicfont.Face7x13,
		now:            time.Now,
		quitChannel:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.scene == nil {
		panic("engine: nil scene")
	}
	if e.handoff == nil {
		panic("engine: nil surface handoff")
	}
	bounds := e.scene.Bounds()
	if e.viewport == nil {
		e.viewport = viewport.New(0, 0, bounds.Dx(), bounds.Dy())
	}
	e.offscreen = gg.NewContext(bounds.Dx(), bounds.Dy())
	e.state.Store(int32(StateAwaitingSurface))
	return e
}

func (e *engine) Run(ctx context.Context) (err error) {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer e.state.Store(int32(StateStopped))
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("render loop recovered from panic", "panic", r)
			err = fmt.Errorf("engine: render loop panic: %v", r)
		}
	}()

	surf, err := e.awaitSurface(ctx)
	if err != nil {
		if e.stopRequested(ctx) {
			return nil
		}
		Logger().Error("no presentation surface", "timeout", e.handoffTimeout, "err", err)
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}

	e.scene.ResetClock()
	e.state.Store(int32(StateRunning))
	Logger().Info("render loop running", "size", surf.Size(), "rate", e.scene.Rate())
	defer Logger().Info("render loop stopped", "ticks", e.stats.ticks.Load())

	var prof *profiler.Profiler
	if e.profilingEnabled {
		prof = profiler.NewProfiler(e.scene, profiler.WithLogger(Logger()))
	}

	for {
		if e.stopRequested(ctx) {
			return nil
		}

		start := e.now()
		e.tick(ctx, surf)
		if prof != nil {
			prof.Tick()
		}

		if remaining := e.scene.WaitInterval() - e.now().Sub(start); remaining > 0 {
			if !e.pause(ctx, remaining) {
				return nil
			}
		}
	}
}

// awaitSurface takes the surface from the handoff. Quit interrupts the wait.
func (e *engine) awaitSurface(ctx context.Context) (surface.Surface, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.handoffTimeout)
	defer cancel()
	go func() {
		select {
		case <-e.quitChannel:
			cancel()
		case <-waitCtx.Done():
		}
	}()
	return e.handoff.AwaitAndTakeContext(waitCtx)
}

func (e *engine) stopRequested(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// pause sleeps for d. It returns false if the loop was asked to stop meanwhile.
func (e *engine) pause(ctx context.Context, d time.Duration) bool {
	e.stats.pauses.Add(1)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-e.quitChannel:
		return false
	}
}

// tick runs one simulation step and produces one frame. Presentation errors abandon the frame.
func (e *engine) tick(ctx context.Context, surf surface.Surface) {
	e.scene.Update()
	e.stats.ticks.Add(1)

	// The frame covers the window, which reaches at least to the far corner of the draw area.
	area := e.viewport.Rect()
	if want := area.Max; want.X > 0 && want.Y > 0 && want != surf.Size() {
		surf.Resize(want.X, want.Y)
	}

	dst, err := surf.Begin()
	if err != nil {
		e.abandon("begin", err)
		return
	}

	bounds := e.scene.Bounds()
	if err := e.scene.Draw(e.offscreen, bounds.Dx(), bounds.Dy()); err != nil {
		Logger().Warn("scene draw failed", "err", err)
	}
	src := e.offscreen.Image()

	draw.Draw(dst, dst.Bounds(), image.NewUniform(common.Letterbox), image.Point{}, draw.Src)
	vp := e.viewport.View(func(r image.Rectangle) {
		if !r.Empty() {
			e.interpolator.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
		}
	})

	if o := e.currentOverlay(); o != nil && !vp.Empty() {
		e.compositeOverlay(ctx, o, dst, vp)
	}
	e.drawRates(dst, vp.Min)

	if err := surf.End(); err != nil {
		e.abandon("end", err)
		return
	}
	if surf.ContentsLost() {
		e.stats.skipped.Add(1)
		return
	}
	if err := surf.Present(); err != nil {
		e.abandon("present", err)
		return
	}
	e.stats.presents.Add(1)
}

func (e *engine) compositeOverlay(ctx context.Context, o Overlay, dst draw.Image, vp image.Rectangle) {
	if e.dispatcher == nil {
		o.Composite(dst, vp)
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, e.overlayTimeout)
	defer cancel()
	if err := e.dispatcher.Call(callCtx, func() { o.Composite(dst, vp) }); err != nil {
		e.stats.overlayTimeouts.Add(1)
		Logger().Debug("overlay composite skipped", "err", err)
	}
}

func (e *engine) drawRates(dst draw.Image, origin image.Point) {
	lh := common.LineHeight(e.face)
	common.DrawText(dst, e.face, origin, fmt.Sprintf("FPS: %d", e.scene.FPS()), common.Text)
	common.DrawText(dst, e.face, origin.Add(image.Pt(0, lh)), fmt.Sprintf("UPS: %d", e.scene.UPS()), common.Text)
}

func (e *engine) abandon(stage string, err error) {
	if errors.Is(err, surface.ErrDrawState) {
		e.stats.dropped.Add(1)
		Logger().Warn("drawing state fault, tick abandoned", "stage", stage, "err", err)
		return
	}
	e.stats.faults.Add(1)
	Logger().Error("presentation failed, tick abandoned", "stage", stage, "err", err)
}

func (e *engine) currentOverlay() Overlay {
	e.overlayMu.Lock()
	defer e.overlayMu.Unlock()
	return e.overlay
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) DrawAreaChanged(x, y, width, height int) {
	e.viewport.Set(x, y, width, height)
	Logger().Debug("draw area changed", "x", x, "y", y, "width", width, "height", height)
}

func (e *engine) SetOverlay(o Overlay) error {
	e.overlayMu.Lock()
	defer e.overlayMu.Unlock()
	if e.overlay != nil {
		return ErrOverlayAlreadySet
	}
	e.overlay = o
	return nil
}

func (e *engine) State() State {
	return State(e.state.Load())
}

func (e *engine) Stats() Stats {
	return Stats{
		Ticks:           e.stats.ticks.Load(),
		Presents:        e.stats.presents.Load(),
		SkippedPresents: e.stats.skipped.Load(),
		DroppedTicks:    e.stats.dropped.Load(),
		Faults:          e.stats.faults.Load(),
		OverlayTimeouts: e.stats.overlayTimeouts.Load(),
		Pauses:          e.stats.pauses.Load(),
	}
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Viewport() *viewport.Viewport {
	return e.viewport
}
