package scene

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/Carmen-Shannon/oxy-circles/engine/shape"
	"github.com/gogpu/gg"
)

// Rate is the pacing mode of the render loop driving a Scene.
type Rate int

const (
	// RateSlow waits a fixed interval between ticks.
	RateSlow Rate = iota

	// RateFast runs ticks back to back without waiting.
	RateFast
)

func (r Rate) String() string {
	switch r {
	case RateSlow:
		return "slow"
	case RateFast:
		return "fast"
	default:
		return fmt.Sprintf("Rate(%d)", int(r))
	}
}

// DefaultSlowInterval is the wait between ticks in RateSlow.
const DefaultSlowInterval = 5 * time.Millisecond

// sampleWindow is how much accumulated time passes between FPS/UPS samples.
const sampleWindow = time.Second

// scene is the implementation of the Scene interface.
// mu covers every field below it; all methods take it.
type scene struct {
	mu *sync.Mutex

	bounds image.Rectangle
	shapes []shape.Shape

	rate         Rate
	slowInterval time.Duration

	now        func() time.Time
	rng        *rand.Rand
	lastUpdate time.Time

	sinceSample time.Duration
	frames      int
	updates     int
	fps         int
	ups         int

	// construction parameters
	shapeWidth  int
	shapeHeight int
	maxSpeed    float64 // pixels per millisecond
	preset      []shape.Shape

	// updatePool fans per-shape updates out once the shape count reaches
	// parallelThreshold. It is created on first use.
	updatePool        worker.DynamicWorkerPool
	poolStarted       bool
	updateWorkers     int
	parallelThreshold int
}

// Scene owns a collection of Shapes moving inside a fixed bounded area, the
// simulation clock, the pacing mode, and FPS/UPS counters.
// A single mutex serializes every operation, so it is safe to share between
// the render goroutine and the UI thread.
type Scene interface {
	// Update samples FPS/UPS if a full second has accumulated, then advances
	// every shape by the wall-clock time since the previous update.
	Update()

	// Draw clears the target to the background color over width x height, draws
	// every shape, and counts a frame.
	//
	// Parameters:
	//   - dc: the offscreen drawing context
	//   - width, height: the area to clear, normally the scene bounds
	//
	// Returns:
	//   - error: the joined fill errors, if any
	Draw(dc *gg.Context, width, height int) error

	// SetAllShapesToRandomColor paints every shape with one shared random color.
	SetAllShapesToRandomColor()

	// RequestRandomColor is SetAllShapesToRandomColor for the control layer.
	RequestRandomColor()

	// SetRate switches the pacing mode. It only affects the next pacing decision.
	//
	// Parameters:
	//   - r: the new pacing mode
	SetRate(r Rate)

	// SetPacingSlow switches to RateSlow.
	SetPacingSlow()

	// SetPacingFast switches to RateFast.
	SetPacingFast()

	// Rate returns the current pacing mode.
	Rate() Rate

	// WaitInterval returns the wait between ticks for the current pacing mode.
	WaitInterval() time.Duration

	// ResetClock re-samples the time of the last update without touching any counter.
	// Call it immediately before the first tick so setup time is not simulated.
	ResetClock()

	// FPS returns the frames drawn during the last complete sample window.
	FPS() int

	// UPS returns the updates made during the last complete sample window.
	UPS() int

	// Bounds returns the fixed area shapes move within, anchored at the origin.
	Bounds() image.Rectangle

	// Len returns the number of shapes.
	Len() int

	// Shapes returns a copy of the shape slice. The shapes themselves are shared.
	Shapes() []shape.Shape
}

var _ Scene = &scene{}

// NewScene creates a Scene of width x height holding count randomly placed shapes.
// Each shape gets a random position inside the bounds, random direction flags,
// and a random speed in [0, maxSpeed). When WithShapes is given, those shapes
// are used instead and count is ignored.
//
// Panics if the bounds are empty or cannot hold a shape.
//
// Parameters:
//   - width, height: size of the bounded area in pixels
//   - count: the number of shapes to create
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(width, height, count int, options ...SceneBuilderOption) Scene {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("scene: NewScene requires positive bounds, got %dx%d", width, height))
	}

	s := &scene{
		mu:                &sync.Mutex{},
		bounds:            image.Rect(0, 0, width, height),
		rate:              RateSlow,
		slowInterval:      DefaultSlowInterval,
		now:               time.Now,
		shapeWidth:        50,
		shapeHeight:       50,
		maxSpeed:          0.5,
		updateWorkers:     max(runtime.NumCPU()-1, 1),
		parallelThreshold: 1024,
	}

	for _, option := range options {
		option(s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if s.preset != nil {
		s.shapes = s.preset
		s.preset = nil
	} else {
		s.shapes = make([]shape.Shape, count)
		for i := range s.shapes {
			s.shapes[i] = shape.NewMovingCircle(s.bounds,
				shape.WithSize(s.shapeWidth, s.shapeHeight),
				shape.WithPosition(
					s.rng.Float64()*float64(width-s.shapeWidth),
					s.rng.Float64()*float64(height-s.shapeHeight),
				),
				shape.WithDirection(s.rng.IntN(2) == 0, s.rng.IntN(2) == 0),
				shape.WithSpeed(s.rng.Float64()*s.maxSpeed),
			)
		}
	}

	s.lastUpdate = s.now()
	return s
}

func (s *scene) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Subtract one window instead of zeroing so the remainder carries into the next sample.
	if s.sinceSample >= sampleWindow {
		s.fps = s.frames
		s.ups = s.updates
		s.sinceSample -= sampleWindow
		s.frames = 0
		s.updates = 0
	}

	elapsed := max(s.now().Sub(s.lastUpdate), 0)
	s.lastUpdate = s.lastUpdate.Add(elapsed)
	s.sinceSample += elapsed

	if len(s.shapes) >= s.parallelThreshold && s.updateWorkers > 1 {
		s.updateParallel(elapsed)
	} else {
		for _, sh := range s.shapes {
			sh.Update(elapsed)
		}
	}

	s.updates++
}

// updateParallel splits the shapes into one contiguous chunk per worker and
// blocks until every chunk is done. Callers hold mu.
func (s *scene) updateParallel(elapsed time.Duration) {
	if !s.poolStarted {
		// Queue size of 256 is far above the chunk count; workers idle-exit after a second without work.
		s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)
		s.poolStarted = true
	}

	chunk := (len(s.shapes) + s.updateWorkers - 1) / s.updateWorkers

	// The pool's own Wait blocks until workers idle-exit, so a WaitGroup is the per-tick barrier.
	var wg sync.WaitGroup
	for id, start := 0, 0; start < len(s.shapes); id, start = id+1, start+chunk {
		part := s.shapes[start:min(start+chunk, len(s.shapes))]
		wg.Add(1)
		s.updatePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, sh := range part {
					sh.Update(elapsed)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Draw(dc *gg.Context, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Always paint over the previous frame.
	dc.SetColor(common.Background)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	errs := []error{dc.Fill()}

	for _, sh := range s.shapes {
		errs = append(errs, sh.Draw(dc))
	}

	s.frames++
	return errors.Join(errs...)
}

func (s *scene) SetAllShapesToRandomColor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := common.RandomColor(s.rng)
	for _, sh := range s.shapes {
		sh.ChangeColor(c)
	}
}

func (s *scene) RequestRandomColor() {
	s.SetAllShapesToRandomColor()
}

func (s *scene) SetRate(r Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = r
}

func (s *scene) SetPacingSlow() {
	s.SetRate(RateSlow)
}

func (s *scene) SetPacingFast() {
	s.SetRate(RateFast)
}

func (s *scene) Rate() Rate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

func (s *scene) WaitInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rate == RateFast {
		return 0
	}
	return s.slowInterval
}

func (s *scene) ResetClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = s.now()
}

func (s *scene) FPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

func (s *scene) UPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ups
}

func (s *scene) Bounds() image.Rectangle {
	return s.bounds
}

func (s *scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shapes)
}

func (s *scene) Shapes() []shape.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shape.Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}
