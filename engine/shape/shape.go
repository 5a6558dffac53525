package shape

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/gogpu/gg"
)

// movingCircle is the implementation of the Shape interface.
// Every method takes mu so position and direction are never observed torn.
type movingCircle struct {
	mu *sync.Mutex

	bounds image.Rectangle

	x, y          float64
	width, height int

	down  bool
	right bool

	// speed is stored in pixels per nanosecond.
	speed float64

	color color.RGBA
}

// Shape is a single bouncing entity confined to an axis-aligned bounded area.
// It owns its own update and draw logic. Shapes reflect off the walls of the
// area and never leave it; shapes do not collide with each other.
type Shape interface {
	// Update advances the shape by elapsed along both axes, flipping and clamping
	// at every wall that was crossed.
	//
	// Parameters:
	//   - elapsed: time since the previous update
	Update(elapsed time.Duration)

	// ChangeColor replaces the fill color. Takes effect on the next Draw.
	//
	// Parameters:
	//   - c: the new color
	ChangeColor(c color.Color)

	// Draw fills an ellipse of the shape's size at its integer-truncated position.
	// Draw never mutates the shape.
	//
	// Parameters:
	//   - dc: the drawing context to paint into
	//
	// Returns:
	//   - error: error if the fill operation fails
	Draw(dc *gg.Context) error

	// Position returns the top-left corner of the shape in bounded-area coordinates.
	Position() (x, y float64)

	// Direction returns the two direction flags as one consistent snapshot.
	//
	// Returns:
	//   - down: true when moving towards larger y
	//   - right: true when moving towards larger x
	Direction() (down, right bool)

	// Size returns the fixed width and height of the shape.
	Size() (width, height int)

	// Speed returns the scalar speed in pixels per millisecond.
	Speed() float64

	// Color returns the current fill color.
	Color() color.RGBA

	// Bounds returns the rectangle the shape is confined to.
	Bounds() image.Rectangle
}

var _ Shape = &movingCircle{}

// NewMovingCircle creates a Shape confined to bounds.
// Defaults: 50x50 at the origin, moving up and to the left, stationary, dark gray.
// The starting position is clamped into the bounded area.
//
// Panics if the bounds cannot hold a shape of the configured size.
//
// Parameters:
//   - bounds: the rectangle the shape moves within; only its size is used
//   - options: functional options to configure the shape
//
// Returns:
//   - Shape: the newly created shape
func NewMovingCircle(bounds image.Rectangle, options ...ShapeBuilderOption) Shape {
	c := &movingCircle{
		mu:     &sync.Mutex{},
		bounds: image.Rect(0, 0, bounds.Dx(), bounds.Dy()),
		width:  50,
		height: 50,
		color:  common.ShapeDefault,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.width <= 0 || c.height <= 0 {
		panic(fmt.Sprintf("shape: invalid size %dx%d", c.width, c.height))
	}
	if c.width > c.bounds.Dx() || c.height > c.bounds.Dy() {
		panic(fmt.Sprintf("shape: %dx%d does not fit in bounds %dx%d", c.width, c.height, c.bounds.Dx(), c.bounds.Dy()))
	}

	c.x = common.Clamp(c.x, 0, c.maxX())
	c.y = common.Clamp(c.y, 0, c.maxY())
	return c
}

func (c *movingCircle) maxX() float64 {
	return float64(c.bounds.Dx() - c.width)
}

func (c *movingCircle) maxY() float64 {
	return float64(c.bounds.Dy() - c.height)
}

func (c *movingCircle) Update(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	movement := float64(elapsed) * c.speed
	if c.down {
		c.y += movement
	} else {
		c.y -= movement
	}
	if c.right {
		c.x += movement
	} else {
		c.x -= movement
	}

	// Move off the wall as well as flipping, so a collision cannot stick.
	if c.y < 0 {
		c.down = !c.down
		c.y = 0
	}
	if maxY := c.maxY(); c.y > maxY {
		c.down = !c.down
		c.y = maxY
	}
	if c.x < 0 {
		c.right = !c.right
		c.x = 0
	}
	if maxX := c.maxX(); c.x > maxX {
		c.right = !c.right
		c.x = maxX
	}
}

func (c *movingCircle) ChangeColor(col color.Color) {
	rgba := color.RGBAModel.Convert(col).(color.RGBA)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = rgba
}

func (c *movingCircle) Draw(dc *gg.Context) error {
	c.mu.Lock()
	x, y := float64(int(c.x)), float64(int(c.y))
	rx, ry := float64(c.width)/2, float64(c.height)/2
	col := c.color
	c.mu.Unlock()

	dc.SetColor(col)
	dc.DrawEllipse(x+rx, y+ry, rx, ry)
	return dc.Fill()
}

func (c *movingCircle) Position() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.x, c.y
}

func (c *movingCircle) Direction() (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.down, c.right
}

func (c *movingCircle) Size() (int, int) {
	return c.width, c.height
}

func (c *movingCircle) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed * float64(time.Millisecond)
}

func (c *movingCircle) Color() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

func (c *movingCircle) Bounds() image.Rectangle {
	return c.bounds
}
