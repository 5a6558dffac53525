package shape

import (
	"image/color"
	"time"
)

// ShapeBuilderOption is a functional option for configuring a Shape during construction.
type ShapeBuilderOption func(*movingCircle)

// WithPosition sets the starting top-left corner of the shape.
//
// Parameters:
//   - x: horizontal position in pixels
//   - y: vertical position in pixels
//
// Returns:
//   - ShapeBuilderOption: functional option to set the position
func WithPosition(x, y float64) ShapeBuilderOption {
	return func(c *movingCircle) {
		c.x, c.y = x, y
	}
}

// WithSize sets the fixed width and height of the shape.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - ShapeBuilderOption: functional option to set the size
func WithSize(width, height int) ShapeBuilderOption {
	return func(c *movingCircle) {
		c.width, c.height = width, height
	}
}

// WithDirection sets the starting direction flags.
//
// Parameters:
//   - down: true to start moving towards larger y
//   - right: true to start moving towards larger x
//
// Returns:
//   - ShapeBuilderOption: functional option to set the direction
func WithDirection(down, right bool) ShapeBuilderOption {
	return func(c *movingCircle) {
		c.down, c.right = down, right
	}
}

// WithSpeed sets the speed in pixels per millisecond.
// Milliseconds are easier to reason about; the shape stores pixels per nanosecond.
//
// Parameters:
//   - pixelsPerMillisecond: distance moved along each axis per millisecond
//
// Returns:
//   - ShapeBuilderOption: functional option to set the speed
func WithSpeed(pixelsPerMillisecond float64) ShapeBuilderOption {
	return func(c *movingCircle) {
		c.speed = pixelsPerMillisecond / float64(time.Millisecond)
	}
}

// WithColor sets the starting fill color.
//
// Parameters:
//   - col: the fill color
//
// Returns:
//   - ShapeBuilderOption: functional option to set the color
func WithColor(col color.Color) ShapeBuilderOption {
	return func(c *movingCircle) {
		c.color = color.RGBAModel.Convert(col).(color.RGBA)
	}
}
