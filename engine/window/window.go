package window

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling for the animation host.
// Every method except Wake must be called on the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	// The host drains its UI dispatcher here.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetDrawAreaCallback sets the function called when the drawable area changes.
	// The area always starts at the window origin and covers the whole framebuffer.
	//
	// Parameters:
	//   - callback: function receiving the draw area position and size in pixels
	SetDrawAreaCallback(callback func(x, y, width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see the common.Key* constants
	SetKeyDownCallback(callback func(key int))

	// SetClickCallback sets the callback for primary mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in framebuffer pixels
	SetClickCallback(callback func(x, y int))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Wake interrupts a message loop waiting for events. Safe to call from any goroutine.
	Wake()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the framebuffer size, which differs from the window size on high-DPI displays.
	width  int
	height int

	// pollInterval bounds how long the message loop waits for events before running the update callback.
	pollInterval time.Duration

	// cursorX and cursorY track the last known cursor position in framebuffer pixels.
	cursorX int
	cursorY int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate   func()
	onDrawArea func(x, y, width, height int)
	onKeyDown  func(key int)
	onClick    func(x, y int)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:        "Active Rendering",
		maxWidth:     3840,
		maxHeight:    2160,
		minWidth:     200,
		minHeight:    150,
		width:        700,
		height:       500,
		pollInterval: time.Millisecond,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = common.Clamp(w.width, w.minWidth, w.maxWidth)
	w.height = common.Clamp(w.height, w.minHeight, w.maxHeight)
	return w
}

// handleFramebufferSize records a new framebuffer size and reports it as the draw area.
func (w *engineWindow) handleFramebufferSize(width, height int) {
	w.width = width
	w.height = height
	if w.onDrawArea != nil {
		w.onDrawArea(0, 0, width, height)
	}
}

// handleCursor records the cursor position given in window coordinates, scaled to framebuffer pixels.
func (w *engineWindow) handleCursor(x, y, scaleX, scaleY float64) {
	w.cursorX = int(x * scaleX)
	w.cursorY = int(y * scaleY)
}

func (w *engineWindow) handlePrimaryPress() {
	if w.onClick != nil {
		w.onClick(w.cursorX, w.cursorY)
	}
}

func (w *engineWindow) handleKeyDown(key int) {
	if w.onKeyDown != nil {
		w.onKeyDown(key)
	}
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetDrawAreaCallback(callback func(x, y, width, height int)) {
	w.onDrawArea = callback
	if callback != nil && w.width > 0 && w.height > 0 {
		callback(0, 0, w.width, w.height)
	}
}

func (w *engineWindow) SetKeyDownCallback(callback func(key int)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetClickCallback(callback func(x, y int)) {
	w.onClick = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Wake() {
	platformWake(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
