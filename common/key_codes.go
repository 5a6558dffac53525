package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyC     = 67  // C key (ASCII), randomizes the circle color
	KeyF     = 70  // F key (ASCII), toggles pacing
	KeySpace = 32  // Spacebar (ASCII), toggles pacing
	KeyEsc   = 256 // Escape key (GLFW)
)
