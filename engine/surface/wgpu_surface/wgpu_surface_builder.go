package wgpu_surface

import (
	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUSurfaceBuilderOption is a functional option for configuring a WGPUSurface.
type WGPUSurfaceBuilderOption func(*wgpuSurfaceImpl)

// WithPresentMode sets how frames are delivered to the display. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - WGPUSurfaceBuilderOption: a function that applies the present mode
func WithPresentMode(mode PresentMode) WGPUSurfaceBuilderOption {
	return func(s *wgpuSurfaceImpl) {
		switch mode {
		case PresentModeUncapped:
			s.presentMode = wgpu.PresentModeImmediate
		default:
			s.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - WGPUSurfaceBuilderOption: a function that applies the adapter preference
func WithForceFallbackAdapter(force bool) WGPUSurfaceBuilderOption {
	return func(s *wgpuSurfaceImpl) {
		s.forceFallbackAdapter = force
	}
}

// WithLabel sets the debug label of the device. An empty label keeps the current one.
func WithLabel(label string) WGPUSurfaceBuilderOption {
	return func(s *wgpuSurfaceImpl) {
		s.label = common.Coalesce(label, s.label)
	}
}
