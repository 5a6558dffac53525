package wgpu_surface

import (
	"fmt"
	"image"
	"image/draw"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-circles/common"
	"github.com/Carmen-Shannon/oxy-circles/engine/surface"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how presented frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear.
	PresentModeUncapped
)

// WGPUSurface is a surface.Surface backed by a WebGPU swapchain. Frames are drawn
// on the CPU into an RGBA back buffer, then uploaded into the acquired swapchain
// texture on End.
type WGPUSurface interface {
	surface.Surface

	// Release frees the swapchain and every GPU object created for it.
	Release()
}

type wgpuSurfaceImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	label                string
	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	format               wgpu.TextureFormat
	swapRB               bool

	size       image.Point
	configured image.Point
	back       *image.RGBA
	staging    common.FrameStagingData

	frameTexture *wgpu.Texture
	lost         bool
}

var _ WGPUSurface = &wgpuSurfaceImpl{}

// NewWGPUSurface creates the WebGPU instance, adapter and device for the window
// described by descriptor and configures its swapchain at width x height.
//
// It must be called on the thread that owns the window.
//
// Parameters:
//   - descriptor: the platform surface descriptor of the window
//   - width, height: initial swapchain size in pixels
//   - options: optional WGPUSurfaceBuilderOption values
//
// Returns:
//   - WGPUSurface: the configured surface
//   - error: an error if no adapter or device could be obtained
func NewWGPUSurface(descriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUSurfaceBuilderOption) (WGPUSurface, error) {
	runtime.LockOSThread()
	s := &wgpuSurfaceImpl{
		mu:          &sync.Mutex{},
		label:       "Presentation Device",
		presentMode: wgpu.PresentModeFifo,
		size:        image.Pt(max(width, 1), max(height, 1)),
	}
	for _, opt := range options {
		opt(s)
	}

	s.instance = wgpu.CreateInstance(nil)
	s.surface = s.instance.CreateSurface(descriptor)

	a, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: s.forceFallbackAdapter,
		CompatibleSurface:    s.surface,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	s.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: s.label,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	s.device = d
	s.queue = d.GetQueue()

	s.configure()
	return s, nil
}

// configure (re)creates the swapchain at s.size. Callers hold s.mu or own s exclusively.
func (s *wgpuSurfaceImpl) configure() {
	capabilities := s.surface.GetCapabilities(s.adapter)
	s.format = pickFormat(capabilities.Formats)
	s.swapRB = s.format == wgpu.TextureFormatBGRA8Unorm || s.format == wgpu.TextureFormatBGRA8UnormSrgb

	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Format:      s.format,
		Width:       uint32(s.size.X),
		Height:      uint32(s.size.Y),
		PresentMode: s.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	s.configured = s.size
}

// pickFormat prefers a linear 8-bit format so uploaded bytes reach the display unchanged.
func pickFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return wgpu.TextureFormatBGRA8Unorm
}

func (s *wgpuSurfaceImpl) Begin() (draw.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frameTexture != nil {
		return nil, fmt.Errorf("%w: previous frame not yet presented", surface.ErrDrawState)
	}
	if s.configured != s.size || s.lost {
		s.configure()
		s.lost = false
	}
	if s.back == nil || s.back.Rect.Max != s.size {
		s.back = image.NewRGBA(image.Rectangle{Max: s.size})
	}
	return s.back, nil
}

func (s *wgpuSurfaceImpl) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		// Outdated or lost swapchains are rebuilt on the next Begin.
		s.lost = true
		return fmt.Errorf("%w: acquire swapchain texture: %w", surface.ErrDrawState, err)
	}

	s.staging.Stage(s.back, s.swapRB)
	s.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		s.staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  s.staging.Width * 4,
			RowsPerImage: s.staging.Height,
		},
		&wgpu.Extent3D{
			Width:              s.staging.Width,
			Height:             s.staging.Height,
			DepthOrArrayLayers: 1,
		},
	)
	s.frameTexture = tex
	return nil
}

func (s *wgpuSurfaceImpl) ContentsLost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A resize between Begin and End makes the uploaded frame the wrong size.
	return s.lost || s.configured != s.size
}

func (s *wgpuSurfaceImpl) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frameTexture == nil {
		return fmt.Errorf("%w: no frame to present", surface.ErrDrawState)
	}
	s.surface.Present()
	s.frameTexture.Release()
	s.frameTexture = nil
	return nil
}

func (s *wgpuSurfaceImpl) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *wgpuSurfaceImpl) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frameTexture != nil {
		// Skipped frames still hold their texture; drop it before reconfiguring.
		s.frameTexture.Release()
		s.frameTexture = nil
	}
	s.size = image.Pt(max(width, 1), max(height, 1))
}

func (s *wgpuSurfaceImpl) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frameTexture != nil {
		s.frameTexture.Release()
		s.frameTexture = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}
