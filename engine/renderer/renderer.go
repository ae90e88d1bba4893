package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/c3-preview/common"
	"github.com/Carmen-Shannon/c3-preview/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount

	frameOpen bool
}

// Renderer owns the GPU device and the window surface.
//
// It implements Device so models can be built and drawn against it directly, and adds the
// frame lifecycle (BeginFrame, draws, EndFrame, Present) plus texture and effect creation.
// Draws issued outside BeginFrame/EndFrame are dropped.
type Renderer interface {
	Device

	// Resize reconfigures the surface after the window size changed.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreateTexture uploads RGBA pixel data into a sampled texture.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - staging: the decoded RGBA pixels
	//   - sampler: sampler configuration; zero values select linear/repeat
	//
	// Returns:
	//   - Texture: the uploaded texture
	//   - error: error if creation fails
	CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (Texture, error)

	// CreateTexturedEffect builds a single-pass unlit textured effect sampling texture.
	//
	// Parameters:
	//   - label: debug label for the effect
	//   - texture: a texture created by this renderer
	//
	// Returns:
	//   - TexturedEffect: the effect
	//   - error: error if pipeline or bind group creation fails
	CreateTexturedEffect(label string, texture Texture) (TexturedEffect, error)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	//
	// Returns:
	//   - error: error if the surface texture could not be acquired
	BeginFrame() error

	// EndFrame closes the render pass and submits the recorded commands.
	EndFrame()

	// Present presents the current surface texture.
	Present()

	// FrameOpen reports whether a frame is between BeginFrame and EndFrame.
	//
	// Returns:
	//   - bool: true while a render pass is recording
	FrameOpen() bool

	// Release frees the device and surface.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window.
// The backend is created with the options' adapter and MSAA settings and the surface is configured
// to the window's current size. Failing to acquire a GPU adapter or device panics.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) CreateVertexBuffer(label string, size uint64) (Buffer, error) {
	return r.backend.CreateVertexBuffer(label, size)
}

func (r *renderer) CreateIndexBuffer(label string, data []byte) (Buffer, error) {
	return r.backend.CreateIndexBuffer(label, data)
}

func (r *renderer) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) DrawIndexed(pass EffectPass, vertexBuffer, indexBuffer Buffer, indexCount uint32) {
	r.mu.Lock()
	open := r.frameOpen
	r.mu.Unlock()
	if !open {
		return
	}
	r.backend.DrawIndexed(pass, vertexBuffer, indexBuffer, indexCount)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (Texture, error) {
	return r.backend.CreateTexture(label, staging, sampler)
}

func (r *renderer) CreateTexturedEffect(label string, texture Texture) (TexturedEffect, error) {
	return r.backend.CreateTexturedEffect(label, texture)
}

func (r *renderer) BeginFrame() error {
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.mu.Lock()
	r.frameOpen = true
	r.mu.Unlock()
	return nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	open := r.frameOpen
	r.frameOpen = false
	r.mu.Unlock()
	if open {
		r.backend.EndFrame()
	}
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) FrameOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameOpen
}

func (r *renderer) Release() {
	r.backend.Release()
}
