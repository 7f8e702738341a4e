// Package gpu is the handle-based device facade the renderer draws through. The frame graph, the
// target pool and the lifecycle manager only ever see Handles and small descriptors; the WebGPU
// implementation keeps the native objects in an arena behind those handles.
package gpu

import (
	"context"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/arena"
)

// Handle identifies a GPU object owned by a Device. The zero Handle addresses the surface when used
// as a pass target and is invalid everywhere else.
type Handle = arena.Handle

// BackendType identifies the GPU backend implementation.
type BackendType int

const (
	// BackendTypeWGPU is the WebGPU backend built on wgpu-native.
	BackendTypeWGPU BackendType = iota
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

// BindingKind is the resource kind of one bind group slot.
type BindingKind int

const (
	// BindingTexture is a sampled 2D float texture.
	BindingTexture BindingKind = iota

	// BindingSampler is a filtering sampler.
	BindingSampler

	// BindingUniform is a uniform buffer.
	BindingUniform
)

// String returns the WGSL-facing name of k.
func (k BindingKind) String() string {
	switch k {
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	case BindingUniform:
		return "uniform"
	}
	return "unknown"
}

// CompileMessage is one diagnostic produced while compiling a shader module.
type CompileMessage struct {
	Module string
	Text   string
}

// TextureDesc describes a render target texture. Every texture is created with render-attachment
// and texture-binding usage.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
}

// PipelineDesc describes a fullscreen render pipeline. The vertex stage draws one triangle covering
// the target and takes no vertex buffers.
type PipelineDesc struct {
	Label         string
	Module        Handle
	VertexEntry   string
	FragmentEntry string
	Bindings      []BindingKind
	Format        TextureFormat
}

// BindGroupDesc binds resources to the group 0 layout of Pipeline. Entries are in binding order.
type BindGroupDesc struct {
	Label    string
	Pipeline Handle
	Entries  []Handle
}

// Pass is one fullscreen draw. A zero Target draws into the current surface texture.
type Pass struct {
	Label     string
	Pipeline  Handle
	BindGroup Handle
	Target    Handle
}

// DeviceCallbacks receive asynchronous device events. They may be invoked from any goroutine.
type DeviceCallbacks struct {
	// OnLost is called once when the device is lost.
	OnLost func(reason string)

	// OnError is called for validation or out-of-memory errors not tied to a returned error.
	OnError func(message string)
}

// Provider creates adapters for one presentation surface.
type Provider interface {
	// RequestAdapter selects a GPU adapter compatible with the surface.
	//
	// Parameters:
	//   - ctx: cancels the request
	//
	// Returns:
	//   - Adapter: the selected adapter
	//   - error: ErrUnavailable if no adapter exists, ErrContextUnavailable if the surface cannot be created
	RequestAdapter(ctx context.Context) (Adapter, error)
}

// Adapter is a physical GPU able to create devices.
type Adapter interface {
	// Name returns a human readable adapter description.
	//
	// Returns:
	//   - string: the adapter name
	Name() string

	// RequestDevice creates a logical device.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - callbacks: receivers for device loss and uncaptured errors
	//
	// Returns:
	//   - Device: the new device
	//   - error: ErrUnavailable if the adapter refuses to create a device
	RequestDevice(ctx context.Context, callbacks DeviceCallbacks) (Device, error)

	// Release frees the adapter.
	Release()
}

// Device creates and draws with GPU resources addressed by Handle. A Device is safe for use from
// one goroutine at a time; the frame loop and the bootstrap task never use it concurrently.
type Device interface {
	// ConfigureSurface (re)configures the presentation surface.
	//
	// Parameters:
	//   - width: the backing width in pixels
	//   - height: the backing height in pixels
	//
	// Returns:
	//   - error: ErrContextUnavailable if no surface can be configured
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the configured surface format, or FormatUndefined before ConfigureSurface.
	//
	// Returns:
	//   - TextureFormat: the surface format
	SurfaceFormat() TextureFormat

	// CompileShader compiles one WGSL module.
	//
	// Parameters:
	//   - label: the module label used in diagnostics
	//   - source: the WGSL source
	//
	// Returns:
	//   - Handle: the module handle when compilation succeeded
	//   - []CompileMessage: compiler diagnostics, empty on success
	//   - error: non-nil when the module failed to compile
	CompileShader(label, source string) (Handle, []CompileMessage, error)

	// CreatePipeline creates a fullscreen render pipeline.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - Handle: the pipeline handle
	//   - error: error if the pipeline cannot be created
	CreatePipeline(desc PipelineDesc) (Handle, error)

	// CreateSampler creates a linear clamp-to-edge sampler.
	//
	// Parameters:
	//   - label: the sampler label
	//
	// Returns:
	//   - Handle: the sampler handle
	//   - error: error if the sampler cannot be created
	CreateSampler(label string) (Handle, error)

	// CreateUniformBuffer creates a uniform buffer of size bytes.
	//
	// Parameters:
	//   - label: the buffer label
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Handle: the buffer handle
	//   - error: error if the buffer cannot be created
	CreateUniformBuffer(label string, size uint64) (Handle, error)

	// WriteBuffer queues a write of data at offset 0 of buffer.
	//
	// Parameters:
	//   - buffer: the destination buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: error if buffer is not a live uniform buffer
	WriteBuffer(buffer Handle, data []byte) error

	// CreateTexture allocates a render target texture.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Handle: the texture handle
	//   - error: ErrAllocation wrapping the backend error on failure
	CreateTexture(desc TextureDesc) (Handle, error)

	// DestroyTexture releases a texture. Unknown handles are ignored.
	//
	// Parameters:
	//   - texture: the texture to release
	DestroyTexture(texture Handle)

	// CreateBindGroup binds resources to a pipeline's group 0 layout.
	//
	// Parameters:
	//   - desc: the bind group description
	//
	// Returns:
	//   - Handle: the bind group handle
	//   - error: error if an entry is stale or does not match the layout
	CreateBindGroup(desc BindGroupDesc) (Handle, error)

	// DestroyBindGroup releases a bind group. Unknown handles are ignored.
	//
	// Parameters:
	//   - group: the bind group to release
	DestroyBindGroup(group Handle)

	// BeginFrame acquires the next surface texture and opens the frame encoder.
	//
	// Returns:
	//   - Frame: the frame encoder
	//   - error: error if the surface texture cannot be acquired
	BeginFrame() (Frame, error)

	// Release frees every object created by the device and the device itself.
	Release()
}

// Frame records the passes of one frame into a single command encoder.
type Frame interface {
	// Draw records one fullscreen pass.
	//
	// Parameters:
	//   - pass: the pass to record
	//
	// Returns:
	//   - error: error if a handle in pass is stale
	Draw(pass Pass) error

	// Submit finishes the encoder, submits it and presents the surface texture.
	//
	// Returns:
	//   - error: error if the command buffer cannot be finished
	Submit() error

	// Discard drops the frame without submitting it.
	Discard()
}
