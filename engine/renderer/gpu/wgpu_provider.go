package gpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ProviderBuilderOption is a functional option applied to the WebGPU provider during construction.
type ProviderBuilderOption func(*wgpuProvider)

// WithForceFallbackAdapter requests the software fallback adapter when true.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) ProviderBuilderOption {
	return func(p *wgpuProvider) {
		p.forceFallbackAdapter = force
	}
}

// WithPresentMode sets the present mode used when configuring the surface.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) ProviderBuilderOption {
	return func(p *wgpuProvider) {
		p.presentMode = mode
	}
}

// WithLogger sets the logger used for adapter and device events.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ProviderBuilderOption {
	return func(p *wgpuProvider) {
		if log != nil {
			p.log = log
		}
	}
}

// wgpuProvider owns the WebGPU instance and the window surface. Adapters and devices are recreated
// after a device loss; the instance and surface outlive them.
type wgpuProvider struct {
	mu                   sync.Mutex
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	instance             *wgpu.Instance
	surface              *wgpu.Surface
	forceFallbackAdapter bool
	presentMode          PresentMode
	log                  *zap.Logger
}

// WGPUProvider is a Provider owning a WebGPU instance and window surface.
type WGPUProvider interface {
	Provider

	// Release drops the surface and the instance. Devices must be released first.
	Release()
}

var _ WGPUProvider = &wgpuProvider{}

// NewWGPUProvider creates a Provider backed by wgpu-native. Adapters are requested from the
// lifecycle's bootstrap goroutine, so the descriptor is taken as a value created on the window's
// thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the target window, or nil if unavailable
//   - options: functional options for adapter selection and presentation
//
// Returns:
//   - WGPUProvider: the WebGPU provider
func NewWGPUProvider(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ProviderBuilderOption) WGPUProvider {
	p := &wgpuProvider{
		surfaceDescriptor: surfaceDescriptor,
		presentMode:       PresentModeVSync,
		log:               zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *wgpuProvider) RequestAdapter(ctx context.Context) (Adapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.surfaceDescriptor == nil {
		return nil, fmt.Errorf("%w: no surface descriptor", ErrContextUnavailable)
	}
	if p.instance == nil {
		p.instance = wgpu.CreateInstance(nil)
		if p.instance == nil {
			return nil, fmt.Errorf("%w: instance creation failed", ErrUnavailable)
		}
	}
	if p.surface == nil {
		p.surface = p.instance.CreateSurface(p.surfaceDescriptor)
		if p.surface == nil {
			return nil, fmt.Errorf("%w: surface creation failed", ErrContextUnavailable)
		}
	}

	a, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.forceFallbackAdapter,
		PowerPreference:      wgpu.PowerPreferenceLowPower,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		a.Release()
		return nil, err
	}

	p.log.Debug("adapter acquired", zap.Bool("fallback", p.forceFallbackAdapter))
	return &wgpuAdapter{provider: p, adapter: a}, nil
}

type wgpuAdapter struct {
	provider *wgpuProvider
	adapter  *wgpu.Adapter
}

var _ Adapter = &wgpuAdapter{}

func (a *wgpuAdapter) Name() string {
	return "wgpu"
}

func (a *wgpuAdapter) RequestDevice(ctx context.Context, callbacks DeviceCallbacks) (Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := a.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Backdrop Device",
		DeviceLostCallback: func(reason wgpu.DeviceLostReason, message string) {
			if callbacks.OnLost != nil {
				callbacks.OnLost(fmt.Sprintf("%v: %s", reason, message))
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return newWGPUDevice(a.provider, a.adapter, d, callbacks.OnError), nil
}

func (a *wgpuAdapter) Release() {
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
}

func (p *wgpuProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
	if p.instance != nil {
		p.instance.Release()
		p.instance = nil
	}
}
