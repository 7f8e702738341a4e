package gpu

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/arena"
	"github.com/cogentcore/webgpu/wgpu"
)

type resourceKind int

const (
	resourceModule resourceKind = iota
	resourcePipeline
	resourceTexture
	resourceSampler
	resourceBuffer
	resourceBindGroup
)

// wgpuResource is one arena slot. Only the fields matching kind are set.
type wgpuResource struct {
	kind resourceKind

	module *wgpu.ShaderModule

	pipeline       *wgpu.RenderPipeline
	pipelineLayout *wgpu.PipelineLayout
	groupLayout    *wgpu.BindGroupLayout
	bindings       []BindingKind

	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int

	sampler *wgpu.Sampler

	buffer *wgpu.Buffer

	bindGroup *wgpu.BindGroup
}

func (r wgpuResource) release() {
	switch r.kind {
	case resourceModule:
		r.module.Release()
	case resourcePipeline:
		r.pipeline.Release()
		r.pipelineLayout.Release()
		r.groupLayout.Release()
	case resourceTexture:
		r.view.Release()
		r.texture.Release()
	case resourceSampler:
		r.sampler.Release()
	case resourceBuffer:
		r.buffer.Release()
	case resourceBindGroup:
		r.bindGroup.Release()
	}
}

// wgpuDeviceImpl implements Device on top of a wgpu-native device.
type wgpuDeviceImpl struct {
	mu       *sync.Mutex
	provider *wgpuProvider
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat     TextureFormat
	wgpuSurfaceFormat wgpu.TextureFormat
	presentMode       wgpu.PresentMode

	resources *arena.Arena[wgpuResource]
	onError   func(string)
}

var _ Device = &wgpuDeviceImpl{}

func newWGPUDevice(p *wgpuProvider, adapter *wgpu.Adapter, device *wgpu.Device, onError func(string)) *wgpuDeviceImpl {
	presentMode := wgpu.PresentModeFifo
	if p.presentMode == PresentModeUncapped {
		presentMode = wgpu.PresentModeImmediate
	}
	return &wgpuDeviceImpl{
		mu:          &sync.Mutex{},
		provider:    p,
		adapter:     adapter,
		device:      device,
		queue:       device.GetQueue(),
		presentMode: presentMode,
		resources:   arena.New[wgpuResource](),
		onError:     onError,
	}
}

func (d *wgpuDeviceImpl) reportError(err error) {
	if err != nil && d.onError != nil {
		d.onError(err.Error())
	}
}

func (d *wgpuDeviceImpl) ConfigureSurface(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	surface := d.provider.surface
	if surface == nil {
		return ErrContextUnavailable
	}

	capabilities := surface.GetCapabilities(d.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no formats", ErrContextUnavailable)
	}

	// Prefer a non-sRGB swapchain; the composite pass writes encoded values itself.
	chosen := capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			chosen = f
			break
		}
	}
	d.wgpuSurfaceFormat = chosen
	d.surfaceFormat = fromWGPUFormat(chosen)

	surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      chosen,
		Width:       uint32(max(1, width)),
		Height:      uint32(max(1, height)),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	return nil
}

func (d *wgpuDeviceImpl) SurfaceFormat() TextureFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceFormat
}

func (d *wgpuDeviceImpl) CompileShader(label, source string) (Handle, []CompileMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return Handle{}, []CompileMessage{{Module: label, Text: err.Error()}}, err
	}
	return d.resources.Insert(wgpuResource{kind: resourceModule, module: module}), nil, nil
}

func (d *wgpuDeviceImpl) CreatePipeline(desc PipelineDesc) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mod, ok := d.resources.Get(desc.Module)
	if !ok || mod.kind != resourceModule {
		return Handle{}, fmt.Errorf("%w: shader module for %s", ErrStaleHandle, desc.Label)
	}

	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Bindings))
	for i, kind := range desc.Bindings {
		entries[i] = layoutEntry(uint32(i), kind)
	}
	groupLayout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return Handle{}, fmt.Errorf("failed to create bind group layout for %s: %w", desc.Label, err)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{groupLayout},
	})
	if err != nil {
		groupLayout.Release()
		return Handle{}, err
	}

	format := d.wgpuSurfaceFormat
	if desc.Format != FormatSurface {
		format = toWGPUFormat(desc.Format)
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     mod.module,
			EntryPoint: desc.VertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod.module,
			EntryPoint: desc.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		groupLayout.Release()
		return Handle{}, err
	}

	return d.resources.Insert(wgpuResource{
		kind:           resourcePipeline,
		pipeline:       created,
		pipelineLayout: pipelineLayout,
		groupLayout:    groupLayout,
		bindings:       append([]BindingKind(nil), desc.Bindings...),
	}), nil
}

func (d *wgpuDeviceImpl) CreateSampler(label string) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         common.Coalesce(label, "Linear Clamp Sampler"),
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return Handle{}, fmt.Errorf("failed to create sampler: %w", err)
	}
	return d.resources.Insert(wgpuResource{kind: resourceSampler, sampler: samp}), nil
}

func (d *wgpuDeviceImpl) CreateUniformBuffer(label string, size uint64) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  common.AlignUp(16, size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return Handle{}, fmt.Errorf("%w: uniform buffer %s: %v", ErrAllocation, label, err)
	}
	return d.resources.Insert(wgpuResource{kind: resourceBuffer, buffer: buf}), nil
}

func (d *wgpuDeviceImpl) WriteBuffer(buffer Handle, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.resources.Get(buffer)
	if !ok || r.kind != resourceBuffer {
		return ErrStaleHandle
	}
	d.queue.WriteBuffer(r.buffer, 0, data)
	return nil
}

func (d *wgpuDeviceImpl) CreateTexture(desc TextureDesc) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(max(1, desc.Width)),
			Height:             uint32(max(1, desc.Height)),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toWGPUFormat(desc.Format),
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return Handle{}, fmt.Errorf("%w: %s (%s %dx%d): %v", ErrAllocation, desc.Label, desc.Format, desc.Width, desc.Height, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return Handle{}, fmt.Errorf("%w: view for %s: %v", ErrAllocation, desc.Label, err)
	}
	return d.resources.Insert(wgpuResource{
		kind:    resourceTexture,
		texture: tex,
		view:    view,
		width:   desc.Width,
		height:  desc.Height,
	}), nil
}

func (d *wgpuDeviceImpl) DestroyTexture(texture Handle) {
	d.destroy(texture, resourceTexture)
}

func (d *wgpuDeviceImpl) CreateBindGroup(desc BindGroupDesc) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.resources.Get(desc.Pipeline)
	if !ok || p.kind != resourcePipeline {
		return Handle{}, fmt.Errorf("%w: pipeline for %s", ErrStaleHandle, desc.Label)
	}
	if len(desc.Entries) != len(p.bindings) {
		return Handle{}, fmt.Errorf("bind group %s: %d entries for %d bindings", desc.Label, len(desc.Entries), len(p.bindings))
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, h := range desc.Entries {
		r, ok := d.resources.Get(h)
		if !ok {
			return Handle{}, fmt.Errorf("%w: %s binding %d", ErrStaleHandle, desc.Label, i)
		}
		entry := wgpu.BindGroupEntry{Binding: uint32(i)}
		switch {
		case p.bindings[i] == BindingTexture && r.kind == resourceTexture:
			entry.TextureView = r.view
		case p.bindings[i] == BindingSampler && r.kind == resourceSampler:
			entry.Sampler = r.sampler
		case p.bindings[i] == BindingUniform && r.kind == resourceBuffer:
			entry.Buffer = r.buffer
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		default:
			return Handle{}, fmt.Errorf("bind group %s: binding %d expects %s", desc.Label, i, p.bindings[i])
		}
		entries[i] = entry
	}

	bindGroup, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label + " Bind Group",
		Layout:  p.groupLayout,
		Entries: entries,
	})
	if err != nil {
		return Handle{}, err
	}
	return d.resources.Insert(wgpuResource{kind: resourceBindGroup, bindGroup: bindGroup}), nil
}

func (d *wgpuDeviceImpl) DestroyBindGroup(group Handle) {
	d.destroy(group, resourceBindGroup)
}

func (d *wgpuDeviceImpl) destroy(h Handle, kind resourceKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.resources.Get(h)
	if !ok || r.kind != kind {
		return
	}
	d.resources.Remove(h)
	r.release()
}

func (d *wgpuDeviceImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Bind groups reference textures and buffers, pipelines reference modules.
	order := []resourceKind{resourceBindGroup, resourcePipeline, resourceModule, resourceTexture, resourceSampler, resourceBuffer}
	for _, kind := range order {
		d.resources.Each(func(_ Handle, r wgpuResource) {
			if r.kind == kind {
				r.release()
			}
		})
	}
	d.resources.Clear()

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
}

func layoutEntry(binding uint32, kind BindingKind) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
	}
	switch kind {
	case BindingTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case BindingSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case BindingUniform:
		entry.Visibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	}
	return entry
}

func toWGPUFormat(f TextureFormat) wgpu.TextureFormat {
	switch f {
	case FormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case FormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case FormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return wgpu.TextureFormatUndefined
}

func fromWGPUFormat(f wgpu.TextureFormat) TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA16Float:
		return FormatRGBA16Float
	case wgpu.TextureFormatRGBA8Unorm:
		return FormatRGBA8Unorm
	case wgpu.TextureFormatBGRA8Unorm:
		return FormatBGRA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return FormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return FormatBGRA8UnormSrgb
	}
	return FormatSurface
}
