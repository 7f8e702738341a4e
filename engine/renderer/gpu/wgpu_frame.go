package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuFrame records every pass of a frame into one command encoder. Each Draw opens and ends its own
// render pass so consecutive passes may sample what earlier passes wrote.
type wgpuFrame struct {
	device      *wgpuDeviceImpl
	encoder     *wgpu.CommandEncoder
	surfaceTex  *wgpu.Texture
	surfaceView *wgpu.TextureView
	done        bool
}

var _ Frame = &wgpuFrame{}

func (d *wgpuDeviceImpl) BeginFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	surface := d.provider.surface
	if surface == nil || d.surfaceFormat == FormatUndefined {
		return nil, ErrContextUnavailable
	}

	tex, err := surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}

	return &wgpuFrame{
		device:      d,
		encoder:     encoder,
		surfaceTex:  tex,
		surfaceView: view,
	}, nil
}

func (f *wgpuFrame) Draw(pass Pass) error {
	if f.done {
		return fmt.Errorf("draw %s on a finished frame", pass.Label)
	}

	f.device.mu.Lock()
	defer f.device.mu.Unlock()

	p, ok := f.device.resources.Get(pass.Pipeline)
	if !ok || p.kind != resourcePipeline {
		return fmt.Errorf("%w: pipeline for pass %s", ErrStaleHandle, pass.Label)
	}
	bg, ok := f.device.resources.Get(pass.BindGroup)
	if !ok || bg.kind != resourceBindGroup {
		return fmt.Errorf("%w: bind group for pass %s", ErrStaleHandle, pass.Label)
	}

	view := f.surfaceView
	if !pass.Target.IsZero() {
		t, ok := f.device.resources.Get(pass.Target)
		if !ok || t.kind != resourceTexture {
			return fmt.Errorf("%w: target for pass %s", ErrStaleHandle, pass.Label)
		}
		view = t.view
	}

	rp := f.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: pass.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bg.bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()
	return nil
}

func (f *wgpuFrame) Submit() error {
	if f.done {
		return nil
	}
	defer f.release()

	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		f.device.reportError(err)
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer cmd.Release()

	f.device.mu.Lock()
	f.device.queue.Submit(cmd)
	f.device.mu.Unlock()

	f.device.provider.surface.Present()
	return nil
}

func (f *wgpuFrame) Discard() {
	if !f.done {
		f.release()
	}
}

func (f *wgpuFrame) release() {
	f.done = true
	f.encoder.Release()
	f.surfaceView.Release()
	f.surfaceTex.Release()
}
