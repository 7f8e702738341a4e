package target

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"go.uber.org/zap"
)

// RenderTarget is one offscreen texture owned by the Pool.
type RenderTarget struct {
	Texture gpu.Handle
	Width   int
	Height  int
	Format  gpu.TextureFormat
}

// Size returns the target size.
func (t RenderTarget) Size() common.Size {
	return common.Size{Width: t.Width, Height: t.Height}
}

// PoolBuilderOption is a functional option applied to a Pool during construction.
type PoolBuilderOption func(*Pool)

// WithLogger sets the logger used for allocation events.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithLogger(log *zap.Logger) PoolBuilderOption {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithDestroyHook registers a function called after the pool destroyed any target. Bind groups
// referencing pool targets must be dropped from it.
//
// Parameters:
//   - hook: the function to call
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithDestroyHook(hook func()) PoolBuilderOption {
	return func(p *Pool) {
		p.onDestroy = hook
	}
}

// WithFormat fixes the intermediate format instead of probing it with SelectFormat.
//
// Parameters:
//   - format: the render target format
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithFormat(format gpu.TextureFormat) PoolBuilderOption {
	return func(p *Pool) {
		p.format = format
	}
}

// Pool owns the scene, post, blur chain and history targets of one device session.
type Pool struct {
	device    gpu.Device
	format    gpu.TextureFormat
	log       *zap.Logger
	onDestroy func()

	config     TargetConfig
	configured bool

	scene   RenderTarget
	post    RenderTarget
	chain   []RenderTarget
	history History

	allocations int
}

// NewPool creates an empty Pool on device.
//
// Parameters:
//   - device: the device that allocates the textures
//   - options: functional options
//
// Returns:
//   - *Pool: the pool
func NewPool(device gpu.Device, options ...PoolBuilderOption) *Pool {
	p := &Pool{
		device: device,
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// SelectFormat probes gpu.IntermediateFormats in order with a 1x1 allocation and keeps the first
// format the device can render to.
//
// Returns:
//   - gpu.TextureFormat: the selected format
//   - error: gpu.ErrNoRenderableFormat if every candidate failed
func (p *Pool) SelectFormat() (gpu.TextureFormat, error) {
	var errs []error
	for _, f := range gpu.IntermediateFormats {
		h, err := p.device.CreateTexture(gpu.TextureDesc{Label: "format probe", Width: 1, Height: 1, Format: f})
		if err != nil {
			p.log.Debug("intermediate format rejected", zap.Stringer("format", f), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		p.device.DestroyTexture(h)
		p.format = f
		p.log.Debug("intermediate format selected", zap.Stringer("format", f))
		return f, nil
	}
	return gpu.FormatUndefined, fmt.Errorf("%w: %w", gpu.ErrNoRenderableFormat, errors.Join(errs...))
}

// Format returns the intermediate format.
func (p *Pool) Format() gpu.TextureFormat {
	return p.format
}

// Ensure makes the pool hold exactly the targets cfg needs. When cfg differs from the applied config
// or any required target is missing, every target is destroyed and all of them are allocated again.
//
// Parameters:
//   - cfg: the planned configuration
//
// Returns:
//   - bool: true if targets were (re)allocated
//   - error: the allocation error; the pool is left empty on failure
func (p *Pool) Ensure(cfg TargetConfig) (bool, error) {
	if p.configured && p.config.Equal(cfg) && p.complete() {
		return false, nil
	}
	if p.format == gpu.FormatUndefined {
		return false, gpu.ErrNoRenderableFormat
	}

	p.destroyAll()
	if err := p.allocate(cfg); err != nil {
		p.destroyAll()
		return false, err
	}
	p.config = cfg
	p.configured = true
	p.allocations++
	p.log.Debug("render targets allocated", zap.Stringer("config", cfg), zap.Int("allocations", p.allocations))
	return true, nil
}

func (p *Pool) allocate(cfg TargetConfig) error {
	var err error
	if p.scene, err = p.create("scene", cfg.Width, cfg.Height); err != nil {
		return err
	}
	if cfg.MipEnabled {
		if p.post, err = p.create("post", cfg.Width, cfg.Height); err != nil {
			return err
		}
	}
	for i, size := range cfg.ChainSizes() {
		t, err := p.create(fmt.Sprintf("blur chain %d", i), size.Width, size.Height)
		if err != nil {
			return err
		}
		p.chain = append(p.chain, t)
	}
	if cfg.TemporalEnabled {
		for i := range p.history.targets {
			if p.history.targets[i], err = p.create(fmt.Sprintf("history %d", i), cfg.Width, cfg.Height); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pool) create(label string, width, height int) (RenderTarget, error) {
	h, err := p.device.CreateTexture(gpu.TextureDesc{Label: label, Width: width, Height: height, Format: p.format})
	if err != nil {
		return RenderTarget{}, err
	}
	return RenderTarget{Texture: h, Width: width, Height: height, Format: p.format}, nil
}

// complete reports whether every target the applied config needs exists.
func (p *Pool) complete() bool {
	if p.scene.Texture.IsZero() {
		return false
	}
	if p.config.MipEnabled && p.post.Texture.IsZero() {
		return false
	}
	if len(p.chain) != len(p.config.ChainSizes()) {
		return false
	}
	return !p.config.TemporalEnabled || p.history.Allocated()
}

func (p *Pool) destroyAll() {
	destroyed := false
	destroy := func(t RenderTarget) {
		if !t.Texture.IsZero() {
			p.device.DestroyTexture(t.Texture)
			destroyed = true
		}
	}

	destroy(p.scene)
	destroy(p.post)
	for _, t := range p.chain {
		destroy(t)
	}
	for _, t := range p.history.targets {
		destroy(t)
	}

	p.scene = RenderTarget{}
	p.post = RenderTarget{}
	p.chain = nil
	p.history.reset()
	p.configured = false

	if destroyed && p.onDestroy != nil {
		p.onDestroy()
	}
}

// Release destroys every target.
func (p *Pool) Release() {
	p.destroyAll()
}

// Config returns the applied config and whether one is applied.
func (p *Pool) Config() (TargetConfig, bool) {
	return p.config, p.configured
}

// Scene returns the scene target.
func (p *Pool) Scene() RenderTarget {
	return p.scene
}

// Post returns the post target, present only with the mip pyramid.
func (p *Pool) Post() (RenderTarget, bool) {
	return p.post, !p.post.Texture.IsZero()
}

// Chain returns the blur chain targets, largest first.
func (p *Pool) Chain() []RenderTarget {
	return p.chain
}

// History returns the history pair. Its targets are zero unless temporal is enabled.
func (p *Pool) History() *History {
	return &p.history
}

// Allocations returns how many times Ensure (re)allocated the targets.
func (p *Pool) Allocations() int {
	return p.allocations
}
