// Package renderer records the frame graph of one device session: the procedural scene, the
// configured blur, temporal accumulation and the composite onto the surface, all in one encoder.
package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/gradient"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/blur"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/temporal"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"go.uber.org/zap"
)

// FrameInput is everything one frame depends on. It is assembled by the caller from a single
// settings snapshot so a frame never observes a half-applied update.
type FrameInput struct {
	// Width and Height are the backing size in pixels.
	Width, Height int
	// Time is the animation clock in seconds.
	Time float64
	// Palette is the live transition palette.
	Palette color.ShaderColorSet
	// Generation is the palette transition generation.
	Generation uint64
	// Settings is the sanitized settings snapshot.
	Settings settings.ShaderSettings
}

// FrameStats describes what a rendered frame did.
type FrameStats struct {
	Config       target.TargetConfig
	Passes       []string
	Reallocated  bool
	HistoryReset bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	device gpu.Device
	log    *zap.Logger

	intermediate gpu.TextureFormat

	pipelines *pipeline.Set
	resources bind_group_provider.BindGroupProvider
	groups    bind_group_cache.BindGroupCache
	pool      *target.Pool
	resolver  *temporal.Resolver

	surfaceWidth  int
	surfaceHeight int
	released      bool
}

// Renderer draws frames for one device session. It is not safe for concurrent use; the frame loop
// owns it.
type Renderer interface {
	// Resize reconfigures the surface when the backing size changed.
	//
	// Parameters:
	//   - width: the backing width in pixels
	//   - height: the backing height in pixels
	//
	// Returns:
	//   - error: an error if the surface cannot be configured
	Resize(width, height int) error

	// RenderFrame plans and, if needed, reallocates the render targets, then records and submits
	// scene, blur, temporal and composite passes in a single frame encoder.
	//
	// Parameters:
	//   - in: the frame input
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: an error if the frame could not be rendered; the frame is discarded
	RenderFrame(in FrameInput) (FrameStats, error)

	// IntermediateFormat returns the format of the offscreen targets.
	//
	// Returns:
	//   - gpu.TextureFormat: the selected format
	IntermediateFormat() gpu.TextureFormat

	// Pool returns the render target pool.
	//
	// Returns:
	//   - *target.Pool: the pool
	Pool() *target.Pool

	// Release drops every session resource. The device itself is released by its owner.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer prepares a device session: selects the intermediate format, compiles every pass,
// creates the pipelines, the uniform buffers and the sampler.
//
// Parameters:
//   - device: a device whose surface is configured
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the session renderer
//   - error: gpu.ErrNoRenderableFormat, *pipeline.CompileError or a resource creation error
func NewRenderer(device gpu.Device, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		device: device,
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(r)
	}

	r.groups = bind_group_cache.NewBindGroupCache(device, bind_group_cache.WithLogger(r.log))
	r.pool = target.NewPool(device,
		target.WithLogger(r.log),
		target.WithFormat(r.intermediate),
		target.WithDestroyHook(r.groups.Invalidate),
	)
	if r.intermediate == gpu.FormatUndefined {
		f, err := r.pool.SelectFormat()
		if err != nil {
			return nil, err
		}
		r.intermediate = f
	}

	set, err := pipeline.Build(device, r.intermediate)
	if err != nil {
		return nil, err
	}
	r.pipelines = set

	r.resources = bind_group_provider.NewBindGroupProvider("pass", bind_group_provider.WithLogger(r.log))
	if err := r.resources.Init(device, set); err != nil {
		return nil, err
	}
	r.resolver = temporal.NewResolver(temporal.WithLogger(r.log))

	r.log.Info("renderer ready",
		zap.Stringer("intermediate", r.intermediate),
		zap.Stringer("surface", device.SurfaceFormat()),
	)
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	if width == r.surfaceWidth && height == r.surfaceHeight {
		return nil
	}
	if err := r.device.ConfigureSurface(width, height); err != nil {
		return err
	}
	r.surfaceWidth, r.surfaceHeight = width, height
	return nil
}

func (r *renderer) IntermediateFormat() gpu.TextureFormat {
	return r.intermediate
}

func (r *renderer) Pool() *target.Pool {
	return r.pool
}

func (r *renderer) RenderFrame(in FrameInput) (FrameStats, error) {
	if r.released {
		return FrameStats{}, errors.New("renderer released")
	}
	s := in.Settings
	cfg := target.Plan(in.Width, in.Height, s)
	stats := FrameStats{Config: cfg}

	if err := r.Resize(cfg.Width, cfg.Height); err != nil {
		return stats, fmt.Errorf("resize: %w", err)
	}
	reallocated, err := r.pool.Ensure(cfg)
	if err != nil {
		return stats, fmt.Errorf("render targets: %w", err)
	}
	stats.Reallocated = reallocated
	stats.HistoryReset = r.resolver.Observe(temporal.NewResetToken(s, in.Generation), r.pool.History())

	frame, err := r.device.BeginFrame()
	if err != nil {
		return stats, fmt.Errorf("begin frame: %w", err)
	}
	enc := graph.NewEncoder(frame, r.pipelines, r.groups, r.resources)
	if err := r.encode(enc, cfg, in); err != nil {
		frame.Discard()
		return stats, err
	}
	stats.Passes = enc.Labels()
	if err := frame.Submit(); err != nil {
		return stats, fmt.Errorf("submit: %w", err)
	}
	return stats, nil
}

func (r *renderer) encode(enc *graph.Encoder, cfg target.TargetConfig, in FrameInput) error {
	s := in.Settings
	scene := r.pool.Scene()

	sc := gradient.NewScene(gradient.Palette(in.Palette, s), s, in.Time)
	su := sceneUniforms(sc, scene)
	if err := enc.Draw(graph.Step{
		Label:    pipeline.PassScene.String(),
		Pass:     pipeline.PassScene,
		Target:   scene.Texture,
		Uniforms: su.Marshal(),
	}); err != nil {
		return err
	}

	post, _ := r.pool.Post()
	blurred, err := blur.Encode(enc, cfg.Blur(), blur.Targets{
		Scene: scene,
		Post:  post,
		Chain: r.pool.Chain(),
	}, blur.Params{
		Radius:    s.BlurRadius,
		MipCurve:  s.MipCurve,
		MipLevels: s.MipLevels,
	})
	if err != nil {
		return err
	}

	resolved, err := r.resolver.Encode(enc, blurred, r.pool.History(), temporal.ParamsFrom(s))
	if err != nil {
		return err
	}

	cu := compositeUniforms(resolved, s, in.Time, r.device.SurfaceFormat())
	return enc.Draw(graph.Step{
		Label:    pipeline.PassComposite.String(),
		Pass:     pipeline.PassComposite,
		Sources:  []gpu.Handle{resolved.Texture},
		Uniforms: cu.Marshal(),
	})
}

func (r *renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.groups.Invalidate()
	r.pool.Release()
	r.resources.Release()
	r.resolver.Forget()
}
