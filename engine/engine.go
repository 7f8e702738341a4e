package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/diagnostics"
	"github.com/Carmen-Shannon/backdrop/engine/lifecycle"
	"github.com/Carmen-Shannon/backdrop/engine/profiler"
	"github.com/Carmen-Shannon/backdrop/engine/renderer"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
// Everything below the mutex is owned by the loop goroutine.
type engine struct {
	provider        gpu.Provider
	loop            *scheduler.Loop
	ownsLoop        bool
	source          scheduler.FrameSource
	canvas          scheduler.Canvas
	log             *zap.Logger
	now             func() time.Time
	rendererOptions []renderer.RendererBuilderOption
	retryDelay      time.Duration
	initialPalette  color.ShaderColorSet

	store    *settings.Store
	reporter *diagnostics.Reporter
	manager  lifecycle.Manager
	frames   scheduler.FrameScheduler

	mu               sync.Mutex
	onUnsupported    func(bool)
	unsupported      bool
	lastFrame        renderer.FrameStats
	framesRendered   int
	profilingEnabled bool

	profiler   *profiler.Profiler
	transition *color.Transition
	start      time.Time

	startOnce   sync.Once
	disposeOnce sync.Once
}

// Engine is the main entry point for the background renderer.
// It owns the device lifecycle, the frame scheduler and the palette transition, and renders the
// gradient into the canvas until disposed.
type Engine interface {
	// SetPalette starts a transition towards a new palette. A nil palette selects the fallback set.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - palette: the target palette, or nil
	SetPalette(palette *color.ShaderColorSet)

	// SetSettings merges a partial settings update. Unknown or out-of-range values are sanitized.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - patch: the fields to change
	//
	// Returns:
	//   - settings.ShaderSettings: the settings after the update
	SetSettings(patch settings.Patch) settings.ShaderSettings

	// Settings returns the current settings.
	//
	// Returns:
	//   - settings.ShaderSettings: the settings snapshot
	Settings() settings.ShaderSettings

	// OnUnsupportedChange registers the function called when GPU rendering becomes unsupported.
	//
	// Parameters:
	//   - callback: receives true once the GPU path failed fatally
	OnUnsupportedChange(callback func(unsupported bool))

	// OnDiagnostics registers the function receiving device errors, losses and frame failures.
	// Consecutive duplicate messages are dropped.
	//
	// Parameters:
	//   - callback: receives one message per diagnostic
	OnDiagnostics(callback func(message string))

	// Unsupported reports whether the GPU path failed fatally.
	//
	// Returns:
	//   - bool: true if the host should show a fallback
	Unsupported() bool

	// State returns the device lifecycle state.
	//
	// Returns:
	//   - lifecycle.State: the state
	State() lifecycle.State

	// LastFrame returns the statistics of the most recent rendered frame.
	//
	// Returns:
	//   - renderer.FrameStats: the frame statistics
	//   - int: the number of frames rendered so far
	LastFrame() (renderer.FrameStats, int)

	// Loop returns the task loop frames and lifecycle events run on.
	//
	// Returns:
	//   - *scheduler.Loop: the loop
	Loop() *scheduler.Loop

	// EnableProfiler enables frame statistics output to the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics output.
	DisableProfiler()

	// Start begins device bootstrap and frame scheduling. Subsequent calls are no-ops.
	Start()

	// Dispose stops scheduling, cancels and awaits any bootstrap in flight and releases the GPU once
	// a frame in progress on the loop has finished with it. It must not be called from within a frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Dispose()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine rendering through provider.
// Applies defaults first: a private task loop driven by a TickerSource, a 1280x720 fixed canvas
// and default settings.
//
// Parameters:
//   - provider: the GPU entry point
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(provider gpu.Provider, options ...EngineBuilderOption) Engine {
	e := &engine{
		provider:       provider,
		canvas:         scheduler.FixedCanvas{Width: 1280, Height: 720, DPR: 1},
		log:            zap.NewNop(),
		now:            time.Now,
		retryDelay:     lifecycle.DefaultRetryDelay,
		initialPalette: color.FallbackSet(),
		store:          settings.NewStore(settings.Default()),
	}
	for _, opt := range options {
		opt(e)
	}

	e.reporter = diagnostics.NewReporter(diagnostics.WithLogger(e.log))
	if e.loop == nil {
		e.loop = scheduler.NewLoop(
			scheduler.WithLogger(e.log),
			scheduler.WithPanicHandler(func(v any) {
				e.reporter.Report(fmt.Sprintf("render task panicked: %v", v))
			}),
		)
		e.ownsLoop = true
	}
	if e.source == nil {
		e.source = scheduler.NewTickerSource(e.loop, scheduler.DefaultDisplayInterval)
	}

	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log), profiler.WithClock(e.now))
	e.transition = color.NewTransition(e.initialPalette)
	e.manager = lifecycle.NewManager(provider,
		lifecycle.WithLogger(e.log),
		lifecycle.WithExecutor(e.loop.Post),
		lifecycle.WithSurfaceSize(e.backingSize),
		lifecycle.WithRendererOptions(e.rendererOptions...),
		lifecycle.WithRetryDelay(e.retryDelay),
		lifecycle.WithOnUnsupportedChange(e.setUnsupported),
		lifecycle.WithOnDiagnostic(func(message string) { e.reporter.Report(message) }),
	)
	e.frames = scheduler.NewFrameScheduler(e.source, e.frame,
		scheduler.WithFrameInterval(func() time.Duration { return e.Settings().FrameInterval() }),
		scheduler.WithCanvas(e.canvas, func() { e.loop.Post(e.applyResize) }),
		scheduler.WithSchedulerLogger(e.log),
	)
	return e
}

func (e *engine) SetPalette(palette *color.ShaderColorSet) {
	target := color.FallbackSet()
	if palette != nil {
		target = palette.Clamped()
	}
	e.loop.Post(func() {
		if e.transition.SetTarget(target, e.now(), e.Settings().TransitionDuration()) {
			e.log.Debug("palette transition started", zap.Strings("palette", target.Hex()), zap.Uint64("generation", e.transition.Generation()))
		}
	})
}

func (e *engine) SetSettings(patch settings.Patch) settings.ShaderSettings {
	return e.store.Apply(patch)
}

func (e *engine) Settings() settings.ShaderSettings {
	s, _ := e.store.Snapshot()
	return s
}

func (e *engine) OnUnsupportedChange(callback func(unsupported bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUnsupported = callback
}

func (e *engine) OnDiagnostics(callback func(message string)) {
	e.reporter.SetSink(callback)
}

func (e *engine) Unsupported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsupported
}

func (e *engine) State() lifecycle.State {
	return e.manager.State()
}

func (e *engine) LastFrame() (renderer.FrameStats, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFrame, e.framesRendered
}

func (e *engine) Loop() *scheduler.Loop {
	return e.loop
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) Start() {
	e.startOnce.Do(func() {
		e.start = e.now()
		e.manager.Ensure()
		e.frames.Start()
	})
}

func (e *engine) Dispose() {
	e.disposeOnce.Do(func() {
		e.frames.Dispose()
		e.manager.Dispose()
		if e.ownsLoop {
			e.loop.Close()
		}
		e.log.Debug("engine disposed")
	})
}

// frame renders one frame. It runs on the loop goroutine and is a no-op until a session is ready.
// The session lease ends before failures are reported, since handling a loss releases the session.
func (e *engine) frame(t scheduler.Tick) {
	switch e.manager.State() {
	case lifecycle.StateUninitialized:
		e.manager.Ensure()
		return
	case lifecycle.StateReady:
	default:
		return
	}
	sess, end, ok := e.manager.Acquire()
	if !ok {
		return
	}

	s := e.Settings()
	w, h := scheduler.BackingSize(e.canvas, s.MaxDevicePixelRatio, s.RenderScale)
	stats, err := sess.Renderer.RenderFrame(renderer.FrameInput{
		Width:      w,
		Height:     h,
		Time:       t.Now.Sub(e.start).Seconds(),
		Palette:    e.transition.Live(t.Now, s.TransitionDuration()),
		Generation: e.transition.Generation(),
		Settings:   s,
	})
	end()
	if err != nil {
		e.frameFailed(sess, err)
		return
	}

	e.mu.Lock()
	e.lastFrame = stats
	e.framesRendered++
	profiling := e.profilingEnabled
	e.mu.Unlock()

	if profiling {
		e.profiler.Tick(profiler.FrameSample{
			Passes:       len(stats.Passes),
			Reallocated:  stats.Reallocated,
			HistoryReset: stats.HistoryReset,
		})
	}
}

// frameFailed treats a lost device as a lifecycle event and anything else as a diagnostic.
func (e *engine) frameFailed(sess *lifecycle.Session, err error) {
	if errors.Is(err, gpu.ErrDeviceLost) {
		e.manager.HandleLost(sess.ID, err.Error())
		return
	}
	e.reporter.Report(fmt.Sprintf("frame failed: %v", err))
}

// applyResize reconfigures the surface as soon as the canvas changes instead of at the next frame.
func (e *engine) applyResize() {
	sess, end, ok := e.manager.Acquire()
	if !ok {
		return
	}
	w, h := e.backingSize()
	err := sess.Renderer.Resize(w, h)
	end()
	if err != nil {
		e.frameFailed(sess, fmt.Errorf("resize: %w", err))
	}
}

func (e *engine) backingSize() (int, int) {
	s := e.Settings()
	return scheduler.BackingSize(e.canvas, s.MaxDevicePixelRatio, s.RenderScale)
}

func (e *engine) setUnsupported(unsupported bool) {
	e.mu.Lock()
	if e.unsupported == unsupported {
		e.mu.Unlock()
		return
	}
	e.unsupported = unsupported
	callback := e.onUnsupported
	e.mu.Unlock()

	if callback != nil {
		callback(unsupported)
	}
}
