package engine

import (
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/renderer"
	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics output.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithLogger sets the logger shared by every engine component.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithLoop runs the engine on a loop owned by the caller. The caller runs the loop and closes it
// after Dispose.
//
// Parameters:
//   - loop: the task loop
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoop(loop *scheduler.Loop) EngineBuilderOption {
	return func(e *engine) {
		e.loop = loop
	}
}

// WithFrameSource sets the source of frame callbacks. Defaults to a TickerSource on the loop.
//
// Parameters:
//   - source: the frame source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSource(source scheduler.FrameSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = source
	}
}

// WithCanvas sets the canvas whose size and pixel ratio drive the backing size.
//
// Parameters:
//   - canvas: the canvas
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCanvas(canvas scheduler.Canvas) EngineBuilderOption {
	return func(e *engine) {
		if canvas != nil {
			e.canvas = canvas
		}
	}
}

// WithSettings sets the initial settings. They are sanitized.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSettings(s settings.ShaderSettings) EngineBuilderOption {
	return func(e *engine) {
		e.store.Replace(s)
	}
}

// WithPalette sets the palette shown before the first SetPalette call.
//
// Parameters:
//   - palette: the initial palette
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPalette(palette color.ShaderColorSet) EngineBuilderOption {
	return func(e *engine) {
		e.initialPalette = palette
	}
}

// WithRendererOptions sets options applied to the renderer of every device session.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = options
	}
}

// WithRetryDelay sets the pause before a transiently failed bootstrap is retried.
//
// Parameters:
//   - delay: the retry delay
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRetryDelay(delay time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.retryDelay = delay
	}
}

// WithClock replaces time.Now for palette transitions and animation time.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
