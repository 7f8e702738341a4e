package lifecycle

import (
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/renderer"
	"go.uber.org/zap"
)

// ManagerBuilderOption is a functional option applied to a Manager during construction.
type ManagerBuilderOption func(*manager)

// WithLogger sets the logger used for state transitions. It is passed on to every renderer.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithExecutor routes bootstrap completions and device callbacks through execute, typically the
// frame loop's Post. When execute reports false the callback runs on the calling goroutine.
//
// Parameters:
//   - execute: schedules a function on the owning goroutine
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithExecutor(execute func(func()) bool) ManagerBuilderOption {
	return func(m *manager) {
		m.execute = execute
	}
}

// WithSurfaceSize sets the function queried for the initial surface size of every session.
//
// Parameters:
//   - size: returns the backing width and height in pixels
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithSurfaceSize(size func() (int, int)) ManagerBuilderOption {
	return func(m *manager) {
		if size != nil {
			m.surfaceSize = size
		}
	}
}

// WithRendererOptions sets options applied to every session renderer.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) ManagerBuilderOption {
	return func(m *manager) {
		m.rendererOptions = options
	}
}

// WithRetryDelay sets the pause before a transiently failed bootstrap is retried.
//
// Parameters:
//   - delay: the retry delay
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithRetryDelay(delay time.Duration) ManagerBuilderOption {
	return func(m *manager) {
		m.retryDelay = max(delay, 0)
	}
}

// WithOnReady registers a callback invoked with every new session.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithOnReady(fn func(*Session)) ManagerBuilderOption {
	return func(m *manager) {
		m.onReady = fn
	}
}

// WithOnUnsupportedChange registers a callback invoked when the GPU path becomes unsupported.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithOnUnsupportedChange(fn func(bool)) ManagerBuilderOption {
	return func(m *manager) {
		m.onUnsupportedChange = fn
	}
}

// WithOnDiagnostic registers a callback for device errors, losses and bootstrap failures.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithOnDiagnostic(fn func(string)) ManagerBuilderOption {
	return func(m *manager) {
		m.onDiagnostic = fn
	}
}

// WithOnStateChange registers a callback invoked after every state transition.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithOnStateChange(fn func(State)) ManagerBuilderOption {
	return func(m *manager) {
		m.onStateChange = fn
	}
}
