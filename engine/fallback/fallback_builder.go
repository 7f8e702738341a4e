package fallback

import "go.uber.org/zap"

// RendererBuilderOption is a functional option applied to a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithWorkers sets the size of the band worker pool.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(n, 1)
	}
}

// WithBandHeight sets the number of rows rendered per task.
//
// Parameters:
//   - rows: the band height, at least 1
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithBandHeight(rows int) RendererBuilderOption {
	return func(r *renderer) {
		r.bandHeight = max(rows, 1)
	}
}

// WithLogger sets the logger of the renderer.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}
