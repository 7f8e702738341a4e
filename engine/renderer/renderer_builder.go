package renderer

import (
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger shared by the renderer and its target pool, bind group cache and
// temporal resolver.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithIntermediateFormat skips format probing and renders offscreen targets in format.
//
// Parameters:
//   - format: the intermediate format
//
// Returns:
//   - RendererBuilderOption: a function that applies the format option to a renderer
func WithIntermediateFormat(format gpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.intermediate = format
	}
}

// WithSurfaceSize records the size the surface was configured with before the renderer was created,
// so the first frame does not configure it again.
//
// Parameters:
//   - width: the configured width
//   - height: the configured height
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface size option to a renderer
func WithSurfaceSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.surfaceWidth, r.surfaceHeight = width, height
	}
}
