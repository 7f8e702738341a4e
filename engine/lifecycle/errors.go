package lifecycle

import (
	"errors"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
)

// ErrDisposed is returned by Wait once the manager was disposed.
var ErrDisposed = errors.New("lifecycle: disposed")

// IsFatal reports whether a bootstrap error means the GPU path can never succeed: no adapter or
// device, no presentation surface, no renderable intermediate format, or shaders that do not compile.
// Every other error is treated as transient and retried.
//
// Parameters:
//   - err: the bootstrap error
//
// Returns:
//   - bool: true if the error is fatal
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *pipeline.CompileError
	return errors.Is(err, gpu.ErrUnavailable) ||
		errors.Is(err, gpu.ErrContextUnavailable) ||
		errors.Is(err, gpu.ErrNoRenderableFormat) ||
		errors.As(err, &ce)
}
