package gpu

import "errors"

var (
	// ErrUnavailable means no GPU adapter or device could be obtained. It is fatal for the session.
	ErrUnavailable = errors.New("gpu: webgpu unavailable")

	// ErrContextUnavailable means the presentation surface could not be created or configured.
	ErrContextUnavailable = errors.New("gpu: presentation context unavailable")

	// ErrDeviceLost means the device was lost while a request was in flight. It is transient.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrAllocation means a texture or buffer allocation failed.
	ErrAllocation = errors.New("gpu: allocation failed")

	// ErrNoRenderableFormat means none of the intermediate formats can be rendered to.
	ErrNoRenderableFormat = errors.New("gpu: no renderable intermediate format")

	// ErrStaleHandle means a handle did not resolve to a live object of the expected kind.
	ErrStaleHandle = errors.New("gpu: stale handle")
)
