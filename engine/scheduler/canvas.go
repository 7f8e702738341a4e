package scheduler

import (
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
)

// Canvas is the drawable area the background renders into.
type Canvas interface {
	// ClientSize returns the size in logical (CSS-like) pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	ClientSize() (int, int)

	// DevicePixelRatio returns physical pixels per logical pixel.
	//
	// Returns:
	//   - float64: the ratio
	DevicePixelRatio() float64

	// ObserveResize registers fn to run whenever the client size or pixel ratio changes.
	//
	// Parameters:
	//   - fn: the observer
	//
	// Returns:
	//   - func(): stops observing
	ObserveResize(fn func()) (stop func())
}

// BackingDimension returns one backing dimension for a client dimension:
// floor(client * min(dpr, maxDPR) * clamp(renderScale, 0.2, 1)), never below 1.
//
// Parameters:
//   - client: the client dimension in logical pixels
//   - dpr: the device pixel ratio
//   - maxDPR: the upper bound on the pixel ratio
//   - renderScale: the resolution scale
//
// Returns:
//   - int: the backing dimension in pixels
func BackingDimension(client int, dpr, maxDPR, renderScale float64) int {
	if !common.Finite(dpr) || dpr <= 0 {
		dpr = 1
	}
	if common.Finite(maxDPR) && maxDPR > 0 {
		dpr = min(dpr, maxDPR)
	}
	if !common.Finite(renderScale) {
		renderScale = 1
	}
	scale := common.Clamp(common.Coalesce(renderScale, 1), 0.2, 1)
	return max(int(math.Floor(float64(client)*dpr*scale)), 1)
}

// BackingSize returns the backing size of canvas.
//
// Parameters:
//   - canvas: the canvas
//   - maxDPR: the upper bound on the pixel ratio
//   - renderScale: the resolution scale
//
// Returns:
//   - int: the backing width
//   - int: the backing height
func BackingSize(canvas Canvas, maxDPR, renderScale float64) (int, int) {
	w, h := canvas.ClientSize()
	dpr := canvas.DevicePixelRatio()
	return BackingDimension(w, dpr, maxDPR, renderScale), BackingDimension(h, dpr, maxDPR, renderScale)
}

// FixedCanvas is a Canvas of constant size, used for headless rendering.
type FixedCanvas struct {
	Width  int
	Height int
	DPR    float64
}

var _ Canvas = FixedCanvas{}

func (c FixedCanvas) ClientSize() (int, int) {
	return c.Width, c.Height
}

func (c FixedCanvas) DevicePixelRatio() float64 {
	return common.Coalesce(c.DPR, 1)
}

func (c FixedCanvas) ObserveResize(func()) func() {
	return func() {}
}
