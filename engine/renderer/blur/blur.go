// Package blur records the Dual-Kawase and Mip-Pyramid blur passes. Both algorithms are stateless:
// they draw between targets owned by the target pool and return the target holding the result.
package blur

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
)

// Targets are the pool targets a blur reads and writes.
type Targets struct {
	Scene target.RenderTarget
	Post  target.RenderTarget
	Chain []target.RenderTarget
}

// Params are the blur settings that do not affect target allocation.
type Params struct {
	Radius    float64
	MipCurve  float64
	MipLevels int
}

// Encode records the passes of the planned blur.
//
// Parameters:
//   - enc: the frame encoder
//   - plan: the blur variant and its allocation parameters
//   - targets: the pool targets
//   - params: the radius and curve settings
//
// Returns:
//   - target.RenderTarget: the target holding the blurred image, Scene when nothing was drawn
//   - error: an error if a pass could not be recorded
func Encode(enc *graph.Encoder, plan target.BlurPlan, targets Targets, params Params) (target.RenderTarget, error) {
	switch plan.(type) {
	case target.NoBlur:
		return targets.Scene, nil
	case target.DualKawase:
		return encodeDual(enc, targets, params)
	case target.MipPyramid:
		return encodeMip(enc, targets, params)
	}
	return target.RenderTarget{}, fmt.Errorf("unknown blur plan %T", plan)
}

// texel returns the reciprocal size of t.
func texel(t target.RenderTarget) [2]float32 {
	return [2]float32{1 / float32(max(t.Width, 1)), 1 / float32(max(t.Height, 1))}
}
