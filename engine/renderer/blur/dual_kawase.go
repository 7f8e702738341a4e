package blur

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
)

// DualOffset returns the tap offset, in source texels, of the i-th pass of either direction.
//
// Parameters:
//   - radius: the blur radius setting
//   - i: the pass index, 0 for the pass nearest the full-resolution image
//
// Returns:
//   - float32: the offset
func DualOffset(radius float64, i int) float32 {
	base := 0.5 + radius/16
	step := 0.25 + radius/32
	return float32(base + step*float64(i))
}

// encodeDual downsamples scene through the chain and upsamples back into scene.
func encodeDual(enc *graph.Encoder, t Targets, p Params) (target.RenderTarget, error) {
	n := min(len(t.Chain), bind_group_provider.MaxDualPasses)
	if n == 0 {
		return t.Scene, nil
	}

	src := t.Scene
	for i := range n {
		dst := t.Chain[i]
		u := uniform.GPUBlurUniforms{Texel: texel(src), Offset: DualOffset(p.Radius, i)}
		if err := enc.Draw(graph.Step{
			Label:    fmt.Sprintf("dual-down %d", i),
			Pass:     pipeline.PassDualDown,
			Slot:     i,
			Target:   dst.Texture,
			Sources:  []gpu.Handle{src.Texture},
			Uniforms: u.Marshal(),
		}); err != nil {
			return target.RenderTarget{}, err
		}
		src = dst
	}

	for i := n - 1; i >= 0; i-- {
		dst := t.Scene
		if i > 0 {
			dst = t.Chain[i-1]
		}
		u := uniform.GPUBlurUniforms{Texel: texel(src), Offset: DualOffset(p.Radius, i)}
		if err := enc.Draw(graph.Step{
			Label:    fmt.Sprintf("dual-up %d", i),
			Pass:     pipeline.PassDualUp,
			Slot:     i,
			Target:   dst.Texture,
			Sources:  []gpu.Handle{src.Texture},
			Uniforms: u.Marshal(),
		}); err != nil {
			return target.RenderTarget{}, err
		}
		src = dst
	}
	return t.Scene, nil
}
