package blur

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
)

// MipWeights are the normalized weights of the mip composite pass.
type MipWeights struct {
	Base   float32
	Levels [target.MaxMipLevels]float32
	Active int
}

// ComputeMipWeights derives the composite weights. The blur strength grows with the radius until
// it reaches 8; level l contributes strength*(l+0.25)^-curve before normalization.
//
// Parameters:
//   - radius: the blur radius setting
//   - curve: the falloff exponent across levels
//   - mipLevels: the requested level count
//   - available: the number of allocated chain levels
//
// Returns:
//   - MipWeights: weights summing to 1 over the base and the active levels
func ComputeMipWeights(radius, curve float64, mipLevels, available int) MipWeights {
	strength := common.Clamp01(radius / 8)
	w := MipWeights{Active: common.Clamp(min(mipLevels, available), 0, target.MaxMipLevels)}

	base := 1 - strength
	levels := [target.MaxMipLevels]float64{}
	total := base
	for l := range w.Active {
		levels[l] = strength * math.Pow(float64(l)+0.25, -curve)
		total += levels[l]
	}
	if total <= 0 {
		w.Base = 1
		return w
	}
	w.Base = float32(base / total)
	for l := range w.Active {
		w.Levels[l] = float32(levels[l] / total)
	}
	return w
}

// encodeMip downsamples scene through the chain and composites every level into post.
func encodeMip(enc *graph.Encoder, t Targets, p Params) (target.RenderTarget, error) {
	n := min(len(t.Chain), target.MaxMipLevels)
	if n == 0 || t.Post.Texture.IsZero() {
		return t.Scene, nil
	}

	src := t.Scene
	for i := range n {
		dst := t.Chain[i]
		u := uniform.GPUBlurUniforms{Texel: texel(src), Offset: 1}
		if err := enc.Draw(graph.Step{
			Label:    fmt.Sprintf("mip-down %d", i),
			Pass:     pipeline.PassMipDown,
			Slot:     i,
			Target:   dst.Texture,
			Sources:  []gpu.Handle{src.Texture},
			Uniforms: u.Marshal(),
		}); err != nil {
			return target.RenderTarget{}, err
		}
		src = dst
	}

	w := ComputeMipWeights(p.Radius, p.MipCurve, p.MipLevels, n)
	sources := make([]gpu.Handle, 0, 1+target.MaxMipLevels)
	sources = append(sources, t.Scene.Texture)
	for l := range target.MaxMipLevels {
		// missing levels bind the smallest level with zero weight
		sources = append(sources, t.Chain[min(l, n-1)].Texture)
	}
	u := uniform.GPUMipUniforms{BaseWeight: w.Base, ActiveLevels: uint32(w.Active), LevelWeights: w.Levels}
	if err := enc.Draw(graph.Step{
		Label:    "mip-composite",
		Pass:     pipeline.PassMipComposite,
		Target:   t.Post.Texture,
		Sources:  sources,
		Uniforms: u.Marshal(),
	}); err != nil {
		return target.RenderTarget{}, err
	}
	return t.Post, nil
}
