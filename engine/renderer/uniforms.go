package renderer

import (
	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/gradient"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

func sceneUniforms(sc gradient.Scene, t target.RenderTarget) uniform.GPUSceneUniforms {
	u := uniform.GPUSceneUniforms{
		Resolution:   [2]float32{float32(t.Width), float32(t.Height)},
		Time:         float32(sc.Time),
		NoiseScale:   float32(sc.NoiseScale),
		FlowSpeed:    float32(sc.FlowSpeed),
		WarpStrength: float32(sc.WarpStrength),
		DetailAmount: float32(sc.DetailAmount),
		Variant:      sc.Variant,
	}
	for i, c := range sc.Colors {
		u.Colors[i] = c.Float32()
	}
	for i, a := range sc.Anchors {
		u.Anchors[i] = [4]float32{float32(a.X), float32(a.Y), float32(a.Weight), 0}
	}
	return u
}

func compositeUniforms(t target.RenderTarget, s settings.ShaderSettings, time float64, surface gpu.TextureFormat) uniform.GPUCompositeUniforms {
	base := gradient.BaseColor(s.Theme).Float32()
	base[3] = float32(common.Clamp01(s.Opacity))
	u := uniform.GPUCompositeUniforms{
		BaseColor:   base,
		Resolution:  [2]float32{float32(t.Width), float32(t.Height)},
		Time:        float32(time),
		GrainAmount: float32(s.GrainAmount),
		GrainScale:  float32(s.GrainScale),
	}
	if surface.IsSRGB() {
		u.DecodeSRGB = 1
	}
	return u
}
