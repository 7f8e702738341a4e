// Package gradient evaluates the procedural scene on the CPU. The anchor animation feeds the scene
// uniforms every frame, and Sample is the per-pixel counterpart of the scene shader used by the
// software fallback.
package gradient

import (
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

// Anchor is the position and pull of one palette color. X and Y are in unit space with the origin at
// the top left; X is scaled by the aspect ratio when sampled.
type Anchor struct {
	X, Y   float64
	Weight float64
}

// anchorRadius is the pentagon radius at full spread.
const anchorRadius = 0.35

// Anchors returns the five palette anchors at time seconds. Anchors sit on a pentagon around the
// center whose radius follows spread and wander around their rest position at drift speed.
//
// Parameters:
//   - time: seconds since the renderer started
//   - drift: the drift speed setting
//   - spread: the anchor spread setting
//
// Returns:
//   - [color.PaletteSize]Anchor: one anchor per palette color
func Anchors(time, drift, spread float64) [color.PaletteSize]Anchor {
	var out [color.PaletteSize]Anchor
	r := anchorRadius * spread
	td := time * drift
	for i := range out {
		fi := float64(i)
		angle := fi*2*math.Pi/color.PaletteSize - math.Pi/2
		out[i] = Anchor{
			X:      0.5 + r*math.Cos(angle) + 0.15*math.Sin(td*(0.7+0.13*fi)+fi*1.7),
			Y:      0.5 + r*math.Sin(angle) + 0.15*math.Cos(td*(0.6+0.11*fi)+fi*2.3),
			Weight: 1 + 0.25*math.Sin(td*0.5+fi),
		}
	}
	return out
}

// Scene is everything the scene pass needs for one frame.
type Scene struct {
	Colors       color.ShaderColorSet
	Anchors      [color.PaletteSize]Anchor
	Time         float64
	Variant      uint32
	NoiseScale   float64
	FlowSpeed    float64
	WarpStrength float64
	DetailAmount float64
}

// NewScene assembles the scene of one frame.
//
// Parameters:
//   - colors: the live palette
//   - s: the settings snapshot
//   - time: seconds since the renderer started
//
// Returns:
//   - Scene: the frame's scene description
func NewScene(colors color.ShaderColorSet, s settings.ShaderSettings, time float64) Scene {
	return Scene{
		Colors:       colors,
		Anchors:      Anchors(time, s.DriftSpeed, s.AnchorSpread),
		Time:         time,
		Variant:      s.SceneVariant.Index(),
		NoiseScale:   s.NoiseScale,
		FlowSpeed:    s.FlowSpeed,
		WarpStrength: s.WarpStrength,
		DetailAmount: s.DetailAmount,
	}
}

// Sample evaluates the scene at a texture coordinate.
//
// Parameters:
//   - u: horizontal coordinate in [0, 1], left to right
//   - v: vertical coordinate in [0, 1], top to bottom
//   - aspect: width divided by height of the target
//
// Returns:
//   - color.ShaderColor: the sRGB encoded scene color
func (s Scene) Sample(u, v, aspect float64) color.ShaderColor {
	px, py := u*aspect, v
	t := s.Time * s.FlowSpeed
	nx, ny := px*s.NoiseScale, py*s.NoiseScale

	wx, wy := px, py
	switch s.Variant {
	case 0:
		qx := FBM(nx, ny+t)
		qy := FBM(nx+5.2-t, ny+1.3-t)
		wx = px + s.WarpStrength*(qx-0.5)
		wy = py + s.WarpStrength*(qy-0.5)
	case 1:
		band := FBM(nx*0.5+t, t*0.5)
		wy = py + s.WarpStrength*(band-0.5) + 0.08*math.Sin(nx*3+t*2)
	}

	r, g, b := s.blend(wx, wy, aspect)
	k := 1 + s.DetailAmount*(FBM(nx*4+t, ny*4+t)-0.5)*0.5
	return color.ShaderColor{
		R: color.LinearToSRGB(common.Clamp01(r * k)),
		G: color.LinearToSRGB(common.Clamp01(g * k)),
		B: color.LinearToSRGB(common.Clamp01(b * k)),
	}
}

// blend is the inverse square distance weighted mix of the anchor colors in linear light.
func (s Scene) blend(x, y, aspect float64) (r, g, b float64) {
	var total float64
	for i, a := range s.Anchors {
		dx, dy := x-a.X*aspect, y-a.Y
		w := a.Weight / (0.03 + dx*dx + dy*dy)
		c := s.Colors[i]
		r += w * color.SRGBToLinear(common.Clamp01(c.R))
		g += w * color.SRGBToLinear(common.Clamp01(c.G))
		b += w * color.SRGBToLinear(common.Clamp01(c.B))
		total += w
	}
	total = max(total, 1e-5)
	return r / total, g / total, b / total
}
