package temporal

import (
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/color"
)

// reactiveGain scales the luma and chroma difference into the reactive mask.
const reactiveGain = 8

func luma(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ResolvePixel is the CPU form of the resolve pass for one pixel. Both inputs are sRGB encoded.
//
// Parameters:
//   - current: this frame's color
//   - history: the accumulated color
//   - historyWeight: the weight from HistoryWeight
//   - p: the temporal settings
//
// Returns:
//   - color.ShaderColor: the resolved sRGB color
func ResolvePixel(current, history color.ShaderColor, historyWeight float64, p Params) color.ShaderColor {
	cl := [3]float64{color.SRGBToLinear(current.R), color.SRGBToLinear(current.G), color.SRGBToLinear(current.B)}
	hl := [3]float64{color.SRGBToLinear(history.R), color.SRGBToLinear(history.G), color.SRGBToLinear(history.B)}
	cy := luma(cl[0], cl[1], cl[2])
	hy := luma(hl[0], hl[1], hl[2])

	var chroma float64
	for i := range 3 {
		d := (cl[i] - cy) - (hl[i] - hy)
		chroma += d * d
	}
	delta := math.Abs(cy-hy) + 0.5*math.Sqrt(chroma)
	reactive := common.Clamp01(delta * reactiveGain)
	rng := p.Clamp + reactive*p.Response
	w := historyWeight * (1 - reactive)

	var out [3]float64
	for i := range 3 {
		clamped := common.Clamp(hl[i], cl[i]-rng, cl[i]+rng)
		out[i] = color.LinearToSRGB(common.Clamp01(common.Lerp(cl[i], clamped, w)))
	}
	return color.ShaderColor{R: out[0], G: out[1], B: out[2]}
}
