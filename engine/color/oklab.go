package color

import (
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
)

// OKLab is a color in the OKLab perceptual space.
type OKLab struct {
	L, A, B float64
}

// OKLCh is the polar form of OKLab: lightness, chroma and hue in radians.
type OKLCh struct {
	L, C, H float64
}

// SRGBToLinear decodes one gamma-encoded sRGB channel.
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes one linear channel with the sRGB transfer curve.
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// SRGBToOKLab converts a gamma-encoded sRGB color to OKLab.
//
// Parameters:
//   - c: the sRGB color
//
// Returns:
//   - OKLab: the perceptual coordinates of c
func SRGBToOKLab(c ShaderColor) OKLab {
	r, g, b := SRGBToLinear(c.R), SRGBToLinear(c.G), SRGBToLinear(c.B)

	l := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	m := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	s := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return OKLab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// OKLabToSRGB converts an OKLab color back to gamma-encoded sRGB, clamping out-of-gamut channels.
//
// Parameters:
//   - lab: the perceptual coordinates
//
// Returns:
//   - ShaderColor: the clamped sRGB color
func OKLabToSRGB(lab OKLab) ShaderColor {
	l := lab.L + 0.3963377774*lab.A + 0.2158037573*lab.B
	m := lab.L - 0.1055613458*lab.A - 0.0638541728*lab.B
	s := lab.L - 0.0894841775*lab.A - 1.2914855480*lab.B
	l, m, s = l*l*l, m*m*m, s*s*s

	r := 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return ShaderColor{
		R: clampChannel(LinearToSRGB(common.Clamp01(r))),
		G: clampChannel(LinearToSRGB(common.Clamp01(g))),
		B: clampChannel(LinearToSRGB(common.Clamp01(b))),
	}
}

// LCh returns the polar form of lab.
func (lab OKLab) LCh() OKLCh {
	return OKLCh{
		L: lab.L,
		C: math.Hypot(lab.A, lab.B),
		H: math.Atan2(lab.B, lab.A),
	}
}

// Lab returns the cartesian form of lch.
func (lch OKLCh) Lab() OKLab {
	return OKLab{
		L: lch.L,
		A: lch.C * math.Cos(lch.H),
		B: lch.C * math.Sin(lch.H),
	}
}

// MixOKLab linearly interpolates two OKLab colors.
func MixOKLab(a, b OKLab, t float64) OKLab {
	return OKLab{
		L: common.Lerp(a.L, b.L, t),
		A: common.Lerp(a.A, b.A, t),
		B: common.Lerp(a.B, b.B, t),
	}
}

// MixColors blends two sRGB colors through OKLab.
//
// Parameters:
//   - from: the color at t = 0
//   - to: the color at t = 1
//   - t: the blend factor, clamped to [0, 1]
//
// Returns:
//   - ShaderColor: the blended color. t = 0 and t = 1 return the endpoints unchanged
func MixColors(from, to ShaderColor, t float64) ShaderColor {
	t = common.Clamp01(t)
	switch t {
	case 0:
		return from
	case 1:
		return to
	}
	return OKLabToSRGB(MixOKLab(SRGBToOKLab(from), SRGBToOKLab(to), t))
}

// MixSets blends two palettes color by color through OKLab.
func MixSets(from, to ShaderColorSet, t float64) ShaderColorSet {
	var out ShaderColorSet
	for i := range out {
		out[i] = MixColors(from[i], to[i], t)
	}
	return out
}
