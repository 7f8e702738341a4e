package color

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/lucasb-eyer/go-colorful"
)

// maxOKLabChroma is the largest chroma reachable inside the sRGB gamut.
const maxOKLabChroma = 0.37

// ParseHexPalette builds a ShaderColorSet from hex strings such as "#1d1b3a" or "1d1b3a".
// Blank entries are skipped and the result is padded the same way as NewSet.
//
// Parameters:
//   - hexes: the palette colors in order
//
// Returns:
//   - ShaderColorSet: the parsed palette
//   - error: error naming the first entry that is not a valid hex color
func ParseHexPalette(hexes []string) (ShaderColorSet, error) {
	colors := make([]ShaderColor, 0, len(hexes))
	for i, raw := range hexes {
		h := strings.TrimSpace(raw)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return ShaderColorSet{}, fmt.Errorf("palette entry %d %q: %w", i, raw, err)
		}
		colors = append(colors, ShaderColor{R: c.R, G: c.G, B: c.B})
	}
	return NewSet(colors), nil
}

// TintForLightTheme adapts a palette for a light background. Each color keeps its OKLCh hue,
// has its chroma remapped from the sRGB chroma range into [minChroma, maxChroma], and is lifted
// into the high-lightness band.
//
// Parameters:
//   - set: the source palette
//   - minChroma: the chroma assigned to fully desaturated colors
//   - maxChroma: the chroma assigned to the most saturated colors
//
// Returns:
//   - ShaderColorSet: the tinted palette
func TintForLightTheme(set ShaderColorSet, minChroma, maxChroma float64) ShaderColorSet {
	if minChroma > maxChroma {
		minChroma, maxChroma = maxChroma, minChroma
	}
	var out ShaderColorSet
	for i, c := range set {
		lch := SRGBToOKLab(c).LCh()
		lch.C = common.Lerp(minChroma, maxChroma, common.Clamp01(lch.C/maxOKLabChroma))
		lch.L = common.Lerp(0.86, 0.96, common.Clamp01(lch.L))
		out[i] = OKLabToSRGB(lch.Lab())
	}
	return out
}
