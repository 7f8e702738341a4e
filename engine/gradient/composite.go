package gradient

import (
	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

var (
	darkBase  = color.RGB8(0x0b, 0x0b, 0x10)
	lightBase = color.RGB8(0xf4, 0xf4, 0xf7)
)

// BaseColor returns the color the gradient is composited over for a theme.
func BaseColor(theme settings.Theme) color.ShaderColor {
	if theme == settings.ThemeLight {
		return lightBase
	}
	return darkBase
}

// Composite blends src over base at opacity in sRGB space, the CPU form of the composite pass
// without grain.
//
// Parameters:
//   - src: the resolved scene color
//   - base: the theme base color
//   - opacity: the gradient opacity, clamped to [0, 1]
//
// Returns:
//   - color.ShaderColor: the composited color
func Composite(src, base color.ShaderColor, opacity float64) color.ShaderColor {
	o := common.Clamp01(opacity)
	return color.ShaderColor{
		R: common.Lerp(base.R, src.R, o),
		G: common.Lerp(base.G, src.G, o),
		B: common.Lerp(base.B, src.B, o),
	}
}

// Palette returns the palette the scene should use for a theme. Light themes remap chroma so the
// gradient stays soft behind light surfaces.
//
// Parameters:
//   - live: the live transition palette
//   - s: the settings snapshot
//
// Returns:
//   - color.ShaderColorSet: the palette to upload
func Palette(live color.ShaderColorSet, s settings.ShaderSettings) color.ShaderColorSet {
	if s.Theme == settings.ThemeLight {
		return color.TintForLightTheme(live, s.LightThemeTintMinChroma, s.LightThemeTintMaxChroma)
	}
	return live
}
