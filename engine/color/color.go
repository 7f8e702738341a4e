// Package color holds the palette types uploaded to the gradient shaders, the sRGB and OKLab
// conversions they rely on, and the transition engine that blends one palette into the next.
package color

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
)

// PaletteSize is the number of colors the gradient shaders consume.
const PaletteSize = 5

// changeEpsilon is the per-channel difference below which two colors are treated as equal.
const changeEpsilon = 0.0005

// ShaderColor is a gamma-encoded sRGB color with channels in [0, 1].
type ShaderColor struct {
	R float64 `yaml:"r" json:"r"`
	G float64 `yaml:"g" json:"g"`
	B float64 `yaml:"b" json:"b"`
}

// ShaderColorSet is the fixed five-color palette driving the gradient.
type ShaderColorSet [PaletteSize]ShaderColor

// RGB8 builds a ShaderColor from 8-bit channels.
//
// Parameters:
//   - r: red channel 0-255
//   - g: green channel 0-255
//   - b: blue channel 0-255
//
// Returns:
//   - ShaderColor: the color with channels scaled to [0, 1]
func RGB8(r, g, b uint8) ShaderColor {
	return ShaderColor{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Clamped returns the color with every channel limited to [0, 1]. Non-finite channels become 0.
func (c ShaderColor) Clamped() ShaderColor {
	return ShaderColor{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B)}
}

// ApproxEqual reports whether every channel of c and o differs by at most changeEpsilon.
func (c ShaderColor) ApproxEqual(o ShaderColor) bool {
	return math.Abs(c.R-o.R) <= changeEpsilon &&
		math.Abs(c.G-o.G) <= changeEpsilon &&
		math.Abs(c.B-o.B) <= changeEpsilon
}

// Hex formats the color as #rrggbb.
func (c ShaderColor) Hex() string {
	cc := c.Clamped()
	return fmt.Sprintf("#%02x%02x%02x", to8(cc.R), to8(cc.G), to8(cc.B))
}

// Bytes returns the clamped channels as 8-bit values.
func (c ShaderColor) Bytes() (r, g, b uint8) {
	cc := c.Clamped()
	return to8(cc.R), to8(cc.G), to8(cc.B)
}

// Float32 returns the channels as a vec4 with alpha 1, ready for uniform upload.
func (c ShaderColor) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}

// ApproxEqual reports whether every color of s is ApproxEqual to the matching color of o.
func (s ShaderColorSet) ApproxEqual(o ShaderColorSet) bool {
	for i := range s {
		if !s[i].ApproxEqual(o[i]) {
			return false
		}
	}
	return true
}

// Clamped returns the set with every channel clamped to [0, 1]. Non-finite channels become 0.
func (s ShaderColorSet) Clamped() ShaderColorSet {
	for i := range s {
		s[i] = s[i].Clamped()
	}
	return s
}

// Hex returns the palette as #rrggbb strings.
func (s ShaderColorSet) Hex() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Hex()
	}
	return out
}

// FallbackSet returns the palette used when no palette has been supplied.
//
// Returns:
//   - ShaderColorSet: a muted indigo to teal palette
func FallbackSet() ShaderColorSet {
	return ShaderColorSet{
		RGB8(0x1d, 0x1b, 0x3a),
		RGB8(0x3b, 0x2f, 0x6b),
		RGB8(0x1f, 0x5f, 0x7a),
		RGB8(0x2e, 0x8c, 0x88),
		RGB8(0x6a, 0x4c, 0x93),
	}
}

// NewSet builds a ShaderColorSet from up to PaletteSize colors. Shorter inputs are padded by repeating
// the last color and an empty input yields FallbackSet. Extra colors are ignored.
//
// Parameters:
//   - colors: the source colors in palette order
//
// Returns:
//   - ShaderColorSet: the padded, clamped palette
func NewSet(colors []ShaderColor) ShaderColorSet {
	if len(colors) == 0 {
		return FallbackSet()
	}
	var s ShaderColorSet
	for i := range s {
		src := colors[min(i, len(colors)-1)]
		s[i] = src.Clamped()
	}
	return s
}

func clampChannel(v float64) float64 {
	if !common.Finite(v) {
		return 0
	}
	return common.Clamp01(v)
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
