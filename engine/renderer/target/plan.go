// Package target plans and owns the offscreen render targets of the frame graph. Plan derives a
// canonical TargetConfig from the canvas size and the settings; Pool allocates exactly the targets a
// config needs and reallocates all of them whenever the config changes.
package target

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

// TargetConfig is the canonical render target configuration. Fields belonging to a disabled blur
// mode are zero, so two configs are equal exactly when they need the same targets.
type TargetConfig struct {
	Width           int               `yaml:"width"`
	Height          int               `yaml:"height"`
	BlurMode        settings.BlurMode `yaml:"blur_mode"`
	DualEnabled     bool              `yaml:"dual_enabled"`
	MipEnabled      bool              `yaml:"mip_enabled"`
	TemporalEnabled bool              `yaml:"temporal_enabled"`
	DualPasses      int               `yaml:"dual_passes"`
	DualDownsample  int               `yaml:"dual_downsample"`
	MipLevels       int               `yaml:"mip_levels"`
}

// Plan derives the target configuration for a backing size. It is pure: equal inputs always yield
// equal configs.
//
// Parameters:
//   - width: the backing width in pixels, clamped to at least 1
//   - height: the backing height in pixels, clamped to at least 1
//   - s: sanitized settings
//
// Returns:
//   - TargetConfig: the canonical configuration
func Plan(width, height int, s settings.ShaderSettings) TargetConfig {
	size := common.NewSize(width, height)
	cfg := TargetConfig{
		Width:           size.Width,
		Height:          size.Height,
		BlurMode:        settings.BlurModeNone,
		TemporalEnabled: s.TemporalEnabled,
	}
	if !s.BlurActive() {
		return cfg
	}

	cfg.BlurMode = s.BlurMode
	switch s.BlurMode {
	case settings.BlurModeDualKawase:
		cfg.DualEnabled = true
		cfg.DualPasses = common.Clamp(s.DualPasses, 1, 6)
		cfg.DualDownsample = common.Clamp(s.DualDownsample, 1, 4)
	case settings.BlurModeMipPyramid:
		cfg.MipEnabled = true
		cfg.MipLevels = common.Clamp(s.MipLevels, 1, MaxMipLevels)
	}
	return cfg
}

// Equal reports whether c and o need the same set of targets.
func (c TargetConfig) Equal(o TargetConfig) bool {
	return c == o
}

// Size returns the scene target size.
func (c TargetConfig) Size() common.Size {
	return common.Size{Width: c.Width, Height: c.Height}
}

// String returns a compact description used in logs.
func (c TargetConfig) String() string {
	switch b := c.Blur().(type) {
	case DualKawase:
		return fmt.Sprintf("%dx%d dual(passes=%d, downsample=%d) temporal=%t", c.Width, c.Height, b.Passes, b.Downsample, c.TemporalEnabled)
	case MipPyramid:
		return fmt.Sprintf("%dx%d mip(levels=%d) temporal=%t", c.Width, c.Height, b.Levels, c.TemporalEnabled)
	default:
		return fmt.Sprintf("%dx%d noblur temporal=%t", c.Width, c.Height, c.TemporalEnabled)
	}
}

// BlurPlan is the blur stage of a config: NoBlur, DualKawase or MipPyramid.
type BlurPlan interface {
	blurPlan()
}

// NoBlur skips the blur stage.
type NoBlur struct{}

// DualKawase runs Passes downsample passes and as many upsample passes. The first level is
// downscaled by Downsample, later levels halve.
type DualKawase struct {
	Passes     int
	Downsample int
}

// MipPyramid builds Levels halving mip levels and recombines them into the post target.
type MipPyramid struct {
	Levels int
}

func (NoBlur) blurPlan()     {}
func (DualKawase) blurPlan() {}
func (MipPyramid) blurPlan() {}

// Blur returns the blur stage of c.
func (c TargetConfig) Blur() BlurPlan {
	switch {
	case c.DualEnabled:
		return DualKawase{Passes: c.DualPasses, Downsample: c.DualDownsample}
	case c.MipEnabled:
		return MipPyramid{Levels: c.MipLevels}
	default:
		return NoBlur{}
	}
}

// MaxMipLevels is the number of mip levels the mip composite pass can sample.
const MaxMipLevels = 5

// ChainSizes returns the sizes of the blur chain targets of c, or nil without blur.
func (c TargetConfig) ChainSizes() []common.Size {
	switch b := c.Blur().(type) {
	case DualKawase:
		return ChainSizes(c.Width, c.Height, b.Downsample, b.Passes)
	case MipPyramid:
		return ChainSizes(c.Width, c.Height, 2, b.Levels)
	default:
		return nil
	}
}

// ChainSizes computes a blur chain. The first level divides the base size by firstDivisor, each
// further level halves the previous one. The chain ends after count levels or once a 1x1 level was
// produced; no dimension is ever below 1.
//
// Parameters:
//   - width: the base width
//   - height: the base height
//   - firstDivisor: the divisor of the first level, at least 1
//   - count: the maximum number of levels
//
// Returns:
//   - []common.Size: the level sizes, largest first
func ChainSizes(width, height, firstDivisor, count int) []common.Size {
	if count <= 0 {
		return nil
	}
	firstDivisor = max(1, firstDivisor)
	sizes := make([]common.Size, 0, count)
	cur := common.NewSize(width/firstDivisor, height/firstDivisor)
	for {
		sizes = append(sizes, cur)
		if len(sizes) == count || (cur.Width == 1 && cur.Height == 1) {
			return sizes
		}
		cur = common.NewSize(cur.Width/2, cur.Height/2)
	}
}
