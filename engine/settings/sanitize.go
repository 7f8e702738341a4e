package settings

import (
	"time"

	"github.com/Carmen-Shannon/backdrop/common"
)

// Sanitize returns s with every field forced into its documented range. Non-finite floats and unknown
// enum values take their defaults. The light-theme chroma pair keeps min <= max by raising max.
// Sanitize is idempotent.
//
// Parameters:
//   - s: the settings to sanitize
//
// Returns:
//   - ShaderSettings: the sanitized copy
func Sanitize(s ShaderSettings) ShaderSettings {
	out := s

	if !out.BlurMode.Valid() {
		out.BlurMode = BlurModeDualKawase
	}
	if !out.SceneVariant.Valid() {
		out.SceneVariant = SceneVariantFlow
	}
	if !out.Theme.Valid() {
		out.Theme = ThemeDark
	}

	for _, b := range FloatBounds {
		v := b.field(&out)
		if !common.Finite(*v) {
			*v = b.Default
			continue
		}
		*v = common.Clamp(*v, b.Min, b.Max)
	}
	for _, b := range IntBounds {
		v := b.field(&out)
		*v = common.Clamp(*v, b.Min, b.Max)
	}

	if out.LightThemeTintMinChroma > out.LightThemeTintMaxChroma {
		out.LightThemeTintMaxChroma = out.LightThemeTintMinChroma
	}

	return out
}

// FrameInterval returns the minimum time between rendered frames for s.
func (s ShaderSettings) FrameInterval() time.Duration {
	fps := common.Clamp(s.TargetFrameRate, 15, 60)
	return time.Second / time.Duration(fps)
}

// TransitionDuration returns the palette transition length for s.
func (s ShaderSettings) TransitionDuration() time.Duration {
	return time.Duration(common.Clamp(s.ColorTransitionSeconds, 0, 10) * float64(time.Second))
}

// BlurActive reports whether a blur pass runs for s.
func (s ShaderSettings) BlurActive() bool {
	return s.BlurMode != BlurModeNone && s.BlurRadius > 0
}
