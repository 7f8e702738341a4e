package settings

// Patch is a partial settings update. Nil fields leave the current value untouched.
type Patch struct {
	BlurMode     *BlurMode     `yaml:"blur_mode,omitempty" json:"blurMode,omitempty"`
	SceneVariant *SceneVariant `yaml:"scene_variant,omitempty" json:"sceneVariant,omitempty"`
	Theme        *Theme        `yaml:"theme,omitempty" json:"theme,omitempty"`

	Opacity             *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	RenderScale         *float64 `yaml:"render_scale,omitempty" json:"renderScale,omitempty"`
	MaxDevicePixelRatio *float64 `yaml:"max_device_pixel_ratio,omitempty" json:"maxDevicePixelRatio,omitempty"`
	TargetFrameRate     *int     `yaml:"target_frame_rate,omitempty" json:"targetFrameRate,omitempty"`

	NoiseScale   *float64 `yaml:"noise_scale,omitempty" json:"noiseScale,omitempty"`
	FlowSpeed    *float64 `yaml:"flow_speed,omitempty" json:"flowSpeed,omitempty"`
	WarpStrength *float64 `yaml:"warp_strength,omitempty" json:"warpStrength,omitempty"`
	DetailAmount *float64 `yaml:"detail_amount,omitempty" json:"detailAmount,omitempty"`
	DriftSpeed   *float64 `yaml:"drift_speed,omitempty" json:"driftSpeed,omitempty"`
	AnchorSpread *float64 `yaml:"anchor_spread,omitempty" json:"anchorSpread,omitempty"`

	BlurRadius     *float64 `yaml:"blur_radius,omitempty" json:"blurRadius,omitempty"`
	DualPasses     *int     `yaml:"dual_passes,omitempty" json:"dualPasses,omitempty"`
	DualDownsample *int     `yaml:"dual_downsample,omitempty" json:"dualDownsample,omitempty"`
	MipLevels      *int     `yaml:"mip_levels,omitempty" json:"mipLevels,omitempty"`
	MipCurve       *float64 `yaml:"mip_curve,omitempty" json:"mipCurve,omitempty"`

	TemporalEnabled  *bool    `yaml:"temporal_enabled,omitempty" json:"temporalEnabled,omitempty"`
	TemporalStrength *float64 `yaml:"temporal_strength,omitempty" json:"temporalStrength,omitempty"`
	TemporalResponse *float64 `yaml:"temporal_response,omitempty" json:"temporalResponse,omitempty"`
	TemporalClamp    *float64 `yaml:"temporal_clamp,omitempty" json:"temporalClamp,omitempty"`

	GrainAmount *float64 `yaml:"grain_amount,omitempty" json:"grainAmount,omitempty"`
	GrainScale  *float64 `yaml:"grain_scale,omitempty" json:"grainScale,omitempty"`

	ColorTransitionSeconds *float64 `yaml:"color_transition_seconds,omitempty" json:"colorTransitionSeconds,omitempty"`

	LightThemeTintMinChroma *float64 `yaml:"light_theme_tint_min_chroma,omitempty" json:"lightThemeTintMinChroma,omitempty"`
	LightThemeTintMaxChroma *float64 `yaml:"light_theme_tint_max_chroma,omitempty" json:"lightThemeTintMaxChroma,omitempty"`
}

// Apply merges p into base and sanitizes the result.
//
// Parameters:
//   - base: the current settings
//   - p: the partial update
//
// Returns:
//   - ShaderSettings: the merged, sanitized settings
func Apply(base ShaderSettings, p Patch) ShaderSettings {
	s := base
	set(&s.BlurMode, p.BlurMode)
	set(&s.SceneVariant, p.SceneVariant)
	set(&s.Theme, p.Theme)
	set(&s.Opacity, p.Opacity)
	set(&s.RenderScale, p.RenderScale)
	set(&s.MaxDevicePixelRatio, p.MaxDevicePixelRatio)
	set(&s.TargetFrameRate, p.TargetFrameRate)
	set(&s.NoiseScale, p.NoiseScale)
	set(&s.FlowSpeed, p.FlowSpeed)
	set(&s.WarpStrength, p.WarpStrength)
	set(&s.DetailAmount, p.DetailAmount)
	set(&s.DriftSpeed, p.DriftSpeed)
	set(&s.AnchorSpread, p.AnchorSpread)
	set(&s.BlurRadius, p.BlurRadius)
	set(&s.DualPasses, p.DualPasses)
	set(&s.DualDownsample, p.DualDownsample)
	set(&s.MipLevels, p.MipLevels)
	set(&s.MipCurve, p.MipCurve)
	set(&s.TemporalEnabled, p.TemporalEnabled)
	set(&s.TemporalStrength, p.TemporalStrength)
	set(&s.TemporalResponse, p.TemporalResponse)
	set(&s.TemporalClamp, p.TemporalClamp)
	set(&s.GrainAmount, p.GrainAmount)
	set(&s.GrainScale, p.GrainScale)
	set(&s.ColorTransitionSeconds, p.ColorTransitionSeconds)
	set(&s.LightThemeTintMinChroma, p.LightThemeTintMinChroma)
	set(&s.LightThemeTintMaxChroma, p.LightThemeTintMaxChroma)
	return Sanitize(s)
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
