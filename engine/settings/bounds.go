package settings

// FloatBound describes the accepted range and default of one float setting.
type FloatBound struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	field   func(*ShaderSettings) *float64
}

// Get returns the bounded field of s.
func (b FloatBound) Get(s ShaderSettings) float64 {
	return *b.field(&s)
}

// IntBound describes the accepted range and default of one integer setting.
type IntBound struct {
	Name    string
	Min     int
	Max     int
	Default int
	field   func(*ShaderSettings) *int
}

// Get returns the bounded field of s.
func (b IntBound) Get(s ShaderSettings) int {
	return *b.field(&s)
}

// FloatBounds lists every float setting with its range and default.
var FloatBounds = []FloatBound{
	{"opacity", 0, 1, 0.9, func(s *ShaderSettings) *float64 { return &s.Opacity }},
	{"render_scale", 0.2, 1, 0.5, func(s *ShaderSettings) *float64 { return &s.RenderScale }},
	{"max_device_pixel_ratio", 0.5, 3, 1.5, func(s *ShaderSettings) *float64 { return &s.MaxDevicePixelRatio }},
	{"noise_scale", 0.25, 6, 1.4, func(s *ShaderSettings) *float64 { return &s.NoiseScale }},
	{"flow_speed", 0, 2, 0.25, func(s *ShaderSettings) *float64 { return &s.FlowSpeed }},
	{"warp_strength", 0, 1.5, 0.55, func(s *ShaderSettings) *float64 { return &s.WarpStrength }},
	{"detail_amount", 0, 1, 0.35, func(s *ShaderSettings) *float64 { return &s.DetailAmount }},
	{"drift_speed", 0, 1, 0.12, func(s *ShaderSettings) *float64 { return &s.DriftSpeed }},
	{"anchor_spread", 0, 1, 0.6, func(s *ShaderSettings) *float64 { return &s.AnchorSpread }},
	{"blur_radius", 0, 16, 6, func(s *ShaderSettings) *float64 { return &s.BlurRadius }},
	{"mip_curve", 0, 3, 1.1, func(s *ShaderSettings) *float64 { return &s.MipCurve }},
	{"temporal_strength", 0, 0.98, 0.82, func(s *ShaderSettings) *float64 { return &s.TemporalStrength }},
	{"temporal_response", 0, 1, 0.4, func(s *ShaderSettings) *float64 { return &s.TemporalResponse }},
	{"temporal_clamp", 0.01, 1, 0.08, func(s *ShaderSettings) *float64 { return &s.TemporalClamp }},
	{"grain_amount", 0, 0.15, 0.025, func(s *ShaderSettings) *float64 { return &s.GrainAmount }},
	{"grain_scale", 0.5, 4, 1.25, func(s *ShaderSettings) *float64 { return &s.GrainScale }},
	{"color_transition_seconds", 0, 10, 1.6, func(s *ShaderSettings) *float64 { return &s.ColorTransitionSeconds }},
	{"light_theme_tint_min_chroma", 0, 0.37, 0.03, func(s *ShaderSettings) *float64 { return &s.LightThemeTintMinChroma }},
	{"light_theme_tint_max_chroma", 0, 0.37, 0.11, func(s *ShaderSettings) *float64 { return &s.LightThemeTintMaxChroma }},
}

// IntBounds lists every integer setting with its range and default.
var IntBounds = []IntBound{
	{"target_frame_rate", 15, 60, 30, func(s *ShaderSettings) *int { return &s.TargetFrameRate }},
	{"dual_passes", 1, 6, 3, func(s *ShaderSettings) *int { return &s.DualPasses }},
	{"dual_downsample", 1, 4, 2, func(s *ShaderSettings) *int { return &s.DualDownsample }},
	{"mip_levels", 1, 5, 4, func(s *ShaderSettings) *int { return &s.MipLevels }},
}
