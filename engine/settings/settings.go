// Package settings defines the tunable parameters of the gradient renderer together with the
// sanitizer that keeps every value inside its documented range.
package settings

// BlurMode selects the blur algorithm applied to the scene.
type BlurMode string

const (
	// BlurModeNone disables blurring.
	BlurModeNone BlurMode = "none"

	// BlurModeDualKawase runs the dual-filter Kawase down/up chain.
	BlurModeDualKawase BlurMode = "dualKawase"

	// BlurModeMipPyramid builds a mip chain and recombines it with weighted levels.
	BlurModeMipPyramid BlurMode = "mipPyramid"
)

// Valid reports whether m is one of the known blur modes.
func (m BlurMode) Valid() bool {
	switch m {
	case BlurModeNone, BlurModeDualKawase, BlurModeMipPyramid:
		return true
	}
	return false
}

// SceneVariant selects the procedural field used by the scene pass.
type SceneVariant string

const (
	// SceneVariantFlow is a domain-warped noise flow between the palette anchors.
	SceneVariantFlow SceneVariant = "flow"

	// SceneVariantAurora stretches the field into horizontal curtains.
	SceneVariantAurora SceneVariant = "aurora"

	// SceneVariantMesh blends the anchors as a soft mesh gradient with little warping.
	SceneVariantMesh SceneVariant = "mesh"
)

// Valid reports whether v is one of the known scene variants.
func (v SceneVariant) Valid() bool {
	switch v {
	case SceneVariantFlow, SceneVariantAurora, SceneVariantMesh:
		return true
	}
	return false
}

// Index returns the variant as the integer consumed by the scene shader.
func (v SceneVariant) Index() uint32 {
	switch v {
	case SceneVariantAurora:
		return 1
	case SceneVariantMesh:
		return 2
	default:
		return 0
	}
}

// Theme is the application color theme the background sits behind.
type Theme string

const (
	// ThemeDark composites over a near-black base.
	ThemeDark Theme = "dark"

	// ThemeLight composites over a near-white base and tints the palette.
	ThemeLight Theme = "light"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// ShaderSettings is the full parameter set of the renderer. Values produced by Sanitize are always
// inside the bounds listed in FloatBounds and IntBounds.
type ShaderSettings struct {
	BlurMode     BlurMode     `yaml:"blur_mode" json:"blurMode"`
	SceneVariant SceneVariant `yaml:"scene_variant" json:"sceneVariant"`
	Theme        Theme        `yaml:"theme" json:"theme"`

	Opacity             float64 `yaml:"opacity" json:"opacity"`
	RenderScale         float64 `yaml:"render_scale" json:"renderScale"`
	MaxDevicePixelRatio float64 `yaml:"max_device_pixel_ratio" json:"maxDevicePixelRatio"`
	TargetFrameRate     int     `yaml:"target_frame_rate" json:"targetFrameRate"`

	NoiseScale   float64 `yaml:"noise_scale" json:"noiseScale"`
	FlowSpeed    float64 `yaml:"flow_speed" json:"flowSpeed"`
	WarpStrength float64 `yaml:"warp_strength" json:"warpStrength"`
	DetailAmount float64 `yaml:"detail_amount" json:"detailAmount"`
	DriftSpeed   float64 `yaml:"drift_speed" json:"driftSpeed"`
	AnchorSpread float64 `yaml:"anchor_spread" json:"anchorSpread"`

	BlurRadius     float64 `yaml:"blur_radius" json:"blurRadius"`
	DualPasses     int     `yaml:"dual_passes" json:"dualPasses"`
	DualDownsample int     `yaml:"dual_downsample" json:"dualDownsample"`
	MipLevels      int     `yaml:"mip_levels" json:"mipLevels"`
	MipCurve       float64 `yaml:"mip_curve" json:"mipCurve"`

	TemporalEnabled  bool    `yaml:"temporal_enabled" json:"temporalEnabled"`
	TemporalStrength float64 `yaml:"temporal_strength" json:"temporalStrength"`
	TemporalResponse float64 `yaml:"temporal_response" json:"temporalResponse"`
	TemporalClamp    float64 `yaml:"temporal_clamp" json:"temporalClamp"`

	GrainAmount float64 `yaml:"grain_amount" json:"grainAmount"`
	GrainScale  float64 `yaml:"grain_scale" json:"grainScale"`

	ColorTransitionSeconds float64 `yaml:"color_transition_seconds" json:"colorTransitionSeconds"`

	LightThemeTintMinChroma float64 `yaml:"light_theme_tint_min_chroma" json:"lightThemeTintMinChroma"`
	LightThemeTintMaxChroma float64 `yaml:"light_theme_tint_max_chroma" json:"lightThemeTintMaxChroma"`
}

// Default returns the default settings. The result is already sanitized.
//
// Returns:
//   - ShaderSettings: the defaults
func Default() ShaderSettings {
	s := ShaderSettings{
		BlurMode:        BlurModeDualKawase,
		SceneVariant:    SceneVariantFlow,
		Theme:           ThemeDark,
		TemporalEnabled: true,
	}
	for _, b := range FloatBounds {
		*b.field(&s) = b.Default
	}
	for _, b := range IntBounds {
		*b.field(&s) = b.Default
	}
	return s
}
