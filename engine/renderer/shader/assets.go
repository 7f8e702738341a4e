package shader

import (
	_ "embed"
	"fmt"
)

var (
	//go:embed assets/fullscreen.wgsl
	fullscreenSource string

	//go:embed assets/color.wgsl
	colorSource string

	//go:embed assets/noise.wgsl
	noiseSource string

	//go:embed assets/scene.wgsl
	sceneSource string

	//go:embed assets/dual_down.wgsl
	dualDownSource string

	//go:embed assets/dual_up.wgsl
	dualUpSource string

	//go:embed assets/mip_down.wgsl
	mipDownSource string

	//go:embed assets/mip_composite.wgsl
	mipCompositeSource string

	//go:embed assets/temporal.wgsl
	temporalSource string

	//go:embed assets/composite.wgsl
	compositeSource string
)

// Asset names of the pass shaders.
const (
	AssetScene        = "scene"
	AssetDualDown     = "dual_down"
	AssetDualUp       = "dual_up"
	AssetMipDown      = "mip_down"
	AssetMipComposite = "mip_composite"
	AssetTemporal     = "temporal"
	AssetComposite    = "composite"
)

var assets = map[string]*string{
	AssetScene:        &sceneSource,
	AssetDualDown:     &dualDownSource,
	AssetDualUp:       &dualUpSource,
	AssetMipDown:      &mipDownSource,
	AssetMipComposite: &mipCompositeSource,
	AssetTemporal:     &temporalSource,
	AssetComposite:    &compositeSource,
}

// AssetSource returns the raw, unprocessed WGSL of a pass shader.
//
// Parameters:
//   - name: one of the Asset constants
//
// Returns:
//   - string: the raw WGSL source
//   - error: an error if name is not a known asset
func AssetSource(name string) (string, error) {
	src, ok := assets[name]
	if !ok {
		return "", fmt.Errorf("unknown shader asset %q", name)
	}
	return *src, nil
}
