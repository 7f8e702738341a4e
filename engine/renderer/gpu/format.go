package gpu

// TextureFormat is the texel format of a texture or render target.
type TextureFormat int

const (
	// FormatUndefined is the zero format.
	FormatUndefined TextureFormat = iota

	// FormatRGBA16Float is the preferred intermediate format.
	FormatRGBA16Float

	// FormatRGBA8Unorm is the intermediate fallback format.
	FormatRGBA8Unorm

	// FormatBGRA8Unorm is a common swapchain format.
	FormatBGRA8Unorm

	// FormatRGBA8UnormSrgb is an sRGB-encoding swapchain format.
	FormatRGBA8UnormSrgb

	// FormatBGRA8UnormSrgb is an sRGB-encoding swapchain format.
	FormatBGRA8UnormSrgb

	// FormatSurface resolves to the configured surface format at pipeline creation.
	FormatSurface
)

// IntermediateFormats lists the render target formats in order of preference.
var IntermediateFormats = []TextureFormat{FormatRGBA16Float, FormatRGBA8Unorm}

// IsSRGB reports whether writes to f are sRGB encoded by the hardware.
func (f TextureFormat) IsSRGB() bool {
	return f == FormatRGBA8UnormSrgb || f == FormatBGRA8UnormSrgb
}

// String returns the WebGPU name of f.
func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA16Float:
		return "rgba16float"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatBGRA8Unorm:
		return "bgra8unorm"
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case FormatSurface:
		return "surface"
	}
	return "undefined"
}
