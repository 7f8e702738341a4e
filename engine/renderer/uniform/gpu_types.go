// Package uniform holds the Go mirrors of the WGSL uniform structs used by the render passes. Each
// struct embeds its canonical WGSL definition so shaders can include it by name.
package uniform

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUSceneUniformsSource is the canonical WGSL definition of the SceneUniforms struct.
// Matches GPUSceneUniforms layout exactly (192 bytes).
//
//go:embed assets/scene_uniforms.wgsl
var GPUSceneUniformsSource string

// GPUSceneUniforms drives the procedural scene pass.
// Size: 192 bytes.
type GPUSceneUniforms struct {
	Colors       [5][4]float32 // offset 0: palette colors, sRGB encoded, alpha unused (80 bytes)
	Anchors      [5][4]float32 // offset 80: xy anchor position in unit space, z weight (80 bytes)
	Resolution   [2]float32    // offset 160: target size in pixels
	Time         float32       // offset 168: seconds since start
	NoiseScale   float32       // offset 172
	FlowSpeed    float32       // offset 176
	WarpStrength float32       // offset 180
	DetailAmount float32       // offset 184
	Variant      uint32        // offset 188: scene variant index
}

// Size returns the size of the GPUSceneUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSceneUniforms) Size() int {
	return 192
}

// Marshal serializes the GPUSceneUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 192-byte buffer ready for GPU upload.
func (g *GPUSceneUniforms) Marshal() []byte {
	buf := make([]byte, 192)
	w := writer{buf: buf}
	for _, c := range g.Colors {
		w.vec4(c)
	}
	for _, a := range g.Anchors {
		w.vec4(a)
	}
	w.f32(g.Resolution[0])
	w.f32(g.Resolution[1])
	w.f32(g.Time)
	w.f32(g.NoiseScale)
	w.f32(g.FlowSpeed)
	w.f32(g.WarpStrength)
	w.f32(g.DetailAmount)
	w.u32(g.Variant)
	return buf
}

// GPUBlurUniformsSource is the canonical WGSL definition of the BlurUniforms struct.
// Matches GPUBlurUniforms layout exactly (16 bytes).
//
//go:embed assets/blur_uniforms.wgsl
var GPUBlurUniformsSource string

// GPUBlurUniforms parameterizes one downsample or upsample pass.
// Size: 16 bytes.
type GPUBlurUniforms struct {
	Texel  [2]float32 // offset 0: reciprocal of the source size
	Offset float32    // offset 8: tap offset in source texels
}

// Size returns the size of the GPUBlurUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUBlurUniforms) Size() int {
	return 16
}

// Marshal serializes the GPUBlurUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUBlurUniforms) Marshal() []byte {
	buf := make([]byte, 16)
	w := writer{buf: buf}
	w.f32(g.Texel[0])
	w.f32(g.Texel[1])
	w.f32(g.Offset)
	return buf
}

// GPUMipUniformsSource is the canonical WGSL definition of the MipUniforms struct.
// Matches GPUMipUniforms layout exactly (48 bytes).
//
//go:embed assets/mip_uniforms.wgsl
var GPUMipUniformsSource string

// GPUMipUniforms holds the normalized weights of the mip composite pass.
// Size: 48 bytes.
type GPUMipUniforms struct {
	BaseWeight   float32    // offset 0: weight of the unblurred scene
	ActiveLevels uint32     // offset 4
	LevelWeights [5]float32 // offset 16: packed into two vec4<f32>
}

// Size returns the size of the GPUMipUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMipUniforms) Size() int {
	return 48
}

// Marshal serializes the GPUMipUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMipUniforms) Marshal() []byte {
	buf := make([]byte, 48)
	w := writer{buf: buf}
	w.f32(g.BaseWeight)
	w.u32(g.ActiveLevels)
	w.off = 16
	for _, lw := range g.LevelWeights {
		w.f32(lw)
	}
	return buf
}

// GPUTemporalUniformsSource is the canonical WGSL definition of the TemporalUniforms struct.
// Matches GPUTemporalUniforms layout exactly (16 bytes).
//
//go:embed assets/temporal_uniforms.wgsl
var GPUTemporalUniformsSource string

// GPUTemporalUniforms parameterizes the temporal resolve. Seed set to 1 copies the current frame.
// Size: 16 bytes.
type GPUTemporalUniforms struct {
	HistoryWeight float32 // offset 0
	Response      float32 // offset 4
	ClampRange    float32 // offset 8
	Seed          uint32  // offset 12
}

// Size returns the size of the GPUTemporalUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUTemporalUniforms) Size() int {
	return 16
}

// Marshal serializes the GPUTemporalUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUTemporalUniforms) Marshal() []byte {
	buf := make([]byte, 16)
	w := writer{buf: buf}
	w.f32(g.HistoryWeight)
	w.f32(g.Response)
	w.f32(g.ClampRange)
	w.u32(g.Seed)
	return buf
}

// GPUCompositeUniformsSource is the canonical WGSL definition of the CompositeUniforms struct.
// Matches GPUCompositeUniforms layout exactly (48 bytes).
//
//go:embed assets/composite_uniforms.wgsl
var GPUCompositeUniformsSource string

// GPUCompositeUniforms parameterizes the final composite onto the surface.
// Size: 48 bytes.
type GPUCompositeUniforms struct {
	BaseColor   [4]float32 // offset 0: rgb base color (sRGB), a = opacity
	Resolution  [2]float32 // offset 16: surface size in pixels
	Time        float32    // offset 24: seconds, animates the grain
	GrainAmount float32    // offset 28
	GrainScale  float32    // offset 32
	DecodeSRGB  uint32     // offset 36: 1 when the surface encodes sRGB on write
}

// Size returns the size of the GPUCompositeUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUCompositeUniforms) Size() int {
	return 48
}

// Marshal serializes the GPUCompositeUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUCompositeUniforms) Marshal() []byte {
	buf := make([]byte, 48)
	w := writer{buf: buf}
	w.vec4(g.BaseColor)
	w.f32(g.Resolution[0])
	w.f32(g.Resolution[1])
	w.f32(g.Time)
	w.f32(g.GrainAmount)
	w.f32(g.GrainScale)
	w.u32(g.DecodeSRGB)
	return buf
}

// writer appends little-endian 32-bit words to a preallocated buffer.
type writer struct {
	buf []byte
	off int
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:w.off+4], v)
	w.off += 4
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) vec4(v [4]float32) {
	for _, c := range v {
		w.f32(c)
	}
}
