package shader

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
)

func TestLoadAssets(t *testing.T) {
	tex, samp, uni := gpu.BindingTexture, gpu.BindingSampler, gpu.BindingUniform
	tests := []struct {
		name     string
		bindings []gpu.BindingKind
		uniform  uint64
	}{
		{AssetScene, []gpu.BindingKind{uni}, 192},
		{AssetDualDown, []gpu.BindingKind{tex, samp, uni}, 16},
		{AssetDualUp, []gpu.BindingKind{tex, samp, uni}, 16},
		{AssetMipDown, []gpu.BindingKind{tex, samp, uni}, 16},
		{AssetMipComposite, []gpu.BindingKind{tex, tex, tex, tex, tex, tex, samp, uni}, 48},
		{AssetTemporal, []gpu.BindingKind{tex, tex, samp, uni}, 16},
		{AssetComposite, []gpu.BindingKind{tex, samp, uni}, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(tt.name)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := s.EntryPoint(ShaderTypeVertex); got != "vs_main" {
				t.Errorf("vertex entry = %q", got)
			}
			if got := s.EntryPoint(ShaderTypeFragment); got != "fs_main" {
				t.Errorf("fragment entry = %q", got)
			}
			if got := s.BindingKinds(); !slices.Equal(got, tt.bindings) {
				t.Errorf("bindings = %v, want %v", got, tt.bindings)
			}
			if got := s.UniformSize(); got != tt.uniform {
				t.Errorf("uniform size = %d, want %d", got, tt.uniform)
			}
			if strings.Contains(s.Source(), annotationPrefix) {
				t.Error("processed source still contains annotations")
			}
		})
	}
}

func TestUniformLayoutsMatchGoMirrors(t *testing.T) {
	tests := []struct {
		source string
		name   string
		bytes  int
	}{
		{uniform.GPUSceneUniformsSource, "SceneUniforms", len((&uniform.GPUSceneUniforms{}).Marshal())},
		{uniform.GPUBlurUniformsSource, "BlurUniforms", len((&uniform.GPUBlurUniforms{}).Marshal())},
		{uniform.GPUMipUniformsSource, "MipUniforms", len((&uniform.GPUMipUniforms{}).Marshal())},
		{uniform.GPUTemporalUniformsSource, "TemporalUniforms", len((&uniform.GPUTemporalUniforms{}).Marshal())},
		{uniform.GPUCompositeUniformsSource, "CompositeUniforms", len((&uniform.GPUCompositeUniforms{}).Marshal())},
	}
	for _, tt := range tests {
		size, ok := StructSize(tt.source, tt.name)
		if !ok {
			t.Errorf("%s: layout not resolved", tt.name)
			continue
		}
		if int(size) != tt.bytes {
			t.Errorf("%s: WGSL size %d, Go marshal %d", tt.name, size, tt.bytes)
		}
	}
}

func TestMipCompositeGatesInactiveLevels(t *testing.T) {
	s, err := Load(AssetMipComposite)
	if err != nil {
		t.Fatal(err)
	}
	src := s.Source()
	if !strings.Contains(src, "min(mip.active_levels, 5u)") {
		t.Error("active level count is not clamped")
	}
	for i := range 5 {
		if !strings.Contains(src, fmt.Sprintf("active > %du", i)) {
			t.Errorf("level %d is not gated by the active count", i)
		}
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@backdrop:include color\n// @backdrop:include color\nfn main() {}")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "fn srgb_to_linear"); n != 1 {
		t.Errorf("srgb_to_linear injected %d times", n)
	}
	if got := pp.Includes(); !slices.Equal(got, []string{"color"}) {
		t.Errorf("Includes = %v", got)
	}

	// the include list resets between calls
	if _, err := pp.Process("fn main() {}"); err != nil {
		t.Fatal(err)
	}
	if len(pp.Includes()) != 0 {
		t.Errorf("Includes not reset: %v", pp.Includes())
	}
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown include", "//@backdrop:include nope", "unknown @backdrop:include"},
		{"missing argument", "//@backdrop:include", "exactly one argument"},
		{"unknown type", "//@backdrop:define X", "unknown annotation type"},
		{"empty", "//@backdrop:", "empty annotation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(tt.source)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseBindingsRejectsUnsupportedLayouts(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"gap", "@group(0) @binding(0) var a: sampler;\n@group(0) @binding(2) var b: sampler;"},
		{"group 1", "@group(1) @binding(0) var a: sampler;"},
		{"storage", "struct S { x: f32, }\n@group(0) @binding(0) var<storage, read> s: S;"},
		{"depth", "@group(0) @binding(0) var d: texture_depth_2d;"},
		{"unknown struct", "@group(0) @binding(0) var<uniform> u: Missing;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseBindings(tt.source); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestParseBindingsIgnoresComments(t *testing.T) {
	src := `
// @group(0) @binding(0) var ignored: sampler;
/* @group(0) @binding(0) var ignored2: sampler; */
@group(0) @binding(0) var kept: texture_2d<f32>;
`
	b, err := parseBindings(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || b[0].Name != "kept" || b[0].Kind != gpu.BindingTexture {
		t.Fatalf("bindings = %+v", b)
	}
}

func TestNewShaderRequiresEntryPoints(t *testing.T) {
	if _, err := NewShader("frag-only", "@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }", NewPreProcessor()); err == nil {
		t.Fatal("expected missing vertex entry error")
	}
	if _, err := Load("missing"); err == nil {
		t.Fatal("expected unknown asset error")
	}
}
