package color

import (
	"testing"
)

func TestNewSetPadding(t *testing.T) {
	a := ShaderColor{R: 0.1}
	b := ShaderColor{G: 0.2}

	tests := []struct {
		name  string
		input []ShaderColor
		want  ShaderColorSet
	}{
		{"empty uses fallback", nil, FallbackSet()},
		{"single repeats", []ShaderColor{a}, ShaderColorSet{a, a, a, a, a}},
		{"pads with last", []ShaderColor{a, b}, ShaderColorSet{a, b, b, b, b}},
		{"extra ignored", []ShaderColor{a, b, a, b, a, b, b}, ShaderColorSet{a, b, a, b, a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSet(tt.input); got != tt.want {
				t.Errorf("NewSet = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewSetClamps(t *testing.T) {
	got := NewSet([]ShaderColor{{R: 2, G: -1, B: 0.5}})
	if got[0] != (ShaderColor{R: 1, G: 0, B: 0.5}) {
		t.Errorf("NewSet clamp = %+v", got[0])
	}
}

func TestParseHexPalette(t *testing.T) {
	set, err := ParseHexPalette([]string{"#ff0000", "00ff00", " ", "#0000ff"})
	if err != nil {
		t.Fatalf("ParseHexPalette: %v", err)
	}
	want := []string{"#ff0000", "#00ff00", "#0000ff", "#0000ff", "#0000ff"}
	for i, h := range set.Hex() {
		if h != want[i] {
			t.Errorf("color %d = %s, want %s", i, h, want[i])
		}
	}

	if _, err := ParseHexPalette([]string{"#zzzzzz"}); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestTintForLightThemeKeepsHue(t *testing.T) {
	src := ShaderColorSet{
		{R: 0.9, G: 0.1, B: 0.1},
		{R: 0.1, G: 0.6, B: 0.2},
		{R: 0.1, G: 0.2, B: 0.9},
		{R: 0.5, G: 0.5, B: 0.5},
		{R: 0.05, G: 0.05, B: 0.08},
	}
	out := TintForLightTheme(src, 0.02, 0.1)
	for i := range out {
		lch := SRGBToOKLab(out[i]).LCh()
		if lch.L < 0.8 {
			t.Errorf("color %d lightness %v, want light", i, lch.L)
		}
		if lch.C > 0.1+0.02 {
			t.Errorf("color %d chroma %v exceeds max", i, lch.C)
		}
	}

	srcHue := SRGBToOKLab(src[0]).LCh().H
	outHue := SRGBToOKLab(out[0]).LCh().H
	if diff := srcHue - outHue; diff > 0.15 || diff < -0.15 {
		t.Errorf("hue drifted from %v to %v", srcHue, outHue)
	}
}

func TestHexAndFloat32(t *testing.T) {
	c := RGB8(0x12, 0x34, 0x56)
	if c.Hex() != "#123456" {
		t.Errorf("Hex = %s", c.Hex())
	}
	if f := c.Float32(); f[3] != 1 {
		t.Errorf("alpha = %v, want 1", f[3])
	}
}
