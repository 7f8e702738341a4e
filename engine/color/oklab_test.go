package color

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestOKLabRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		in := ShaderColor{R: rng.Float64(), G: rng.Float64(), B: rng.Float64()}
		out := OKLabToSRGB(SRGBToOKLab(in))
		if math.Abs(in.R-out.R) > 1e-3 || math.Abs(in.G-out.G) > 1e-3 || math.Abs(in.B-out.B) > 1e-3 {
			t.Fatalf("round trip %d: %+v -> %+v", i, in, out)
		}
	}
}

func TestOKLabMatchesColorful(t *testing.T) {
	samples := []ShaderColor{
		{R: 1, G: 0, B: 0},
		{R: 0, G: 1, B: 0},
		{R: 0, G: 0, B: 1},
		{R: 0.2, G: 0.4, B: 0.7},
		{R: 0.9, G: 0.85, B: 0.1},
	}
	for _, c := range samples {
		got := SRGBToOKLab(c)
		l, a, b := colorful.Color{R: c.R, G: c.G, B: c.B}.OkLab()
		if math.Abs(got.L-l) > 2e-3 || math.Abs(got.A-a) > 2e-3 || math.Abs(got.B-b) > 2e-3 {
			t.Errorf("SRGBToOKLab(%+v) = %+v, colorful = (%v, %v, %v)", c, got, l, a, b)
		}
	}
}

func TestOKLabExtremes(t *testing.T) {
	white := SRGBToOKLab(ShaderColor{R: 1, G: 1, B: 1})
	if math.Abs(white.L-1) > 1e-4 || math.Abs(white.A) > 1e-4 || math.Abs(white.B) > 1e-4 {
		t.Errorf("white = %+v, want L=1 a=b=0", white)
	}
	black := SRGBToOKLab(ShaderColor{})
	if math.Abs(black.L) > 1e-9 {
		t.Errorf("black L = %v, want 0", black.L)
	}
}

func TestLChRoundTrip(t *testing.T) {
	lab := SRGBToOKLab(ShaderColor{R: 0.3, G: 0.6, B: 0.2})
	back := lab.LCh().Lab()
	if math.Abs(lab.L-back.L) > 1e-12 || math.Abs(lab.A-back.A) > 1e-12 || math.Abs(lab.B-back.B) > 1e-12 {
		t.Errorf("LCh round trip %+v -> %+v", lab, back)
	}
}

func TestMixColorsEndpoints(t *testing.T) {
	a := ShaderColor{R: 0.1, G: 0.2, B: 0.3}
	b := ShaderColor{R: 0.9, G: 0.8, B: 0.7}
	if got := MixColors(a, b, 0); got != a {
		t.Errorf("MixColors t=0 = %+v, want %+v", got, a)
	}
	if got := MixColors(a, b, 1); got != b {
		t.Errorf("MixColors t=1 = %+v, want %+v", got, b)
	}
	if got := MixColors(a, b, 3); got != b {
		t.Errorf("MixColors t=3 = %+v, want %+v", got, b)
	}
}
