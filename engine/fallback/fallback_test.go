package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/gradient"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

func testFrame(w, h int) Frame {
	s := settings.Default()
	s.RenderScale = 1
	return Frame{Width: w, Height: h, Time: 1.5, Palette: color.FallbackSet(), Settings: s}
}

func TestRenderMatchesSceneSample(t *testing.T) {
	r := NewRenderer(WithWorkers(3), WithBandHeight(5))
	defer r.Close()

	f := testFrame(32, 24)
	img, err := r.Render(t.Context(), f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	s := settings.Sanitize(f.Settings)
	scene := gradient.NewScene(f.Palette, s, f.Time)
	for _, p := range [][2]int{{0, 0}, {31, 23}, {16, 12}, {5, 20}} {
		x, y := p[0], p[1]
		want := gradient.Composite(scene.Sample((float64(x)+0.5)/32, (float64(y)+0.5)/24, 32.0/24), gradient.BaseColor(s.Theme), s.Opacity)
		wr, wg, wb := want.Bytes()
		got := img.RGBAAt(x, y)
		if got.R != wr || got.G != wg || got.B != wb || got.A != 0xff {
			t.Errorf("pixel (%d,%d) = %v, want %d %d %d", x, y, got, wr, wg, wb)
		}
	}
}

func TestRenderUpscalesFromRenderScale(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	f := testFrame(64, 40)
	f.Settings.RenderScale = 0.25
	img, err := r.Render(t.Context(), f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 40 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatal("upscaled image is not opaque")
		}
	}
}

func TestZeroOpacityShowsThemeBase(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	f := testFrame(8, 8)
	f.Settings.Opacity = 0
	f.Settings.Theme = settings.ThemeLight
	img, err := r.Render(t.Context(), f)
	if err != nil {
		t.Fatal(err)
	}
	wr, wg, wb := gradient.BaseColor(settings.ThemeLight).Bytes()
	if c := img.RGBAAt(4, 4); c.R != wr || c.G != wg || c.B != wb {
		t.Errorf("pixel = %v, want theme base", c)
	}
}

func TestRenderCancelledAndClosed(t *testing.T) {
	r := NewRenderer()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := r.Render(ctx, testFrame(16, 16)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	r.Close()
	r.Close()
	if _, err := r.Render(t.Context(), testFrame(4, 4)); err == nil {
		t.Error("closed renderer rendered")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{100, 50, 1, 100, 50},
		{100, 50, 0.5, 50, 25},
		{100, 50, 0.01, 20, 10},
		{3, 3, 0.2, 1, 1},
	}
	for _, tt := range tests {
		if w, h := ScaledSize(tt.w, tt.h, tt.scale); w != tt.wantW || h != tt.wantH {
			t.Errorf("ScaledSize(%d, %d, %v) = %d, %d", tt.w, tt.h, tt.scale, w, h)
		}
	}
}
