package temporal

import (
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph/graphtest"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

func runFrames(t *testing.T, s *graphtest.Session, r *Resolver, st settings.ShaderSettings, generation uint64, n int) []string {
	t.Helper()
	var labels []string
	for range n {
		h := s.Pool.History()
		r.Observe(NewResetToken(st, generation), h)
		enc, f := s.Begin(t)
		out, err := r.Encode(enc, s.Pool.Scene(), h, ParamsFrom(st))
		if err != nil {
			t.Fatal(err)
		}
		if h.Allocated() && out != h.Read() {
			t.Fatal("resolved target is not the next read target")
		}
		if err := f.Submit(); err != nil {
			t.Fatal(err)
		}
		labels = append(labels, enc.Labels()...)
	}
	return labels
}

func TestSeedThenResolve(t *testing.T) {
	s := graphtest.NewSession(t)
	st := settings.Default()
	if _, err := s.Pool.Ensure(target.Plan(32, 32, st)); err != nil {
		t.Fatal(err)
	}
	r := NewResolver()

	labels := runFrames(t, s, r, st, 0, 4)
	if want := []string{"temporal-seed", "temporal", "temporal", "temporal"}; !slices.Equal(labels, want) {
		t.Fatalf("passes = %v, want %v", labels, want)
	}
	h := s.Pool.History()
	if h.FrameCount() != 4 || h.ReadIndex() != 0 {
		t.Errorf("frames = %d, read index = %d", h.FrameCount(), h.ReadIndex())
	}
}

func TestResetTokenChangeReseeds(t *testing.T) {
	s := graphtest.NewSession(t)
	st := settings.Default()
	if _, err := s.Pool.Ensure(target.Plan(32, 32, st)); err != nil {
		t.Fatal(err)
	}
	r := NewResolver()
	runFrames(t, s, r, st, 0, 3)

	st.WarpStrength = 1.2
	if got := runFrames(t, s, r, st, 0, 2); !slices.Equal(got, []string{"temporal-seed", "temporal"}) {
		t.Fatalf("after setting change: %v", got)
	}
	if got := runFrames(t, s, r, st, 1, 1); got[0] != "temporal-seed" {
		t.Fatalf("after palette change: %v", got)
	}
	// settings outside the token keep the history
	st.Opacity = 0.3
	st.GrainAmount = 0.1
	if got := runFrames(t, s, r, st, 1, 1); got[0] != "temporal" {
		t.Fatalf("after opacity change: %v", got)
	}
	if r.Resets() != 2 {
		t.Errorf("resets = %d, want 2", r.Resets())
	}
}

func TestDisabledTemporalPassesThrough(t *testing.T) {
	s := graphtest.NewSession(t)
	st := settings.Default()
	st.TemporalEnabled = false
	if _, err := s.Pool.Ensure(target.Plan(32, 32, st)); err != nil {
		t.Fatal(err)
	}
	if labels := runFrames(t, s, NewResolver(), st, 0, 2); len(labels) != 0 {
		t.Fatalf("disabled temporal drew %v", labels)
	}
	if s.Device.FrameCount() != 2 || len(s.Device.Frames()[0]) != 0 {
		t.Error("unexpected passes")
	}
}

func TestHistoryWeightRamp(t *testing.T) {
	tests := []struct {
		frames int
		want   float64
	}{
		{0, 0}, {1, 0.08}, {5, 0.4}, {10, 0.8}, {120, 0.8},
	}
	for _, tt := range tests {
		if got := HistoryWeight(0.8, tt.frames); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HistoryWeight(0.8, %d) = %v, want %v", tt.frames, got, tt.want)
		}
	}
}

func TestResolvePixel(t *testing.T) {
	p := Params{Strength: 0.82, Response: 0.4, Clamp: 0.08}
	grey := color.ShaderColor{R: 0.5, G: 0.5, B: 0.5}

	if got := ResolvePixel(grey, grey, 0.82, p); !got.ApproxEqual(grey) {
		t.Errorf("static pixel changed: %+v", got)
	}

	// a large change is fully reactive and takes the current color
	white := color.ShaderColor{R: 1, G: 1, B: 1}
	black := color.ShaderColor{}
	if got := ResolvePixel(white, black, 0.82, p); !got.ApproxEqual(white) {
		t.Errorf("reactive pixel = %+v, want current", got)
	}

	// a small change lands between current and history
	cur := color.ShaderColor{R: 0.5, G: 0.5, B: 0.5}
	hist := color.ShaderColor{R: 0.51, G: 0.5, B: 0.5}
	got := ResolvePixel(cur, hist, 0.82, p)
	if got.R <= cur.R || got.R >= hist.R {
		t.Errorf("blended R = %v, want inside (%v, %v)", got.R, cur.R, hist.R)
	}

	if got := ResolvePixel(cur, hist, 0, p); !got.ApproxEqual(cur) {
		t.Errorf("zero weight = %+v, want current", got)
	}
}
