package common

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -3, 0, 1, 0},
		{"above", 7, 0, 1, 1},
		{"on edge", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
	if got := Clamp(9, 1, 6); got != 6 {
		t.Errorf("int Clamp = %d, want 6", got)
	}
}

func TestSmoothstep(t *testing.T) {
	if got := Smoothstep(0, 1, 0.5); got != 0.5 {
		t.Errorf("Smoothstep midpoint = %v, want 0.5", got)
	}
	if got := Smoothstep(0, 1, -1); got != 0 {
		t.Errorf("Smoothstep below = %v, want 0", got)
	}
	if got := Smoothstep(2, 2, 3); got != 1 {
		t.Errorf("Smoothstep degenerate = %v, want 1", got)
	}
}

func TestFractAndFinite(t *testing.T) {
	if got := Fract(-0.25); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("Fract(-0.25) = %v, want 0.75", got)
	}
	if Finite(math.NaN()) || Finite(math.Inf(1)) {
		t.Error("expected NaN and Inf to be non-finite")
	}
	if !Finite(1.5) {
		t.Error("expected 1.5 to be finite")
	}
}

func TestAlignUp(t *testing.T) {
	if got := AlignUp(16, 20); got != 32 {
		t.Errorf("AlignUp(16, 20) = %d, want 32", got)
	}
	if got := AlignUp(16, 32); got != 32 {
		t.Errorf("AlignUp(16, 32) = %d, want 32", got)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "label", "other"); got != "label" {
		t.Errorf("Coalesce = %q, want label", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce zero = %d, want 0", got)
	}
}

func TestNewSize(t *testing.T) {
	s := NewSize(0, -4)
	if s.Width != 1 || s.Height != 1 {
		t.Errorf("NewSize(0, -4) = %v, want 1x1", s)
	}
	if s := NewSize(640, 360); s.Area() != 640*360 || s.String() != "640x360" {
		t.Errorf("unexpected size %v", s)
	}
}
