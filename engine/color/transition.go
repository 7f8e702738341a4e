package color

import (
	"time"

	"github.com/Carmen-Shannon/backdrop/common"
)

// Transition blends the live palette from a captured starting point towards the latest target.
// Durations are passed per call so that a settings change applies to a transition in flight.
// A Transition is not safe for concurrent use.
type Transition struct {
	from       ShaderColorSet
	to         ShaderColorSet
	startedAt  time.Time
	generation uint64
}

// NewTransition creates a settled Transition showing initial.
//
// Parameters:
//   - initial: the palette shown before any target is set
//
// Returns:
//   - *Transition: the transition, already at rest on initial
func NewTransition(initial ShaderColorSet) *Transition {
	initial = initial.Clamped()
	return &Transition{from: initial, to: initial}
}

// SetTarget starts a new transition towards target, clamped to the unit range. When the clamped
// target matches the current target within the per-channel epsilon nothing changes. Otherwise the
// live blend at now becomes the new starting point, so retargeting mid-transition never jumps.
//
// Parameters:
//   - target: the palette to blend towards
//   - now: the current time
//   - duration: the configured transition length
//
// Returns:
//   - bool: true if a new transition was started
func (t *Transition) SetTarget(target ShaderColorSet, now time.Time, duration time.Duration) bool {
	target = target.Clamped()
	if target.ApproxEqual(t.to) {
		return false
	}
	t.from = t.Live(now, duration)
	t.to = target
	t.startedAt = now
	t.generation++
	return true
}

// Progress returns the normalized transition progress in [0, 1].
func (t *Transition) Progress(now time.Time, duration time.Duration) float64 {
	if duration <= 0 || t.startedAt.IsZero() {
		return 1
	}
	return common.Clamp01(float64(now.Sub(t.startedAt)) / float64(duration))
}

// Live returns the palette to render at now. Progress 0 yields the starting palette exactly and
// progress 1 yields the target exactly. In between each color is blended through OKLab.
//
// Parameters:
//   - now: the frame time
//   - duration: the configured transition length
//
// Returns:
//   - ShaderColorSet: the live palette
func (t *Transition) Live(now time.Time, duration time.Duration) ShaderColorSet {
	p := t.Progress(now, duration)
	switch {
	case p >= 1:
		return t.to
	case p <= 0:
		return t.from
	}
	return MixSets(t.from, t.to, p)
}

// Target returns the palette being blended towards.
func (t *Transition) Target() ShaderColorSet {
	return t.to
}

// Generation counts started transitions. It feeds the temporal reset token.
func (t *Transition) Generation() uint64 {
	return t.generation
}
