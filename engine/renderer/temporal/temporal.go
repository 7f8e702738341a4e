// Package temporal accumulates the blurred scene over frames. The first pass after the history was
// invalidated seeds it with a copy of the current frame; later passes blend towards the clamped
// history with a weight that ramps up over the first frames and backs off where the image changes.
package temporal

import (
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"go.uber.org/zap"
)

// rampFrames is the number of accumulated frames after which the history weight reaches strength.
const rampFrames = 10

// Params are the temporal settings.
type Params struct {
	Strength float64
	Response float64
	Clamp    float64
}

// ParamsFrom extracts the temporal settings.
func ParamsFrom(s settings.ShaderSettings) Params {
	return Params{Strength: s.TemporalStrength, Response: s.TemporalResponse, Clamp: s.TemporalClamp}
}

// HistoryWeight returns the blend weight of the history after frameCount accumulated frames.
//
// Parameters:
//   - strength: the temporal strength setting
//   - frameCount: the frames accumulated since the last seed
//
// Returns:
//   - float64: strength scaled by min(1, frameCount/10)
func HistoryWeight(strength float64, frameCount int) float64 {
	return strength * min(1, float64(frameCount)/rampFrames)
}

// ResetToken captures every setting that changes the scene enough to make the history useless.
type ResetToken struct {
	SceneVariant     settings.SceneVariant
	BlurMode         settings.BlurMode
	NoiseScale       float64
	FlowSpeed        float64
	WarpStrength     float64
	DetailAmount     float64
	DriftSpeed       float64
	AnchorSpread     float64
	BlurRadius       float64
	TemporalStrength float64
	TemporalResponse float64
	TemporalClamp    float64
	Generation       uint64
}

// NewResetToken builds the token of a settings snapshot and palette transition generation.
func NewResetToken(s settings.ShaderSettings, generation uint64) ResetToken {
	return ResetToken{
		SceneVariant:     s.SceneVariant,
		BlurMode:         s.BlurMode,
		NoiseScale:       s.NoiseScale,
		FlowSpeed:        s.FlowSpeed,
		WarpStrength:     s.WarpStrength,
		DetailAmount:     s.DetailAmount,
		DriftSpeed:       s.DriftSpeed,
		AnchorSpread:     s.AnchorSpread,
		BlurRadius:       s.BlurRadius,
		TemporalStrength: s.TemporalStrength,
		TemporalResponse: s.TemporalResponse,
		TemporalClamp:    s.TemporalClamp,
		Generation:       generation,
	}
}

// Resolver owns the reset token and records the temporal pass.
type Resolver struct {
	token    ResetToken
	observed bool
	resets   int
	log      *zap.Logger
}

// ResolverOption is a functional option applied to a Resolver during construction.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for history resets.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ResolverOption: option function to apply
func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a Resolver that has not observed any token.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Resolver: the resolver
func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{log: zap.NewNop()}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Observe compares token with the previous frame's token and invalidates h when it changed.
//
// Parameters:
//   - token: this frame's reset token
//   - h: the history to invalidate
//
// Returns:
//   - bool: true if the history was invalidated
func (r *Resolver) Observe(token ResetToken, h *target.History) bool {
	changed := r.observed && token != r.token
	r.token = token
	r.observed = true
	if changed {
		h.Invalidate()
		r.resets++
		r.log.Debug("temporal history reset", zap.Int("resets", r.resets))
	}
	return changed
}

// Forget drops the observed token, used when the device session ends.
func (r *Resolver) Forget() {
	r.observed = false
	r.token = ResetToken{}
}

// Resets returns how many times a token change invalidated the history.
func (r *Resolver) Resets() int {
	return r.resets
}

// Encode records the temporal pass from current into the history and advances it.
//
// Parameters:
//   - enc: the frame encoder
//   - current: the blurred scene of this frame
//   - h: the history pair
//   - p: the temporal settings
//
// Returns:
//   - target.RenderTarget: the resolved image, current itself when no history is allocated
//   - error: an error if the pass could not be recorded
func (r *Resolver) Encode(enc *graph.Encoder, current target.RenderTarget, h *target.History, p Params) (target.RenderTarget, error) {
	if !h.Allocated() {
		return current, nil
	}

	u := uniform.GPUTemporalUniforms{
		Response:   float32(p.Response),
		ClampRange: float32(p.Clamp),
	}
	label := "temporal"
	if h.Valid() {
		u.HistoryWeight = float32(HistoryWeight(p.Strength, h.FrameCount()))
	} else {
		u.Seed = 1
		label = "temporal-seed"
	}

	out := h.Write()
	if err := enc.Draw(graph.Step{
		Label:    label,
		Pass:     pipeline.PassTemporal,
		Target:   out.Texture,
		Sources:  []gpu.Handle{current.Texture, h.Read().Texture},
		Uniforms: u.Marshal(),
	}); err != nil {
		return target.RenderTarget{}, err
	}
	h.Advance()
	return out, nil
}
