// Package graph records the fullscreen passes of one frame. Every pass binds its source textures,
// then the shared sampler when it samples anything, then its uniform buffer.
package graph

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
)

// Step is one fullscreen draw.
type Step struct {
	// Label names the pass in diagnostics and GPU captures.
	Label string
	// Pass selects the pipeline.
	Pass pipeline.Pass
	// Slot selects which of the pass's uniform buffers receives Uniforms.
	Slot int
	// Target is the texture drawn into; the zero handle draws into the surface.
	Target gpu.Handle
	// Sources are the sampled textures in binding order.
	Sources []gpu.Handle
	// Uniforms is the marshalled uniform struct of the pass.
	Uniforms []byte
}

// Encoder draws Steps into one frame.
type Encoder struct {
	frame     gpu.Frame
	pipelines *pipeline.Set
	groups    bind_group_cache.BindGroupCache
	resources bind_group_provider.BindGroupProvider

	entries []gpu.Handle
	labels  []string
}

// NewEncoder creates an Encoder recording into frame.
//
// Parameters:
//   - frame: the open frame
//   - pipelines: the compiled pipelines
//   - groups: the bind group cache
//   - resources: the sampler and uniform buffers
//
// Returns:
//   - *Encoder: the encoder
func NewEncoder(frame gpu.Frame, pipelines *pipeline.Set, groups bind_group_cache.BindGroupCache, resources bind_group_provider.BindGroupProvider) *Encoder {
	return &Encoder{
		frame:     frame,
		pipelines: pipelines,
		groups:    groups,
		resources: resources,
		entries:   make([]gpu.Handle, 0, bind_group_cache.MaxEntries),
	}
}

// Draw writes the step's uniforms, resolves its bind group and records the pass.
//
// Parameters:
//   - step: the draw
//
// Returns:
//   - error: an error if any resource is missing or the frame rejects the pass
func (e *Encoder) Draw(step Step) error {
	slot := bind_group_provider.Slot{Pass: step.Pass, Index: step.Slot}
	buf, ok := e.resources.Buffer(slot)
	if !ok {
		return fmt.Errorf("%s: no uniform buffer for %s", step.Label, slot)
	}
	if err := e.resources.Write(bind_group_provider.BufferWrite{Slot: slot, Data: step.Uniforms}); err != nil {
		return fmt.Errorf("%s: %w", step.Label, err)
	}

	e.entries = append(e.entries[:0], step.Sources...)
	if len(step.Sources) > 0 {
		e.entries = append(e.entries, e.resources.Sampler())
	}
	e.entries = append(e.entries, buf)

	handle := e.pipelines.Handle(step.Pass)
	group, err := e.groups.Get(step.Label, handle, e.entries...)
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", step.Label, err)
	}
	if err := e.frame.Draw(gpu.Pass{
		Label:     step.Label,
		Pipeline:  handle,
		BindGroup: group,
		Target:    step.Target,
	}); err != nil {
		return fmt.Errorf("%s: %w", step.Label, err)
	}
	e.labels = append(e.labels, step.Label)
	return nil
}

// Labels returns the labels of every pass drawn so far.
func (e *Encoder) Labels() []string {
	return e.labels
}
