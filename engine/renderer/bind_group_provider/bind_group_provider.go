package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"go.uber.org/zap"
)

// MaxDualPasses is the largest number of down (and up) passes a Dual-Kawase blur records.
const MaxDualPasses = 6

// slotCounts is the number of uniform buffers each pass owns. Passes recorded several times in one
// frame need one buffer per draw because queued writes all land before the frame executes.
var slotCounts = map[pipeline.Pass]int{
	pipeline.PassScene:        1,
	pipeline.PassDualDown:     MaxDualPasses,
	pipeline.PassDualUp:       MaxDualPasses,
	pipeline.PassMipDown:      5,
	pipeline.PassMipComposite: 1,
	pipeline.PassTemporal:     1,
	pipeline.PassComposite:    1,
}

// SlotCount returns how many uniform buffers a pass owns.
func SlotCount(pass pipeline.Pass) int {
	return slotCounts[pass]
}

// Slot addresses the uniform buffer of one draw of a pass.
type Slot struct {
	Pass  pipeline.Pass
	Index int
}

func (s Slot) String() string {
	return fmt.Sprintf("%s[%d]", s.Pass, s.Index)
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label prefixed to every buffer label.
	label string

	log *zap.Logger

	// The following fields are GPU allocated resources. They are populated by Init and belong to
	// the device they were created on.

	// device is the device the resources were created on, or nil before Init.
	device gpu.Device
	// sampler is the linear clamp sampler shared by every textured pass.
	sampler gpu.Handle
	// buffers holds the uniform buffers keyed by slot.
	buffers map[Slot]gpu.Handle
	// sizes holds the buffer size of each slot, used to reject short writes.
	sizes map[Slot]uint64
}

// BindGroupProvider owns the non-target resources the render passes bind: one shared sampler and
// one uniform buffer per pass slot. Render targets belong to the target pool and bind groups to the
// bind group cache.
//
// Usage pattern:
//  1. The bootstrap creates a provider and calls Init with the compiled pipeline set
//  2. Each frame writes pass parameters with Write before drawing
//  3. Bind groups reference Sampler() and Buffer(slot)
//  4. Release drops the handles when the device session ends
type BindGroupProvider interface {
	// Init creates the sampler and every uniform buffer.
	//
	// Parameters:
	//   - device: the device to create the resources on
	//   - pipelines: the compiled pipelines, used to size each pass buffer
	//
	// Returns:
	//   - error: an error if any resource cannot be created
	Init(device gpu.Device, pipelines *pipeline.Set) error

	// Release drops every handle. The objects are freed with the device.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Sampler returns the shared linear sampler, or the zero handle before Init.
	//
	// Returns:
	//   - gpu.Handle: the sampler
	Sampler() gpu.Handle

	// Buffer returns the uniform buffer of a slot.
	//
	// Parameters:
	//   - slot: the pass slot
	//
	// Returns:
	//   - gpu.Handle: the buffer
	//   - bool: false if the slot has no buffer
	Buffer(slot Slot) (gpu.Handle, bool)

	// Write queues uniform data for the given slots.
	//
	// Parameters:
	//   - writes: the writes to queue
	//
	// Returns:
	//   - error: an error if a slot is unknown, the data is too large or the device rejects the write
	Write(writes ...BufferWrite) error
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		log:     zap.NewNop(),
		buffers: make(map[Slot]gpu.Handle),
		sizes:   make(map[Slot]uint64),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Init(device gpu.Device, pipelines *pipeline.Set) error {
	p.Release()

	sampler, err := device.CreateSampler(p.label + " sampler")
	if err != nil {
		return fmt.Errorf("%s: sampler: %w", p.label, err)
	}
	p.sampler = sampler

	for _, pass := range pipeline.Passes {
		size := pipelines.UniformSize(pass)
		if size == 0 {
			continue
		}
		for i := range SlotCount(pass) {
			slot := Slot{Pass: pass, Index: i}
			buf, err := device.CreateUniformBuffer(fmt.Sprintf("%s %s", p.label, slot), size)
			if err != nil {
				p.Release()
				return fmt.Errorf("%s: uniform buffer %s: %w", p.label, slot, err)
			}
			p.buffers[slot] = buf
			p.sizes[slot] = size
		}
	}
	p.device = device
	p.log.Debug("pass resources created", zap.String("label", p.label), zap.Int("buffers", len(p.buffers)))
	return nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Sampler() gpu.Handle {
	return p.sampler
}

func (p *bindGroupProvider) Buffer(slot Slot) (gpu.Handle, bool) {
	h, ok := p.buffers[slot]
	return h, ok
}

func (p *bindGroupProvider) Write(writes ...BufferWrite) error {
	if p.device == nil {
		return fmt.Errorf("%s: write before Init", p.label)
	}
	for _, w := range writes {
		buf, ok := p.buffers[w.Slot]
		if !ok {
			return fmt.Errorf("%s: no uniform buffer for %s", p.label, w.Slot)
		}
		if uint64(len(w.Data)) > p.sizes[w.Slot] {
			return fmt.Errorf("%s: %d bytes exceed the %d byte buffer of %s", p.label, len(w.Data), p.sizes[w.Slot], w.Slot)
		}
		if err := p.device.WriteBuffer(buf, w.Data); err != nil {
			return fmt.Errorf("%s: write %s: %w", p.label, w.Slot, err)
		}
	}
	return nil
}

func (p *bindGroupProvider) Release() {
	clear(p.buffers)
	clear(p.sizes)
	p.sampler = gpu.Handle{}
	p.device = nil
}
