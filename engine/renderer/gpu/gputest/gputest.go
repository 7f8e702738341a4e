// Package gputest provides an in-memory gpu.Provider for tests. It validates handles the way a real
// device would, records every submitted pass and counts allocations.
package gputest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/arena"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
)

type kind int

const (
	kindModule kind = iota
	kindPipeline
	kindTexture
	kindSampler
	kindBuffer
	kindBindGroup
)

type object struct {
	kind     kind
	label    string
	texture  gpu.TextureDesc
	bindings []gpu.BindingKind
	entries  []gpu.Handle
	data     []byte
}

// Provider is a fake gpu.Provider. Configure the exported fields before the first request.
type Provider struct {
	// AdapterErr is returned by RequestAdapter when set.
	AdapterErr error

	// DeviceErr is returned by RequestDevice when set.
	DeviceErr error

	// TransientDeviceFailures is the number of upcoming RequestDevice calls that fail with
	// gpu.ErrDeviceLost before devices are created again.
	TransientDeviceFailures int

	// Gate, when non-nil, blocks RequestAdapter until it is closed or the context is done.
	Gate chan struct{}

	// CompileErrors maps a shader label to a compiler message; matching modules fail to compile.
	CompileErrors map[string]string

	// FailFormats lists texture formats whose allocation fails.
	FailFormats map[gpu.TextureFormat]bool

	// Surface is the format reported after ConfigureSurface. Defaults to FormatBGRA8Unorm.
	Surface gpu.TextureFormat

	mu              sync.Mutex
	adapterRequests int
	devices         []*Device
}

var _ gpu.Provider = &Provider{}

// NewProvider creates a Provider with no injected failures.
//
// Returns:
//   - *Provider: the fake provider
func NewProvider() *Provider {
	return &Provider{
		CompileErrors: map[string]string{},
		FailFormats:   map[gpu.TextureFormat]bool{},
		Surface:       gpu.FormatBGRA8Unorm,
	}
}

func (p *Provider) RequestAdapter(ctx context.Context) (gpu.Adapter, error) {
	p.mu.Lock()
	p.adapterRequests++
	gate := p.Gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.AdapterErr != nil {
		return nil, p.AdapterErr
	}
	return &adapter{provider: p}, nil
}

// AdapterRequests returns how many times RequestAdapter was called.
func (p *Provider) AdapterRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adapterRequests
}

// Devices returns every device created so far, oldest first.
func (p *Provider) Devices() []*Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Device(nil), p.devices...)
}

// Current returns the most recently created device, or nil.
func (p *Provider) Current() *Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.devices) == 0 {
		return nil
	}
	return p.devices[len(p.devices)-1]
}

type adapter struct {
	provider *Provider
}

func (a *adapter) Name() string {
	return "gputest"
}

func (a *adapter) RequestDevice(ctx context.Context, callbacks gpu.DeviceCallbacks) (gpu.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.provider.DeviceErr != nil {
		return nil, a.provider.DeviceErr
	}
	a.provider.mu.Lock()
	if a.provider.TransientDeviceFailures > 0 {
		a.provider.TransientDeviceFailures--
		a.provider.mu.Unlock()
		return nil, fmt.Errorf("gputest: device request failed: %w", gpu.ErrDeviceLost)
	}
	a.provider.mu.Unlock()
	d := &Device{
		provider:  a.provider,
		callbacks: callbacks,
		objects:   arena.New[object](),
	}
	a.provider.mu.Lock()
	a.provider.devices = append(a.provider.devices, d)
	a.provider.mu.Unlock()
	return d, nil
}

func (a *adapter) Release() {}

// Device is a fake gpu.Device.
type Device struct {
	provider  *Provider
	callbacks gpu.DeviceCallbacks

	mu                sync.Mutex
	objects           *arena.Arena[object]
	surfaceFormat     gpu.TextureFormat
	surfaceWidth      int
	surfaceHeight     int
	lost              bool
	released          bool
	texturesCreated   int
	texturesDestroyed int
	groupsCreated     int
	groupsDestroyed   int
	frames            [][]gpu.Pass
}

var _ gpu.Device = &Device{}

// Lose marks the device lost and invokes the OnLost callback. Subsequent calls return gpu.ErrDeviceLost.
//
// Parameters:
//   - reason: the loss reason passed to the callback
func (d *Device) Lose(reason string) {
	d.mu.Lock()
	if d.lost {
		d.mu.Unlock()
		return
	}
	d.lost = true
	d.mu.Unlock()

	if d.callbacks.OnLost != nil {
		d.callbacks.OnLost(reason)
	}
}

// RaiseError invokes the OnError callback as an uncaptured device error would.
//
// Parameters:
//   - message: the error message
func (d *Device) RaiseError(message string) {
	if d.callbacks.OnError != nil {
		d.callbacks.OnError(message)
	}
}

func (d *Device) check() error {
	if d.released {
		return errors.New("gputest: device released")
	}
	if d.lost {
		return gpu.ErrDeviceLost
	}
	return nil
}

func (d *Device) ConfigureSurface(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return err
	}
	d.surfaceFormat = d.provider.Surface
	d.surfaceWidth = width
	d.surfaceHeight = height
	return nil
}

func (d *Device) SurfaceFormat() gpu.TextureFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceFormat
}

func (d *Device) CompileShader(label, source string) (gpu.Handle, []gpu.CompileMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, nil, err
	}
	if msg, ok := d.provider.CompileErrors[label]; ok {
		return gpu.Handle{}, []gpu.CompileMessage{{Module: label, Text: msg}}, fmt.Errorf("gputest: %s: %s", label, msg)
	}
	if source == "" {
		return gpu.Handle{}, []gpu.CompileMessage{{Module: label, Text: "empty source"}}, errors.New("gputest: empty source")
	}
	return d.objects.Insert(object{kind: kindModule, label: label}), nil, nil
}

func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, err
	}
	if o, ok := d.objects.Get(desc.Module); !ok || o.kind != kindModule {
		return gpu.Handle{}, fmt.Errorf("%w: module for %s", gpu.ErrStaleHandle, desc.Label)
	}
	return d.objects.Insert(object{
		kind:     kindPipeline,
		label:    desc.Label,
		bindings: append([]gpu.BindingKind(nil), desc.Bindings...),
	}), nil
}

func (d *Device) CreateSampler(label string) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, err
	}
	return d.objects.Insert(object{kind: kindSampler, label: label}), nil
}

func (d *Device) CreateUniformBuffer(label string, size uint64) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, err
	}
	return d.objects.Insert(object{kind: kindBuffer, label: label, data: make([]byte, size)}), nil
}

func (d *Device) WriteBuffer(buffer gpu.Handle, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return err
	}
	o, ok := d.objects.Get(buffer)
	if !ok || o.kind != kindBuffer {
		return gpu.ErrStaleHandle
	}
	if len(data) > len(o.data) {
		return fmt.Errorf("gputest: write of %d bytes into %s (%d bytes)", len(data), o.label, len(o.data))
	}
	copy(o.data, data)
	return nil
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, err
	}
	if desc.Width < 1 || desc.Height < 1 {
		return gpu.Handle{}, fmt.Errorf("%w: %s has zero extent", gpu.ErrAllocation, desc.Label)
	}
	if d.provider.FailFormats[desc.Format] {
		return gpu.Handle{}, fmt.Errorf("%w: %s unsupported", gpu.ErrAllocation, desc.Format)
	}
	d.texturesCreated++
	return d.objects.Insert(object{kind: kindTexture, label: desc.Label, texture: desc}), nil
}

func (d *Device) DestroyTexture(texture gpu.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects.Get(texture); ok && o.kind == kindTexture {
		d.objects.Remove(texture)
		d.texturesDestroyed++
	}
}

func (d *Device) CreateBindGroup(desc gpu.BindGroupDesc) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return gpu.Handle{}, err
	}
	p, ok := d.objects.Get(desc.Pipeline)
	if !ok || p.kind != kindPipeline {
		return gpu.Handle{}, fmt.Errorf("%w: pipeline for %s", gpu.ErrStaleHandle, desc.Label)
	}
	if len(desc.Entries) != len(p.bindings) {
		return gpu.Handle{}, fmt.Errorf("gputest: %s has %d entries for %d bindings", desc.Label, len(desc.Entries), len(p.bindings))
	}
	for i, h := range desc.Entries {
		o, ok := d.objects.Get(h)
		if !ok {
			return gpu.Handle{}, fmt.Errorf("%w: %s binding %d", gpu.ErrStaleHandle, desc.Label, i)
		}
		want := map[gpu.BindingKind]kind{
			gpu.BindingTexture: kindTexture,
			gpu.BindingSampler: kindSampler,
			gpu.BindingUniform: kindBuffer,
		}[p.bindings[i]]
		if o.kind != want {
			return gpu.Handle{}, fmt.Errorf("gputest: %s binding %d expects %s", desc.Label, i, p.bindings[i])
		}
	}
	d.groupsCreated++
	return d.objects.Insert(object{
		kind:    kindBindGroup,
		label:   desc.Label,
		entries: append([]gpu.Handle(nil), desc.Entries...),
	}), nil
}

func (d *Device) DestroyBindGroup(group gpu.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects.Get(group); ok && o.kind == kindBindGroup {
		d.objects.Remove(group)
		d.groupsDestroyed++
	}
}

func (d *Device) BeginFrame() (gpu.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(); err != nil {
		return nil, err
	}
	if d.surfaceFormat == gpu.FormatUndefined {
		return nil, gpu.ErrContextUnavailable
	}
	return &frame{device: d}, nil
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects.Clear()
	d.released = true
}

// TexturesCreated returns the number of successful texture allocations.
func (d *Device) TexturesCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texturesCreated
}

// TexturesDestroyed returns the number of textures destroyed through DestroyTexture.
func (d *Device) TexturesDestroyed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texturesDestroyed
}

// BindGroupsCreated returns the number of bind groups created.
func (d *Device) BindGroupsCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.groupsCreated
}

// BindGroupsDestroyed returns the number of bind groups destroyed.
func (d *Device) BindGroupsDestroyed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.groupsDestroyed
}

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// SurfaceSize returns the last configured surface size.
func (d *Device) SurfaceSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceWidth, d.surfaceHeight
}

// Texture returns the description of a live texture.
func (d *Device) Texture(h gpu.Handle) (gpu.TextureDesc, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects.Get(h)
	if !ok || o.kind != kindTexture {
		return gpu.TextureDesc{}, false
	}
	return o.texture, true
}

// Label returns the label of any live object.
func (d *Device) Label(h gpu.Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, _ := d.objects.Get(h)
	return o.label
}

// BufferData returns a copy of the current contents of a uniform buffer.
func (d *Device) BufferData(h gpu.Handle) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects.Get(h)
	if !ok || o.kind != kindBuffer {
		return nil
	}
	return append([]byte(nil), o.data...)
}

// BindGroupEntries returns the resources bound by a live bind group.
func (d *Device) BindGroupEntries(h gpu.Handle) []gpu.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects.Get(h)
	if !ok || o.kind != kindBindGroup {
		return nil
	}
	return append([]gpu.Handle(nil), o.entries...)
}

// Frames returns the passes of every submitted frame, oldest first.
func (d *Device) Frames() [][]gpu.Pass {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]gpu.Pass, len(d.frames))
	for i, f := range d.frames {
		out[i] = append([]gpu.Pass(nil), f...)
	}
	return out
}

// FrameCount returns the number of submitted frames.
func (d *Device) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// PassLabels returns the pass labels of one frame.
//
// Parameters:
//   - passes: the passes of a frame as returned by Frames
//
// Returns:
//   - []string: the labels in submission order
func PassLabels(passes []gpu.Pass) []string {
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.Label
	}
	return out
}

type frame struct {
	device *Device
	passes []gpu.Pass
	done   bool
}

func (f *frame) Draw(pass gpu.Pass) error {
	d := f.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.done {
		return errors.New("gputest: draw on finished frame")
	}
	if err := d.check(); err != nil {
		return err
	}
	if o, ok := d.objects.Get(pass.Pipeline); !ok || o.kind != kindPipeline {
		return fmt.Errorf("%w: pipeline for %s", gpu.ErrStaleHandle, pass.Label)
	}
	group, ok := d.objects.Get(pass.BindGroup)
	if !ok || group.kind != kindBindGroup {
		return fmt.Errorf("%w: bind group for %s", gpu.ErrStaleHandle, pass.Label)
	}
	if !pass.Target.IsZero() {
		if o, ok := d.objects.Get(pass.Target); !ok || o.kind != kindTexture {
			return fmt.Errorf("%w: target for %s", gpu.ErrStaleHandle, pass.Label)
		}
		for _, e := range group.entries {
			if e == pass.Target {
				return fmt.Errorf("gputest: %s samples its own target", pass.Label)
			}
		}
	}
	f.passes = append(f.passes, pass)
	return nil
}

func (f *frame) Submit() error {
	d := f.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.done {
		return nil
	}
	f.done = true
	if err := d.check(); err != nil {
		return err
	}
	d.frames = append(d.frames, f.passes)
	return nil
}

func (f *frame) Discard() {
	f.done = true
}
