package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/shader"
)

// Pass identifies one fullscreen render pass of the frame graph.
type Pass int

const (
	// PassScene renders the procedural gradient into the scene target.
	PassScene Pass = iota

	// PassDualDown is one Dual-Kawase downsample step.
	PassDualDown

	// PassDualUp is one Dual-Kawase upsample step.
	PassDualUp

	// PassMipDown is one mip pyramid downsample step.
	PassMipDown

	// PassMipComposite blends the scene with the mip levels into the post target.
	PassMipComposite

	// PassTemporal seeds or resolves the history buffer.
	PassTemporal

	// PassComposite blends the final image over the base color onto the surface.
	PassComposite

	passCount
)

// Passes lists every pass in frame order.
var Passes = []Pass{PassScene, PassDualDown, PassDualUp, PassMipDown, PassMipComposite, PassTemporal, PassComposite}

// String returns the pass label.
func (p Pass) String() string {
	switch p {
	case PassScene:
		return "scene"
	case PassDualDown:
		return "dual-down"
	case PassDualUp:
		return "dual-up"
	case PassMipDown:
		return "mip-down"
	case PassMipComposite:
		return "mip-composite"
	case PassTemporal:
		return "temporal"
	case PassComposite:
		return "composite"
	}
	return fmt.Sprintf("pass(%d)", int(p))
}

// Asset returns the shader asset rendering the pass.
func (p Pass) Asset() string {
	switch p {
	case PassScene:
		return shader.AssetScene
	case PassDualDown:
		return shader.AssetDualDown
	case PassDualUp:
		return shader.AssetDualUp
	case PassMipDown:
		return shader.AssetMipDown
	case PassMipComposite:
		return shader.AssetMipComposite
	case PassTemporal:
		return shader.AssetTemporal
	case PassComposite:
		return shader.AssetComposite
	}
	return ""
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pass is the frame graph pass this pipeline renders
	pass Pass

	// label is used for the GPU objects and diagnostics, defaults to the pass label
	label string

	// shader provides the module source, entry points and binding layout
	shader shader.Shader

	// targetFormat is the color attachment format, gpu.FormatSurface for the swapchain
	targetFormat gpu.TextureFormat

	// module and handle are set by Compile and Init respectively
	module gpu.Handle
	handle gpu.Handle
}

// Pipeline is a fullscreen render pipeline for one Pass.
type Pipeline interface {
	// Pass returns the pass rendered by this pipeline.
	//
	// Returns:
	//   - Pass: the pass
	Pass() Pass

	// Label returns the label used for GPU objects.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Shader returns the parsed pass shader.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// TargetFormat returns the color attachment format.
	//
	// Returns:
	//   - gpu.TextureFormat: the format, gpu.FormatSurface for the swapchain
	TargetFormat() gpu.TextureFormat

	// Compile compiles the shader module on the device. Diagnostics are returned even when err is nil.
	//
	// Parameters:
	//   - device: the device to compile on
	//
	// Returns:
	//   - []gpu.CompileMessage: compiler diagnostics
	//   - error: non-nil when the module failed to compile
	Compile(device gpu.Device) ([]gpu.CompileMessage, error)

	// Init creates the GPU pipeline from the compiled module.
	//
	// Parameters:
	//   - device: the device that compiled the module
	//
	// Returns:
	//   - error: an error if Compile has not succeeded or pipeline creation fails
	Init(device gpu.Device) error

	// Handle returns the pipeline handle, or the zero handle before Init.
	//
	// Returns:
	//   - gpu.Handle: the pipeline handle
	Handle() gpu.Handle
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for pass with all specified options applied.
//
// Parameters:
//   - pass: the frame graph pass
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline, not yet compiled
func NewPipeline(pass Pass, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pass:         pass,
		label:        pass.String(),
		targetFormat: gpu.FormatSurface,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) Pass() Pass {
	return p.pass
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) TargetFormat() gpu.TextureFormat {
	return p.targetFormat
}

func (p *pipeline) Compile(device gpu.Device) ([]gpu.CompileMessage, error) {
	if p.shader == nil {
		return nil, fmt.Errorf("pipeline %s: no shader", p.label)
	}
	module, messages, err := device.CompileShader(p.label, p.shader.Source())
	if err != nil {
		if len(messages) == 0 {
			messages = []gpu.CompileMessage{{Module: p.label, Text: err.Error()}}
		}
		return messages, err
	}
	p.module = module
	return messages, nil
}

func (p *pipeline) Init(device gpu.Device) error {
	if p.module.IsZero() {
		return fmt.Errorf("pipeline %s: module not compiled", p.label)
	}
	h, err := device.CreatePipeline(gpu.PipelineDesc{
		Label:         p.label,
		Module:        p.module,
		VertexEntry:   p.shader.EntryPoint(shader.ShaderTypeVertex),
		FragmentEntry: p.shader.EntryPoint(shader.ShaderTypeFragment),
		Bindings:      p.shader.BindingKinds(),
		Format:        p.targetFormat,
	})
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", p.label, err)
	}
	p.handle = h
	return nil
}

func (p *pipeline) Handle() gpu.Handle {
	return p.handle
}
