package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
)

// ShaderType identifies a programmable stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
	bindings      []Binding
	includes      []string
}

// Shader is a pre-processed and parsed fullscreen pass shader. It carries everything needed to
// compile the module and build its pipeline.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with includes expanded
	Source() string

	// EntryPoint returns the entry point name for a stage.
	//
	// Parameters:
	//   - stage: ShaderTypeVertex or ShaderTypeFragment
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint(stage ShaderType) string

	// Bindings returns the group 0 resource declarations in binding order.
	//
	// Returns:
	//   - []Binding: the bindings
	Bindings() []Binding

	// BindingKinds returns the kinds of the group 0 bindings in binding order.
	//
	// Returns:
	//   - []gpu.BindingKind: the binding kinds
	BindingKinds() []gpu.BindingKind

	// UniformSize returns the byte size of the uniform binding, or 0 if the shader binds none.
	//
	// Returns:
	//   - uint64: the uniform struct size
	UniformSize() uint64

	// Includes returns the snippet names expanded into the source.
	//
	// Returns:
	//   - []string: the included snippet names
	Includes() []string
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - source: the raw WGSL source containing @backdrop: annotations
//   - pp: the pre-processor used to expand includes
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails, an entry point is missing or a binding is unsupported
func NewShader(key, source string, pp PreProcessor) (Shader, error) {
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s := &shader{
		key:           key,
		source:        processed,
		vertexEntry:   parseEntryPoint(processed, ShaderTypeVertex),
		fragmentEntry: parseEntryPoint(processed, ShaderTypeFragment),
		includes:      append([]string(nil), pp.Includes()...),
	}
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		return nil, fmt.Errorf("shader %s: missing vertex or fragment entry point", key)
	}
	s.bindings, err = parseBindings(processed)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

// Load builds the shader for one of the embedded pass assets.
//
// Parameters:
//   - name: one of the Asset constants
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the asset is unknown or fails to parse
func Load(name string) (Shader, error) {
	src, err := AssetSource(name)
	if err != nil {
		return nil, err
	}
	return NewShader(name, src, NewPreProcessor())
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage ShaderType) string {
	if stage == ShaderTypeVertex {
		return s.vertexEntry
	}
	return s.fragmentEntry
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) BindingKinds() []gpu.BindingKind {
	kinds := make([]gpu.BindingKind, len(s.bindings))
	for i, b := range s.bindings {
		kinds[i] = b.Kind
	}
	return kinds
}

func (s *shader) UniformSize() uint64 {
	for _, b := range s.bindings {
		if b.Kind == gpu.BindingUniform {
			return b.Size
		}
	}
	return 0
}

func (s *shader) Includes() []string {
	return s.includes
}
