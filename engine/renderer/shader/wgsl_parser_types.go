package shader

import "github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to size uniform buffers from the declared struct.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// Binding is one @group(0) resource declaration of a pass shader.
type Binding struct {
	// Index is the @binding(N) index.
	Index int

	// Name is the declared variable name.
	Name string

	// Kind is the resource kind bound at Index.
	Kind gpu.BindingKind

	// Type is the declared WGSL type.
	Type string

	// Size is the byte size of a uniform binding's struct, 0 for textures and samplers.
	Size uint64
}
