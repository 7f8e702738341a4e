package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(2) var<uniform> blur: BlurUniforms;
	// or handle types: @group(0) @binding(0) var source_texture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseBindings extracts the @group(0) resource declarations of a pass shader in binding order.
// Pass shaders bind everything in group 0 with contiguous indices starting at 0, which is what the
// fullscreen pipelines and the bind group cache assume.
//
// Parameters:
//   - source: the processed WGSL source
//
// Returns:
//   - []Binding: the bindings sorted by index
//   - error: an error for declarations outside group 0, gaps in the binding indices, or unsupported types
func parseBindings(source string) ([]Binding, error) {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	var bindings []Binding
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		index, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		name := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		if group != 0 {
			return nil, fmt.Errorf("binding %s: only group 0 is supported, got group %d", name, group)
		}

		kind, ok := classifyResource(addressSpace, typeName)
		if !ok {
			return nil, fmt.Errorf("binding %s: unsupported resource %q %q", name, addressSpace, typeName)
		}

		b := Binding{Index: index, Name: name, Kind: kind, Type: typeName}
		if addressSpace != "" {
			layout, ok := resolveTypeLayout(typeName, structSizes)
			if !ok {
				return nil, fmt.Errorf("binding %s: cannot resolve layout of %s", name, typeName)
			}
			b.Size = layout.size
		}
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Index < bindings[j].Index
	})
	for i, b := range bindings {
		if b.Index != i {
			return nil, fmt.Errorf("binding %s: expected index %d, got %d", b.Name, i, b.Index)
		}
	}
	return bindings, nil
}

// parseEntryPoint extracts the entry point function name for the given stage.
// Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - stage: ShaderTypeVertex or ShaderTypeFragment
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch stage {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// StructSize computes the byte size of a named struct declared in WGSL source using the WGSL
// uniform layout rules.
//
// Parameters:
//   - source: WGSL source containing the struct declaration
//   - name: the struct name
//
// Returns:
//   - uint64: the struct size in bytes
//   - bool: false if the struct is missing or a field type cannot be resolved
func StructSize(source, name string) (uint64, bool) {
	sizes := computeStructSizes(parseStructBlocks(stripComments(source)))
	layout, ok := sizes[name]
	return layout.size, ok
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			isBuiltin: builtinRegex.MatchString(line),
		})
	}

	return fields
}
