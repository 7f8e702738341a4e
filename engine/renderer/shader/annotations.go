// annotations.go defines the annotation syntax of the backdrop WGSL pre-processor. Annotations are
// single-line WGSL comments prefixed with @backdrop: that pull shared WGSL snippets and uniform struct
// definitions into a pass shader before it is compiled.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@backdrop:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a registered WGSL snippet at the annotation site. Each snippet is
	// injected at most once per shader; repeated includes produce no output.
	//
	// Syntax: //@backdrop:include <name>
	//
	// Example: //@backdrop:include fullscreen
	AnnotationTypeInclude AnnotationType = "include"
)

// Annotation is a single parsed annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For include, [0] is the snippet name.
	Args []string

	// Line is the 1-based source line the annotation was found on.
	Line int
}

// parseAnnotation parses one source line. Lines that are not annotations return nil without error.
//
// Parameters:
//   - line: the raw source line
//   - lineNumber: the 1-based line number used in error messages
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: an error if the line is a malformed annotation
func parseAnnotation(line string, lineNumber int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNumber)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNumber}
	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return nil, fmt.Errorf("line %d: include takes exactly one argument, got %d", lineNumber, len(a.Args))
		}
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNumber, a.Type)
	}
	return a, nil
}
