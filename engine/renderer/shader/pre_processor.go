// pre_processor.go implements the WGSL pre-processor. It scans shader source for @backdrop:
// annotations and replaces include annotations with the registered snippet source. Snippets are the
// shared fullscreen vertex stage, the color and noise helpers, and the uniform struct definitions
// mirrored by the uniform package.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/uniform"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includeRegistry maps include names to WGSL source.
	includeRegistry map[string]string

	// includes records the snippet names injected during the most recent Process call, in order.
	includes []string
}

// PreProcessor expands @backdrop: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces include annotations with their registered WGSL source. A snippet included more
	// than once is only injected the first time. The include list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed or names an unknown snippet
	Process(source string) (string, error)

	// Includes returns the snippet names injected by the most recent Process call, in source order.
	//
	// Returns:
	//   - []string: the included snippet names
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every shared snippet and uniform struct registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		includeRegistry: map[string]string{
			"fullscreen":         fullscreenSource,
			"color":              colorSource,
			"noise":              noiseSource,
			"scene_uniforms":     uniform.GPUSceneUniformsSource,
			"blur_uniforms":      uniform.GPUBlurUniformsSource,
			"mip_uniforms":       uniform.GPUMipUniformsSource,
			"temporal_uniforms":  uniform.GPUTemporalUniformsSource,
			"composite_uniforms": uniform.GPUCompositeUniformsSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.includes = p.includes[:0]
	seen := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			name := a.Args[0]
			src, ok := p.includeRegistry[name]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @backdrop:include argument %q", i+1, name)
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			p.includes = append(p.includes, name)
			out = append(out, strings.TrimRight(src, "\n"))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return p.includes
}
