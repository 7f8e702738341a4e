package pipeline

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/shader"
)

// maxReportedMessages bounds how many compiler messages CompileError.Error includes.
const maxReportedMessages = 3

// CompileError reports that one or more pass shaders failed to compile. It is fatal for a session.
type CompileError struct {
	Messages []gpu.CompileMessage
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString("shader compilation failed: ")
	for i, m := range e.Messages {
		if i == maxReportedMessages {
			fmt.Fprintf(&sb, " (+%d more)", len(e.Messages)-maxReportedMessages)
			break
		}
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", m.Module, m.Text)
	}
	return sb.String()
}

// Set holds one compiled Pipeline per Pass.
type Set struct {
	pipelines [passCount]Pipeline
}

// Build compiles every pass shader and creates its pipeline. Every module is compiled before any
// pipeline is created so all diagnostics of a broken build are reported together.
//
// Parameters:
//   - device: the device to build on, with its surface configured
//   - intermediate: the format of the offscreen render targets
//
// Returns:
//   - *Set: the pipelines
//   - error: *CompileError if any module failed to parse or compile, otherwise the pipeline creation error
func Build(device gpu.Device, intermediate gpu.TextureFormat) (*Set, error) {
	s := &Set{}
	var messages []gpu.CompileMessage

	for _, pass := range Passes {
		sh, err := shader.Load(pass.Asset())
		if err != nil {
			messages = append(messages, gpu.CompileMessage{Module: pass.String(), Text: err.Error()})
			continue
		}
		format := intermediate
		if pass == PassComposite {
			format = gpu.FormatSurface
		}
		p := NewPipeline(pass, WithShader(sh), WithTargetFormat(format))
		if msgs, err := p.Compile(device); err != nil {
			messages = append(messages, msgs...)
			continue
		}
		s.pipelines[pass] = p
	}
	if len(messages) > 0 {
		return nil, &CompileError{Messages: messages}
	}

	for _, pass := range Passes {
		if err := s.pipelines[pass].Init(device); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns the pipeline of a pass.
//
// Parameters:
//   - pass: the pass
//
// Returns:
//   - Pipeline: the pipeline, or nil for an unknown pass
func (s *Set) Get(pass Pass) Pipeline {
	if pass < 0 || pass >= passCount {
		return nil
	}
	return s.pipelines[pass]
}

// Handle returns the pipeline handle of a pass.
func (s *Set) Handle(pass Pass) gpu.Handle {
	if p := s.Get(pass); p != nil {
		return p.Handle()
	}
	return gpu.Handle{}
}

// UniformSize returns the uniform buffer size a pass binds.
func (s *Set) UniformSize(pass Pass) uint64 {
	if p := s.Get(pass); p != nil {
		return p.Shader().UniformSize()
	}
	return 0
}
