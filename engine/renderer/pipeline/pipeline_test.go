package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
)

func newDevice(t *testing.T, p *gputest.Provider) gpu.Device {
	t.Helper()
	a, err := p.RequestAdapter(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	d, err := a.RequestDevice(t.Context(), gpu.DeviceCallbacks{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureSurface(64, 64); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestBuildCreatesEveryPass(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	set, err := Build(d, gpu.FormatRGBA16Float)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seen := map[gpu.Handle]bool{}
	for _, pass := range Passes {
		p := set.Get(pass)
		if p == nil || p.Handle().IsZero() {
			t.Fatalf("%s: no pipeline", pass)
		}
		if seen[p.Handle()] {
			t.Fatalf("%s: handle reused", pass)
		}
		seen[p.Handle()] = true

		want := gpu.FormatRGBA16Float
		if pass == PassComposite {
			want = gpu.FormatSurface
		}
		if p.TargetFormat() != want {
			t.Errorf("%s: target format %s, want %s", pass, p.TargetFormat(), want)
		}
		if set.UniformSize(pass) == 0 {
			t.Errorf("%s: no uniform binding", pass)
		}
	}
	if set.Get(passCount) != nil || !set.Handle(Pass(-1)).IsZero() {
		t.Error("out of range pass resolved")
	}
}

func TestBuildCollectsAllCompileErrors(t *testing.T) {
	p := gputest.NewProvider()
	p.CompileErrors["scene"] = "unexpected token"
	p.CompileErrors["temporal"] = "unknown identifier"
	p.CompileErrors["composite"] = "type mismatch"
	p.CompileErrors["dual-up"] = "bad swizzle"
	d := newDevice(t, p)

	_, err := Build(d, gpu.FormatRGBA8Unorm)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CompileError", err)
	}
	if len(ce.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(ce.Messages))
	}
	msg := ce.Error()
	if !strings.Contains(msg, "scene: unexpected token") || !strings.Contains(msg, "(+1 more)") {
		t.Errorf("Error() = %q", msg)
	}
	// messages follow frame order, so the fourth one is left out of the summary
	if strings.Contains(msg, "type mismatch") {
		t.Errorf("Error() reports more than %d messages: %q", maxReportedMessages, msg)
	}
}

func TestInitRequiresCompile(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	p := NewPipeline(PassScene, WithLabel("custom"))
	if p.Label() != "custom" {
		t.Errorf("Label = %q", p.Label())
	}
	if err := p.Init(d); err == nil {
		t.Error("Init before Compile succeeded")
	}
	if _, err := p.Compile(d); err == nil {
		t.Error("Compile without shader succeeded")
	}
}

func TestPassNames(t *testing.T) {
	for _, pass := range Passes {
		if pass.Asset() == "" || strings.HasPrefix(pass.String(), "pass(") {
			t.Errorf("pass %d has no name or asset", int(pass))
		}
	}
	if Pass(42).String() != "pass(42)" {
		t.Errorf("unknown pass String = %q", Pass(42).String())
	}
}
