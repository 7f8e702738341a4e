// Package graphtest wires a complete pass-recording session on a gputest device.
package graphtest

import (
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/graph"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
)

// Session is a device with every pass pipeline built and an empty target pool.
type Session struct {
	Provider  *gputest.Provider
	Device    *gputest.Device
	Pipelines *pipeline.Set
	Groups    bind_group_cache.BindGroupCache
	Resources bind_group_provider.BindGroupProvider
	Pool      *target.Pool
}

// NewSession builds a Session with RGBA16Float intermediates and a 256x256 surface.
//
// Parameters:
//   - t: the test
//
// Returns:
//   - *Session: the session
func NewSession(t testing.TB) *Session {
	t.Helper()
	p := gputest.NewProvider()
	a, err := p.RequestAdapter(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	d, err := a.RequestDevice(t.Context(), gpu.DeviceCallbacks{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureSurface(256, 256); err != nil {
		t.Fatal(err)
	}
	set, err := pipeline.Build(d, gpu.FormatRGBA16Float)
	if err != nil {
		t.Fatal(err)
	}
	res := bind_group_provider.NewBindGroupProvider("test")
	if err := res.Init(d, set); err != nil {
		t.Fatal(err)
	}
	groups := bind_group_cache.NewBindGroupCache(d)
	return &Session{
		Provider:  p,
		Device:    p.Current(),
		Pipelines: set,
		Groups:    groups,
		Resources: res,
		Pool:      target.NewPool(d, target.WithFormat(gpu.FormatRGBA16Float), target.WithDestroyHook(groups.Invalidate)),
	}
}

// Begin opens a frame and an Encoder recording into it.
//
// Parameters:
//   - t: the test
//
// Returns:
//   - *graph.Encoder: the encoder
//   - gpu.Frame: the frame to submit
func (s *Session) Begin(t testing.TB) (*graph.Encoder, gpu.Frame) {
	t.Helper()
	f, err := s.Device.BeginFrame()
	if err != nil {
		t.Fatal(err)
	}
	return graph.NewEncoder(f, s.Pipelines, s.Groups, s.Resources), f
}
