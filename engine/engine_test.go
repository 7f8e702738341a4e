package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/lifecycle"
	"github.com/Carmen-Shannon/backdrop/engine/renderer"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

type harness struct {
	t        *testing.T
	provider *gputest.Provider
	loop     *scheduler.Loop
	source   *scheduler.ManualSource
	engine   Engine
	now      time.Time

	mu          sync.Mutex
	unsupported []bool
	diagnostics []string
}

func newHarness(t *testing.T, p *gputest.Provider, options ...EngineBuilderOption) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		provider: p,
		loop:     scheduler.NewLoop(),
		source:   scheduler.NewManualSource(),
		now:      time.Unix(1000, 0),
	}
	options = append([]EngineBuilderOption{
		WithLoop(h.loop),
		WithFrameSource(h.source),
		WithCanvas(scheduler.FixedCanvas{Width: 400, Height: 300, DPR: 2}),
		WithClock(func() time.Time { return h.now }),
		WithRetryDelay(time.Millisecond),
	}, options...)
	h.engine = NewEngine(p, options...)
	h.engine.OnUnsupportedChange(func(v bool) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.unsupported = append(h.unsupported, v)
	})
	h.engine.OnDiagnostics(func(m string) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.diagnostics = append(h.diagnostics, m)
	})
	t.Cleanup(func() {
		h.engine.Dispose()
		h.loop.Close()
	})
	return h
}

// waitFor runs loop tasks until cond holds.
func (h *harness) waitFor(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		if h.loop.RunPending() == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

func (h *harness) waitReady() {
	h.t.Helper()
	h.waitFor("ready", func() bool { return h.engine.State() == lifecycle.StateReady })
}

// frame advances the clock past the frame interval, fires the frame source and returns the stats of
// the frame if one was rendered.
func (h *harness) frame() (renderer.FrameStats, bool) {
	h.t.Helper()
	h.loop.RunPending()
	_, before := h.engine.LastFrame()
	h.now = h.now.Add(100 * time.Millisecond)
	h.source.Fire(h.now)
	stats, after := h.engine.LastFrame()
	return stats, after > before
}

func (h *harness) unsupportedSignals() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bool(nil), h.unsupported...)
}

func TestFramesRenderOnceReady(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()

	stats, ok := h.frame()
	if !ok {
		t.Fatal("no frame rendered")
	}
	// dpr 2 capped at 1.5, then the default render scale of 0.5
	if stats.Config.Width != 300 || stats.Config.Height != 225 {
		t.Errorf("backing size = %dx%d", stats.Config.Width, stats.Config.Height)
	}
	if w, hh := h.provider.Current().SurfaceSize(); w != 300 || hh != 225 {
		t.Errorf("surface = %dx%d", w, hh)
	}
	if n := h.provider.Current().FrameCount(); n != 1 {
		t.Errorf("device frames = %d", n)
	}
}

func TestFramesAreNoOpsBeforeReady(t *testing.T) {
	p := gputest.NewProvider()
	p.Gate = make(chan struct{})
	h := newHarness(t, p)
	h.engine.Start()

	for range 3 {
		if _, ok := h.frame(); ok {
			t.Fatal("frame rendered before bootstrap completed")
		}
	}
	if p.AdapterRequests() != 1 {
		t.Errorf("adapter requests = %d", p.AdapterRequests())
	}
	close(p.Gate)
	h.waitReady()
	if _, ok := h.frame(); !ok {
		t.Error("no frame after bootstrap")
	}
}

func TestBlurModeSwitchReallocatesOnce(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()

	h.engine.SetSettings(settings.Patch{
		BlurMode:  settings.Ptr(settings.BlurModeMipPyramid),
		MipLevels: settings.Ptr(3),
	})
	before, ok := h.frame()
	if !ok || !before.Config.MipEnabled || before.Config.DualEnabled {
		t.Fatalf("mip frame = %+v, %t", before.Config, ok)
	}

	h.engine.SetSettings(settings.Patch{BlurMode: settings.Ptr(settings.BlurModeDualKawase)})
	reallocations := 0
	for i := range 4 {
		stats, ok := h.frame()
		if !ok {
			t.Fatalf("frame %d not rendered", i)
		}
		if stats.Config.MipEnabled || !stats.Config.DualEnabled {
			t.Fatalf("frame %d config = %+v", i, stats.Config)
		}
		if stats.Reallocated {
			reallocations++
		}
	}
	if reallocations != 1 {
		t.Errorf("reallocations = %d, want 1", reallocations)
	}
}

func TestDeviceLossRecovers(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()
	if _, ok := h.frame(); !ok {
		t.Fatal("no frame before loss")
	}
	lost := h.provider.Current()

	lost.Lose("test reset")
	if _, ok := h.frame(); ok {
		t.Fatal("frame rendered on a lost device")
	}
	h.waitFor("recovery", func() bool {
		return h.engine.State() == lifecycle.StateReady && h.provider.Current() != lost
	})

	for range 3 {
		if _, ok := h.frame(); !ok {
			t.Fatal("rendering did not resume")
		}
	}
	if n := h.provider.Current().FrameCount(); n != 3 {
		t.Errorf("frames on the new device = %d", n)
	}
	if got := h.unsupportedSignals(); len(got) != 0 {
		t.Errorf("unsupported signals = %v", got)
	}
	if h.engine.Unsupported() {
		t.Error("engine reports unsupported")
	}
}

func TestFatalBootstrapSignalsUnsupported(t *testing.T) {
	p := gputest.NewProvider()
	p.AdapterErr = gpu.ErrUnavailable
	h := newHarness(t, p)
	h.engine.Start()

	h.waitFor("unsupported", h.engine.Unsupported)
	if got := h.unsupportedSignals(); len(got) != 1 || !got[0] {
		t.Errorf("unsupported signals = %v", got)
	}
	if _, ok := h.frame(); ok {
		t.Error("frame rendered while unsupported")
	}
	if p.AdapterRequests() != 1 {
		t.Errorf("fatal failure retried: %d requests", p.AdapterRequests())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.diagnostics) == 0 {
		t.Error("no diagnostic for the fatal failure")
	}
}

func TestPaletteChangeResetsHistory(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()
	for range 3 {
		h.frame()
	}

	red := color.ShaderColorSet{}
	for i := range red {
		red[i] = color.ShaderColor{R: 1}
	}
	h.engine.SetPalette(&red)
	stats, ok := h.frame()
	if !ok || !stats.HistoryReset {
		t.Errorf("palette change frame = %+v, %t", stats, ok)
	}
	if stats, _ := h.frame(); stats.HistoryReset {
		t.Error("history reset again without a change")
	}

	h.engine.SetPalette(&red)
	if stats, _ := h.frame(); stats.HistoryReset {
		t.Error("identical palette reset history")
	}
}

func TestOutOfRangePaletteIsClamped(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()
	h.frame()

	var bad color.ShaderColorSet
	for i := range bad {
		bad[i] = color.ShaderColor{R: 2, G: -1, B: math.NaN()}
	}
	h.engine.SetPalette(&bad)
	if stats, ok := h.frame(); !ok || !stats.HistoryReset {
		t.Fatalf("palette change frame = %+v, %t", stats, ok)
	}
	for range 3 {
		h.engine.SetPalette(&bad)
		if stats, _ := h.frame(); stats.HistoryReset {
			t.Fatal("identical out-of-range palette restarted the transition")
		}
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	h := newHarness(t, gputest.NewProvider())
	h.engine.Start()
	h.waitReady()
	d := h.provider.Current()

	h.engine.Dispose()
	h.engine.Dispose()
	if h.engine.State() != lifecycle.StateDisposed || !d.Released() {
		t.Errorf("state %s, released %t", h.engine.State(), d.Released())
	}
	if h.source.Pending() != 0 {
		t.Error("frame request left pending")
	}
	h.engine.SetPalette(nil)
	h.loop.RunPending()
}

// stallCanvas blocks the first ClientSize call after it is armed until proceed is closed.
type stallCanvas struct {
	scheduler.FixedCanvas
	armed   atomic.Bool
	entered chan struct{}
	proceed chan struct{}
}

func (c *stallCanvas) ClientSize() (int, int) {
	if c.armed.CompareAndSwap(true, false) {
		close(c.entered)
		<-c.proceed
	}
	return c.FixedCanvas.ClientSize()
}

func TestDisposeDuringFrameWaitsForIt(t *testing.T) {
	canvas := &stallCanvas{
		FixedCanvas: scheduler.FixedCanvas{Width: 400, Height: 300, DPR: 1},
		entered:     make(chan struct{}),
		proceed:     make(chan struct{}),
	}
	h := newHarness(t, gputest.NewProvider(), WithCanvas(canvas))
	h.engine.Start()
	h.waitReady()
	h.loop.RunPending()
	device := h.provider.Current()

	h.now = h.now.Add(100 * time.Millisecond)
	now := h.now
	canvas.armed.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ran := make(chan error, 1)
	go func() { ran <- h.loop.Run(ctx) }()
	h.loop.Post(func() { h.source.Fire(now) })

	select {
	case <-canvas.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("frame did not start")
	}

	disposed := make(chan struct{})
	go func() {
		h.engine.Dispose()
		close(disposed)
	}()
	select {
	case <-disposed:
		t.Fatal("Dispose returned while a frame was rendering")
	case <-time.After(50 * time.Millisecond):
	}
	if device.Released() {
		t.Fatal("device released during a frame")
	}

	close(canvas.proceed)
	select {
	case <-disposed:
	case <-time.After(5 * time.Second):
		t.Fatal("Dispose did not finish after the frame")
	}
	cancel()
	<-ran

	if _, frames := h.engine.LastFrame(); frames != 1 {
		t.Errorf("frames rendered = %d, want 1", frames)
	}
	if device.FrameCount() != 1 || !device.Released() {
		t.Errorf("device frames %d, released %t", device.FrameCount(), device.Released())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.diagnostics) != 0 {
		t.Errorf("diagnostics = %v", h.diagnostics)
	}
}
