package target

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

func newDevice(t *testing.T, p *gputest.Provider) *gputest.Device {
	t.Helper()
	a, err := p.RequestAdapter(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.RequestDevice(t.Context(), gpu.DeviceCallbacks{}); err != nil {
		t.Fatal(err)
	}
	return p.Current()
}

func TestPlanIsPureAndCanonical(t *testing.T) {
	s := settings.Default()
	a := Plan(640, 360, s)
	b := Plan(640, 360, s)
	if !a.Equal(b) {
		t.Fatalf("Plan not deterministic: %+v vs %+v", a, b)
	}
	if !a.DualEnabled || a.MipEnabled || a.MipLevels != 0 {
		t.Errorf("dual config not canonical: %+v", a)
	}

	// fields of the unused mode do not leak into the config
	s.MipLevels = 2
	if !Plan(640, 360, s).Equal(a) {
		t.Error("mip levels changed a dual config")
	}

	s.BlurRadius = 0
	noBlur := Plan(640, 360, s)
	if noBlur.DualEnabled || noBlur.MipEnabled || noBlur.BlurMode != settings.BlurModeNone {
		t.Errorf("zero radius still blurs: %+v", noBlur)
	}
	if _, ok := noBlur.Blur().(NoBlur); !ok {
		t.Errorf("Blur() = %T, want NoBlur", noBlur.Blur())
	}

	if c := Plan(0, -5, s); c.Width != 1 || c.Height != 1 {
		t.Errorf("degenerate size planned as %dx%d", c.Width, c.Height)
	}
}

func TestPlanBlurUnion(t *testing.T) {
	s := settings.Default()
	s.BlurMode = settings.BlurModeMipPyramid
	s.MipLevels = 3
	cfg := Plan(100, 100, s)
	switch b := cfg.Blur().(type) {
	case MipPyramid:
		if b.Levels != 3 {
			t.Errorf("levels = %d", b.Levels)
		}
	default:
		t.Fatalf("Blur() = %T, want MipPyramid", b)
	}

	s.BlurMode = settings.BlurModeDualKawase
	s.DualPasses = 4
	s.DualDownsample = 3
	if b, ok := Plan(100, 100, s).Blur().(DualKawase); !ok || b.Passes != 4 || b.Downsample != 3 {
		t.Fatalf("Blur() = %#v", Plan(100, 100, s).Blur())
	}
}

func TestChainSizes(t *testing.T) {
	tests := []struct {
		name                      string
		w, h, firstDivisor, count int
		want                      []common.Size
	}{
		{"halving", 64, 32, 2, 3, []common.Size{{Width: 32, Height: 16}, {Width: 16, Height: 8}, {Width: 8, Height: 4}}},
		{"downsample first", 90, 90, 3, 2, []common.Size{{Width: 30, Height: 30}, {Width: 15, Height: 15}}},
		{"stops at 1x1", 4, 4, 2, 6, []common.Size{{Width: 2, Height: 2}, {Width: 1, Height: 1}}},
		{"never zero", 8, 1, 2, 3, []common.Size{{Width: 4, Height: 1}, {Width: 2, Height: 1}, {Width: 1, Height: 1}}},
		{"tiny base", 1, 1, 4, 5, []common.Size{{Width: 1, Height: 1}}},
		{"no levels", 64, 64, 2, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChainSizes(tt.w, tt.h, tt.firstDivisor, tt.count)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("ChainSizes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectFormatFallsBack(t *testing.T) {
	p := gputest.NewProvider()
	p.FailFormats[gpu.FormatRGBA16Float] = true
	d := newDevice(t, p)

	pool := NewPool(d)
	f, err := pool.SelectFormat()
	if err != nil || f != gpu.FormatRGBA8Unorm {
		t.Fatalf("SelectFormat = %s, %v", f, err)
	}
	if d.TexturesCreated() != d.TexturesDestroyed() {
		t.Error("probe texture leaked")
	}

	p.FailFormats[gpu.FormatRGBA8Unorm] = true
	if _, err := NewPool(d).SelectFormat(); !errors.Is(err, gpu.ErrNoRenderableFormat) {
		t.Fatalf("err = %v, want ErrNoRenderableFormat", err)
	}
}

func TestEnsureRepeatedConfigAllocatesNothing(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	pool := NewPool(d, WithFormat(gpu.FormatRGBA16Float))
	cfg := Plan(320, 200, settings.Default())

	changed, err := pool.Ensure(cfg)
	if err != nil || !changed {
		t.Fatalf("first Ensure = %t, %v", changed, err)
	}
	created := d.TexturesCreated()
	for range 10 {
		if changed, err := pool.Ensure(Plan(320, 200, settings.Default())); err != nil || changed {
			t.Fatalf("repeat Ensure = %t, %v", changed, err)
		}
	}
	if d.TexturesCreated() != created || pool.Allocations() != 1 {
		t.Fatalf("repeat Ensure allocated: textures %d -> %d, allocations %d", created, d.TexturesCreated(), pool.Allocations())
	}
}

func TestEnsureAllocatesRequiredTargets(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	pool := NewPool(d, WithFormat(gpu.FormatRGBA8Unorm))

	s := settings.Default()
	s.BlurMode = settings.BlurModeMipPyramid
	s.MipLevels = 3
	if _, err := pool.Ensure(Plan(64, 64, s)); err != nil {
		t.Fatal(err)
	}
	if _, ok := pool.Post(); !ok {
		t.Error("mip config has no post target")
	}
	if len(pool.Chain()) != 3 || !pool.History().Allocated() {
		t.Errorf("chain = %d, history = %t", len(pool.Chain()), pool.History().Allocated())
	}
	// scene + post + 3 mips + 2 history
	if d.TexturesCreated() != 7 {
		t.Errorf("textures = %d, want 7", d.TexturesCreated())
	}
	if desc, _ := d.Texture(pool.Chain()[2].Texture); desc.Width != 8 || desc.Format != gpu.FormatRGBA8Unorm {
		t.Errorf("mip 2 = %+v", desc)
	}

	s.BlurMode = settings.BlurModeNone
	s.TemporalEnabled = false
	if _, err := pool.Ensure(Plan(64, 64, s)); err != nil {
		t.Fatal(err)
	}
	if _, ok := pool.Post(); ok || len(pool.Chain()) != 0 || pool.History().Allocated() {
		t.Error("unused targets kept after reconfiguration")
	}
	if live := d.TexturesCreated() - d.TexturesDestroyed(); live != 1 {
		t.Errorf("live textures = %d, want 1", live)
	}
}

func TestEnsureMipToDualReallocatesOnce(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	destroyHooks := 0
	pool := NewPool(d, WithFormat(gpu.FormatRGBA16Float), WithDestroyHook(func() { destroyHooks++ }))

	mip := settings.Apply(settings.Default(), settings.Patch{
		BlurMode:  settings.Ptr(settings.BlurModeMipPyramid),
		MipLevels: settings.Ptr(3),
	})
	before := Plan(800, 600, mip)
	if _, err := pool.Ensure(before); err != nil {
		t.Fatal(err)
	}
	base := pool.Allocations()

	dual := settings.Apply(mip, settings.Patch{BlurMode: settings.Ptr(settings.BlurModeDualKawase)})
	after := Plan(800, 600, dual)
	if !before.MipEnabled || after.MipEnabled || before.DualEnabled || !after.DualEnabled {
		t.Fatalf("mode flags did not flip: before %+v after %+v", before, after)
	}
	for range 3 {
		if _, err := pool.Ensure(after); err != nil {
			t.Fatal(err)
		}
	}
	if got := pool.Allocations() - base; got != 1 {
		t.Fatalf("reallocations = %d, want 1", got)
	}
	if destroyHooks != 1 {
		t.Errorf("destroy hook ran %d times, want 1", destroyHooks)
	}
}

func TestEnsureRebuildsMissingTargets(t *testing.T) {
	p := gputest.NewProvider()
	d := newDevice(t, p)
	pool := NewPool(d, WithFormat(gpu.FormatRGBA16Float))
	cfg := Plan(64, 64, settings.Default())

	p.FailFormats[gpu.FormatRGBA16Float] = true
	if _, err := pool.Ensure(cfg); !errors.Is(err, gpu.ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
	if d.TexturesCreated() != d.TexturesDestroyed() {
		t.Error("failed Ensure left textures behind")
	}

	delete(p.FailFormats, gpu.FormatRGBA16Float)
	if changed, err := pool.Ensure(cfg); err != nil || !changed {
		t.Fatalf("retry Ensure = %t, %v", changed, err)
	}
}

func TestHistoryIndexAlternates(t *testing.T) {
	var h History
	for n := 1; n <= 250; n++ {
		h.Advance()
		if h.ReadIndex() != n%2 {
			t.Fatalf("after %d passes read index = %d", n, h.ReadIndex())
		}
		if h.Read() == h.Write() && h.Allocated() {
			t.Fatal("read and write alias")
		}
	}
	if !h.Valid() || h.FrameCount() != MaxHistoryFrames {
		t.Errorf("valid = %t, frames = %d", h.Valid(), h.FrameCount())
	}

	h.Invalidate()
	if h.Valid() || h.FrameCount() != 0 {
		t.Error("Invalidate kept history")
	}
	h.Advance()
	if !h.Valid() || h.FrameCount() != 1 {
		t.Errorf("seed: valid = %t, frames = %d", h.Valid(), h.FrameCount())
	}
}

func TestReleaseDestroysEverything(t *testing.T) {
	d := newDevice(t, gputest.NewProvider())
	pool := NewPool(d, WithFormat(gpu.FormatRGBA16Float))
	if _, err := pool.Ensure(Plan(128, 64, settings.Default())); err != nil {
		t.Fatal(err)
	}
	pool.Release()
	if d.TexturesCreated() != d.TexturesDestroyed() {
		t.Errorf("created %d, destroyed %d", d.TexturesCreated(), d.TexturesDestroyed())
	}
	if _, ok := pool.Config(); ok {
		t.Error("config kept after Release")
	}
}
