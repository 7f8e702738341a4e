package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

func newSession(t *testing.T, p *gputest.Provider) (*renderer, *gputest.Device) {
	t.Helper()
	a, err := p.RequestAdapter(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	d, err := a.RequestDevice(t.Context(), gpu.DeviceCallbacks{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureSurface(320, 180); err != nil {
		t.Fatal(err)
	}
	r, err := NewRenderer(d, WithSurfaceSize(320, 180))
	if err != nil {
		t.Fatal(err)
	}
	return r.(*renderer), p.Current()
}

func input(s settings.ShaderSettings) FrameInput {
	return FrameInput{Width: 320, Height: 180, Time: 1.5, Palette: color.FallbackSet(), Settings: s}
}

func float32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestRenderFramePassOrder(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	s := settings.Default()

	stats, err := r.RenderFrame(input(s))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"scene",
		"dual-down 0", "dual-down 1", "dual-down 2",
		"dual-up 2", "dual-up 1", "dual-up 0",
		"temporal-seed", "composite",
	}
	if !slices.Equal(stats.Passes, want) {
		t.Fatalf("passes = %v, want %v", stats.Passes, want)
	}
	if !stats.Reallocated {
		t.Error("first frame did not allocate")
	}

	stats, err = r.RenderFrame(input(s))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passes[7] != "temporal" || stats.Reallocated {
		t.Errorf("second frame = %+v", stats)
	}
	frames := d.Frames()
	if len(frames) != 2 || !frames[1][len(frames[1])-1].Target.IsZero() {
		t.Error("composite is not the last pass or does not target the surface")
	}
}

func TestSteadyStateAllocatesNothing(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	s := settings.Default()
	for range 2 {
		if _, err := r.RenderFrame(input(s)); err != nil {
			t.Fatal(err)
		}
	}
	textures, groups := d.TexturesCreated(), r.groups.Created()
	for i := range 20 {
		in := input(s)
		in.Time = float64(i) * 0.033
		if _, err := r.RenderFrame(in); err != nil {
			t.Fatal(err)
		}
	}
	if d.TexturesCreated() != textures || r.groups.Created() != groups {
		t.Errorf("steady state allocated: textures %d -> %d, bind groups %d -> %d",
			textures, d.TexturesCreated(), groups, r.groups.Created())
	}
}

func TestMipToDualReallocatesOnce(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	mip := settings.Apply(settings.Default(), settings.Patch{BlurMode: settings.Ptr(settings.BlurModeMipPyramid)})
	if _, err := r.RenderFrame(input(mip)); err != nil {
		t.Fatal(err)
	}
	before := r.pool.Allocations()
	groupsBefore := d.BindGroupsDestroyed()

	dual := settings.Apply(mip, settings.Patch{BlurMode: settings.Ptr(settings.BlurModeDualKawase)})
	reallocations := 0
	for range 5 {
		stats, err := r.RenderFrame(input(dual))
		if err != nil {
			t.Fatal(err)
		}
		if stats.Reallocated {
			reallocations++
			if stats.Config.MipEnabled || !stats.Config.DualEnabled {
				t.Errorf("config after switch = %+v", stats.Config)
			}
		}
	}
	if reallocations != 1 || r.pool.Allocations()-before != 1 {
		t.Fatalf("reallocations = %d (pool %d)", reallocations, r.pool.Allocations()-before)
	}
	if d.BindGroupsDestroyed() == groupsBefore {
		t.Error("bind groups survived the reallocation")
	}
}

func TestHistoryResetOnSceneChange(t *testing.T) {
	r, _ := newSession(t, gputest.NewProvider())
	s := settings.Default()
	for range 3 {
		if _, err := r.RenderFrame(input(s)); err != nil {
			t.Fatal(err)
		}
	}
	s.SceneVariant = settings.SceneVariantAurora
	stats, err := r.RenderFrame(input(s))
	if err != nil {
		t.Fatal(err)
	}
	if !stats.HistoryReset || !slices.Contains(stats.Passes, "temporal-seed") {
		t.Errorf("variant change did not reseed: %+v", stats)
	}
}

func TestCompositeUniforms(t *testing.T) {
	p := gputest.NewProvider()
	p.Surface = gpu.FormatBGRA8UnormSrgb
	r, d := newSession(t, p)

	s := settings.Default()
	s.Opacity = 0.4
	s.GrainAmount = 0.1
	if _, err := r.RenderFrame(input(s)); err != nil {
		t.Fatal(err)
	}
	buf, _ := r.resources.Buffer(bind_group_provider.Slot{Pass: pipeline.PassComposite})
	data := d.BufferData(buf)
	if got := float32At(data, 12); math.Abs(float64(got)-0.4) > 1e-6 {
		t.Errorf("opacity = %v", got)
	}
	if got := float32At(data, 28); math.Abs(float64(got)-0.1) > 1e-6 {
		t.Errorf("grain = %v", got)
	}
	if got := binary.LittleEndian.Uint32(data[36:]); got != 1 {
		t.Errorf("decode_srgb = %d on an sRGB surface", got)
	}
}

func TestSceneUniformsCarryPalette(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	s := settings.Default()
	in := input(s)
	in.Palette = color.NewSet([]color.ShaderColor{{R: 1, G: 0.5, B: 0.25}})
	if _, err := r.RenderFrame(in); err != nil {
		t.Fatal(err)
	}
	buf, _ := r.resources.Buffer(bind_group_provider.Slot{Pass: pipeline.PassScene})
	data := d.BufferData(buf)
	if float32At(data, 64) != 1 || float32At(data, 68) != 0.5 {
		t.Errorf("color 4 = %v, %v", float32At(data, 64), float32At(data, 68))
	}
	if got := float32At(data, 160); got != 320 {
		t.Errorf("resolution.x = %v", got)
	}
	if got := binary.LittleEndian.Uint32(data[188:]); got != 0 {
		t.Errorf("variant = %d", got)
	}
}

func TestResizeReconfiguresSurface(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	in := input(settings.Default())
	in.Width, in.Height = 640, 400
	stats, err := r.RenderFrame(in)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := d.SurfaceSize(); w != 640 || h != 400 {
		t.Errorf("surface = %dx%d", w, h)
	}
	if stats.Config.Width != 640 {
		t.Errorf("config = %+v", stats.Config)
	}
}

func TestDeviceLossFailsFrame(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	if _, err := r.RenderFrame(input(settings.Default())); err != nil {
		t.Fatal(err)
	}
	d.Lose("test")
	if _, err := r.RenderFrame(input(settings.Default())); !errors.Is(err, gpu.ErrDeviceLost) {
		t.Fatalf("err = %v, want ErrDeviceLost", err)
	}
}

func TestCompileErrorIsReported(t *testing.T) {
	p := gputest.NewProvider()
	p.CompileErrors["temporal"] = "unknown identifier"
	a, _ := p.RequestAdapter(t.Context())
	d, _ := a.RequestDevice(t.Context(), gpu.DeviceCallbacks{})
	if err := d.ConfigureSurface(64, 64); err != nil {
		t.Fatal(err)
	}
	_, err := NewRenderer(d)
	var ce *pipeline.CompileError
	if !errors.As(err, &ce) || len(ce.Messages) != 1 {
		t.Fatalf("err = %v, want CompileError", err)
	}
}

func TestReleaseFreesTargets(t *testing.T) {
	r, d := newSession(t, gputest.NewProvider())
	if _, err := r.RenderFrame(input(settings.Default())); err != nil {
		t.Fatal(err)
	}
	r.Release()
	if d.TexturesCreated() != d.TexturesDestroyed() {
		t.Errorf("textures leaked: %d created, %d destroyed", d.TexturesCreated(), d.TexturesDestroyed())
	}
	if _, err := r.RenderFrame(input(settings.Default())); err == nil {
		t.Error("frame after Release succeeded")
	}
	r.Release()
}
