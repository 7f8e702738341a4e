package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
)

func setup(t *testing.T) (*gputest.Device, *pipeline.Set) {
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
	if err := d.ConfigureSurface(64, 64); err != nil {
		t.Fatal(err)
	}
	set, err := pipeline.Build(d, gpu.FormatRGBA16Float)
	if err != nil {
		t.Fatal(err)
	}
	return p.Current(), set
}

func TestInitCreatesEverySlot(t *testing.T) {
	d, set := setup(t)
	p := NewBindGroupProvider("session")
	if err := p.Init(d, set); err != nil {
		t.Fatal(err)
	}
	if p.Sampler().IsZero() {
		t.Error("no sampler")
	}
	for _, pass := range pipeline.Passes {
		for i := range SlotCount(pass) {
			if _, ok := p.Buffer(Slot{Pass: pass, Index: i}); !ok {
				t.Errorf("missing buffer %s[%d]", pass, i)
			}
		}
		if _, ok := p.Buffer(Slot{Pass: pass, Index: SlotCount(pass)}); ok {
			t.Errorf("%s has an extra slot", pass)
		}
	}
}

func TestWrite(t *testing.T) {
	d, set := setup(t)
	p := NewBindGroupProvider("session")
	slot := Slot{Pass: pipeline.PassDualDown, Index: 2}

	if err := p.Write(BufferWrite{Slot: slot, Data: []byte{1}}); err == nil {
		t.Fatal("write before Init accepted")
	}
	if err := p.Init(d, set); err != nil {
		t.Fatal(err)
	}

	data := []byte{1, 2, 3, 4}
	if err := p.Write(BufferWrite{Slot: slot, Data: data}); err != nil {
		t.Fatal(err)
	}
	buf, _ := p.Buffer(slot)
	if got := d.BufferData(buf); len(got) < 4 || got[3] != 4 {
		t.Errorf("buffer data = %v", got)
	}

	if err := p.Write(BufferWrite{Slot: Slot{Pass: pipeline.PassScene, Index: 1}, Data: data}); err == nil {
		t.Error("unknown slot accepted")
	}
	if err := p.Write(BufferWrite{Slot: slot, Data: make([]byte, 1024)}); err == nil {
		t.Error("oversized write accepted")
	}
}

func TestRelease(t *testing.T) {
	d, set := setup(t)
	p := NewBindGroupProvider("session")
	if err := p.Init(d, set); err != nil {
		t.Fatal(err)
	}
	p.Release()
	if !p.Sampler().IsZero() {
		t.Error("sampler kept")
	}
	if _, ok := p.Buffer(Slot{Pass: pipeline.PassScene}); ok {
		t.Error("buffer kept")
	}
}
