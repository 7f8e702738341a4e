package scheduler

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

type fakeCanvas struct {
	w, h      int
	dpr       float64
	observers int
	stopped   int
}

func (c *fakeCanvas) ClientSize() (int, int)    { return c.w, c.h }
func (c *fakeCanvas) DevicePixelRatio() float64 { return c.dpr }
func (c *fakeCanvas) ObserveResize(fn func()) func() {
	c.observers++
	return func() { c.stopped++ }
}

func TestFrameRateGating(t *testing.T) {
	src := NewManualSource()
	var ticks []Tick
	s := NewFrameScheduler(src, func(t Tick) { ticks = append(ticks, t) },
		WithFrameInterval(func() time.Duration { return time.Second / 30 }))
	s.Start()

	start := time.Unix(100, 0)
	// a 120 Hz source gated to 30 fps renders every fourth callback
	for i := range 12 {
		src.Fire(start.Add(time.Duration(i) * time.Second / 120))
	}
	if s.Frames() != 3 || s.Skipped() != 9 {
		t.Fatalf("frames %d, skipped %d", s.Frames(), s.Skipped())
	}
	if ticks[0].Delta != 0 || ticks[1].Delta < time.Second/30 || ticks[2].Index != 2 {
		t.Errorf("ticks = %+v", ticks)
	}
	if src.Pending() != 1 {
		t.Errorf("pending = %d, want one self-rescheduled request", src.Pending())
	}
}

func TestFrameIntervalChangesApplyLive(t *testing.T) {
	src := NewManualSource()
	interval := time.Second / 15
	s := NewFrameScheduler(src, func(Tick) {}, WithFrameInterval(func() time.Duration { return interval }))
	s.Start()

	now := time.Unix(0, 0)
	for range 10 {
		src.Fire(now)
		now = now.Add(time.Second / 60)
	}
	slow := s.Frames()

	interval = time.Second / 60
	for range 10 {
		src.Fire(now)
		now = now.Add(time.Second / 60)
	}
	if s.Frames()-slow != 10 {
		t.Errorf("after raising the rate %d of 10 callbacks rendered", s.Frames()-slow)
	}
}

func TestDisposeCancelsAndStopsObserver(t *testing.T) {
	src := NewManualSource()
	canvas := &fakeCanvas{w: 10, h: 10, dpr: 1}
	s := NewFrameScheduler(src, func(Tick) {}, WithCanvas(canvas, func() {}))
	s.Start()
	s.Start()
	if canvas.observers != 1 || src.Pending() != 1 {
		t.Fatalf("observers %d, pending %d", canvas.observers, src.Pending())
	}

	s.Dispose()
	s.Dispose()
	if src.Pending() != 0 || canvas.stopped != 1 || !s.Disposed() {
		t.Fatalf("pending %d, stopped %d", src.Pending(), canvas.stopped)
	}
	if src.Fire(time.Now()) != 0 || s.Frames() != 0 {
		t.Error("frame ran after Dispose")
	}
}

func TestDisposeFromFrameCallback(t *testing.T) {
	src := NewManualSource()
	var s FrameScheduler
	s = NewFrameScheduler(src, func(Tick) { s.Dispose() })
	s.Start()
	src.Fire(time.Unix(1, 0))
	if s.Frames() != 1 || src.Pending() != 0 {
		t.Errorf("frames %d, pending %d", s.Frames(), src.Pending())
	}
}

func TestBackingDimension(t *testing.T) {
	tests := []struct {
		name                     string
		client                   int
		dpr, maxDPR, renderScale float64
		want                     int
	}{
		{"identity", 800, 1, 2, 1, 800},
		{"dpr capped", 800, 3, 1.5, 1, 1200},
		{"half scale", 801, 1, 2, 0.5, 400},
		{"scale floor", 1000, 1, 2, 0.05, 200},
		{"scale ceiling", 100, 1, 2, 4, 100},
		{"never zero", 0, 2, 2, 1, 1},
		{"bad dpr", 100, 0, 2, 1, 100},
		{"nan scale", 100, 1, 2, math.NaN(), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BackingDimension(tt.client, tt.dpr, tt.maxDPR, tt.renderScale); got != tt.want {
				t.Errorf("BackingDimension = %d, want %d", got, tt.want)
			}
		})
	}

	w, h := BackingSize(&fakeCanvas{w: 1920, h: 1080, dpr: 2}, 1.5, 0.5)
	if w != 1440 || h != 810 {
		t.Errorf("BackingSize = %dx%d", w, h)
	}
}

func TestLoopRunsInOrderAndRecovers(t *testing.T) {
	var panics []any
	l := NewLoop(WithPanicHandler(func(v any) { panics = append(panics, v) }))
	var got []int
	l.Post(func() { got = append(got, 1) })
	l.Post(func() { panic("boom") })
	l.Post(func() {
		got = append(got, 2)
		l.Post(func() { got = append(got, 3) })
	})

	if n := l.RunPending(); n != 3 {
		t.Fatalf("ran %d tasks", n)
	}
	if len(got) != 2 || len(panics) != 1 {
		t.Fatalf("got %v, panics %v", got, panics)
	}
	l.RunPending()
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("got %v", got)
	}

	l.Close()
	l.Close()
	if l.Post(func() {}) || !l.Closed() {
		t.Error("closed loop accepted a task")
	}
}

func TestLoopRunStops(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(t.Context())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	done := make(chan struct{})
	l.Post(func() { close(done) })
	<-done
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}

	l2 := NewLoop()
	go func() { errc <- l2.Run(t.Context()) }()
	l2.Close()
	if err := <-errc; err != nil {
		t.Fatalf("Run after Close = %v", err)
	}
}

func TestTickerSourceDropsRequestsOnClosedLoop(t *testing.T) {
	l := NewLoop()
	l.Close()
	src := NewTickerSource(l, time.Millisecond)
	src.Request(func(time.Time) { t.Error("request fired on a closed loop") })

	deadline := time.Now().Add(5 * time.Second)
	for src.Pending() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("refused request still pending")
		}
		time.Sleep(time.Millisecond)
	}
	if n := l.RunPending(); n != 0 {
		t.Errorf("closed loop ran %d tasks", n)
	}
}

func TestTickerSourcePostsToLoop(t *testing.T) {
	l := NewLoop()
	src := NewTickerSource(l, time.Millisecond)

	var mu sync.Mutex
	fired := 0
	src.Request(func(time.Time) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	cancelled := src.Request(func(time.Time) { t.Error("cancelled request fired") })
	src.Cancel(cancelled)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	go func() {
		for src.Pending() > 0 {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(10 * time.Millisecond)
		l.Close()
	}()
	if err := l.Run(ctx); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("fired = %d", fired)
	}
}
