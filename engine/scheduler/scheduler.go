package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFrameInterval is used when no interval function is configured (30 fps).
const DefaultFrameInterval = time.Second / 30

// Tick describes one rendered frame.
type Tick struct {
	// Now is the timestamp delivered by the frame source.
	Now time.Time

	// Delta is the time since the previous rendered frame, zero for the first.
	Delta time.Duration

	// Index counts rendered frames from zero.
	Index int
}

// frameScheduler is the implementation of the FrameScheduler interface.
type frameScheduler struct {
	source   FrameSource
	frame    func(Tick)
	interval func() time.Duration
	log      *zap.Logger

	canvas   Canvas
	onResize func()

	mu         sync.Mutex
	started    bool
	disposed   bool
	pending    uint64
	hasPending bool
	last       time.Time
	frames     int
	skipped    int
	stopResize func()
}

// FrameScheduler requests frames from a FrameSource indefinitely and renders one only when at
// least the frame interval elapsed since the previous rendered frame.
type FrameScheduler interface {
	// Start requests the first frame and begins observing the canvas. Calling it again has no effect.
	Start()

	// Frames returns how many frames were rendered.
	//
	// Returns:
	//   - int: the rendered frame count
	Frames() int

	// Skipped returns how many source callbacks were gated out.
	//
	// Returns:
	//   - int: the skipped callback count
	Skipped() int

	// Dispose cancels the pending frame request and stops the resize observer. It is idempotent.
	Dispose()

	// Disposed reports whether Dispose was called.
	//
	// Returns:
	//   - bool: true after Dispose
	Disposed() bool
}

var _ FrameScheduler = &frameScheduler{}

// NewFrameScheduler creates a stopped FrameScheduler.
//
// Parameters:
//   - source: the frame source
//   - frame: called for every rendered frame
//   - options: functional options
//
// Returns:
//   - FrameScheduler: the scheduler
func NewFrameScheduler(source FrameSource, frame func(Tick), options ...FrameSchedulerBuilderOption) FrameScheduler {
	s := &frameScheduler{
		source:   source,
		frame:    frame,
		interval: func() time.Duration { return DefaultFrameInterval },
		log:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *frameScheduler) Start() {
	s.mu.Lock()
	if s.started || s.disposed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.requestLocked()
	canvas, onResize := s.canvas, s.onResize
	s.mu.Unlock()

	if canvas != nil && onResize != nil {
		stop := canvas.ObserveResize(onResize)
		s.mu.Lock()
		if s.disposed {
			s.mu.Unlock()
			stop()
			return
		}
		s.stopResize = stop
		s.mu.Unlock()
	}
}

func (s *frameScheduler) tick(now time.Time) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.hasPending = false

	render := s.last.IsZero() || now.Sub(s.last) >= s.interval()
	var t Tick
	if render {
		t = Tick{Now: now, Index: s.frames}
		if !s.last.IsZero() {
			t.Delta = now.Sub(s.last)
		}
		s.last = now
		s.frames++
	} else {
		s.skipped++
	}
	s.requestLocked()
	s.mu.Unlock()

	if render {
		s.frame(t)
	}
}

func (s *frameScheduler) requestLocked() {
	s.pending = s.source.Request(s.tick)
	s.hasPending = true
}

func (s *frameScheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *frameScheduler) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

func (s *frameScheduler) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	if s.hasPending {
		s.source.Cancel(s.pending)
		s.hasPending = false
	}
	stop := s.stopResize
	s.stopResize = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.log.Debug("frame scheduler disposed")
}

func (s *frameScheduler) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
