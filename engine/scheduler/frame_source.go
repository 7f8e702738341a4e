package scheduler

import (
	"sync"
	"time"
)

// DefaultDisplayInterval is the cadence of a TickerSource when none is given.
const DefaultDisplayInterval = time.Second / 120

// FrameSource delivers one-shot frame callbacks, the way a display refresh does.
type FrameSource interface {
	// Request schedules cb for the next frame.
	//
	// Parameters:
	//   - cb: called with the frame timestamp
	//
	// Returns:
	//   - uint64: the request id, used with Cancel
	Request(cb func(now time.Time)) uint64

	// Cancel drops a pending request. Unknown or fired ids are ignored.
	//
	// Parameters:
	//   - id: the request id
	Cancel(id uint64)
}

// TickerSource fires requests after a fixed interval and posts them to a Loop.
type TickerSource struct {
	loop     *Loop
	interval time.Duration

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*time.Timer
}

var _ FrameSource = &TickerSource{}

// NewTickerSource creates a TickerSource posting to loop.
//
// Parameters:
//   - loop: the loop that runs the callbacks
//   - interval: the delay of every request; DefaultDisplayInterval if <= 0
//
// Returns:
//   - *TickerSource: the source
func NewTickerSource(loop *Loop, interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = DefaultDisplayInterval
	}
	return &TickerSource{
		loop:     loop,
		interval: interval,
		pending:  make(map[uint64]*time.Timer),
	}
}

func (s *TickerSource) Request(cb func(now time.Time)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pending[id] = time.AfterFunc(s.interval, func() {
		posted := s.loop.Post(func() {
			if s.take(id) {
				cb(time.Now())
			}
		})
		if !posted {
			// closed loop; the request can never fire
			s.take(id)
		}
	})
	return id
}

func (s *TickerSource) Cancel(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[id]; ok {
		t.Stop()
		delete(s.pending, id)
	}
}

// Pending returns the number of requests not yet fired or cancelled.
func (s *TickerSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// take removes id and reports whether it was still pending.
func (s *TickerSource) take(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// ManualSource fires requests only when Fire is called. It drives headless rendering and tests.
type ManualSource struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]func(time.Time)
	order   []uint64
}

var _ FrameSource = &ManualSource{}

// NewManualSource creates an empty ManualSource.
//
// Returns:
//   - *ManualSource: the source
func NewManualSource() *ManualSource {
	return &ManualSource{pending: make(map[uint64]func(time.Time))}
}

func (s *ManualSource) Request(cb func(now time.Time)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.pending[s.nextID] = cb
	s.order = append(s.order, s.nextID)
	return s.nextID
}

func (s *ManualSource) Cancel(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Fire runs every request pending at the time of the call, oldest first. Requests made by the
// callbacks wait for the next Fire.
//
// Parameters:
//   - now: the frame timestamp passed to the callbacks
//
// Returns:
//   - int: the number of callbacks run
func (s *ManualSource) Fire(now time.Time) int {
	s.mu.Lock()
	order := s.order
	s.order = nil
	var due []func(time.Time)
	for _, id := range order {
		if cb, ok := s.pending[id]; ok {
			due = append(due, cb)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, cb := range due {
		cb(now)
	}
	return len(due)
}

// Pending returns the number of requests not yet fired or cancelled.
func (s *ManualSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
