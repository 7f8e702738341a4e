package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LoopBuilderOption is a functional option applied to a Loop during construction.
type LoopBuilderOption func(*Loop)

// WithLogger sets the logger used for recovered task panics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithLogger(log *zap.Logger) LoopBuilderOption {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithPanicHandler sets a function called with the value of every recovered task panic.
//
// Parameters:
//   - fn: the handler
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithPanicHandler(fn func(any)) LoopBuilderOption {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// Loop is a single-goroutine task executor. Frames, bootstrap completions, device-loss and resize
// notifications are all posted to one Loop so they run in order and never concurrently.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	wake chan struct{}
	done chan struct{}

	log     *zap.Logger
	onPanic func(any)
}

// NewLoop creates an open Loop.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Loop: the loop
func NewLoop(options ...LoopBuilderOption) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Post queues fn. It never blocks.
//
// Parameters:
//   - fn: the task
//
// Returns:
//   - bool: false if the loop is closed and fn was dropped
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// RunPending runs the tasks queued so far on the calling goroutine. Tasks posted while they run
// wait for the next call.
//
// Returns:
//   - int: the number of tasks run
func (l *Loop) RunPending() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		l.run(fn)
	}
	return len(tasks)
}

// Run executes tasks as they are posted until ctx is done or the loop is closed.
//
// Parameters:
//   - ctx: stops the loop when done
//
// Returns:
//   - error: ctx.Err() if the context ended the loop, nil after Close
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.RunPending()
			return nil
		case <-l.wake:
		}
	}
}

// Close stops Run and makes Post refuse new tasks. Queued tasks still run once. Safe to call more
// than once.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

// Closed reports whether Close was called.
func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// run executes one task, recovering panics so one bad frame cannot stop the loop.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop task recovered from panic", zap.Any("panic", r))
			if l.onPanic != nil {
				l.onPanic(r)
			}
		}
	}()
	fn()
}
