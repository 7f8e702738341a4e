package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// FrameSchedulerBuilderOption is a functional option applied to a FrameScheduler during construction.
type FrameSchedulerBuilderOption func(*frameScheduler)

// WithFrameInterval sets the function queried on every callback for the minimum time between
// rendered frames, so frame-rate changes apply without a restart.
//
// Parameters:
//   - interval: returns the current frame interval
//
// Returns:
//   - FrameSchedulerBuilderOption: option function to apply
func WithFrameInterval(interval func() time.Duration) FrameSchedulerBuilderOption {
	return func(s *frameScheduler) {
		if interval != nil {
			s.interval = interval
		}
	}
}

// WithCanvas observes canvas for resizes between Start and Dispose.
//
// Parameters:
//   - canvas: the canvas to observe
//   - onResize: called on every resize
//
// Returns:
//   - FrameSchedulerBuilderOption: option function to apply
func WithCanvas(canvas Canvas, onResize func()) FrameSchedulerBuilderOption {
	return func(s *frameScheduler) {
		s.canvas = canvas
		s.onResize = onResize
	}
}

// WithSchedulerLogger sets the logger of the scheduler.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - FrameSchedulerBuilderOption: option function to apply
func WithSchedulerLogger(log *zap.Logger) FrameSchedulerBuilderOption {
	return func(s *frameScheduler) {
		if log != nil {
			s.log = log
		}
	}
}
