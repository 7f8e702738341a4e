// Package diagnostics forwards renderer diagnostics to the host application.
package diagnostics

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ReporterBuilderOption is a functional option applied to a Reporter during construction.
type ReporterBuilderOption func(*Reporter)

// WithLogger sets the logger every forwarded message is written to at warn level.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ReporterBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ReporterBuilderOption {
	return func(r *Reporter) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSink sets the function receiving forwarded messages.
//
// Parameters:
//   - sink: the receiver
//
// Returns:
//   - ReporterBuilderOption: option function to apply
func WithSink(sink func(string)) ReporterBuilderOption {
	return func(r *Reporter) {
		r.sink = sink
	}
}

// Reporter drops a message identical to the one forwarded just before it, so a failure repeating
// every frame is reported once until something else happens.
type Reporter struct {
	mu      sync.Mutex
	sink    func(string)
	log     *zap.Logger
	last    string
	hasLast bool

	forwarded int
	dropped   int
}

// NewReporter creates a Reporter.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Reporter: the reporter
func NewReporter(options ...ReporterBuilderOption) *Reporter {
	r := &Reporter{log: zap.NewNop()}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// SetSink replaces the receiver. A nil sink only logs.
func (r *Reporter) SetSink(sink func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = sink
}

// Report forwards message unless it repeats the previous one. Blank messages are ignored.
//
// Parameters:
//   - message: the diagnostic
//
// Returns:
//   - bool: true if the message was forwarded
func (r *Reporter) Report(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}

	r.mu.Lock()
	if r.hasLast && r.last == message {
		r.dropped++
		r.mu.Unlock()
		return false
	}
	r.last = message
	r.hasLast = true
	r.forwarded++
	sink := r.sink
	r.mu.Unlock()

	r.log.Warn("renderer diagnostic", zap.String("message", message))
	if sink != nil {
		sink(message)
	}
	return true
}

// Reset forgets the previous message, so the next report is forwarded even if it repeats.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = ""
	r.hasLast = false
}

// Counts returns how many messages were forwarded and dropped.
func (r *Reporter) Counts() (forwarded, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forwarded, r.dropped
}
