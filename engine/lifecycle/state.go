package lifecycle

// State is the bootstrap state of the device lifecycle.
type State int

const (
	// StateUninitialized means no bootstrap has been attempted.
	StateUninitialized State = iota

	// StateInitializing means a bootstrap attempt is in flight.
	StateInitializing

	// StateReady means a session is available for rendering.
	StateReady

	// StateLost means the device was lost or a bootstrap failed transiently; a new attempt follows.
	StateLost

	// StateUnsupported is terminal: the GPU path can never work in this process.
	StateUnsupported

	// StateDisposed is terminal: the manager was disposed.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateLost:
		return "lost"
	case StateUnsupported:
		return "unsupported"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateUnsupported || s == StateDisposed
}
