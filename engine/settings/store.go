package settings

import "sync"

// Store holds the current sanitized settings. Writers may call from any goroutine; the frame loop
// reads one Snapshot per frame.
type Store struct {
	mu      sync.RWMutex
	current ShaderSettings
	version uint64
}

// NewStore creates a Store holding the sanitized form of initial.
//
// Parameters:
//   - initial: the starting settings
//
// Returns:
//   - *Store: the store
func NewStore(initial ShaderSettings) *Store {
	return &Store{current: Sanitize(initial)}
}

// Apply merges p into the current settings.
//
// Parameters:
//   - p: the partial update
//
// Returns:
//   - ShaderSettings: the settings after the update
func (s *Store) Apply(p Patch) ShaderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Apply(s.current, p)
	if next != s.current {
		s.current = next
		s.version++
	}
	return next
}

// Replace swaps in the sanitized form of v.
func (s *Store) Replace(v ShaderSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Sanitize(v)
	if next != s.current {
		s.current = next
		s.version++
	}
}

// Snapshot returns the current settings and their version. The version increments on every change.
func (s *Store) Snapshot() (ShaderSettings, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}
