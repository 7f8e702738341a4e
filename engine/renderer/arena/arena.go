// Package arena provides a generational slot map. GPU objects live in an Arena and the rest of the
// renderer refers to them through comparable Handle values, so caches can key on plain tuples.
package arena

// Handle identifies a slot in an Arena. The zero Handle is never issued and is always invalid.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

// Index returns the slot index of h. It is stable for the lifetime of the handle.
func (h Handle) Index() uint32 {
	return h.index
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena stores values addressed by generational handles. Removing a value bumps the slot generation
// so stale handles never resolve to a newer occupant. An Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// New creates an empty Arena.
//
// Returns:
//   - *Arena[T]: the arena
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
//
// Parameters:
//   - v: the value to store
//
// Returns:
//   - Handle: a handle resolving to v until it is removed
func (a *Arena[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	s.value = v
	s.occupied = true
	a.count++
	return Handle{index: idx, generation: s.generation}
}

// Get resolves h.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - T: the stored value, or the zero value
//   - bool: true if h is live
func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if !a.live(h) {
		return zero, false
	}
	return a.slots[h.index].value, true
}

// Remove deletes the value behind h and returns it.
//
// Parameters:
//   - h: the handle to remove
//
// Returns:
//   - T: the removed value, or the zero value
//   - bool: true if h was live
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !a.live(h) {
		return zero, false
	}
	s := &a.slots[h.index]
	v := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, h.index)
	a.count--
	return v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live value in slot order.
func (a *Arena[T]) Each(fn func(h Handle, v T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			fn(Handle{index: uint32(i), generation: s.generation}, s.value)
		}
	}
}

// Clear removes every value, invalidating all outstanding handles.
func (a *Arena[T]) Clear() {
	var zero T
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			s.value = zero
			s.occupied = false
			s.generation++
		}
		a.free = append(a.free, uint32(i))
	}
	a.count = 0
}

func (a *Arena[T]) live(h Handle) bool {
	if h.generation == 0 || int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	return s.occupied && s.generation == h.generation
}
