package arena

import "testing"

func TestInsertGetRemove(t *testing.T) {
	a := New[string]()
	h1 := a.Insert("scene")
	h2 := a.Insert("post")

	if h1 == h2 {
		t.Fatal("expected distinct handles")
	}
	if v, ok := a.Get(h1); !ok || v != "scene" {
		t.Errorf("Get(h1) = %q, %v", v, ok)
	}
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}

	if v, ok := a.Remove(h1); !ok || v != "scene" {
		t.Errorf("Remove(h1) = %q, %v", v, ok)
	}
	if _, ok := a.Get(h1); ok {
		t.Error("expected removed handle to be stale")
	}
	if _, ok := a.Remove(h1); ok {
		t.Error("expected double remove to fail")
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	a := New[int]()
	old := a.Insert(1)
	a.Remove(old)
	fresh := a.Insert(2)

	if old.Index() != fresh.Index() {
		t.Fatalf("expected slot reuse, got %d and %d", old.Index(), fresh.Index())
	}
	if _, ok := a.Get(old); ok {
		t.Error("stale handle resolved to new occupant")
	}
	if v, ok := a.Get(fresh); !ok || v != 2 {
		t.Errorf("Get(fresh) = %d, %v", v, ok)
	}
}

func TestZeroHandle(t *testing.T) {
	a := New[int]()
	a.Insert(5)
	var h Handle
	if !h.IsZero() {
		t.Error("zero handle should report IsZero")
	}
	if _, ok := a.Get(h); ok {
		t.Error("zero handle must never resolve")
	}
}

func TestClearAndEach(t *testing.T) {
	a := New[int]()
	hs := []Handle{a.Insert(1), a.Insert(2), a.Insert(3)}
	a.Remove(hs[1])

	sum := 0
	a.Each(func(_ Handle, v int) { sum += v })
	if sum != 4 {
		t.Errorf("Each sum = %d, want 4", sum)
	}

	a.Clear()
	if a.Len() != 0 {
		t.Errorf("Len after Clear = %d", a.Len())
	}
	for _, h := range hs {
		if _, ok := a.Get(h); ok {
			t.Errorf("handle %v survived Clear", h)
		}
	}
	if h := a.Insert(9); h.IsZero() {
		t.Error("insert after clear returned zero handle")
	}
}
