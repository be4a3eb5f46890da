package queryid

import "testing"

func expectPanic(t *testing.T, want string) {
	t.Helper()
	r := recover()
	if r == nil {
		t.Fatalf("expected a panic, got none")
	}
	if r != want {
		t.Fatalf("panic = %v, want %q", r, want)
	}
}

func TestRegistry_AllocateIsAscending(t *testing.T) {
	r := New()
	a := r.Allocate()
	b := r.Allocate()
	c := r.Allocate()
	if !(a < b && b < c) {
		t.Fatalf("Allocate() not ascending: got %d, %d, %d", a, b, c)
	}
}

func TestRegistry_OldestOutstandingTracksFIFO(t *testing.T) {
	r := New()
	first := r.Allocate()
	r.Allocate()

	oldest, ok := r.OldestOutstanding()
	if !ok || oldest != first {
		t.Fatalf("OldestOutstanding() = (%d, %v), want (%d, true)", oldest, ok, first)
	}
}

func TestRegistry_OldestOutstandingReturnsNextWhenEmpty(t *testing.T) {
	r := New()
	first := r.Allocate()
	r.Release(first)

	oldest, ok := r.OldestOutstanding()
	if ok {
		t.Fatal("OldestOutstanding() ok = true with nothing outstanding")
	}
	if oldest != r.Next() {
		t.Fatalf("OldestOutstanding() = %d, want Next() = %d", oldest, r.Next())
	}
}

func TestRegistry_ReleaseOutOfOrderAdvancesWatermarkOnlyOnHead(t *testing.T) {
	r := New()
	first := r.Allocate()
	second := r.Allocate()
	third := r.Allocate()

	// Releasing the middle id first (out-of-order completion under
	// concurrent dispatch) must succeed and must not move the
	// watermark off first.
	r.Release(second)
	if oldest, ok := r.OldestOutstanding(); !ok || oldest != first {
		t.Fatalf("OldestOutstanding() = (%d, %v), want (%d, true)", oldest, ok, first)
	}
	if n := r.Len(); n != 2 {
		t.Fatalf("Len() after releasing the middle id = %d, want 2", n)
	}

	// Releasing the head now advances the watermark to the only id
	// left outstanding.
	r.Release(first)
	if oldest, ok := r.OldestOutstanding(); !ok || oldest != third {
		t.Fatalf("OldestOutstanding() = (%d, %v), want (%d, true)", oldest, ok, third)
	}

	r.Release(third)
	if n := r.Len(); n != 0 {
		t.Fatalf("Len() after releasing all three = %d, want 0", n)
	}
}

func TestRegistry_ReleaseUnknownIDPanics(t *testing.T) {
	r := New()
	r.Allocate()
	defer expectPanic(t, "queryid: release of an id not linked in this registry")
	r.Release(999)
}

func TestRegistry_ReleaseWithNothingOutstandingPanics(t *testing.T) {
	r := New()
	defer expectPanic(t, "queryid: release of an id not linked in this registry")
	r.Release(1)
}

func TestRegistry_ConnectionIDIsStableAndUnique(t *testing.T) {
	r1 := New()
	r2 := New()
	if r1.ConnectionID() == "" {
		t.Fatal("ConnectionID() is empty")
	}
	if r1.ConnectionID() == r2.ConnectionID() {
		t.Fatal("two registries got the same ConnectionID()")
	}
	if r1.ConnectionID() != r1.ConnectionID() {
		t.Fatal("ConnectionID() is not stable across calls")
	}
}
