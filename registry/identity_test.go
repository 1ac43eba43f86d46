package registry

import (
	"errors"
	"testing"

	"github.com/gogpu/hub/id"
)

func mustAlloc[M id.Marker](t *testing.T, m *IdentityManager[M]) id.ID[M] {
	t.Helper()
	h, err := m.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	return h
}

func TestIdentityAllocFresh(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)

	for i := range 4 {
		h := mustAlloc(t, m)
		if h.Index() != id.Index(i) {
			t.Errorf("alloc %d: Index() = %d", i, h.Index())
		}
		if h.Epoch() != 1 {
			t.Errorf("alloc %d: Epoch() = %d, want 1", i, h.Epoch())
		}
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestIdentityAllocUnique(t *testing.T) {
	m := NewIdentityManager[id.TextureMarker](0)
	seen := make(map[id.Index]bool)
	for range 1000 {
		h := mustAlloc(t, m)
		if seen[h.Index()] {
			t.Fatalf("index %d allocated twice", h.Index())
		}
		seen[h.Index()] = true
	}
}

func TestIdentityFreeRecycles(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	a := mustAlloc(t, m)
	b := mustAlloc(t, m)

	m.Free(a)
	if m.FreeLen() != 1 {
		t.Fatalf("FreeLen() = %d, want 1", m.FreeLen())
	}
	if m.Epoch(a.Index()) != 2 {
		t.Errorf("Epoch(%d) = %d, want 2", a.Index(), m.Epoch(a.Index()))
	}

	c := mustAlloc(t, m)
	if c.Index() != a.Index() || c.Epoch() != a.Epoch()+1 {
		t.Errorf("recycled handle = %v, want index %d epoch %d", c, a.Index(), a.Epoch()+1)
	}
	if c == a {
		t.Error("recycled handle equals the freed one")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	_ = b
}

func TestIdentityFreeLIFO(t *testing.T) {
	m := NewIdentityManager[id.SamplerMarker](0)
	h0 := mustAlloc(t, m)
	h1 := mustAlloc(t, m)
	h2 := mustAlloc(t, m)

	m.Free(h0)
	m.Free(h2)

	if got := mustAlloc(t, m); got.Index() != h2.Index() {
		t.Errorf("first reuse index = %d, want %d", got.Index(), h2.Index())
	}
	if got := mustAlloc(t, m); got.Index() != h0.Index() {
		t.Errorf("second reuse index = %d, want %d", got.Index(), h0.Index())
	}
	if got := mustAlloc(t, m); got.Index() != 3 {
		t.Errorf("fresh index = %d, want 3", got.Index())
	}
	_ = h1
}

func TestIdentityEpochMonotonic(t *testing.T) {
	m := NewIdentityManager[id.DeviceMarker](0)

	var last id.Epoch
	for i := range 50 {
		h := mustAlloc(t, m)
		if h.Index() != 0 {
			t.Fatalf("cycle %d: Index() = %d, want 0", i, h.Index())
		}
		if h.Epoch() <= last {
			t.Fatalf("cycle %d: epoch %d not greater than %d", i, h.Epoch(), last)
		}
		last = h.Epoch()
		m.Free(h)
	}
}

func TestIdentityFreeStale(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	h := mustAlloc(t, m)
	m.Free(h)

	// Double free is caught by the epoch bump.
	e := mustViolate(t, ReasonEpochMismatch, func() { m.Free(h) })
	if e.Op != "free" || e.Actual != 2 || e.Epoch != 1 {
		t.Errorf("violation = %+v", e)
	}

	// Still rejected after the index has a new occupant.
	_ = mustAlloc(t, m)
	mustViolate(t, ReasonEpochMismatch, func() { m.Free(h) })
}

func TestIdentityFreeOutOfRange(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	_ = mustAlloc(t, m)
	mustViolate(t, ReasonOutOfRange, func() { m.Free(id.New[id.BufferMarker](5, 1)) })
}

func TestIdentityFreeForgedEpoch(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	h := mustAlloc(t, m)
	mustViolate(t, ReasonEpochMismatch, func() { m.Free(id.New[id.BufferMarker](h.Index(), 7)) })
	if m.Len() != 1 {
		t.Errorf("Len() = %d after rejected free, want 1", m.Len())
	}
}

func TestIdentityCapacityExhausted(t *testing.T) {
	m := NewIdentityManager[id.TextureMarker](2)
	a := mustAlloc(t, m)
	_ = mustAlloc(t, m)

	if _, err := m.Alloc(); !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("Alloc() beyond max error = %v, want ErrCapacityExhausted", err)
	}
	if m.Slots() != 2 {
		t.Errorf("Slots() = %d after failed alloc, want 2", m.Slots())
	}

	// Freed slots are still available under the bound.
	m.Free(a)
	if h := mustAlloc(t, m); h.Index() != a.Index() {
		t.Errorf("reuse under bound: Index() = %d, want %d", h.Index(), a.Index())
	}
}

func TestIdentityEpochSaturationRetiresSlot(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	_ = mustAlloc(t, m)
	m.epochs[0] = id.MaxEpoch
	h := id.New[id.BufferMarker](0, id.MaxEpoch)

	m.Free(h)
	if m.Retired() != 1 {
		t.Fatalf("Retired() = %d, want 1", m.Retired())
	}
	if m.FreeLen() != 0 {
		t.Fatalf("FreeLen() = %d, want 0: retired slot must not be reused", m.FreeLen())
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if next := mustAlloc(t, m); next.Index() != 1 {
		t.Errorf("next alloc Index() = %d, want 1", next.Index())
	}
	mustViolate(t, ReasonEpochMismatch, func() { m.Free(h) })
}

func TestIdentityFreeUnallocated(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	h := mustAlloc(t, m)
	m.Free(h)

	// The bumped epoch was never issued; freeing it again must not push
	// the index onto the free list twice.
	forged := id.New[id.BufferMarker](h.Index(), h.Epoch()+1)
	mustViolate(t, ReasonDoubleFree, func() { m.Free(forged) })
	if m.FreeLen() != 1 {
		t.Errorf("FreeLen() = %d, want 1", m.FreeLen())
	}
}

func TestIdentityRetiredSlotStaysRetired(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	_ = mustAlloc(t, m)
	m.epochs[0] = id.MaxEpoch
	m.Free(id.New[id.BufferMarker](0, id.MaxEpoch))

	zero := id.New[id.BufferMarker](0, 0)
	mustViolate(t, ReasonNotAllocated, func() { m.Free(zero) })
	mustViolate(t, ReasonNotAllocated, func() { m.Check("register", zero) })
	if m.FreeLen() != 0 || m.Retired() != 1 {
		t.Errorf("FreeLen/Retired = %d/%d, want 0/1", m.FreeLen(), m.Retired())
	}
}

func TestIdentityMaxHandlesIgnoresRetired(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](1)
	_ = mustAlloc(t, m)
	m.epochs[0] = id.MaxEpoch
	m.Free(id.New[id.BufferMarker](0, id.MaxEpoch))

	h := mustAlloc(t, m)
	if h.Index() != 1 {
		t.Errorf("Index() = %d, want 1", h.Index())
	}
	if _, err := m.Alloc(); !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("second Alloc() error = %v, want ErrCapacityExhausted", err)
	}
}

func TestIdentityCheck(t *testing.T) {
	m := NewIdentityManager[id.BufferMarker](0)
	h := mustAlloc(t, m)
	m.Check("register", h)

	tests := []struct {
		name   string
		h      id.BufferID
		reason Reason
	}{
		{"out of range", id.New[id.BufferMarker](3, 7), ReasonOutOfRange},
		{"wrong epoch", id.New[id.BufferMarker](h.Index(), 9), ReasonEpochMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustViolate(t, tt.reason, func() { m.Check("register", tt.h) })
			if e.Op != "register" {
				t.Errorf("Op = %q, want register", e.Op)
			}
		})
	}

	m.Free(h)
	mustViolate(t, ReasonNotAllocated, func() {
		m.Check("register", id.New[id.BufferMarker](h.Index(), h.Epoch()+1))
	})
}

func BenchmarkIdentityAllocFree(b *testing.B) {
	m := NewIdentityManager[id.BufferMarker](0)
	b.ReportAllocs()
	for b.Loop() {
		h, _ := m.Alloc()
		m.Free(h)
	}
}
