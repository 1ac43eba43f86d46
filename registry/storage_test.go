package registry

import (
	"testing"

	"github.com/gogpu/hub/id"
)

func bufID(index id.Index, epoch id.Epoch) id.BufferID {
	return id.New[id.BufferMarker](index, epoch)
}

func TestStorageInsertGet(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(0, "a", 1)
	s.Insert(2, "c", 3)

	if got := s.Get(bufID(0, 1)); got != "a" {
		t.Errorf("Get(0,1) = %q, want a", got)
	}
	if got := s.Get(bufID(2, 3)); got != "c" {
		t.Errorf("Get(2,3) = %q, want c", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStorageContains(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](4)
	s.Insert(1, "b", 2)

	tests := []struct {
		name string
		h    id.BufferID
		want bool
	}{
		{"live", bufID(1, 2), true},
		{"old epoch", bufID(1, 1), false},
		{"future epoch", bufID(1, 3), false},
		{"vacant", bufID(0, 1), false},
		{"out of range", bufID(99, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Contains(tt.h); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}

func TestStorageGetViolations(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(1, "b", 2)

	tests := []struct {
		name   string
		h      id.BufferID
		reason Reason
	}{
		{"epoch mismatch", bufID(1, 1), ReasonEpochMismatch},
		{"vacant", bufID(0, 1), ReasonVacant},
		{"out of range", bufID(500, 1), ReasonOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustViolate(t, tt.reason, func() { s.Get(tt.h) })
			if e.Kind != id.KindBuffer || e.Op != "get" {
				t.Errorf("violation = %+v", e)
			}
			mustViolate(t, tt.reason, func() { s.GetMut(tt.h) })
		})
	}
}

func TestStorageGetMut(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(0, "before", 1)

	*s.GetMut(bufID(0, 1)) = "after"

	if got := s.Get(bufID(0, 1)); got != "after" {
		t.Errorf("Get() = %q after GetMut write, want after", got)
	}
}

func TestStorageInsertOccupied(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(3, "first", 1)

	e := mustViolate(t, ReasonOccupied, func() { s.Insert(3, "second", 2) })
	if e.Actual != 1 {
		t.Errorf("violation Actual = %d, want 1", e.Actual)
	}
	if got := s.Get(bufID(3, 1)); got != "first" {
		t.Errorf("occupant replaced: Get() = %q", got)
	}
}

func TestStorageRemove(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(0, "a", 4)

	value, epoch := s.Remove(0)
	if value != "a" || epoch != 4 {
		t.Errorf("Remove(0) = (%q, %d), want (a, 4)", value, epoch)
	}
	if s.Contains(bufID(0, 4)) {
		t.Error("Contains() true after Remove")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	mustViolate(t, ReasonVacant, func() { s.Remove(0) })
	mustViolate(t, ReasonOutOfRange, func() { s.Remove(1 << 20) })
}

func TestStorageSparseGrowth(t *testing.T) {
	s := NewStorage[int, id.TextureMarker](0)
	s.Insert(1000, 7, 1)

	if s.Cap() < 1001 {
		t.Fatalf("Cap() = %d, want >= 1001", s.Cap())
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if s.Contains(id.New[id.TextureMarker](999, 1)) {
		t.Error("slot 999 should be vacant")
	}

	// Fill below the sparse entry without disturbing it.
	for i := range 1000 {
		s.Insert(id.Index(i), i, 1)
	}
	if got := s.Get(id.New[id.TextureMarker](1000, 1)); got != 7 {
		t.Errorf("Get(1000) = %d, want 7", got)
	}
	if s.Len() != 1001 {
		t.Errorf("Len() = %d, want 1001", s.Len())
	}
}

func TestStorageGrowthIsGeometric(t *testing.T) {
	s := NewStorage[int, id.BufferMarker](0)

	const n = 1 << 16
	reallocs := 0
	last := cap(s.slots)
	for i := range n {
		s.Insert(id.Index(i), i, 1)
		if c := cap(s.slots); c != last {
			reallocs++
			last = c
		}
	}
	if s.Len() != n {
		t.Fatalf("Len() = %d, want %d", s.Len(), n)
	}
	// Linear growth in fixed steps would need n/step reallocations.
	if reallocs > 48 {
		t.Errorf("%d reallocations for %d sequential inserts, want O(log n)", reallocs, n)
	}
}

func TestStorageForEach(t *testing.T) {
	s := NewStorage[string, id.BufferMarker](0)
	s.Insert(4, "e", 1)
	s.Insert(1, "b", 3)
	s.Insert(2, "c", 1)

	var got []id.BufferID
	s.ForEach(func(h id.BufferID, _ string) bool {
		got = append(got, h)
		return true
	})
	want := []id.BufferID{bufID(1, 3), bufID(2, 1), bufID(4, 1)}
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}

	count := 0
	s.ForEach(func(id.BufferID, string) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("early stop visited %d entries, want 1", count)
	}
}

func BenchmarkStorageGet(b *testing.B) {
	s := NewStorage[int, id.BufferMarker](0)
	for i := range 1024 {
		s.Insert(id.Index(i), i, 1)
	}
	h := bufID(512, 1)
	b.ReportAllocs()
	for b.Loop() {
		_ = s.Get(h)
	}
}
