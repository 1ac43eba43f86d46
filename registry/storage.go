package registry

import (
	"slices"

	"github.com/gogpu/hub/id"
)

// slot holds a payload with the epoch it was registered under.
type slot[T any] struct {
	value    T
	epoch    id.Epoch
	occupied bool
}

// Storage maps handle indices to payloads.
//
// Slots live in a slice indexed by handle index and grow on demand, so the
// footprint follows the peak number of live objects rather than the index
// space. Every lookup checks the stored epoch against the handle's.
//
// Storage is not safe for concurrent use; Registry guards it with a
// reader/writer lock.
type Storage[T any, M id.Marker] struct {
	slots []slot[T]
	live  int
}

// NewStorage returns an empty storage with room for capacity slots.
func NewStorage[T any, M id.Marker](capacity int) *Storage[T, M] {
	if capacity < 0 {
		capacity = 0
	}
	return &Storage[T, M]{slots: make([]slot[T], 0, capacity)}
}

// Contains reports whether h names the current occupant of its slot.
func (s *Storage[T, M]) Contains(h id.ID[M]) bool {
	index, epoch := h.Unzip()
	if int(index) >= len(s.slots) {
		return false
	}
	sl := &s.slots[index]
	return sl.occupied && sl.epoch == epoch
}

// Get returns the payload for h. A stale, vacant or out-of-range handle
// panics with *IntegrityError.
func (s *Storage[T, M]) Get(h id.ID[M]) T {
	return s.lookup(h, "get").value
}

// GetMut returns a pointer to the payload for h. The pointer must not be
// used after the lock that guards the storage is released.
func (s *Storage[T, M]) GetMut(h id.ID[M]) *T {
	return &s.lookup(h, "get_mut").value
}

func (s *Storage[T, M]) lookup(h id.ID[M], op string) *slot[T] {
	index, epoch := h.Unzip()
	if int(index) >= len(s.slots) {
		violate(&IntegrityError{Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch, Reason: ReasonOutOfRange})
	}
	sl := &s.slots[index]
	if !sl.occupied {
		violate(&IntegrityError{Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch, Reason: ReasonVacant})
	}
	if sl.epoch != epoch {
		violate(&IntegrityError{
			Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch,
			Actual: sl.epoch, Reason: ReasonEpochMismatch,
		})
	}
	return sl
}

// Insert stores value at index under epoch. The slot must be vacant.
func (s *Storage[T, M]) Insert(index id.Index, value T, epoch id.Epoch) {
	s.grow(int(index) + 1)
	sl := &s.slots[index]
	if sl.occupied {
		violate(&IntegrityError{
			Op: "insert", Kind: kindOf[M](), Index: index, Epoch: epoch,
			Actual: sl.epoch, Reason: ReasonOccupied,
		})
	}
	*sl = slot[T]{value: value, epoch: epoch, occupied: true}
	s.live++
}

// Remove empties the slot at index and returns what it held.
// Removing a vacant slot panics with *IntegrityError.
func (s *Storage[T, M]) Remove(index id.Index) (T, id.Epoch) {
	if int(index) >= len(s.slots) || !s.slots[index].occupied {
		reason := ReasonVacant
		if int(index) >= len(s.slots) {
			reason = ReasonOutOfRange
		}
		violate(&IntegrityError{Op: "remove", Kind: kindOf[M](), Index: index, Reason: reason})
	}
	sl := &s.slots[index]
	value, epoch := sl.value, sl.epoch
	*sl = slot[T]{}
	s.live--
	return value, epoch
}

// Len returns the number of occupied slots.
func (s *Storage[T, M]) Len() int { return s.live }

// Cap returns the number of slots the storage currently spans.
func (s *Storage[T, M]) Cap() int { return len(s.slots) }

// ForEach calls fn for every occupied slot in index order until fn
// returns false.
func (s *Storage[T, M]) ForEach(fn func(id.ID[M], T) bool) {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.occupied {
			continue
		}
		if !fn(id.New[M](id.Index(i), sl.epoch), sl.value) { //nolint:gosec // len(slots) <= maxSlots
			return
		}
	}
}

// grow extends slots to at least n entries. Reallocation follows append's
// geometric growth, so sequential inserts cost amortized O(1). Slots past
// len are never written, so reslicing exposes only vacant slots.
func (s *Storage[T, M]) grow(n int) {
	if n <= len(s.slots) {
		return
	}
	s.slots = slices.Grow(s.slots, n-len(s.slots))[:n]
}
