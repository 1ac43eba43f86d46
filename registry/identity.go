package registry

import (
	"slices"

	"github.com/gogpu/hub/id"
)

// maxSlots is the size of the 32-bit index space.
const maxSlots = 1 << 32

// IdentityManager mints and recycles handles of one kind.
//
// Every slot carries the epoch that a live handle for it must present.
// New slots start at epoch 1; freeing a slot bumps its epoch, so handles
// minted before the free can never match again. A slot whose epoch would
// overflow is retired instead of recycled.
//
// IdentityManager is not safe for concurrent use; Registry guards it.
type IdentityManager[M id.Marker] struct {
	free    []id.Index
	epochs  []id.Epoch
	live    []bool // a handle for the slot is held out
	max     int
	retired int
}

// NewIdentityManager returns an empty manager. maxHandles bounds the
// number of handles allocated at once; zero means bounded only by the
// index space.
func NewIdentityManager[M id.Marker](maxHandles int) *IdentityManager[M] {
	return &IdentityManager[M]{max: maxHandles}
}

// Alloc returns a handle for a free slot, reusing the most recently freed
// index before growing. It fails only with ErrCapacityExhausted.
func (m *IdentityManager[M]) Alloc() (id.ID[M], error) {
	if n := len(m.free); n > 0 {
		index := m.free[n-1]
		m.free = m.free[:n-1]
		m.live[index] = true
		return id.New[M](index, m.epochs[index]), nil
	}

	if uint64(len(m.epochs)) >= maxSlots || (m.max > 0 && m.Len() >= m.max) {
		return id.ID[M]{}, ErrCapacityExhausted
	}

	index := id.Index(len(m.epochs)) //nolint:gosec // bounded by maxSlots above
	m.epochs = append(m.epochs, 1)
	m.live = append(m.live, true)
	return id.New[M](index, 1), nil
}

// Check panics with *IntegrityError unless h is a handle this manager
// currently holds out. op names the caller's operation in the error.
func (m *IdentityManager[M]) Check(op string, h id.ID[M]) {
	m.check(op, h, ReasonNotAllocated)
}

func (m *IdentityManager[M]) check(op string, h id.ID[M], notLive Reason) {
	index, epoch := h.Unzip()
	if int(index) >= len(m.epochs) {
		violate(&IntegrityError{Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch, Reason: ReasonOutOfRange})
	}
	current := m.epochs[index]
	if current != epoch {
		violate(&IntegrityError{
			Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch,
			Actual: current, Reason: ReasonEpochMismatch,
		})
	}
	if !m.live[index] {
		if epoch == 0 {
			// Retired slots carry epoch 0; no handle was ever issued with it.
			notLive = ReasonNotAllocated
		}
		violate(&IntegrityError{Op: op, Kind: kindOf[M](), Index: index, Epoch: epoch, Reason: notLive})
	}
}

// Free releases h. h must be held out with the slot's current epoch;
// anything else is a double free or a forged handle and panics with
// *IntegrityError.
func (m *IdentityManager[M]) Free(h id.ID[M]) {
	index, epoch := h.Unzip()
	if debugChecks && slices.Contains(m.free, index) {
		violate(&IntegrityError{Op: "free", Kind: kindOf[M](), Index: index, Epoch: epoch, Reason: ReasonDoubleFree})
	}
	m.check("free", h, ReasonDoubleFree)

	current := m.epochs[index]
	m.live[index] = false
	if current == id.MaxEpoch {
		// Epoch 0 is never issued, so the retired slot rejects every handle.
		m.epochs[index] = 0
		m.retired++
		return
	}
	m.epochs[index] = current + 1
	m.free = append(m.free, index)
}

// Epoch returns the epoch a live handle for index must carry, or 0 when the
// index was never allocated or has been retired.
func (m *IdentityManager[M]) Epoch(index id.Index) id.Epoch {
	if int(index) >= len(m.epochs) {
		return 0
	}
	return m.epochs[index]
}

// Len returns the number of handles currently allocated.
func (m *IdentityManager[M]) Len() int {
	return len(m.epochs) - len(m.free) - m.retired
}

// FreeLen returns the number of slots waiting to be reused.
func (m *IdentityManager[M]) FreeLen() int { return len(m.free) }

// Slots returns the number of slots ever created.
func (m *IdentityManager[M]) Slots() int { return len(m.epochs) }

// Retired returns the number of slots withdrawn after epoch exhaustion.
func (m *IdentityManager[M]) Retired() int { return m.retired }
