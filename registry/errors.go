package registry

import (
	"errors"
	"fmt"

	"github.com/gogpu/hub/id"
)

var (
	// ErrIntegrity is the sentinel wrapped by every IntegrityError.
	// A violation means a handle was stale, forged or used twice; it is
	// never transient and is raised as a panic rather than returned.
	ErrIntegrity = errors.New("registry: integrity violation")

	// ErrCapacityExhausted is returned when no further handle can be minted,
	// either because a configured maximum was reached or because the 32-bit
	// index space is used up.
	ErrCapacityExhausted = errors.New("registry: handle capacity exhausted")
)

// Reason classifies an integrity violation.
type Reason uint8

const (
	// ReasonOutOfRange: the index was never allocated.
	ReasonOutOfRange Reason = iota
	// ReasonVacant: nothing is stored at the index.
	ReasonVacant
	// ReasonEpochMismatch: the slot belongs to another generation.
	ReasonEpochMismatch
	// ReasonOccupied: an insert targeted a live slot.
	ReasonOccupied
	// ReasonDoubleFree: the index is already on the free list.
	ReasonDoubleFree
	// ReasonNotAllocated: the handle was never minted for this slot.
	ReasonNotAllocated
)

func (r Reason) String() string {
	switch r {
	case ReasonOutOfRange:
		return "index out of range"
	case ReasonVacant:
		return "slot is vacant"
	case ReasonEpochMismatch:
		return "epoch mismatch"
	case ReasonOccupied:
		return "slot already occupied"
	case ReasonDoubleFree:
		return "index already free"
	case ReasonNotAllocated:
		return "handle not allocated"
	default:
		return "unknown"
	}
}

// IntegrityError describes a handle misuse. It is the panic value raised by
// IdentityManager, Storage and Registry; recover it with errors.As.
type IntegrityError struct {
	Op     string
	Kind   id.Kind
	Index  id.Index
	Epoch  id.Epoch // epoch carried by the offending handle
	Actual id.Epoch // epoch recorded for the slot, 0 when vacant or out of range
	Reason Reason
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("registry: %s %s(%d,%d): %s",
		e.Op, e.Kind.TypeName(), e.Index, e.Epoch, e.Reason)
	if e.Reason == ReasonEpochMismatch || e.Reason == ReasonOccupied {
		msg += fmt.Sprintf(" (slot epoch %d)", e.Actual)
	}
	return msg
}

// Unwrap returns ErrIntegrity.
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// violate logs e and panics with it.
func violate(e *IntegrityError) {
	slogger().Error("registry: integrity violation",
		"op", e.Op,
		"kind", e.Kind.String(),
		"index", e.Index,
		"epoch", e.Epoch,
		"actual", e.Actual,
		"reason", e.Reason.String(),
	)
	panic(e)
}

func kindOf[M id.Marker]() id.Kind {
	var m M
	return m.Kind()
}
