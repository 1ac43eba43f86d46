// Package id defines the typed resource handles used by the hub.
//
// A handle is an (index, epoch) pair tagged at compile time with the kind of
// resource it names. The index addresses a slot in the owning registry; the
// epoch distinguishes successive occupants of that slot, so a handle kept
// after its resource was released can be detected instead of silently
// resolving to whatever occupies the slot now.
//
//	buf := id.New[id.BufferMarker](3, 1)
//	buf.Index() // 3
//	buf.Epoch() // 1
//
// Handles of different kinds are different Go types: a BufferID cannot be
// passed where a TextureID is expected.
package id

import "fmt"

// Index is the slot component of a handle.
type Index = uint32

// Epoch is the generation component of a handle.
// Epoch 0 is never issued, so the zero handle is always invalid.
type Epoch = uint32

// MaxEpoch is the last epoch a slot can carry before it is retired.
const MaxEpoch Epoch = ^Epoch(0)

// RawID is the untyped 64-bit form of a handle.
// Layout: lower 32 bits = index, upper 32 bits = epoch.
type RawID uint64

// Zip combines an index and epoch into a RawID.
func Zip(index Index, epoch Epoch) RawID {
	return RawID(index) | RawID(epoch)<<32
}

// Unzip splits the RawID into index and epoch.
func (r RawID) Unzip() (Index, Epoch) {
	return Index(r & 0xFFFFFFFF), Epoch(r >> 32)
}

// Index returns the index component.
func (r RawID) Index() Index { return Index(r & 0xFFFFFFFF) }

// Epoch returns the epoch component.
func (r RawID) Epoch() Epoch { return Epoch(r >> 32) }

// IsZero reports whether both components are zero.
func (r RawID) IsZero() bool { return r == 0 }

func (r RawID) String() string {
	index, epoch := r.Unzip()
	return fmt.Sprintf("RawID(%d,%d)", index, epoch)
}

// Marker tags a handle with its resource kind.
// Markers are zero-sized structs declared in this package.
type Marker interface {
	Kind() Kind
}

// TypedID is satisfied by every ID[M]. Code that only needs the
// components of a handle, such as error reporting, accepts it.
type TypedID interface {
	comparable
	Index() Index
	Epoch() Epoch
	Kind() Kind
}

// ID is a handle for a resource of the kind named by M.
type ID[M Marker] struct {
	raw RawID
}

// New builds a handle from its components.
func New[M Marker](index Index, epoch Epoch) ID[M] {
	return ID[M]{raw: Zip(index, epoch)}
}

// FromRaw reinterprets a RawID as a handle of kind M.
// The caller vouches that raw was minted for that kind.
func FromRaw[M Marker](raw RawID) ID[M] {
	return ID[M]{raw: raw}
}

// Raw returns the untyped representation, e.g. for crossing an FFI boundary.
func (h ID[M]) Raw() RawID { return h.raw }

// Unzip returns index and epoch.
func (h ID[M]) Unzip() (Index, Epoch) { return h.raw.Unzip() }

// Index returns the slot index.
func (h ID[M]) Index() Index { return h.raw.Index() }

// Epoch returns the generation.
func (h ID[M]) Epoch() Epoch { return h.raw.Epoch() }

// IsZero reports whether h is the zero handle.
func (h ID[M]) IsZero() bool { return h.raw.IsZero() }

// Kind returns the resource kind of the handle.
func (h ID[M]) Kind() Kind {
	var m M
	return m.Kind()
}

// String formats the handle as Kind(index,epoch), e.g. "Buffer(3,1)".
func (h ID[M]) String() string {
	index, epoch := h.raw.Unzip()
	return fmt.Sprintf("%s(%d,%d)", h.Kind().TypeName(), index, epoch)
}
