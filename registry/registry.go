// Package registry stores GPU objects behind generational handles.
//
// A Registry couples an IdentityManager, which mints and recycles
// (index, epoch) handles, with a Storage that maps indices to payloads.
// The two halves have separate locks: a mutex for identity bookkeeping and
// a reader/writer lock for payload access, so minting a handle never waits
// behind long-held readers.
//
// Handle misuse (stale handle, double free, duplicate registration) panics
// with *IntegrityError. Such misuse is a caller bug, not a runtime condition,
// and continuing after it would risk addressing the wrong object.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gogpu/hub/id"
)

// Registry is the concurrency-safe store for one resource kind.
//
// Lock order for compound operations:
//   - RegisterLocal: identity lock (alloc), released, then storage write lock (insert).
//   - Unregister: storage write lock (remove), released, then identity lock (free).
//
// The two locks are never held together by these operations. Unregister must
// remove before it frees; otherwise another goroutine could reuse the index
// while the old payload is still reachable.
type Registry[T any, M id.Marker] struct {
	identityMu sync.Mutex
	identity   *IdentityManager[M]

	mu   sync.RWMutex
	data *Storage[T, M]
}

// New creates an empty registry.
func New[T any, M id.Marker](opts ...Option) *Registry[T, M] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry[T, M]{
		identity: NewIdentityManager[M](cfg.maxHandles),
		data:     NewStorage[T, M](cfg.capacity),
	}
}

// Kind returns the resource kind stored in r.
func (r *Registry[T, M]) Kind() id.Kind { return kindOf[M]() }

// Mint allocates a handle without storing anything. The handle must later
// be passed to Register.
func (r *Registry[T, M]) Mint() (id.ID[M], error) {
	r.identityMu.Lock()
	defer r.identityMu.Unlock()
	return r.identity.Alloc()
}

// Register stores value under h, a handle obtained from Mint. A handle
// this registry did not mint, or registering over a live slot, panics with
// *IntegrityError.
func (r *Registry[T, M]) Register(h id.ID[M], value T) {
	r.checkMinted(h)
	r.insert(h, value)
}

func (r *Registry[T, M]) checkMinted(h id.ID[M]) {
	r.identityMu.Lock()
	defer r.identityMu.Unlock()
	r.identity.Check("register", h)
}

func (r *Registry[T, M]) insert(h id.ID[M], value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Insert(h.Index(), value, h.Epoch())
	r.logDebug("registry: register", h)
}

// RegisterLocal mints a handle and stores value under it. On error nothing
// was allocated or stored.
func (r *Registry[T, M]) RegisterLocal(value T) (id.ID[M], error) {
	h, err := r.Mint()
	if err != nil {
		slogger().Warn("registry: mint failed", "kind", r.Kind().String(), "err", err)
		return id.ID[M]{}, err
	}
	// The index is not visible to other goroutines until the insert below.
	r.insert(h, value)
	return h, nil
}

// Unregister removes the payload for h, recycles h's index and returns the
// payload to the caller for teardown. h must be live.
func (r *Registry[T, M]) Unregister(h id.ID[M]) T {
	value := r.remove(h)
	r.free(h)
	r.logDebug("registry: unregister", h)
	return value
}

func (r *Registry[T, M]) remove(h id.ID[M]) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.lookup(h, "unregister")
	value, _ := r.data.Remove(h.Index())
	return value
}

func (r *Registry[T, M]) free(h id.ID[M]) {
	r.identityMu.Lock()
	defer r.identityMu.Unlock()
	r.identity.Free(h)
}

// Contains reports whether h is live.
func (r *Registry[T, M]) Contains(h id.ID[M]) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Contains(h)
}

// Get returns the payload for h. Stale handles panic with *IntegrityError.
// Pointer payloads are shared with the registry; the caller must not keep
// using one after unregistering its handle.
func (r *Registry[T, M]) Get(h id.ID[M]) T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Get(h)
}

// Update runs fn on the payload for h under the write lock.
func (r *Registry[T, M]) Update(h id.ID[M], fn func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.data.GetMut(h))
}

// Read runs fn with shared access to the storage. Readers run concurrently
// with each other but never with a writer.
func (r *Registry[T, M]) Read(fn func(*Storage[T, M])) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.data)
}

// Write runs fn with exclusive access to the storage. Identity bookkeeping
// is not touched; use Register and Unregister to keep both halves in step.
func (r *Registry[T, M]) Write(fn func(*Storage[T, M])) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.data)
}

// Len returns the number of live payloads.
func (r *Registry[T, M]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Len()
}

// Snapshot is a point-in-time summary of one registry.
type Snapshot struct {
	Kind      id.Kind
	Live      int // payloads in storage
	Allocated int // handles held out by the identity manager
	Free      int // indices waiting for reuse
	Retired   int // indices withdrawn after epoch exhaustion
	Capacity  int // slots spanned by storage
}

// Snapshot returns a summary of this registry. The storage and identity
// halves are read one after the other, so Live and Allocated may differ
// while an Unregister or Mint/Register pair is in flight.
func (r *Registry[T, M]) Snapshot() Snapshot {
	s := Snapshot{Kind: r.Kind()}

	r.mu.RLock()
	s.Live = r.data.Len()
	s.Capacity = r.data.Cap()
	r.mu.RUnlock()

	r.identityMu.Lock()
	s.Allocated = r.identity.Len()
	s.Free = r.identity.FreeLen()
	s.Retired = r.identity.Retired()
	r.identityMu.Unlock()

	return s
}

func (r *Registry[T, M]) logDebug(msg string, h id.ID[M]) {
	l := slogger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(msg, "kind", r.Kind().String(), "id", h.String())
}
