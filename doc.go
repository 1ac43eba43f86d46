// Package hub is a registry of GPU objects addressed by generational handles.
//
// A WebGPU-style API hands its callers opaque identifiers instead of
// pointers. hub stores the objects behind those identifiers: one registry
// per resource kind (instances, adapters, devices, buffers, textures,
// pipelines, command buffers and so on), each pairing an allocator of
// (index, epoch) handles with a slot table of payloads.
//
// # Quick Start
//
//	h := hub.New()
//
//	bid, err := h.Buffers.RegisterLocal(&resource.Buffer{Label: "vertices"})
//	if err != nil {
//	    return err // registry.ErrCapacityExhausted
//	}
//	buf := h.Buffers.Get(bid)
//	...
//	h.Buffers.Unregister(bid)
//
// # Handles
//
// A handle ([id.ID]) carries the slot index and the epoch the slot had when
// the handle was issued. Freeing a slot bumps its epoch, so a handle kept
// past its Unregister no longer matches and is rejected. Handles are typed
// by kind: a buffer handle cannot be passed where a texture handle is
// expected.
//
// # Integrity
//
// Using a stale or forged handle is a programming error. The registry logs
// it at error level and panics with *[registry.IntegrityError]; it never
// returns a wrong object. Running out of handles is the only recoverable
// failure and is reported as [registry.ErrCapacityExhausted].
//
// # Concurrency
//
// Every registry is safe for concurrent use. Lookups of one kind proceed in
// parallel; mutation of one kind is exclusive; different kinds never
// contend. Payloads returned by Get are shared pointers: synchronizing
// access to their fields is the caller's concern.
//
// # Backends
//
// The [github.com/gogpu/hub/global] package drives a gogpu/wgpu HAL backend
// and keeps the hub in step with the objects it creates. Backends are
// selected through [github.com/gogpu/hub/backend].
//
// # Logging
//
// hub is silent by default. [SetLogger] enables structured logging through
// log/slog for hub and all sub-packages.
package hub

// Version is the current version of the library.
const Version = "0.1.0"
