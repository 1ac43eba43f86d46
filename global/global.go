// Package global drives a gogpu/wgpu HAL backend and keeps a hub in step
// with the objects it creates.
//
// Every operation follows the same shape: look up the payloads it needs
// through the hub (a brief read lock per lookup), call into the HAL with no
// registry lock held, then register or unregister the result. Backend
// failures come back as wrapped errors. A stale or foreign handle panics
// with *registry.IntegrityError, like any other registry access.
package global

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub"
	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/internal/cache"
	"github.com/gogpu/hub/registry"
)

// Base errors for the global package.
var (
	// ErrNoAdapters is returned when an instance exposes no adapter.
	ErrNoAdapters = errors.New("global: no adapters available")

	// ErrNilDescriptor is returned when a required descriptor is nil.
	ErrNilDescriptor = errors.New("global: descriptor is required")

	// ErrEncoderFinished is returned when recording into a finished command buffer.
	ErrEncoderFinished = errors.New("global: command encoder already finished")

	// ErrEncoderNotFinished is returned when submitting a command buffer that is still recording.
	ErrEncoderNotFinished = errors.New("global: command encoder not finished")

	// ErrPassOpen is returned when a command buffer already has an open pass,
	// or is finished while one is open.
	ErrPassOpen = errors.New("global: pass still open")

	// ErrNoPipeline is returned when drawing or dispatching before a pipeline is set.
	ErrNoPipeline = errors.New("global: no pipeline set")
)

// Global pairs a hub with the backend whose objects it tracks.
type Global struct {
	hub     *hub.Hub
	backend hal.Backend

	inflight inflight

	// shaders maps WGSL source to compiled SPIR-V words. Nil when disabled.
	shaders *cache.Sharded[string, []uint32]
}

// Option configures a Global.
type Option func(*Global)

// WithShaderCache sets how many compiled WGSL sources are kept per cache
// shard. Zero selects the default; a negative size disables the cache.
func WithShaderCache(size int) Option {
	return func(g *Global) {
		if size < 0 {
			g.shaders = nil
			return
		}
		g.shaders = cache.New[string, []uint32](size, cache.StringHasher)
	}
}

// New creates a Global over h using backend b.
func New(h *hub.Hub, b hal.Backend, opts ...Option) *Global {
	g := &Global{
		hub:     h,
		backend: b,
		shaders: cache.New[string, []uint32](0, cache.StringHasher),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShaderCacheStats reports WGSL compile cache counters. It returns the
// zero Stats when the cache is disabled.
func (g *Global) ShaderCacheStats() cache.Stats {
	if g.shaders == nil {
		return cache.Stats{}
	}
	return g.shaders.Stats()
}

// Hub returns the hub the Global registers objects in.
func (g *Global) Hub() *hub.Hub { return g.hub }

// Backend returns the HAL backend.
func (g *Global) Backend() hal.Backend { return g.backend }

func logger() *slog.Logger { return hub.Logger() }

// register stores v and returns its handle. If the registry is full the
// backend object is released through destroy, so a failed create leaves
// nothing behind.
func register[T any, M id.Marker](r *registry.Registry[T, M], v T, destroy func()) (id.ID[M], error) {
	h, err := r.RegisterLocal(v)
	if err != nil {
		destroy()
		return id.ID[M]{}, fmt.Errorf("global: register %s: %w", r.Kind().TypeName(), err)
	}
	return h, nil
}

// releaseOwned runs destroy on every payload in r owned by device, outside
// the registry lock, and returns how many it visited. Payloads stay
// registered.
func releaseOwned[T any, M id.Marker](r *registry.Registry[T, M], device id.DeviceID, owner func(T) id.DeviceID, destroy func(T)) int {
	var victims []T
	r.Read(func(s *registry.Storage[T, M]) {
		s.ForEach(func(_ id.ID[M], v T) bool {
			if owner(v) == device {
				victims = append(victims, v)
			}
			return true
		})
	})
	for _, v := range victims {
		destroy(v)
	}
	return len(victims)
}

// owned counts live payloads for which belongs returns true.
func owned[T any, M id.Marker](r *registry.Registry[T, M], belongs func(T) bool) int {
	n := 0
	r.Read(func(s *registry.Storage[T, M]) {
		s.ForEach(func(_ id.ID[M], v T) bool {
			if belongs(v) {
				n++
			}
			return true
		})
	})
	return n
}
