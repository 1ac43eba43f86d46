package hub

import (
	"log/slog"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
)

// Option configures a Hub during creation.
// Use functional options to customize Hub behavior.
//
// Example:
//
//	// Unbounded registries, silent logging
//	h := hub.New()
//
//	// Bounded registries with a larger initial reservation
//	h := hub.New(hub.WithMaxHandles(1<<16), hub.WithCapacity(1024))
type Option func(*options)

// options holds optional configuration for Hub creation.
type options struct {
	maxHandles int
	capacity   int
	kindMax    map[id.Kind]int
	logger     *slog.Logger
}

// defaultOptions returns the default hub options.
func defaultOptions() options {
	return options{
		maxHandles: 0,  // bounded only by the index space
		capacity:   -1, // registry default
	}
}

// WithMaxHandles bounds every registry to n simultaneously live handles.
// Creating a handle beyond the bound fails with
// registry.ErrCapacityExhausted. Zero means unbounded.
func WithMaxHandles(n int) Option {
	return func(o *options) {
		o.maxHandles = n
	}
}

// WithKindMaxHandles bounds a single registry, overriding WithMaxHandles
// for that kind.
//
// Example:
//
//	// At most 16 devices, everything else unbounded
//	h := hub.New(hub.WithKindMaxHandles(id.KindDevice, 16))
func WithKindMaxHandles(kind id.Kind, n int) Option {
	return func(o *options) {
		if o.kindMax == nil {
			o.kindMax = make(map[id.Kind]int)
		}
		o.kindMax[kind] = n
	}
}

// WithCapacity reserves n storage slots in every registry up front.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger installs l as the package logger when the hub is created.
// It is shorthand for calling SetLogger before New; the logger is
// process-wide, not per hub.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// registryOptions translates hub options into options for the registry of
// the given kind.
func (o *options) registryOptions(kind id.Kind) []registry.Option {
	limit := o.maxHandles
	if n, ok := o.kindMax[kind]; ok {
		limit = n
	}
	opts := []registry.Option{registry.WithMaxHandles(limit)}
	if o.capacity >= 0 {
		opts = append(opts, registry.WithCapacity(o.capacity))
	}
	return opts
}
