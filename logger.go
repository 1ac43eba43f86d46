package hub

import (
	"log/slog"

	"github.com/gogpu/hub/registry"
)

// SetLogger configures logging for hub and its sub-packages. By default
// nothing is logged. Pass nil to restore the silent default. Safe for
// concurrent use.
//
// Hub, the registries and global share one logger:
//   - [slog.LevelDebug]: handle traffic (register, unregister)
//   - [slog.LevelInfo]: lifecycle (instance created, device opened or dropped)
//   - [slog.LevelWarn]: capacity exhausted, objects left on a dropped parent
//   - [slog.LevelError]: integrity violations, logged just before the panic
//
// Example:
//
//	hub.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) { registry.SetLogger(l) }

// Logger returns the logger set by SetLogger, or a disabled one.
func Logger() *slog.Logger { return registry.Logger() }
