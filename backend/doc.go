// Package backend selects the gogpu/wgpu HAL backend that feeds the hub.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The noop backend registers itself on import:
//
//	import _ "github.com/gogpu/hub/backend/noop"
//
// Backends that register with the HAL directly can be pulled in with
// Discover.
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get(backend.Vulkan)
//
// Open combines both and reports ErrBackendNotAvailable instead of
// returning nil.
package backend
