package backend

import (
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Factory creates a HAL backend.
type Factory func() hal.Backend

// backends holds registered factories.
// Priority order for backend selection (first available wins): native
// GPU APIs first, GL as the portable fallback, noop last.
var backends = gpucontext.NewRegistry[hal.Backend](
	gpucontext.WithPriority(Vulkan, Metal, DX12, GL, WebGPU, Noop),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	backends.Register(name, factory)
}

// RegisterHAL registers an already constructed HAL backend under the name
// of its variant.
func RegisterHAL(b hal.Backend) {
	Register(Name(b.Variant()), func() hal.Backend { return b })
}

// Discover registers every backend the HAL itself knows about, that is
// every backend package imported for its side effects. It returns the
// names it registered.
func Discover() []string {
	var names []string
	for _, v := range hal.AvailableBackends() {
		b, ok := hal.GetBackend(v)
		if !ok || Name(v) == "" {
			continue
		}
		RegisterHAL(b)
		names = append(names, Name(v))
	}
	slices.Sort(names)
	return names
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	names := backends.Available()
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) hal.Backend {
	return backends.Get(name)
}

// Default returns the best available backend based on priority.
// Priority order: vulkan > metal > dx12 > gl > webgpu > noop.
// Returns nil if no backends are registered.
func Default() hal.Backend {
	return backends.Best()
}

// DefaultName returns the name Default would pick, or "" if none.
func DefaultName() string {
	return backends.BestName()
}

// Open returns the named backend, or the default one when name is empty.
func Open(name string) (hal.Backend, error) {
	var b hal.Backend
	if name == "" {
		b = Default()
	} else {
		b = Get(name)
	}
	if b == nil {
		if name == "" {
			return nil, ErrBackendNotAvailable
		}
		return nil, fmt.Errorf("%w: %q (have %v)", ErrBackendNotAvailable, name, Available())
	}
	return b, nil
}
