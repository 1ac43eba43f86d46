package backend

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend names, as used by Register and Get.
const (
	Vulkan = "vulkan"
	Metal  = "metal"
	DX12   = "dx12"
	GL     = "gl"
	WebGPU = "webgpu"
	Noop   = "noop"
)

// Name returns the registry name for a HAL backend variant.
// BackendEmpty, the variant reported by the noop backend, maps to Noop.
func Name(v gputypes.Backend) string {
	switch v {
	case gputypes.BackendVulkan:
		return Vulkan
	case gputypes.BackendMetal:
		return Metal
	case gputypes.BackendDX12:
		return DX12
	case gputypes.BackendGL:
		return GL
	case gputypes.BackendBrowserWebGPU:
		return WebGPU
	case gputypes.BackendEmpty:
		return Noop
	default:
		return ""
	}
}
