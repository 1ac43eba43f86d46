package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fakeBackend is a HAL backend that cannot create anything.
type fakeBackend struct {
	variant gputypes.Backend
}

func (f fakeBackend) Variant() gputypes.Backend { return f.variant }

func (f fakeBackend) CreateInstance(*hal.InstanceDescriptor) (hal.Instance, error) {
	return nil, errors.New("fake backend")
}

func register(t *testing.T, name string, v gputypes.Backend) {
	t.Helper()
	Register(name, func() hal.Backend { return fakeBackend{variant: v} })
	t.Cleanup(func() { Unregister(name) })
}

func TestName(t *testing.T) {
	tests := []struct {
		variant gputypes.Backend
		want    string
	}{
		{gputypes.BackendVulkan, Vulkan},
		{gputypes.BackendMetal, Metal},
		{gputypes.BackendDX12, DX12},
		{gputypes.BackendGL, GL},
		{gputypes.BackendBrowserWebGPU, WebGPU},
		{gputypes.BackendEmpty, Noop},
		{gputypes.Backend(200), ""},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			if got := Name(tt.variant); got != tt.want {
				t.Errorf("Name(%v) = %q, want %q", tt.variant, got, tt.want)
			}
		})
	}
}

func TestRegisterGet(t *testing.T) {
	register(t, GL, gputypes.BackendGL)

	if !IsRegistered(GL) {
		t.Fatal("IsRegistered(gl) = false after Register")
	}
	b := Get(GL)
	if b == nil || b.Variant() != gputypes.BackendGL {
		t.Errorf("Get(gl) = %v", b)
	}
	if Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	if !slices.Contains(Available(), GL) {
		t.Errorf("Available() = %v, want gl listed", Available())
	}
}

func TestUnregister(t *testing.T) {
	Register("temp", func() hal.Backend { return fakeBackend{} })
	Unregister("temp")
	if IsRegistered("temp") {
		t.Error("IsRegistered(temp) = true after Unregister")
	}
}

func TestDefaultPriority(t *testing.T) {
	register(t, GL, gputypes.BackendGL)
	register(t, Metal, gputypes.BackendMetal)

	if got := DefaultName(); got != Metal {
		t.Fatalf("DefaultName() = %q, want metal", got)
	}
	if got := Default().Variant(); got != gputypes.BackendMetal {
		t.Errorf("Default().Variant() = %v, want Metal", got)
	}

	register(t, Vulkan, gputypes.BackendVulkan)
	if got := DefaultName(); got != Vulkan {
		t.Errorf("DefaultName() = %q after registering vulkan, want vulkan", got)
	}
}

func TestOpen(t *testing.T) {
	register(t, DX12, gputypes.BackendDX12)

	b, err := Open(DX12)
	if err != nil {
		t.Fatalf("Open(dx12) error = %v", err)
	}
	if b.Variant() != gputypes.BackendDX12 {
		t.Errorf("Open(dx12).Variant() = %v", b.Variant())
	}

	if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
	}

	b, err = Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if b == nil {
		t.Error("Open(\"\") returned nil backend")
	}
}

func TestRegisterHAL(t *testing.T) {
	RegisterHAL(fakeBackend{variant: gputypes.BackendVulkan})
	t.Cleanup(func() { Unregister(Vulkan) })

	if got := Get(Vulkan); got == nil || got.Variant() != gputypes.BackendVulkan {
		t.Errorf("Get(vulkan) after RegisterHAL = %v", got)
	}
}
