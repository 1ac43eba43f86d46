package global

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/resource"
)

// CreateInstance creates a backend instance. A nil desc enables the
// primary backends.
func (g *Global) CreateInstance(desc *hal.InstanceDescriptor) (id.InstanceID, error) {
	if desc == nil {
		desc = &hal.InstanceDescriptor{Backends: gputypes.BackendsPrimary}
	}
	raw, err := g.backend.CreateInstance(desc)
	if err != nil {
		return id.InstanceID{}, fmt.Errorf("global: create instance: %w", err)
	}

	h, err := register(g.hub.Instances, &resource.Instance{Raw: raw, Backend: g.backend.Variant()}, raw.Destroy)
	if err != nil {
		return id.InstanceID{}, err
	}
	logger().Info("global: instance created", "id", h.String(), "backend", g.backend.Variant().String())
	return h, nil
}

// InstanceDrop destroys an instance. Surfaces and adapters created from it
// should be dropped first.
func (g *Global) InstanceDrop(h id.InstanceID) {
	fromInstance := func(v id.InstanceID) bool { return v == h }
	adapters := owned(g.hub.Adapters, func(a *resource.Adapter) bool { return fromInstance(a.Instance) })
	surfaces := owned(g.hub.Surfaces, func(s *resource.Surface) bool { return fromInstance(s.Instance) })
	if adapters+surfaces > 0 {
		logger().Warn("global: instance dropped with live children",
			"id", h.String(), "adapters", adapters, "surfaces", surfaces)
	}

	inst := g.hub.Instances.Unregister(h)
	inst.Raw.Destroy()
	logger().Info("global: instance dropped", "id", h.String())
}

// InstanceCreateSurface creates a presentation surface for a native window.
func (g *Global) InstanceCreateSurface(h id.InstanceID, displayHandle, windowHandle uintptr) (id.SurfaceID, error) {
	inst := g.hub.Instances.Get(h)
	raw, err := inst.Raw.CreateSurface(displayHandle, windowHandle)
	if err != nil {
		return id.SurfaceID{}, fmt.Errorf("global: create surface: %w", err)
	}
	return register(g.hub.Surfaces, &resource.Surface{Raw: raw, Instance: h}, raw.Destroy)
}

// SurfaceDrop destroys a surface.
func (g *Global) SurfaceDrop(h id.SurfaceID) {
	s := g.hub.Surfaces.Unregister(h)
	s.Raw.Destroy()
}

// EnumerateAdapters registers every adapter the instance exposes. Either
// all adapters are registered or, on error, none are.
func (g *Global) EnumerateAdapters(h id.InstanceID) ([]id.AdapterID, error) {
	inst := g.hub.Instances.Get(h)
	exposed := inst.Raw.EnumerateAdapters(nil)
	if len(exposed) == 0 {
		return nil, ErrNoAdapters
	}

	ids := make([]id.AdapterID, 0, len(exposed))
	for i, e := range exposed {
		aid, err := register(g.hub.Adapters, newAdapter(h, e), e.Adapter.Destroy)
		if err != nil {
			for _, rest := range exposed[i+1:] {
				rest.Adapter.Destroy()
			}
			for _, done := range ids {
				g.AdapterDrop(done)
			}
			return nil, err
		}
		ids = append(ids, aid)
	}
	logger().Debug("global: adapters enumerated", "instance", h.String(), "count", len(ids))
	return ids, nil
}

// RequestAdapter registers the single adapter that best matches opts and
// releases the others. A nil opts prefers any GPU over a CPU adapter.
func (g *Global) RequestAdapter(h id.InstanceID, opts *gputypes.RequestAdapterOptions) (id.AdapterID, error) {
	inst := g.hub.Instances.Get(h)
	exposed := inst.Raw.EnumerateAdapters(nil)
	if len(exposed) == 0 {
		return id.AdapterID{}, ErrNoAdapters
	}

	pick, ok := pickAdapter(exposed, opts)
	for i, e := range exposed {
		if i != pick || !ok {
			e.Adapter.Destroy()
		}
	}
	if !ok {
		return id.AdapterID{}, fmt.Errorf("%w: no fallback adapter", ErrNoAdapters)
	}

	chosen := exposed[pick]
	aid, err := register(g.hub.Adapters, newAdapter(h, chosen), chosen.Adapter.Destroy)
	if err != nil {
		return id.AdapterID{}, err
	}
	logger().Info("global: adapter selected", "id", aid.String(), "name", chosen.Info.Name,
		"type", chosen.Info.DeviceType.String())
	return aid, nil
}

func newAdapter(instance id.InstanceID, e hal.ExposedAdapter) *resource.Adapter {
	return &resource.Adapter{
		Raw:          e.Adapter,
		Instance:     instance,
		Info:         e.Info,
		Features:     e.Features,
		Capabilities: e.Capabilities,
	}
}

// pickAdapter returns the index of the adapter to use. Power preference is
// a hint: an exact match wins, then any GPU, then a CPU adapter.
// ForceFallbackAdapter accepts only CPU adapters.
func pickAdapter(exposed []hal.ExposedAdapter, opts *gputypes.RequestAdapterOptions) (int, bool) {
	if opts == nil {
		opts = &gputypes.RequestAdapterOptions{}
	}

	gpu, cpu := -1, -1
	for i, e := range exposed {
		if e.Info.DeviceType == gputypes.DeviceTypeCPU {
			if cpu < 0 {
				cpu = i
			}
			continue
		}
		if opts.ForceFallbackAdapter {
			continue
		}
		if gpu < 0 {
			gpu = i
		}
		if matchesPowerPreference(e.Info.DeviceType, opts.PowerPreference) {
			return i, true
		}
	}

	switch {
	case opts.ForceFallbackAdapter:
		return cpu, cpu >= 0
	case gpu >= 0:
		return gpu, true
	case cpu >= 0:
		return cpu, true
	}
	return 0, false
}

func matchesPowerPreference(deviceType gputypes.DeviceType, preference gputypes.PowerPreference) bool {
	switch preference {
	case gputypes.PowerPreferenceLowPower:
		return deviceType == gputypes.DeviceTypeIntegratedGPU
	case gputypes.PowerPreferenceHighPerformance:
		return deviceType == gputypes.DeviceTypeDiscreteGPU
	default:
		return true
	}
}
