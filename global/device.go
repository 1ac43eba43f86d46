package global

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
	"github.com/gogpu/hub/resource"
)

// DeviceDescriptor describes a device request.
type DeviceDescriptor struct {
	Label            string
	RequiredFeatures gputypes.Features
	// RequiredLimits defaults to gputypes.DefaultLimits when nil.
	RequiredLimits *gputypes.Limits
	// SurfaceFormat is reported through the device provider. Leave it
	// undefined for a headless device.
	SurfaceFormat gputypes.TextureFormat
}

// AdapterInfo returns the adapter's metadata.
func (g *Global) AdapterInfo(h id.AdapterID) gputypes.AdapterInfo {
	return g.hub.Adapters.Get(h).Info
}

// AdapterFeatures returns the optional features the adapter supports.
func (g *Global) AdapterFeatures(h id.AdapterID) gputypes.Features {
	return g.hub.Adapters.Get(h).Features
}

// AdapterRequestDevice opens a logical device on the adapter.
func (g *Global) AdapterRequestDevice(h id.AdapterID, desc *DeviceDescriptor) (id.DeviceID, error) {
	if desc == nil {
		desc = &DeviceDescriptor{}
	}
	adapter := g.hub.Adapters.Get(h)

	if !adapter.Features.ContainsAll(desc.RequiredFeatures) {
		return id.DeviceID{}, fmt.Errorf("global: request device %q: adapter lacks features %#x",
			desc.Label, uint64(desc.RequiredFeatures&^adapter.Features))
	}
	limits := gputypes.DefaultLimits()
	if desc.RequiredLimits != nil {
		limits = *desc.RequiredLimits
	}

	open, err := adapter.Raw.Open(desc.RequiredFeatures, limits)
	if err != nil {
		return id.DeviceID{}, fmt.Errorf("global: request device %q: %w", desc.Label, err)
	}

	dev := &resource.Device{
		Raw:        open.Device,
		Queue:      open.Queue,
		Adapter:    h,
		RawAdapter: adapter.Raw,
		Info:       adapter.Info,
		Features:   desc.RequiredFeatures,
		Limits:     limits,
		Format:     desc.SurfaceFormat,
	}
	did, err := register(g.hub.Devices, dev, open.Device.Destroy)
	if err != nil {
		return id.DeviceID{}, err
	}
	logger().Info("global: device opened", "id", did.String(), "adapter", adapter.Info.Name, "label", desc.Label)
	return did, nil
}

// AdapterDrop releases an adapter. Devices opened from it stay valid.
func (g *Global) AdapterDrop(h id.AdapterID) {
	a := g.hub.Adapters.Unregister(h)
	a.Raw.Destroy()
}

// DeviceProvider returns the device as a gpucontext.DeviceProvider.
func (g *Global) DeviceProvider(h id.DeviceID) gpucontext.DeviceProvider {
	return g.hub.Devices.Get(h).Provider()
}

// DeviceLimits returns the limits the device was opened with.
func (g *Global) DeviceLimits(h id.DeviceID) gputypes.Limits {
	return g.hub.Devices.Get(h).Limits
}

// DeviceDrop waits for outstanding GPU work and destroys the device. The
// device is unregistered even if the wait fails; the error is returned.
//
// Objects still registered on the device have their backend objects
// destroyed before the device itself. Their handles stay live until the
// caller drops them; those drops then only unregister.
func (g *Global) DeviceDrop(h id.DeviceID) error {
	dev := g.hub.Devices.Unregister(h)
	err := dev.Raw.WaitIdle()
	g.inflight.flush(h)
	if n := g.releaseChildren(h, dev.Raw); n > 0 {
		logger().Warn("global: device dropped with live resources", "id", h.String(), "resources", n)
	}
	dev.Raw.Destroy()
	logger().Info("global: device dropped", "id", h.String())
	if err != nil {
		return fmt.Errorf("global: drop device %s: %w", h, err)
	}
	return nil
}

// deviceHAL returns the backend device behind h, or nil once h is dropped.
func (g *Global) deviceHAL(h id.DeviceID) hal.Device {
	var raw hal.Device
	g.hub.Devices.Read(func(s *registry.Storage[*resource.Device, id.DeviceMarker]) {
		if s.Contains(h) {
			raw = s.Get(h).Raw
		}
	})
	return raw
}

// release runs destroy with the backend device of a dropped child. A child
// that outlived its device was already destroyed by DeviceDrop, so release
// does nothing then.
func (g *Global) release(device id.DeviceID, destroy func(hal.Device)) {
	raw := g.deviceHAL(device)
	if raw == nil {
		logger().Debug("global: device already dropped", "device", device.String())
		return
	}
	destroy(raw)
}

// releaseChildren destroys the backend objects of everything still
// registered on device h, dependents before their dependencies, and
// returns how many it destroyed.
func (g *Global) releaseChildren(h id.DeviceID, d hal.Device) int {
	return releaseOwned(g.hub.CommandBuffers, h, func(v *resource.CommandBuffer) id.DeviceID { return v.Device },
		func(v *resource.CommandBuffer) { destroyCommandBuffer(d, v) }) +
		releaseOwned(g.hub.BindGroups, h, func(v *resource.BindGroup) id.DeviceID { return v.Device },
			func(v *resource.BindGroup) { d.DestroyBindGroup(v.Raw) }) +
		releaseOwned(g.hub.RenderPipelines, h, func(v *resource.RenderPipeline) id.DeviceID { return v.Device },
			func(v *resource.RenderPipeline) { d.DestroyRenderPipeline(v.Raw) }) +
		releaseOwned(g.hub.ComputePipelines, h, func(v *resource.ComputePipeline) id.DeviceID { return v.Device },
			func(v *resource.ComputePipeline) { d.DestroyComputePipeline(v.Raw) }) +
		releaseOwned(g.hub.PipelineLayouts, h, func(v *resource.PipelineLayout) id.DeviceID { return v.Device },
			func(v *resource.PipelineLayout) { d.DestroyPipelineLayout(v.Raw) }) +
		releaseOwned(g.hub.BindGroupLayouts, h, func(v *resource.BindGroupLayout) id.DeviceID { return v.Device },
			func(v *resource.BindGroupLayout) { d.DestroyBindGroupLayout(v.Raw) }) +
		releaseOwned(g.hub.ShaderModules, h, func(v *resource.ShaderModule) id.DeviceID { return v.Device },
			func(v *resource.ShaderModule) { d.DestroyShaderModule(v.Raw) }) +
		releaseOwned(g.hub.TextureViews, h, func(v *resource.TextureView) id.DeviceID { return v.Device },
			func(v *resource.TextureView) { d.DestroyTextureView(v.Raw) }) +
		releaseOwned(g.hub.Textures, h, func(v *resource.Texture) id.DeviceID { return v.Device },
			func(v *resource.Texture) { d.DestroyTexture(v.Raw) }) +
		releaseOwned(g.hub.Samplers, h, func(v *resource.Sampler) id.DeviceID { return v.Device },
			func(v *resource.Sampler) { d.DestroySampler(v.Raw) }) +
		releaseOwned(g.hub.Buffers, h, func(v *resource.Buffer) id.DeviceID { return v.Device },
			func(v *resource.Buffer) { d.DestroyBuffer(v.Raw) })
}

// DevicePoll releases command buffers whose submissions the GPU has
// completed and returns the number of submissions released.
func (g *Global) DevicePoll(h id.DeviceID) int {
	dev := g.hub.Devices.Get(h)
	return g.inflight.triage(h, dev.Queue.PollCompleted())
}

// QueueWriteBuffer writes data into buffer at offset through the device queue.
func (g *Global) QueueWriteBuffer(device id.DeviceID, buffer id.BufferID, offset uint64, data []byte) error {
	dev := g.hub.Devices.Get(device)
	buf := g.hub.Buffers.Get(buffer)
	if offset > buf.Size || uint64(len(data)) > buf.Size-offset {
		return fmt.Errorf("global: write buffer %s: %d bytes at offset %d overrun size %d",
			buffer, len(data), offset, buf.Size)
	}
	if err := dev.Queue.WriteBuffer(buf.Raw, offset, data); err != nil {
		return fmt.Errorf("global: write buffer %s: %w", buffer, err)
	}
	return nil
}
