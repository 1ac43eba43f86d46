package global

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/resource"
)

// DeviceCreateBuffer creates a buffer on the device.
func (g *Global) DeviceCreateBuffer(device id.DeviceID, desc *hal.BufferDescriptor) (id.BufferID, error) {
	if desc == nil {
		return id.BufferID{}, fmt.Errorf("%w: buffer", ErrNilDescriptor)
	}
	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateBuffer(desc)
	if err != nil {
		return id.BufferID{}, fmt.Errorf("global: create buffer %q: %w", desc.Label, err)
	}
	return register(g.hub.Buffers, &resource.Buffer{
		Raw:    raw,
		Device: device,
		Label:  desc.Label,
		Size:   desc.Size,
		Usage:  desc.Usage,
	}, func() { dev.Raw.DestroyBuffer(raw) })
}

// BufferDrop destroys a buffer.
func (g *Global) BufferDrop(h id.BufferID) {
	buf := g.hub.Buffers.Unregister(h)
	g.release(buf.Device, func(d hal.Device) { d.DestroyBuffer(buf.Raw) })
}

// DeviceCreateTexture creates a texture on the device. Zero mip level and
// sample counts default to 1.
func (g *Global) DeviceCreateTexture(device id.DeviceID, desc *hal.TextureDescriptor) (id.TextureID, error) {
	if desc == nil {
		return id.TextureID{}, fmt.Errorf("%w: texture", ErrNilDescriptor)
	}
	d := *desc
	d.MipLevelCount = max(d.MipLevelCount, 1)
	d.SampleCount = max(d.SampleCount, 1)

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateTexture(&d)
	if err != nil {
		return id.TextureID{}, fmt.Errorf("global: create texture %q: %w", d.Label, err)
	}
	return register(g.hub.Textures, &resource.Texture{
		Raw:           raw,
		Device:        device,
		Label:         d.Label,
		Size:          d.Size,
		MipLevelCount: d.MipLevelCount,
		SampleCount:   d.SampleCount,
		Dimension:     d.Dimension,
		Format:        d.Format,
		Usage:         d.Usage,
	}, func() { dev.Raw.DestroyTexture(raw) })
}

// TextureDrop destroys a texture. Views of it should be dropped first.
func (g *Global) TextureDrop(h id.TextureID) {
	tex := g.hub.Textures.Unregister(h)
	g.release(tex.Device, func(d hal.Device) { d.DestroyTexture(tex.Raw) })
}

// TextureCreateView creates a view of a texture. A nil desc views the
// whole texture in its own format.
func (g *Global) TextureCreateView(texture id.TextureID, desc *hal.TextureViewDescriptor) (id.TextureViewID, error) {
	tex := g.hub.Textures.Get(texture)
	d := hal.TextureViewDescriptor{}
	if desc != nil {
		d = *desc
	}
	if d.Format == gputypes.TextureFormatUndefined {
		d.Format = tex.Format
	}

	dev := g.hub.Devices.Get(tex.Device)
	raw, err := dev.Raw.CreateTextureView(tex.Raw, &d)
	if err != nil {
		return id.TextureViewID{}, fmt.Errorf("global: create view of %s: %w", texture, err)
	}
	return register(g.hub.TextureViews, &resource.TextureView{
		Raw:       raw,
		Device:    tex.Device,
		Texture:   texture,
		Label:     d.Label,
		Format:    d.Format,
		Dimension: d.Dimension,
	}, func() { dev.Raw.DestroyTextureView(raw) })
}

// TextureViewDrop destroys a texture view.
func (g *Global) TextureViewDrop(h id.TextureViewID) {
	view := g.hub.TextureViews.Unregister(h)
	g.release(view.Device, func(d hal.Device) { d.DestroyTextureView(view.Raw) })
}

// DeviceCreateSampler creates a sampler. A nil desc uses backend defaults.
func (g *Global) DeviceCreateSampler(device id.DeviceID, desc *hal.SamplerDescriptor) (id.SamplerID, error) {
	if desc == nil {
		desc = &hal.SamplerDescriptor{}
	}
	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateSampler(desc)
	if err != nil {
		return id.SamplerID{}, fmt.Errorf("global: create sampler %q: %w", desc.Label, err)
	}
	return register(g.hub.Samplers, &resource.Sampler{Raw: raw, Device: device, Label: desc.Label},
		func() { dev.Raw.DestroySampler(raw) })
}

// SamplerDrop destroys a sampler.
func (g *Global) SamplerDrop(h id.SamplerID) {
	s := g.hub.Samplers.Unregister(h)
	g.release(s.Device, func(d hal.Device) { d.DestroySampler(s.Raw) })
}
