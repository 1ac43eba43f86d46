package global

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/resource"
)

// ShaderModuleDescriptor describes shader code. Exactly one of WGSL and
// SPIRV is set. WGSL is compiled to SPIR-V before it reaches the backend.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

// DeviceCreateShaderModule compiles and creates a shader module.
func (g *Global) DeviceCreateShaderModule(device id.DeviceID, desc *ShaderModuleDescriptor) (id.ShaderModuleID, error) {
	if desc == nil {
		return id.ShaderModuleID{}, fmt.Errorf("%w: shader module", ErrNilDescriptor)
	}
	source := hal.ShaderSource{WGSL: desc.WGSL, SPIRV: desc.SPIRV}
	switch {
	case desc.WGSL != "" && desc.SPIRV != nil:
		return id.ShaderModuleID{}, fmt.Errorf("global: shader module %q: both WGSL and SPIR-V given", desc.Label)
	case desc.WGSL != "":
		words, err := g.compile(desc.WGSL)
		if err != nil {
			return id.ShaderModuleID{}, fmt.Errorf("global: shader module %q: %w", desc.Label, err)
		}
		source.SPIRV = words
	case len(desc.SPIRV) == 0:
		return id.ShaderModuleID{}, fmt.Errorf("global: shader module %q: no source", desc.Label)
	}

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: desc.Label, Source: source})
	if err != nil {
		return id.ShaderModuleID{}, fmt.Errorf("global: create shader module %q: %w", desc.Label, err)
	}
	return register(g.hub.ShaderModules, &resource.ShaderModule{
		Raw:    raw,
		Device: device,
		Label:  desc.Label,
		Words:  len(source.SPIRV),
	}, func() { dev.Raw.DestroyShaderModule(raw) })
}

// compile returns the SPIR-V for src, from the cache when possible.
// Failed compiles are not cached.
func (g *Global) compile(src string) ([]uint32, error) {
	if g.shaders == nil {
		return compileWGSL(src)
	}
	if words, ok := g.shaders.Get(src); ok {
		return words, nil
	}
	words, err := compileWGSL(src)
	if err != nil {
		return nil, err
	}
	g.shaders.Set(src, words)
	logger().Debug("global: shader compiled", "words", len(words))
	return words, nil
}

// compileWGSL compiles WGSL to SPIR-V words.
func compileWGSL(src string) ([]uint32, error) {
	code, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// ShaderModuleDrop destroys a shader module.
func (g *Global) ShaderModuleDrop(h id.ShaderModuleID) {
	m := g.hub.ShaderModules.Unregister(h)
	g.release(m.Device, func(d hal.Device) { d.DestroyShaderModule(m.Raw) })
}

// DeviceCreateBindGroupLayout creates a bind group layout.
func (g *Global) DeviceCreateBindGroupLayout(device id.DeviceID, desc *hal.BindGroupLayoutDescriptor) (id.BindGroupLayoutID, error) {
	if desc == nil {
		return id.BindGroupLayoutID{}, fmt.Errorf("%w: bind group layout", ErrNilDescriptor)
	}
	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateBindGroupLayout(desc)
	if err != nil {
		return id.BindGroupLayoutID{}, fmt.Errorf("global: create bind group layout %q: %w", desc.Label, err)
	}
	return register(g.hub.BindGroupLayouts, &resource.BindGroupLayout{
		Raw:     raw,
		Device:  device,
		Label:   desc.Label,
		Entries: desc.Entries,
	}, func() { dev.Raw.DestroyBindGroupLayout(raw) })
}

// BindGroupLayoutDrop destroys a bind group layout.
func (g *Global) BindGroupLayoutDrop(h id.BindGroupLayoutID) {
	l := g.hub.BindGroupLayouts.Unregister(h)
	g.release(l.Device, func(d hal.Device) { d.DestroyBindGroupLayout(l.Raw) })
}

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline.
type PipelineLayoutDescriptor struct {
	Label              string
	BindGroupLayouts   []id.BindGroupLayoutID
	PushConstantRanges []hal.PushConstantRange
}

// DeviceCreatePipelineLayout creates a pipeline layout.
func (g *Global) DeviceCreatePipelineLayout(device id.DeviceID, desc *PipelineLayoutDescriptor) (id.PipelineLayoutID, error) {
	if desc == nil {
		return id.PipelineLayoutID{}, fmt.Errorf("%w: pipeline layout", ErrNilDescriptor)
	}
	layouts := make([]hal.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, h := range desc.BindGroupLayouts {
		layouts[i] = g.hub.BindGroupLayouts.Get(h).Raw
	}

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:              desc.Label,
		BindGroupLayouts:   layouts,
		PushConstantRanges: desc.PushConstantRanges,
	})
	if err != nil {
		return id.PipelineLayoutID{}, fmt.Errorf("global: create pipeline layout %q: %w", desc.Label, err)
	}
	return register(g.hub.PipelineLayouts, &resource.PipelineLayout{
		Raw:              raw,
		Device:           device,
		Label:            desc.Label,
		BindGroupLayouts: append([]id.BindGroupLayoutID(nil), desc.BindGroupLayouts...),
	}, func() { dev.Raw.DestroyPipelineLayout(raw) })
}

// PipelineLayoutDrop destroys a pipeline layout.
func (g *Global) PipelineLayoutDrop(h id.PipelineLayoutID) {
	l := g.hub.PipelineLayouts.Unregister(h)
	g.release(l.Device, func(d hal.Device) { d.DestroyPipelineLayout(l.Raw) })
}

// BindGroupEntry binds one resource. Exactly one of Buffer, Sampler and
// TextureView is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      id.BufferID
	Offset      uint64
	Size        uint64 // 0 binds the rest of the buffer
	Sampler     id.SamplerID
	TextureView id.TextureViewID
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  id.BindGroupLayoutID
	Entries []BindGroupEntry
}

// DeviceCreateBindGroup creates a bind group.
func (g *Global) DeviceCreateBindGroup(device id.DeviceID, desc *BindGroupDescriptor) (id.BindGroupID, error) {
	if desc == nil {
		return id.BindGroupID{}, fmt.Errorf("%w: bind group", ErrNilDescriptor)
	}
	layout := g.hub.BindGroupLayouts.Get(desc.Layout)

	entries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		res, err := g.bindingResource(e)
		if err != nil {
			return id.BindGroupID{}, fmt.Errorf("global: bind group %q entry %d: %w", desc.Label, i, err)
		}
		entries[i] = gputypes.BindGroupEntry{Binding: e.Binding, Resource: res}
	}

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.Raw,
		Entries: entries,
	})
	if err != nil {
		return id.BindGroupID{}, fmt.Errorf("global: create bind group %q: %w", desc.Label, err)
	}
	return register(g.hub.BindGroups, &resource.BindGroup{
		Raw:    raw,
		Device: device,
		Layout: desc.Layout,
		Label:  desc.Label,
	}, func() { dev.Raw.DestroyBindGroup(raw) })
}

func (g *Global) bindingResource(e BindGroupEntry) (gputypes.BindingResource, error) {
	set := 0
	for _, zero := range []bool{e.Buffer.IsZero(), e.Sampler.IsZero(), e.TextureView.IsZero()} {
		if !zero {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("want exactly one resource, have %d", set)
	}

	switch {
	case !e.Buffer.IsZero():
		buf := g.hub.Buffers.Get(e.Buffer)
		if e.Offset+e.Size > buf.Size {
			return nil, fmt.Errorf("range [%d, %d) overruns %s of size %d", e.Offset, e.Offset+e.Size, e.Buffer, buf.Size)
		}
		return gputypes.BufferBinding{Buffer: buf.Raw.NativeHandle(), Offset: e.Offset, Size: e.Size}, nil
	case !e.Sampler.IsZero():
		return gputypes.SamplerBinding{Sampler: g.hub.Samplers.Get(e.Sampler).Raw.NativeHandle()}, nil
	default:
		return gputypes.TextureViewBinding{TextureView: g.hub.TextureViews.Get(e.TextureView).Raw.NativeHandle()}, nil
	}
}

// BindGroupDrop destroys a bind group.
func (g *Global) BindGroupDrop(h id.BindGroupID) {
	b := g.hub.BindGroups.Unregister(h)
	g.release(b.Device, func(d hal.Device) { d.DestroyBindGroup(b.Raw) })
}
