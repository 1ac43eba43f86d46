// Package resource defines the payloads stored in the hub.
//
// Each payload wraps the backend object created through gogpu/wgpu/hal
// together with the descriptor fields later operations need and the
// handles of the objects it depends on. Cross-object references live here,
// in the payloads, never in the registries themselves.
package resource

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
)

// Instance is a backend entry point.
type Instance struct {
	Raw     hal.Instance
	Backend gputypes.Backend
}

// Surface is a presentation target created from an instance.
type Surface struct {
	Raw      hal.Surface
	Instance id.InstanceID
}

// Adapter is a physical GPU exposed by an instance.
type Adapter struct {
	Raw          hal.Adapter
	Instance     id.InstanceID
	Info         gputypes.AdapterInfo
	Features     gputypes.Features
	Capabilities hal.Capabilities
}

// Buffer is a linear GPU allocation.
type Buffer struct {
	Raw    hal.Buffer
	Device id.DeviceID
	Label  string
	Size   uint64
	Usage  gputypes.BufferUsage
}

// Texture is an image allocation.
type Texture struct {
	Raw           hal.Texture
	Device        id.DeviceID
	Label         string
	Size          hal.Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
}

// TextureView is a typed window onto a texture.
type TextureView struct {
	Raw       hal.TextureView
	Device    id.DeviceID
	Texture   id.TextureID
	Label     string
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension
}

// Sampler holds texture filtering state.
type Sampler struct {
	Raw    hal.Sampler
	Device id.DeviceID
	Label  string
}

// ShaderModule is compiled shader code.
type ShaderModule struct {
	Raw    hal.ShaderModule
	Device id.DeviceID
	Label  string
	// Words is the SPIR-V size in 32-bit words.
	Words int
}

// BindGroupLayout describes the bindings a bind group provides.
type BindGroupLayout struct {
	Raw     hal.BindGroupLayout
	Device  id.DeviceID
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// PipelineLayout lists the bind group layouts a pipeline uses.
type PipelineLayout struct {
	Raw              hal.PipelineLayout
	Device           id.DeviceID
	Label            string
	BindGroupLayouts []id.BindGroupLayoutID
}

// BindGroup binds concrete resources to a layout.
type BindGroup struct {
	Raw    hal.BindGroup
	Device id.DeviceID
	Layout id.BindGroupLayoutID
	Label  string
}

// RenderPipeline is a complete graphics pipeline.
type RenderPipeline struct {
	Raw    hal.RenderPipeline
	Device id.DeviceID
	Layout id.PipelineLayoutID
	Label  string
}

// ComputePipeline is a compute pipeline.
type ComputePipeline struct {
	Raw    hal.ComputePipeline
	Device id.DeviceID
	Layout id.PipelineLayoutID
	Label  string
}
