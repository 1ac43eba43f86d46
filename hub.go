package hub

import (
	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
	"github.com/gogpu/hub/resource"
)

// Hub owns one registry per resource kind. Registries are independent:
// operations on different kinds never contend, and the hub itself holds no
// lock.
//
// A Hub is created by the embedder and passed to whatever needs it. There
// is no package-level instance.
type Hub struct {
	Instances        *registry.Registry[*resource.Instance, id.InstanceMarker]
	Surfaces         *registry.Registry[*resource.Surface, id.SurfaceMarker]
	Adapters         *registry.Registry[*resource.Adapter, id.AdapterMarker]
	Devices          *registry.Registry[*resource.Device, id.DeviceMarker]
	PipelineLayouts  *registry.Registry[*resource.PipelineLayout, id.PipelineLayoutMarker]
	BindGroupLayouts *registry.Registry[*resource.BindGroupLayout, id.BindGroupLayoutMarker]
	BindGroups       *registry.Registry[*resource.BindGroup, id.BindGroupMarker]
	ShaderModules    *registry.Registry[*resource.ShaderModule, id.ShaderModuleMarker]
	CommandBuffers   *registry.Registry[*resource.CommandBuffer, id.CommandBufferMarker]
	RenderPipelines  *registry.Registry[*resource.RenderPipeline, id.RenderPipelineMarker]
	ComputePipelines *registry.Registry[*resource.ComputePipeline, id.ComputePipelineMarker]
	RenderPasses     *registry.Registry[*resource.RenderPass, id.RenderPassMarker]
	ComputePasses    *registry.Registry[*resource.ComputePass, id.ComputePassMarker]
	Buffers          *registry.Registry[*resource.Buffer, id.BufferMarker]
	Textures         *registry.Registry[*resource.Texture, id.TextureMarker]
	TextureViews     *registry.Registry[*resource.TextureView, id.TextureViewMarker]
	Samplers         *registry.Registry[*resource.Sampler, id.SamplerMarker]
}

// New creates a hub with every registry empty.
func New(opts ...Option) *Hub {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	h := &Hub{
		Instances:        newRegistry[*resource.Instance, id.InstanceMarker](&o),
		Surfaces:         newRegistry[*resource.Surface, id.SurfaceMarker](&o),
		Adapters:         newRegistry[*resource.Adapter, id.AdapterMarker](&o),
		Devices:          newRegistry[*resource.Device, id.DeviceMarker](&o),
		PipelineLayouts:  newRegistry[*resource.PipelineLayout, id.PipelineLayoutMarker](&o),
		BindGroupLayouts: newRegistry[*resource.BindGroupLayout, id.BindGroupLayoutMarker](&o),
		BindGroups:       newRegistry[*resource.BindGroup, id.BindGroupMarker](&o),
		ShaderModules:    newRegistry[*resource.ShaderModule, id.ShaderModuleMarker](&o),
		CommandBuffers:   newRegistry[*resource.CommandBuffer, id.CommandBufferMarker](&o),
		RenderPipelines:  newRegistry[*resource.RenderPipeline, id.RenderPipelineMarker](&o),
		ComputePipelines: newRegistry[*resource.ComputePipeline, id.ComputePipelineMarker](&o),
		RenderPasses:     newRegistry[*resource.RenderPass, id.RenderPassMarker](&o),
		ComputePasses:    newRegistry[*resource.ComputePass, id.ComputePassMarker](&o),
		Buffers:          newRegistry[*resource.Buffer, id.BufferMarker](&o),
		Textures:         newRegistry[*resource.Texture, id.TextureMarker](&o),
		TextureViews:     newRegistry[*resource.TextureView, id.TextureViewMarker](&o),
		Samplers:         newRegistry[*resource.Sampler, id.SamplerMarker](&o),
	}
	Logger().Debug("hub: created", "kinds", id.KindCount, "max_handles", o.maxHandles)
	return h
}

func newRegistry[T any, M id.Marker](o *options) *registry.Registry[T, M] {
	var m M
	return registry.New[T, M](o.registryOptions(m.Kind())...)
}

// snapshotter is the kind-independent view of a registry.
type snapshotter interface {
	Kind() id.Kind
	Len() int
	Snapshot() registry.Snapshot
}

// registries returns every registry in id.Kinds order.
func (h *Hub) registries() [id.KindCount]snapshotter {
	return [id.KindCount]snapshotter{
		id.KindInstance:        h.Instances,
		id.KindSurface:         h.Surfaces,
		id.KindAdapter:         h.Adapters,
		id.KindDevice:          h.Devices,
		id.KindPipelineLayout:  h.PipelineLayouts,
		id.KindBindGroupLayout: h.BindGroupLayouts,
		id.KindBindGroup:       h.BindGroups,
		id.KindShaderModule:    h.ShaderModules,
		id.KindCommandBuffer:   h.CommandBuffers,
		id.KindRenderPipeline:  h.RenderPipelines,
		id.KindComputePipeline: h.ComputePipelines,
		id.KindRenderPass:      h.RenderPasses,
		id.KindComputePass:     h.ComputePasses,
		id.KindBuffer:          h.Buffers,
		id.KindTexture:         h.Textures,
		id.KindTextureView:     h.TextureViews,
		id.KindSampler:         h.Samplers,
	}
}

// Len returns the number of live objects of the given kind, or 0 for an
// unknown kind.
func (h *Hub) Len(kind id.Kind) int {
	if int(kind) >= id.KindCount {
		return 0
	}
	return h.registries()[kind].Len()
}
