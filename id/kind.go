package id

// Kind enumerates the resource kinds tracked by the hub.
type Kind uint8

const (
	KindInstance Kind = iota
	KindSurface
	KindAdapter
	KindDevice
	KindPipelineLayout
	KindBindGroupLayout
	KindBindGroup
	KindShaderModule
	KindCommandBuffer
	KindRenderPipeline
	KindComputePipeline
	KindRenderPass
	KindComputePass
	KindBuffer
	KindTexture
	KindTextureView
	KindSampler

	kindCount
)

// KindCount is the number of resource kinds.
const KindCount = int(kindCount)

var kindNames = [kindCount]struct{ field, typ string }{
	KindInstance:        {"instances", "Instance"},
	KindSurface:         {"surfaces", "Surface"},
	KindAdapter:         {"adapters", "Adapter"},
	KindDevice:          {"devices", "Device"},
	KindPipelineLayout:  {"pipeline_layouts", "PipelineLayout"},
	KindBindGroupLayout: {"bind_group_layouts", "BindGroupLayout"},
	KindBindGroup:       {"bind_groups", "BindGroup"},
	KindShaderModule:    {"shader_modules", "ShaderModule"},
	KindCommandBuffer:   {"command_buffers", "CommandBuffer"},
	KindRenderPipeline:  {"render_pipelines", "RenderPipeline"},
	KindComputePipeline: {"compute_pipelines", "ComputePipeline"},
	KindRenderPass:      {"render_passes", "RenderPass"},
	KindComputePass:     {"compute_passes", "ComputePass"},
	KindBuffer:          {"buffers", "Buffer"},
	KindTexture:         {"textures", "Texture"},
	KindTextureView:     {"texture_views", "TextureView"},
	KindSampler:         {"samplers", "Sampler"},
}

// String returns the registry name of the kind, e.g. "texture_views".
func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k].field
}

// TypeName returns the singular type name, e.g. "TextureView".
func (k Kind) TypeName() string {
	if k >= kindCount {
		return "Unknown"
	}
	return kindNames[k].typ
}

// Kinds returns every kind in hub order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := range kindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// Marker types, one per kind.

type (
	InstanceMarker        struct{}
	SurfaceMarker         struct{}
	AdapterMarker         struct{}
	DeviceMarker          struct{}
	PipelineLayoutMarker  struct{}
	BindGroupLayoutMarker struct{}
	BindGroupMarker       struct{}
	ShaderModuleMarker    struct{}
	CommandBufferMarker   struct{}
	RenderPipelineMarker  struct{}
	ComputePipelineMarker struct{}
	RenderPassMarker      struct{}
	ComputePassMarker     struct{}
	BufferMarker          struct{}
	TextureMarker         struct{}
	TextureViewMarker     struct{}
	SamplerMarker         struct{}
)

func (InstanceMarker) Kind() Kind        { return KindInstance }
func (SurfaceMarker) Kind() Kind         { return KindSurface }
func (AdapterMarker) Kind() Kind         { return KindAdapter }
func (DeviceMarker) Kind() Kind          { return KindDevice }
func (PipelineLayoutMarker) Kind() Kind  { return KindPipelineLayout }
func (BindGroupLayoutMarker) Kind() Kind { return KindBindGroupLayout }
func (BindGroupMarker) Kind() Kind       { return KindBindGroup }
func (ShaderModuleMarker) Kind() Kind    { return KindShaderModule }
func (CommandBufferMarker) Kind() Kind   { return KindCommandBuffer }
func (RenderPipelineMarker) Kind() Kind  { return KindRenderPipeline }
func (ComputePipelineMarker) Kind() Kind { return KindComputePipeline }
func (RenderPassMarker) Kind() Kind      { return KindRenderPass }
func (ComputePassMarker) Kind() Kind     { return KindComputePass }
func (BufferMarker) Kind() Kind          { return KindBuffer }
func (TextureMarker) Kind() Kind         { return KindTexture }
func (TextureViewMarker) Kind() Kind     { return KindTextureView }
func (SamplerMarker) Kind() Kind         { return KindSampler }

// Handle aliases.

type (
	InstanceID        = ID[InstanceMarker]
	SurfaceID         = ID[SurfaceMarker]
	AdapterID         = ID[AdapterMarker]
	DeviceID          = ID[DeviceMarker]
	PipelineLayoutID  = ID[PipelineLayoutMarker]
	BindGroupLayoutID = ID[BindGroupLayoutMarker]
	BindGroupID       = ID[BindGroupMarker]
	ShaderModuleID    = ID[ShaderModuleMarker]
	CommandBufferID   = ID[CommandBufferMarker]
	RenderPipelineID  = ID[RenderPipelineMarker]
	ComputePipelineID = ID[ComputePipelineMarker]
	RenderPassID      = ID[RenderPassMarker]
	ComputePassID     = ID[ComputePassMarker]
	BufferID          = ID[BufferMarker]
	TextureID         = ID[TextureMarker]
	TextureViewID     = ID[TextureViewMarker]
	SamplerID         = ID[SamplerMarker]
)
