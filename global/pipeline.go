package global

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/resource"
)

// ProgrammableStage names a shader entry point.
type ProgrammableStage struct {
	Module     id.ShaderModuleID
	EntryPoint string
}

// ComputePipelineDescriptor describes a compute pipeline. A zero Layout
// lets the backend derive one.
type ComputePipelineDescriptor struct {
	Label   string
	Layout  id.PipelineLayoutID
	Compute ProgrammableStage
}

// DeviceCreateComputePipeline creates a compute pipeline.
func (g *Global) DeviceCreateComputePipeline(device id.DeviceID, desc *ComputePipelineDescriptor) (id.ComputePipelineID, error) {
	if desc == nil {
		return id.ComputePipelineID{}, fmt.Errorf("%w: compute pipeline", ErrNilDescriptor)
	}
	module := g.hub.ShaderModules.Get(desc.Compute.Module)

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: g.pipelineLayout(desc.Layout),
		Compute: hal.ComputeState{
			Module:     module.Raw,
			EntryPoint: desc.Compute.EntryPoint,
		},
	})
	if err != nil {
		return id.ComputePipelineID{}, fmt.Errorf("global: create compute pipeline %q: %w", desc.Label, err)
	}
	return register(g.hub.ComputePipelines, &resource.ComputePipeline{
		Raw:    raw,
		Device: device,
		Layout: desc.Layout,
		Label:  desc.Label,
	}, func() { dev.Raw.DestroyComputePipeline(raw) })
}

// ComputePipelineDrop destroys a compute pipeline.
func (g *Global) ComputePipelineDrop(h id.ComputePipelineID) {
	p := g.hub.ComputePipelines.Unregister(h)
	g.release(p.Device, func(d hal.Device) { d.DestroyComputePipeline(p.Raw) })
}

// VertexState is the vertex stage of a render pipeline.
type VertexState struct {
	ProgrammableStage
	Buffers []gputypes.VertexBufferLayout
}

// FragmentState is the fragment stage of a render pipeline.
type FragmentState struct {
	ProgrammableStage
	Targets []gputypes.ColorTargetState
}

// RenderPipelineDescriptor describes a render pipeline. A zero Layout
// lets the backend derive one. Fragment is optional.
type RenderPipelineDescriptor struct {
	Label        string
	Layout       id.PipelineLayoutID
	Vertex       VertexState
	Primitive    gputypes.PrimitiveState
	DepthStencil *hal.DepthStencilState
	Multisample  gputypes.MultisampleState
	Fragment     *FragmentState
}

// DeviceCreateRenderPipeline creates a render pipeline.
func (g *Global) DeviceCreateRenderPipeline(device id.DeviceID, desc *RenderPipelineDescriptor) (id.RenderPipelineID, error) {
	if desc == nil {
		return id.RenderPipelineID{}, fmt.Errorf("%w: render pipeline", ErrNilDescriptor)
	}
	hd := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: g.pipelineLayout(desc.Layout),
		Vertex: hal.VertexState{
			Module:     g.hub.ShaderModules.Get(desc.Vertex.Module).Raw,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    desc.Vertex.Buffers,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
	}
	if hd.Multisample.Count == 0 {
		hd.Multisample.Count = 1
	}
	if f := desc.Fragment; f != nil {
		hd.Fragment = &hal.FragmentState{
			Module:     g.hub.ShaderModules.Get(f.Module).Raw,
			EntryPoint: f.EntryPoint,
			Targets:    f.Targets,
		}
	}

	dev := g.hub.Devices.Get(device)
	raw, err := dev.Raw.CreateRenderPipeline(hd)
	if err != nil {
		return id.RenderPipelineID{}, fmt.Errorf("global: create render pipeline %q: %w", desc.Label, err)
	}
	return register(g.hub.RenderPipelines, &resource.RenderPipeline{
		Raw:    raw,
		Device: device,
		Layout: desc.Layout,
		Label:  desc.Label,
	}, func() { dev.Raw.DestroyRenderPipeline(raw) })
}

// RenderPipelineDrop destroys a render pipeline.
func (g *Global) RenderPipelineDrop(h id.RenderPipelineID) {
	p := g.hub.RenderPipelines.Unregister(h)
	g.release(p.Device, func(d hal.Device) { d.DestroyRenderPipeline(p.Raw) })
}

// pipelineLayout resolves h, or returns nil for the zero handle.
func (g *Global) pipelineLayout(h id.PipelineLayoutID) hal.PipelineLayout {
	if h.IsZero() {
		return nil
	}
	return g.hub.PipelineLayouts.Get(h).Raw
}
