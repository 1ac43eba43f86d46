package global

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/resource"
)

// DeviceCreateCommandEncoder starts recording a command buffer. The
// returned handle names the command buffer through recording, finishing
// and submission. A command buffer is recorded from one goroutine at a
// time.
func (g *Global) DeviceCreateCommandEncoder(device id.DeviceID, label string) (id.CommandBufferID, error) {
	dev := g.hub.Devices.Get(device)
	enc, err := dev.Raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return id.CommandBufferID{}, fmt.Errorf("global: create command encoder %q: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return id.CommandBufferID{}, fmt.Errorf("global: begin encoding %q: %w", label, err)
	}
	return register(g.hub.CommandBuffers, &resource.CommandBuffer{
		Encoder: enc,
		Device:  device,
		Label:   label,
		State:   resource.CommandBufferRecording,
	}, func() {
		enc.DiscardEncoding()
		enc.Destroy()
	})
}

// openPass marks cb as having an open pass and returns its encoder.
func (g *Global) openPass(cb id.CommandBufferID) (hal.CommandEncoder, error) {
	var (
		enc hal.CommandEncoder
		err error
	)
	g.hub.CommandBuffers.Update(cb, func(p **resource.CommandBuffer) {
		c := *p
		switch {
		case c.State != resource.CommandBufferRecording:
			err = ErrEncoderFinished
		case c.PassOpen:
			err = ErrPassOpen
		default:
			c.PassOpen = true
			enc = c.Encoder
		}
	})
	return enc, err
}

// closePass clears the open-pass mark. The command buffer may already have
// been dropped.
func (g *Global) closePass(cb id.CommandBufferID) {
	if !g.hub.CommandBuffers.Contains(cb) {
		return
	}
	g.hub.CommandBuffers.Update(cb, func(p **resource.CommandBuffer) {
		(*p).PassOpen = false
	})
}

// CommandEncoderBeginComputePass opens a compute pass. The command buffer
// accepts no other pass until ComputePassEnd.
func (g *Global) CommandEncoderBeginComputePass(cb id.CommandBufferID, label string) (id.ComputePassID, error) {
	enc, err := g.openPass(cb)
	if err != nil {
		return id.ComputePassID{}, fmt.Errorf("global: begin compute pass on %s: %w", cb, err)
	}
	raw := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	return register(g.hub.ComputePasses, &resource.ComputePass{
		Raw:           raw,
		CommandBuffer: cb,
		Label:         label,
	}, func() {
		raw.End()
		g.closePass(cb)
	})
}

// ComputePassSetPipeline sets the pipeline for subsequent dispatches.
func (g *Global) ComputePassSetPipeline(pass id.ComputePassID, pipeline id.ComputePipelineID) {
	pipe := g.hub.ComputePipelines.Get(pipeline)
	g.hub.ComputePasses.Get(pass).Raw.SetPipeline(pipe.Raw)
	g.hub.ComputePasses.Update(pass, func(p **resource.ComputePass) {
		(*p).Pipeline = pipeline
	})
}

// ComputePassSetBindGroup binds group at index.
func (g *Global) ComputePassSetBindGroup(pass id.ComputePassID, index uint32, group id.BindGroupID, offsets []uint32) {
	bg := g.hub.BindGroups.Get(group)
	g.hub.ComputePasses.Get(pass).Raw.SetBindGroup(index, bg.Raw, offsets)
}

// ComputePassDispatch dispatches x*y*z workgroups.
func (g *Global) ComputePassDispatch(pass id.ComputePassID, x, y, z uint32) error {
	p := g.hub.ComputePasses.Get(pass)
	if p.Pipeline.IsZero() {
		return fmt.Errorf("global: dispatch on %s: %w", pass, ErrNoPipeline)
	}
	p.Raw.Dispatch(x, y, z)
	return nil
}

// ComputePassEnd closes the pass and invalidates its handle.
func (g *Global) ComputePassEnd(pass id.ComputePassID) {
	p := g.hub.ComputePasses.Unregister(pass)
	p.Raw.End()
	g.closePass(p.CommandBuffer)
}

// RenderPassColorAttachment is a color target of a render pass.
type RenderPassColorAttachment struct {
	View          id.TextureViewID
	ResolveTarget id.TextureViewID // optional
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	ClearValue    gputypes.Color
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []RenderPassColorAttachment
}

// CommandEncoderBeginRenderPass opens a render pass. The command buffer
// accepts no other pass until RenderPassEnd.
func (g *Global) CommandEncoderBeginRenderPass(cb id.CommandBufferID, desc *RenderPassDescriptor) (id.RenderPassID, error) {
	if desc == nil {
		return id.RenderPassID{}, fmt.Errorf("%w: render pass", ErrNilDescriptor)
	}
	// Resolve attachments before marking the pass open.
	attachments := make([]hal.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		attachments[i] = hal.RenderPassColorAttachment{
			View:       g.hub.TextureViews.Get(a.View).Raw,
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue,
		}
		if !a.ResolveTarget.IsZero() {
			attachments[i].ResolveTarget = g.hub.TextureViews.Get(a.ResolveTarget).Raw
		}
	}

	enc, err := g.openPass(cb)
	if err != nil {
		return id.RenderPassID{}, fmt.Errorf("global: begin render pass on %s: %w", cb, err)
	}
	raw := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
	return register(g.hub.RenderPasses, &resource.RenderPass{
		Raw:           raw,
		CommandBuffer: cb,
		Label:         desc.Label,
	}, func() {
		raw.End()
		g.closePass(cb)
	})
}

// RenderPassSetPipeline sets the pipeline for subsequent draws.
func (g *Global) RenderPassSetPipeline(pass id.RenderPassID, pipeline id.RenderPipelineID) {
	pipe := g.hub.RenderPipelines.Get(pipeline)
	g.hub.RenderPasses.Get(pass).Raw.SetPipeline(pipe.Raw)
	g.hub.RenderPasses.Update(pass, func(p **resource.RenderPass) {
		(*p).Pipeline = pipeline
	})
}

// RenderPassSetBindGroup binds group at index.
func (g *Global) RenderPassSetBindGroup(pass id.RenderPassID, index uint32, group id.BindGroupID, offsets []uint32) {
	bg := g.hub.BindGroups.Get(group)
	g.hub.RenderPasses.Get(pass).Raw.SetBindGroup(index, bg.Raw, offsets)
}

// RenderPassSetVertexBuffer binds buffer to a vertex slot.
func (g *Global) RenderPassSetVertexBuffer(pass id.RenderPassID, slot uint32, buffer id.BufferID, offset uint64) {
	buf := g.hub.Buffers.Get(buffer)
	g.hub.RenderPasses.Get(pass).Raw.SetVertexBuffer(slot, buf.Raw, offset)
}

// RenderPassDraw records a non-indexed draw.
func (g *Global) RenderPassDraw(pass id.RenderPassID, vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	p := g.hub.RenderPasses.Get(pass)
	if p.Pipeline.IsZero() {
		return fmt.Errorf("global: draw on %s: %w", pass, ErrNoPipeline)
	}
	p.Raw.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// RenderPassEnd closes the pass and invalidates its handle.
func (g *Global) RenderPassEnd(pass id.RenderPassID) {
	p := g.hub.RenderPasses.Unregister(pass)
	p.Raw.End()
	g.closePass(p.CommandBuffer)
}

// CommandEncoderFinish ends recording. The command buffer can then be
// submitted.
func (g *Global) CommandEncoderFinish(cb id.CommandBufferID) error {
	var (
		enc hal.CommandEncoder
		err error
	)
	g.hub.CommandBuffers.Update(cb, func(p **resource.CommandBuffer) {
		switch c := *p; {
		case c.State != resource.CommandBufferRecording:
			err = ErrEncoderFinished
		case c.PassOpen:
			err = ErrPassOpen
		default:
			enc = c.Encoder
		}
	})
	if err != nil {
		return fmt.Errorf("global: finish %s: %w", cb, err)
	}

	raw, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("global: finish %s: %w", cb, err)
	}
	g.hub.CommandBuffers.Update(cb, func(p **resource.CommandBuffer) {
		(*p).Raw = raw
		(*p).State = resource.CommandBufferFinished
	})
	return nil
}

// QueueSubmit submits finished command buffers to the device queue and
// returns the submission index. Submitted handles are consumed: they leave
// the hub immediately, and their backend objects are released once the
// GPU completes the submission (see DevicePoll). On error nothing is
// consumed.
func (g *Global) QueueSubmit(device id.DeviceID, cbs []id.CommandBufferID) (uint64, error) {
	dev := g.hub.Devices.Get(device)

	raws := make([]hal.CommandBuffer, len(cbs))
	for i, h := range cbs {
		if slices.Contains(cbs[:i], h) {
			return 0, fmt.Errorf("global: submit: %s listed twice", h)
		}
		c := g.hub.CommandBuffers.Get(h)
		if c.State != resource.CommandBufferFinished {
			return 0, fmt.Errorf("global: submit %s: %w", h, ErrEncoderNotFinished)
		}
		if c.Device != device {
			return 0, fmt.Errorf("global: submit %s: recorded on %s, not %s", h, c.Device, device)
		}
		raws[i] = c.Raw
	}

	index, err := dev.Queue.Submit(raws)
	if err != nil {
		return 0, fmt.Errorf("global: submit: %w", err)
	}

	release := make([]func(), 0, len(cbs))
	for _, h := range cbs {
		c := g.hub.CommandBuffers.Unregister(h)
		release = append(release, func() {
			dev.Raw.FreeCommandBuffer(c.Raw)
			c.Encoder.Destroy()
		})
	}
	g.inflight.track(device, index, release)
	g.inflight.triage(device, dev.Queue.PollCompleted())

	logger().Debug("global: submitted", "device", device.String(), "index", index, "command_buffers", len(cbs))
	return index, nil
}

// CommandBufferDrop discards a command buffer that was never submitted.
func (g *Global) CommandBufferDrop(cb id.CommandBufferID) {
	c := g.hub.CommandBuffers.Unregister(cb)
	if c.PassOpen {
		logger().Warn("global: command buffer dropped with an open pass", "id", cb.String(), "label", c.Label)
	}
	g.release(c.Device, func(d hal.Device) { destroyCommandBuffer(d, c) })
}

// destroyCommandBuffer releases the backend objects of an unsubmitted
// command buffer.
func destroyCommandBuffer(d hal.Device, c *resource.CommandBuffer) {
	switch c.State {
	case resource.CommandBufferRecording:
		c.Encoder.DiscardEncoding()
	case resource.CommandBufferFinished:
		d.FreeCommandBuffer(c.Raw)
	}
	c.Encoder.Destroy()
}
