package resource

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
)

// CommandBufferState tracks a command buffer from recording to submission.
type CommandBufferState uint8

const (
	// CommandBufferRecording accepts passes and commands.
	CommandBufferRecording CommandBufferState = iota
	// CommandBufferFinished holds a closed hal command buffer ready to submit.
	CommandBufferFinished
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferRecording:
		return "recording"
	case CommandBufferFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// CommandBuffer is an encoder while recording and a command buffer once
// finished; both phases share one handle.
type CommandBuffer struct {
	Encoder hal.CommandEncoder
	Raw     hal.CommandBuffer
	Device  id.DeviceID
	Label   string
	State   CommandBufferState
	// PassOpen is set while a render or compute pass is being recorded.
	PassOpen bool
}

// RenderPass is an open render pass on a command buffer.
type RenderPass struct {
	Raw           hal.RenderPassEncoder
	CommandBuffer id.CommandBufferID
	Label         string
	Pipeline      id.RenderPipelineID
}

// ComputePass is an open compute pass on a command buffer.
type ComputePass struct {
	Raw           hal.ComputePassEncoder
	CommandBuffer id.CommandBufferID
	Label         string
	Pipeline      id.ComputePipelineID
}
