package resource

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hub/id"
)

// Device is an open logical device and its queue.
type Device struct {
	Raw        hal.Device
	Queue      hal.Queue
	Adapter    id.AdapterID
	RawAdapter hal.Adapter
	Info       gputypes.AdapterInfo
	Features   gputypes.Features
	Limits     gputypes.Limits
	// Format is the preferred surface format, or TextureFormatUndefined
	// for a headless device.
	Format gputypes.TextureFormat
}

// Provider exposes d to code written against gpucontext, such as gg
// renderers that receive a device from their host.
func (d *Device) Provider() gpucontext.DeviceProvider {
	return deviceProvider{d: d}
}

type deviceProvider struct {
	d *Device
}

func (p deviceProvider) Device() gpucontext.Device             { return p.d.Raw }
func (p deviceProvider) Queue() gpucontext.Queue               { return p.d.Queue }
func (p deviceProvider) SurfaceFormat() gputypes.TextureFormat { return p.d.Format }
func (p deviceProvider) Adapter() gpucontext.Adapter           { return p.d.RawAdapter }
func (p deviceProvider) AdapterInfo() gpucontext.AdapterInfo   { return AdapterInfo(p.d.Info) }

// AdapterInfo converts backend adapter metadata to the gpucontext form.
func AdapterInfo(info gputypes.AdapterInfo) gpucontext.AdapterInfo {
	t := gpucontext.AdapterTypeUnknown
	switch info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: info.Name, Type: t}
}
