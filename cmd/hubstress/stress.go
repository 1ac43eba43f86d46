package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/hub"
	"github.com/gogpu/hub/backend"
	"github.com/gogpu/hub/global"
	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
)

const stressWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<u32, 64>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    data[gid.x] = data[gid.x] + 1u;
}
`

// stats counts what the workers did.
type stats struct {
	created   atomic.Int64
	exhausted atomic.Int64
	submitted atomic.Int64
}

// run opens a device on the configured backend and has cfg.Workers
// goroutines create and drop objects against one shared hub. It fails if
// anything is left registered afterwards.
func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	b, err := backend.Open(cfg.Backend)
	if err != nil {
		return err
	}
	h := hub.New(hub.WithMaxHandles(cfg.MaxHandles))
	g := global.New(h, b)
	log.Info("hubstress: starting", "backend", backend.Name(b.Variant()),
		"workers", cfg.Workers, "iterations", cfg.Iterations, "max_handles", cfg.MaxHandles)

	inst, err := g.CreateInstance(&hal.InstanceDescriptor{Backends: gputypes.BackendsAll})
	if err != nil {
		return err
	}
	defer g.InstanceDrop(inst)
	adapter, err := g.RequestAdapter(inst, nil)
	if err != nil {
		return err
	}
	defer g.AdapterDrop(adapter)
	device, err := g.AdapterRequestDevice(adapter, &global.DeviceDescriptor{Label: "hubstress"})
	if err != nil {
		return err
	}

	var st stats
	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for w := range cfg.Workers {
		eg.Go(func() error {
			return worker(ctx, g, device, w, cfg.Iterations, &st)
		})
	}
	werr := eg.Wait()
	if n := g.DevicePoll(device); n > 0 {
		log.Debug("hubstress: released submissions", "count", n)
	}
	if err := g.DeviceDrop(device); err != nil {
		return err
	}

	log.Info("hubstress: finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"created", st.created.Load(),
		"exhausted", st.exhausted.Load(),
		"submitted", st.submitted.Load(),
		"shader_hit_rate", g.ShaderCacheStats().HitRate(),
		"hub", h)
	if werr != nil {
		return werr
	}

	// Only the instance and adapter, dropped by the deferred calls, remain.
	s := h.Snapshot()
	if leaked := s.Live() - s.Get(id.KindInstance).Live - s.Get(id.KindAdapter).Live; leaked != 0 {
		return fmt.Errorf("hubstress: %d objects leaked: %v", leaked, s)
	}
	return nil
}

// worker runs create/drop cycles. Every cycle creates a buffer; every
// fourth also creates a texture and view; every eighth records and submits
// an empty command buffer; every sixteenth also creates a shader module
// from the same WGSL source.
func worker(ctx context.Context, g *global.Global, device id.DeviceID, w, iterations int, st *stats) error {
	for i := range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := cycle(g, device, w, i, st)
		switch {
		case errors.Is(err, registry.ErrCapacityExhausted):
			st.exhausted.Add(1)
		case err != nil:
			return fmt.Errorf("worker %d iteration %d: %w", w, i, err)
		}
	}
	return nil
}

func cycle(g *global.Global, device id.DeviceID, w, i int, st *stats) error {
	buf, err := g.DeviceCreateBuffer(device, &hal.BufferDescriptor{
		Label: fmt.Sprintf("w%d-%d", w, i),
		Size:  256,
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage,
	})
	if err != nil {
		return err
	}
	defer g.BufferDrop(buf)
	st.created.Add(1)

	if err := g.QueueWriteBuffer(device, buf, 0, []byte{byte(w), byte(i)}); err != nil {
		return err
	}

	if i%4 == 0 {
		tex, err := g.DeviceCreateTexture(device, &hal.TextureDescriptor{
			Size:      hal.Extent3D{Width: 32, Height: 32, DepthOrArrayLayers: 1},
			Dimension: gputypes.TextureDimension2D,
			Format:    gputypes.TextureFormatRGBA8Unorm,
			Usage:     gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			return err
		}
		defer g.TextureDrop(tex)
		view, err := g.TextureCreateView(tex, nil)
		if err != nil {
			return err
		}
		defer g.TextureViewDrop(view)
		st.created.Add(2)
	}

	if i%16 == 0 {
		m, err := g.DeviceCreateShaderModule(device, &global.ShaderModuleDescriptor{WGSL: stressWGSL})
		if err != nil {
			return err
		}
		defer g.ShaderModuleDrop(m)
		st.created.Add(1)
	}

	if i%8 == 0 {
		cb, err := g.DeviceCreateCommandEncoder(device, "")
		if err != nil {
			return err
		}
		if err := g.CommandEncoderFinish(cb); err != nil {
			g.CommandBufferDrop(cb)
			return err
		}
		if _, err := g.QueueSubmit(device, []id.CommandBufferID{cb}); err != nil {
			g.CommandBufferDrop(cb)
			return err
		}
		st.submitted.Add(1)
	}
	return nil
}
