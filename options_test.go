package hub

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
	"github.com/gogpu/hub/resource"
)

func TestWithMaxHandles(t *testing.T) {
	h := New(WithMaxHandles(2))

	for range 2 {
		if _, err := h.Samplers.RegisterLocal(&resource.Sampler{}); err != nil {
			t.Fatalf("RegisterLocal: %v", err)
		}
	}
	_, err := h.Samplers.RegisterLocal(&resource.Sampler{})
	if !errors.Is(err, registry.ErrCapacityExhausted) {
		t.Fatalf("third RegisterLocal err = %v, want ErrCapacityExhausted", err)
	}
	if h.Len(id.KindSampler) != 2 {
		t.Errorf("Len = %d after failed register, want 2", h.Len(id.KindSampler))
	}

	// Other kinds have their own budget.
	if _, err := h.Buffers.RegisterLocal(&resource.Buffer{}); err != nil {
		t.Errorf("buffer register failed: %v", err)
	}
}

func TestWithKindMaxHandles(t *testing.T) {
	h := New(WithMaxHandles(1), WithKindMaxHandles(id.KindBuffer, 3), WithKindMaxHandles(id.KindDevice, 0))

	for i := range 3 {
		if _, err := h.Buffers.RegisterLocal(&resource.Buffer{}); err != nil {
			t.Fatalf("buffer %d: %v", i, err)
		}
	}
	if _, err := h.Buffers.RegisterLocal(&resource.Buffer{}); !errors.Is(err, registry.ErrCapacityExhausted) {
		t.Errorf("fourth buffer err = %v, want ErrCapacityExhausted", err)
	}

	// Zero overrides the hub-wide bound with "unbounded".
	for i := range 5 {
		if _, err := h.Devices.RegisterLocal(&resource.Device{}); err != nil {
			t.Fatalf("device %d: %v", i, err)
		}
	}

	// Kinds without an override keep the hub-wide bound.
	if _, err := h.Textures.RegisterLocal(&resource.Texture{}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Textures.RegisterLocal(&resource.Texture{}); !errors.Is(err, registry.ErrCapacityExhausted) {
		t.Errorf("second texture err = %v, want ErrCapacityExhausted", err)
	}
}

func TestWithCapacity(t *testing.T) {
	h := New(WithCapacity(0))
	bid, err := h.Buffers.RegisterLocal(&resource.Buffer{Size: 4})
	if err != nil {
		t.Fatal(err)
	}
	if h.Buffers.Get(bid).Size != 4 {
		t.Error("payload lost with zero initial capacity")
	}
}

func TestWithLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(WithLogger(l))

	if Logger() != l {
		t.Error("WithLogger did not install the logger")
	}
	if !strings.Contains(buf.String(), "hub: created") {
		t.Errorf("expected creation log, got: %s", buf.String())
	}
}
