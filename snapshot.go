package hub

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/hub/id"
	"github.com/gogpu/hub/registry"
)

// Snapshot summarizes every registry of a hub. Each entry is consistent for
// its own registry; entries are taken one after another, so the snapshot as
// a whole is not atomic across kinds.
type Snapshot struct {
	Registries [id.KindCount]registry.Snapshot
}

// Snapshot captures the current state of every registry.
func (h *Hub) Snapshot() Snapshot {
	var s Snapshot
	for i, r := range h.registries() {
		s.Registries[i] = r.Snapshot()
	}
	return s
}

// Get returns the entry for kind. An unknown kind yields a zero entry.
func (s Snapshot) Get(kind id.Kind) registry.Snapshot {
	if int(kind) >= id.KindCount {
		return registry.Snapshot{Kind: kind}
	}
	return s.Registries[kind]
}

// Live returns the total number of live objects across all kinds.
func (s Snapshot) Live() int {
	n := 0
	for _, r := range s.Registries {
		n += r.Live
	}
	return n
}

// Empty reports whether no kind has a live object or an outstanding handle.
func (s Snapshot) Empty() bool {
	for _, r := range s.Registries {
		if r.Live != 0 || r.Allocated != 0 {
			return false
		}
	}
	return true
}

// String lists the non-empty kinds, e.g. "hub: 4 live [buffers=3 textures=1]".
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hub: %d live", s.Live())
	sep := " ["
	for _, r := range s.Registries {
		if r.Live == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s%s=%d", sep, r.Kind, r.Live)
		sep = " "
	}
	if sep == " " {
		b.WriteByte(']')
	}
	return b.String()
}

// LogValue implements slog.LogValuer. Kinds with nothing live are omitted.
func (s Snapshot) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, id.KindCount+1)
	attrs = append(attrs, slog.Int("live", s.Live()))
	for _, r := range s.Registries {
		if r.Live == 0 && r.Retired == 0 {
			continue
		}
		attrs = append(attrs, slog.Group(r.Kind.String(),
			slog.Int("live", r.Live),
			slog.Int("free", r.Free),
			slog.Int("retired", r.Retired),
			slog.Int("cap", r.Capacity),
		))
	}
	return slog.GroupValue(attrs...)
}

// LogValue implements slog.LogValuer by taking a snapshot, so a hub can be
// passed directly as a log attribute:
//
//	hub.Logger().Info("shutdown", "hub", h)
func (h *Hub) LogValue() slog.Value {
	return h.Snapshot().LogValue()
}
