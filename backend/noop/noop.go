// Package noop registers the gogpu/wgpu noop HAL backend.
//
// The noop backend creates every object without touching a GPU. It is
// meant for tests and for exercising the hub on machines without a GPU.
package noop

import (
	"github.com/gogpu/wgpu/hal"
	halnoop "github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/hub/backend"
)

func init() {
	backend.Register(backend.Noop, New)
}

// New returns the noop HAL backend.
func New() hal.Backend {
	return halnoop.API{}
}
