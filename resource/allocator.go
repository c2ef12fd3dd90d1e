// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"sync/atomic"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
)

// Allocator creates render targets for the registry.
//
// Implementations exist for CPU pixmaps (SoftwareAllocator) and for wgpu
// HAL textures (package halalloc).
type Allocator interface {
	Allocate(label string, width, height int, format gputypes.TextureFormat) (render.RenderTarget, error)
}

// AllocatorFunc adapts a function to Allocator.
type AllocatorFunc func(label string, width, height int, format gputypes.TextureFormat) (render.RenderTarget, error)

// Allocate calls f.
func (f AllocatorFunc) Allocate(label string, width, height int, format gputypes.TextureFormat) (render.RenderTarget, error) {
	return f(label, width, height, format)
}

// SoftwareAllocator allocates render.PixmapTargets.
type SoftwareAllocator struct {
	allocations atomic.Int64
}

// NewSoftwareAllocator creates a CPU allocator.
func NewSoftwareAllocator() *SoftwareAllocator {
	return &SoftwareAllocator{}
}

// Allocate creates a zeroed pixmap target.
func (a *SoftwareAllocator) Allocate(label string, width, height int, format gputypes.TextureFormat) (render.RenderTarget, error) {
	a.allocations.Add(1)
	return render.NewPixmapTarget(label, width, height, format), nil
}

// Allocations returns how many targets have been allocated so far.
func (a *SoftwareAllocator) Allocations() int {
	return int(a.allocations.Load())
}

var (
	_ Allocator = (*SoftwareAllocator)(nil)
	_ Allocator = AllocatorFunc(nil)
)
