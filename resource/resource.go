// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"math"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
)

// Kind selects how many buffers back a resource.
type Kind int

const (
	// Single resources have one buffer. A pass may not read and write the
	// same single resource.
	Single Kind = iota

	// PingPong resources have two buffers; one is read while the other is
	// written.
	PingPong
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case PingPong:
		return "ping-pong"
	default:
		return "unknown"
	}
}

// Descriptor describes a registered resource.
type Descriptor struct {
	// Key identifies the resource in the registry.
	Key string

	// Label is the debug label of the allocated targets. Defaults to Key.
	Label string

	// Format is the pixel format. Defaults to RGBA16Float.
	Format gputypes.TextureFormat

	// Scale multiplies the registry size. Zero means full resolution.
	Scale float64

	Kind Kind
}

func (d Descriptor) withDefaults() Descriptor {
	if d.Label == "" {
		d.Label = d.Key
	}
	if d.Format == gputypes.TextureFormatUndefined {
		d.Format = gputypes.TextureFormatRGBA16Float
	}
	if d.Scale == 0 {
		d.Scale = 1
	}
	return d
}

// ScaledSize returns max(1, floor(dim*scale)).
func ScaledSize(dim int, scale float64) int {
	return max(1, int(math.Floor(float64(dim)*scale)))
}

// Pair is a ping-pong pair of render targets.
type Pair struct {
	targets [2]render.RenderTarget
	parity  int
}

// NewPair creates a pair. a is written first.
func NewPair(a, b render.RenderTarget) *Pair {
	return &Pair{targets: [2]render.RenderTarget{a, b}}
}

// Write returns the buffer to draw into this frame.
func (p *Pair) Write() render.RenderTarget { return p.targets[p.parity] }

// Read returns the buffer holding the last committed contents.
func (p *Pair) Read() render.RenderTarget { return p.targets[1-p.parity] }

// Swap exchanges the read and write buffers.
func (p *Pair) Swap() { p.parity = 1 - p.parity }

// Dispose releases both buffers.
func (p *Pair) Dispose() {
	for i, t := range p.targets {
		if t != nil {
			t.Dispose()
			p.targets[i] = nil
		}
	}
}

// Resource is one registered entry.
type Resource struct {
	desc     Descriptor
	isExt    bool
	external render.Texture
	single   render.RenderTarget
	pair     *Pair
	width    int
	height   int
	produced bool
}

// Key returns the registry key.
func (r *Resource) Key() string { return r.desc.Key }

// Descriptor returns the descriptor the resource was registered with.
func (r *Resource) Descriptor() Descriptor { return r.desc }

// Size returns the allocated size.
func (r *Resource) Size() (width, height int) { return r.width, r.height }

// External reports whether the texture is supplied by the host.
func (r *Resource) External() bool { return r.isExt }

// Produced reports whether a readable version exists.
func (r *Resource) Produced() bool {
	if r.isExt {
		return r.external != nil
	}
	return r.produced
}

// Pair returns the ping-pong pair, or nil for other kinds.
func (r *Resource) Pair() *Pair { return r.pair }

// ReadTexture returns the readable texture or nil.
func (r *Resource) ReadTexture() render.Texture {
	switch {
	case r.isExt:
		return r.external
	case !r.produced:
		return nil
	case r.pair != nil:
		if t := r.pair.Read(); t != nil {
			return t.Texture()
		}
	case r.single != nil:
		return r.single.Texture()
	}
	return nil
}

// WriteTarget returns the target to draw into, nil for external resources.
func (r *Resource) WriteTarget() render.RenderTarget {
	switch {
	case r.pair != nil:
		return r.pair.Write()
	case r.single != nil:
		return r.single
	}
	return nil
}

func (r *Resource) commit() {
	if r.pair != nil {
		r.pair.Swap()
	}
	r.produced = !r.isExt
}

func (r *Resource) release() {
	if r.pair != nil {
		r.pair.Dispose()
		r.pair = nil
	}
	if r.single != nil {
		r.single.Dispose()
		r.single = nil
	}
	r.external = nil
	r.produced = false
}
