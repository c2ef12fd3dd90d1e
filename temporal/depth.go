// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package temporal

import (
	"github.com/gogpu/framegraph/render"
	"golang.org/x/image/math/f64"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// DepthUniforms is the per-frame binding bundle of a DepthHistory.
type DepthUniforms struct {
	PrevDepth          render.Texture
	PrevViewProjection f64.Mat4
	Resolution         Size
	Valid              bool
	Near, Far          float64
	Frame              uint64
}

// DepthHistory keeps last frame's depth and camera for reprojection.
//
// The stored texture is borrowed: DepthHistory never disposes it.
type DepthHistory struct {
	id      uint64
	enabled Signal

	prevDepth render.Texture
	prevVP    f64.Mat4
	near, far float64
	size      Size
	valid     bool
	frame     uint64
	disposed  bool
}

// NewDepthHistory creates a holder and registers it for InvalidateAll.
func NewDepthHistory(opts ...Option) *DepthHistory {
	o := applyOptions(opts)
	h := &DepthHistory{
		enabled: o.enabled,
		prevVP:  render.Identity(),
	}
	h.id = track(h)
	return h
}

// UpdateCameraMatrices stores the camera's current view-projection and
// clip range. Call it after drawing so the values act as next frame's
// previous matrices.
func (h *DepthHistory) UpdateCameraMatrices(cam render.Camera) {
	if h.disposed || cam == nil {
		return
	}
	h.prevVP = cam.ViewProjection()
	h.near = cam.Near()
	h.far = cam.Far()
}

// UpdateState stores tex as next frame's history. History becomes valid
// only while the effect is enabled; otherwise it is dropped.
func (h *DepthHistory) UpdateState(tex render.Texture, width, height int) {
	if h.disposed {
		return
	}
	h.frame++
	if tex == nil || !h.enabled.Enabled() {
		h.prevDepth = nil
		h.valid = false
		return
	}
	h.prevDepth = tex
	h.size = Size{Width: width, Height: height}
	h.valid = true
}

// Invalidate makes the next frame ignore history.
func (h *DepthHistory) Invalidate() {
	h.prevDepth = nil
	h.valid = false
}

// Valid reports whether history may be used this frame.
func (h *DepthHistory) Valid() bool { return h.valid }

// Resize invalidates history when the size changes.
func (h *DepthHistory) Resize(width, height int) {
	if h.size.Width == width && h.size.Height == height {
		return
	}
	h.size = Size{Width: width, Height: height}
	h.Invalidate()
}

// Uniforms returns the binding bundle. Safe before any UpdateState.
func (h *DepthHistory) Uniforms() DepthUniforms {
	return DepthUniforms{
		PrevDepth:          h.prevDepth,
		PrevViewProjection: h.prevVP,
		Resolution:         h.size,
		Valid:              h.valid,
		Near:               h.near,
		Far:                h.far,
		Frame:              h.frame,
	}
}

// Dispose drops history and deregisters the holder. Safe to call more
// than once.
func (h *DepthHistory) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true
	h.Invalidate()
	untrack(h.id)
}

var _ Invalidator = (*DepthHistory)(nil)
