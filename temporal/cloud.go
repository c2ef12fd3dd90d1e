// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package temporal

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"golang.org/x/image/math/f64"
)

// Registry keys of the buffers a CloudAccumulation registers.
const (
	AccumulationKey = "cloud.accumulation"
	CloudRenderKey  = "cloud.render"
)

// CycleLength is the number of frames of one Bayer cycle.
const CycleLength = 4

// Offset is a sub-pixel position inside a 2x2 block.
type Offset struct {
	X, Y int
}

// bayerOffsets visits each pixel of a 2x2 block once per cycle.
var bayerOffsets = [CycleLength]Offset{{0, 0}, {1, 1}, {1, 0}, {0, 1}}

// BayerOffsets returns the offset table in cycle order.
func BayerOffsets() [CycleLength]Offset { return bayerOffsets }

// CloudUniforms is the per-frame binding bundle of a CloudAccumulation.
type CloudUniforms struct {
	History                render.Texture
	HistoryValid           bool
	Offset                 Offset
	FrameIndex             int
	AccumulationResolution Size
	CloudResolution        Size
	PrevViewProjection     f64.Mat4
	Near, Far              float64
}

// CloudAccumulation reconstructs full-resolution volumetric clouds from a
// reduced-resolution render, one 2x2 sub-pixel per frame.
//
// It registers a full-resolution ping-pong accumulation buffer and a
// reduced-resolution single cloud buffer in the registry passed to
// NewCloudAccumulation, and unregisters them on Dispose.
type CloudAccumulation struct {
	id      uint64
	enabled Signal
	reg     *resource.Registry
	scale   float64

	frameIndex  int
	offset      Offset
	accumulated int
	history     render.Texture
	size        Size

	prevVP    f64.Mat4
	near, far float64
	disposed  bool
}

// NewCloudAccumulation registers the accumulation buffers in reg.
func NewCloudAccumulation(reg *resource.Registry, opts ...Option) (*CloudAccumulation, error) {
	if reg == nil {
		return nil, errors.New("temporal: nil registry")
	}
	o := applyOptions(opts)

	if _, err := reg.Register(resource.Descriptor{
		Key:  AccumulationKey,
		Kind: resource.PingPong,
	}); err != nil {
		return nil, fmt.Errorf("temporal: register accumulation buffer: %w", err)
	}
	if _, err := reg.Register(resource.Descriptor{
		Key:   CloudRenderKey,
		Scale: o.cloudScale,
	}); err != nil {
		reg.Unregister(AccumulationKey)
		return nil, fmt.Errorf("temporal: register cloud buffer: %w", err)
	}

	w, h := reg.Size()
	c := &CloudAccumulation{
		enabled: o.enabled,
		reg:     reg,
		scale:   o.cloudScale,
		size:    Size{Width: w, Height: h},
		prevVP:  render.Identity(),
	}
	c.id = track(c)
	return c, nil
}

// Scale returns the cloud buffer resolution scale.
func (c *CloudAccumulation) Scale() float64 { return c.scale }

// BeginFrame returns the Bayer offset for this frame and advances the
// cycle.
func (c *CloudAccumulation) BeginFrame() Offset {
	c.offset = bayerOffsets[c.frameIndex]
	c.frameIndex = (c.frameIndex + 1) % CycleLength
	return c.offset
}

// Offset returns the offset handed out by the last BeginFrame.
func (c *CloudAccumulation) Offset() Offset { return c.offset }

// FrameIndex returns the cycle position the next BeginFrame will use.
func (c *CloudAccumulation) FrameIndex() int { return c.frameIndex }

// UpdateCameraMatrices stores the camera for next frame's reprojection.
func (c *CloudAccumulation) UpdateCameraMatrices(cam render.Camera) {
	if c.disposed || cam == nil {
		return
	}
	c.prevVP = cam.ViewProjection()
	c.near = cam.Near()
	c.far = cam.Far()
}

// UpdateState records tex as the accumulated result of this frame.
// While the effect is disabled the accumulation restarts.
func (c *CloudAccumulation) UpdateState(tex render.Texture, width, height int) {
	if c.disposed {
		return
	}
	if tex == nil || !c.enabled.Enabled() {
		c.history = nil
		c.accumulated = 0
		return
	}
	c.history = tex
	c.size = Size{Width: width, Height: height}
	c.accumulated++
}

// Accumulated returns the number of frames accumulated since the last
// invalidation.
func (c *CloudAccumulation) Accumulated() int { return c.accumulated }

// HasValidHistory reports whether a full Bayer cycle has been accumulated
// while enabled.
func (c *CloudAccumulation) HasValidHistory() bool {
	return !c.disposed && c.accumulated >= CycleLength && c.enabled.Enabled()
}

// Invalidate restarts accumulation.
func (c *CloudAccumulation) Invalidate() {
	c.history = nil
	c.accumulated = 0
	if c.reg != nil && !c.disposed {
		c.reg.Invalidate(AccumulationKey)
	}
}

// Resize resizes the registry and restarts accumulation when the size
// changed.
func (c *CloudAccumulation) Resize(width, height int) error {
	if c.disposed {
		return nil
	}
	if c.size.Width == width && c.size.Height == height {
		return nil
	}
	if err := c.reg.Resize(width, height); err != nil {
		return err
	}
	c.size = Size{Width: width, Height: height}
	c.Invalidate()
	return nil
}

// Uniforms returns the binding bundle. Resolutions are read from the
// registry. Safe before any UpdateState and after Dispose.
func (c *CloudAccumulation) Uniforms() CloudUniforms {
	u := CloudUniforms{
		HistoryValid:       c.HasValidHistory(),
		Offset:             c.offset,
		FrameIndex:         c.frameIndex,
		PrevViewProjection: c.prevVP,
		Near:               c.near,
		Far:                c.far,
	}
	if u.HistoryValid {
		u.History = c.history
	}
	if c.disposed || c.reg == nil {
		return u
	}
	if res, ok := c.reg.Get(AccumulationKey); ok {
		w, h := res.Size()
		u.AccumulationResolution = Size{Width: w, Height: h}
	}
	if res, ok := c.reg.Get(CloudRenderKey); ok {
		w, h := res.Size()
		u.CloudResolution = Size{Width: w, Height: h}
	}
	return u
}

// Dispose unregisters the buffers and the holder. Safe to call more than
// once.
func (c *CloudAccumulation) Dispose() {
	if c.disposed {
		return
	}
	c.Invalidate()
	c.disposed = true
	if c.reg != nil {
		c.reg.Unregister(AccumulationKey)
		c.reg.Unregister(CloudRenderKey)
	}
	untrack(c.id)
}

var _ Invalidator = (*CloudAccumulation)(nil)
