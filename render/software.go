// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"time"

	"github.com/gogpu/framegraph/gputimer"
	"github.com/gogpu/gputypes"
)

// Errors returned by SoftwareRenderer.Render.
var (
	ErrNoFragment       = errors.New("render: quad has no CPU fragment program")
	ErrNotCPUTarget     = errors.New("render: target does not support CPU rendering")
	ErrDisposedTarget   = errors.New("render: target has been disposed")
	errTimestampsOffset = errors.New("render: timestamp range out of bounds")
)

// SoftwareRenderer is a CPU implementation of Renderer.
//
// It evaluates Material.Fragment once per pixel of the bound PixmapTarget.
// A nil target renders to the renderer's own screen pixmap. It is slow and
// exact, which makes it the reference backend for tests and headless tools.
//
// SoftwareRenderer also implements gputimer.TimestampQuerier using the CPU
// clock, so pass timings can be collected without a GPU.
//
// Example:
//
//	r := render.NewSoftwareRenderer(800, 600)
//	graph.Render(r, scene, camera)
//	img := r.Screen().Pixmap().Image()
type SoftwareRenderer struct {
	screen     *PixmapTarget
	target     RenderTarget
	clearColor Color
	clearAlpha float64
	autoClear  ClearFlags

	draws int

	timestamps        []uint64
	timestampsEnabled bool
	epoch             time.Time
}

// NewSoftwareRenderer creates a renderer whose screen is width x height.
func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	return &SoftwareRenderer{
		screen:            NewPixmapTarget("screen", width, height, gputypes.TextureFormatRGBA8Unorm),
		clearColor:        Black,
		clearAlpha:        1,
		autoClear:         DefaultClearFlags(),
		timestampsEnabled: true,
		epoch:             time.Now(),
	}
}

// Screen returns the pixmap standing in for the window surface.
func (r *SoftwareRenderer) Screen() *PixmapTarget { return r.screen }

// SetSize resizes the screen pixmap. Contents are not preserved.
func (r *SoftwareRenderer) SetSize(width, height int) {
	if r.screen.Width() == width && r.screen.Height() == height {
		return
	}
	r.screen = NewPixmapTarget("screen", width, height, gputypes.TextureFormatRGBA8Unorm)
}

// SetRenderTarget binds target; nil binds the screen.
func (r *SoftwareRenderer) SetRenderTarget(target RenderTarget) { r.target = target }

// RenderTarget returns the bound target, nil for the screen.
func (r *SoftwareRenderer) RenderTarget() RenderTarget { return r.target }

// ClearColor returns the clear color by value.
func (r *SoftwareRenderer) ClearColor() Color { return r.clearColor }

// ClearAlpha returns the clear alpha.
func (r *SoftwareRenderer) ClearAlpha() float64 { return r.clearAlpha }

// SetClearColor sets the clear color and alpha.
func (r *SoftwareRenderer) SetClearColor(c Color, alpha float64) {
	r.clearColor = c
	r.clearAlpha = alpha
}

// AutoClear returns the automatic clear flags.
func (r *SoftwareRenderer) AutoClear() ClearFlags { return r.autoClear }

// SetAutoClear replaces the automatic clear flags.
func (r *SoftwareRenderer) SetAutoClear(flags ClearFlags) { r.autoClear = flags }

// DrawCount returns the number of successful Render calls.
func (r *SoftwareRenderer) DrawCount() int { return r.draws }

// Render evaluates the quad's fragment program over the bound target.
func (r *SoftwareRenderer) Render(quad *Quad) error {
	if quad == nil || quad.Material == nil || quad.Material.Fragment == nil {
		return ErrNoFragment
	}

	var pm *Pixmap
	if r.target == nil {
		pm = r.screen.pixmap
	} else {
		pt, ok := r.target.(*PixmapTarget)
		if !ok {
			return ErrNotCPUTarget
		}
		if pt.disposed {
			return ErrDisposedTarget
		}
		pm = pt.pixmap
	}

	if r.autoClear.Auto && r.autoClear.Color {
		c := r.clearColor
		c.A = r.clearAlpha
		pm.Fill(c)
	}

	frag := quad.Material.Fragment
	w, h := float64(pm.width), float64(pm.height)
	for y := 0; y < pm.height; y++ {
		v := (float64(y) + 0.5) / h
		for x := 0; x < pm.width; x++ {
			u := (float64(x) + 0.5) / w
			pm.Set(x, y, frag(u, v, x, y))
		}
	}

	r.draws++
	return nil
}

// EnableTimestamps toggles the timestamp query capability.
func (r *SoftwareRenderer) EnableTimestamps(enabled bool) { r.timestampsEnabled = enabled }

// TimestampsSupported reports whether timestamp queries are available.
func (r *SoftwareRenderer) TimestampsSupported() bool { return r.timestampsEnabled }

// TimestampPeriod returns the number of nanoseconds per timestamp tick.
func (r *SoftwareRenderer) TimestampPeriod() float64 { return 1 }

// WriteTimestamp records the current CPU time into slot.
func (r *SoftwareRenderer) WriteTimestamp(slot int) {
	if slot < 0 {
		return
	}
	if slot >= len(r.timestamps) {
		r.timestamps = append(r.timestamps, make([]uint64, slot+1-len(r.timestamps))...)
	}
	r.timestamps[slot] = uint64(time.Since(r.epoch).Nanoseconds()) //nolint:gosec // monotonic, non-negative
}

// ResolveTimestamps copies slots [first, first+count) into a resolution.
// CPU timestamps are ready immediately; the timer still polls them on a
// later frame.
func (r *SoftwareRenderer) ResolveTimestamps(first, count int) gputimer.Resolution {
	if first < 0 || count < 0 || first+count > len(r.timestamps) {
		return gputimer.FailedResolution(errTimestampsOffset)
	}
	values := append([]uint64(nil), r.timestamps[first:first+count]...)
	return gputimer.ReadyResolution(values)
}

// Ensure SoftwareRenderer implements Renderer and gputimer.TimestampQuerier.
var (
	_ Renderer                  = (*SoftwareRenderer)(nil)
	_ gputimer.TimestampQuerier = (*SoftwareRenderer)(nil)
)
