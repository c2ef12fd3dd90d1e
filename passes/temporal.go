// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"math"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
	"github.com/gogpu/framegraph/temporal"
	"golang.org/x/image/math/f64"
)

// TemporalParams controls history blending.
type TemporalParams struct {
	// HistoryWeight is the share of the reprojected history in the result.
	HistoryWeight float64
	// DisocclusionThreshold is the largest depth difference at which a
	// history sample is still trusted.
	DisocclusionThreshold float64
}

// DefaultTemporalParams returns the chain defaults.
func DefaultTemporalParams() TemporalParams {
	return TemporalParams{HistoryWeight: 0.9, DisocclusionThreshold: 0.01}
}

type temporalUniforms struct {
	InvViewProjection     f64.Mat4
	PrevViewProjection    f64.Mat4
	HistoryWeight         float64
	DisocclusionThreshold float64
	HistoryValid          bool
}

// TemporalReprojection blends the current image with last frame's result,
// reprojected through the depth buffer and both frames' camera matrices.
// History is rejected off-screen and where the depth no longer matches.
//
// It keeps its color history in ColorHistory and a copy of the scene depth
// in DepthHistory. Both must be registered as ping-pong resources.
type TemporalReprojection struct {
	framegraph.BasePass
	color, depth string
	params       TemporalParams
	toggle       *temporal.Toggle
	history      *temporal.DepthHistory
}

// NewTemporalReprojection creates the pass. color and depth are this
// frame's scene color and depth; the R channel of depth holds NDC depth.
func NewTemporalReprojection(color, depth string, p TemporalParams) *TemporalReprojection {
	toggle := temporal.NewToggle(true)
	t := &TemporalReprojection{
		BasePass: framegraph.NewBasePass(NameTemporalReprojection,
			[]framegraph.ResourceRef{
				framegraph.Read(color),
				framegraph.Read(depth),
				framegraph.ReadOptional(ColorHistory),
			},
			[]framegraph.ResourceRef{
				framegraph.Write(ColorHistory),
				framegraph.Write(DepthHistory),
			}),
		color:   color,
		depth:   depth,
		params:  p,
		toggle:  toggle,
		history: temporal.NewDepthHistory(temporal.WithEnabled(toggle.Signal())),
	}
	t.OnDispose(t.history.Dispose)
	return t
}

// Params returns the current parameters.
func (p *TemporalReprojection) Params() TemporalParams { return p.params }

// SetHistoryWeight sets the history share, clamped to [0, 1].
func (p *TemporalReprojection) SetHistoryWeight(w float64) {
	p.params.HistoryWeight = clamp(w, 0, 1)
}

// SetDisocclusionThreshold sets the depth rejection threshold.
func (p *TemporalReprojection) SetDisocclusionThreshold(t float64) {
	p.params.DisocclusionThreshold = t
}

// SetHistoryEnabled toggles history use. While disabled the pass copies
// the current image and history is dropped.
func (p *TemporalReprojection) SetHistoryEnabled(enabled bool) { p.toggle.Set(enabled) }

// History returns the depth history holder.
func (p *TemporalReprojection) History() *temporal.DepthHistory { return p.history }

// Shaders implements framegraph.ShaderUser.
func (p *TemporalReprojection) Shaders() []shader.Source {
	return []shader.Source{reprojectionShader}
}

// Resize implements framegraph.Resizer.
func (p *TemporalReprojection) Resize(width, height int) error {
	p.history.Resize(width, height)
	return nil
}

// Execute implements framegraph.Pass.
func (p *TemporalReprojection) Execute(ctx *framegraph.Context) error {
	color := ctx.ReadTexture(p.color)
	depth := ctx.ReadTexture(p.depth)
	colorHistory := ctx.ReadTexture(ColorHistory)
	du := p.history.Uniforms()

	u := temporalUniforms{
		PrevViewProjection:    du.PrevViewProjection,
		HistoryWeight:         p.params.HistoryWeight,
		DisocclusionThreshold: p.params.DisocclusionThreshold,
		HistoryValid:          du.Valid && du.PrevDepth != nil && colorHistory != nil && p.toggle.Enabled(),
	}
	if ctx.Camera != nil {
		inv, ok := render.Invert(ctx.Camera.ViewProjection())
		u.InvViewProjection = inv
		u.HistoryValid = u.HistoryValid && ok
	} else {
		u.HistoryValid = false
	}

	err := drawFullscreen(ctx, ColorHistory, reprojectionShader, u,
		func(s, t float64, x, y int) render.Color {
			current := render.Load(color, x, y)
			if !u.HistoryValid {
				return current
			}
			prevU, prevV, prevZ, ok := reproject(u.InvViewProjection, u.PrevViewProjection, s, t, render.Load(depth, x, y).R)
			if !ok {
				return current
			}
			prevDepth := render.Sample(du.PrevDepth, prevU, prevV).R
			if math.Abs(prevDepth-prevZ) > u.DisocclusionThreshold {
				return current
			}
			return current.Lerp(render.Sample(colorHistory, prevU, prevV), u.HistoryWeight)
		})
	if err != nil {
		return err
	}

	err = ctx.DrawTo(DepthHistory, render.NewQuad(&render.Material{
		Label: NameTemporalReprojection + ".depth",
		Fragment: func(_, _ float64, x, y int) render.Color {
			return render.Load(depth, x, y)
		},
	}))
	if err != nil {
		return err
	}

	dst := ctx.WriteTarget(DepthHistory)
	p.history.UpdateState(dst.Texture(), dst.Width(), dst.Height())
	p.history.UpdateCameraMatrices(ctx.Camera)
	return nil
}

// reproject maps the fragment at (u, v) with NDC depth z into last
// frame's uv and NDC depth. ok is false off-screen.
func reproject(invVP, prevVP f64.Mat4, u, v, z float64) (prevU, prevV, prevZ float64, ok bool) {
	world := render.MulVec(invVP, [4]float64{u*2 - 1, 1 - v*2, z, 1})
	if world[3] == 0 {
		return 0, 0, 0, false
	}
	for i := range world {
		world[i] /= world[3]
	}
	clip := render.MulVec(prevVP, world)
	if clip[3] == 0 {
		return 0, 0, 0, false
	}
	nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	prevU, prevV = nx*0.5+0.5, 0.5-ny*0.5
	if prevU < 0 || prevU > 1 || prevV < 0 || prevV > 1 {
		return 0, 0, 0, false
	}
	return prevU, prevV, nz, true
}

var (
	_ framegraph.Pass       = (*TemporalReprojection)(nil)
	_ framegraph.Resizer    = (*TemporalReprojection)(nil)
	_ framegraph.ShaderUser = (*TemporalReprojection)(nil)
)
