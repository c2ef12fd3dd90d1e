// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"math"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
)

// LensingParams matches the lensing shader's uniform block.
type LensingParams struct {
	CenterX, CenterY float64
	Strength         float64
	Radius           float64
}

// DefaultLensingParams is a weak lens in the middle of the screen.
func DefaultLensingParams() LensingParams {
	return LensingParams{CenterX: 0.5, CenterY: 0.5, Strength: 0.05, Radius: 0.25}
}

// Lensing pulls the image toward a point, strongest near the center and
// fading to nothing at Radius.
type Lensing struct {
	framegraph.BasePass
	in, out string
	params  LensingParams
}

// NewLensing creates a lensing pass reading in and writing out.
func NewLensing(in, out string, p LensingParams) *Lensing {
	return &Lensing{
		BasePass: framegraph.NewBasePass(NameLensing,
			[]framegraph.ResourceRef{framegraph.Read(in)},
			[]framegraph.ResourceRef{framegraph.Write(out)}),
		in:     in,
		out:    out,
		params: p,
	}
}

// Params returns the current parameters.
func (p *Lensing) Params() LensingParams { return p.params }

// SetStrength sets the displacement at the lens center, in uv units.
func (p *Lensing) SetStrength(s float64) { p.params.Strength = s }

// SetRadius sets the lens radius in uv units.
func (p *Lensing) SetRadius(r float64) { p.params.Radius = r }

// SetCenter moves the lens.
func (p *Lensing) SetCenter(x, y float64) {
	p.params.CenterX, p.params.CenterY = x, y
}

// Shaders implements framegraph.ShaderUser.
func (p *Lensing) Shaders() []shader.Source {
	return []shader.Source{lensingShader}
}

// Execute implements framegraph.Pass.
func (p *Lensing) Execute(ctx *framegraph.Context) error {
	src := ctx.ReadTexture(p.in)
	params := p.params
	return drawFullscreen(ctx, p.out, lensingShader, params,
		func(u, v float64, _, _ int) render.Color {
			u, v = params.displace(u, v)
			return render.Sample(src, u, v)
		})
}

// displace returns the uv sampled for the fragment at (u, v).
func (l LensingParams) displace(u, v float64) (float64, float64) {
	dx, dy := u-l.CenterX, v-l.CenterY
	r := math.Hypot(dx, dy)
	if r > 1e-4 && r < l.Radius {
		falloff := 1 - r/l.Radius
		k := l.Strength * falloff * falloff / r
		u -= dx * k
		v -= dy * k
	}
	return clamp(u, 0, 1), clamp(v, 0, 1)
}

var (
	_ framegraph.Pass       = (*Lensing)(nil)
	_ framegraph.ShaderUser = (*Lensing)(nil)
)
