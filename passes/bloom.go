// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
)

// BloomParams controls the glow.
type BloomParams struct {
	// Strength scales the glow added to the image.
	Strength float64
	// Radius spreads the 5x5 kernel, in texels.
	Radius float64
	// Threshold is the luminance a pixel needs to glow.
	Threshold float64
}

// DefaultBloomParams returns the chain defaults.
func DefaultBloomParams() BloomParams {
	return BloomParams{Strength: 0.6, Radius: 1, Threshold: 1}
}

type bloomUniforms struct {
	TexelX, TexelY float64
	BloomParams
}

// Bloom adds a blurred copy of the pixels brighter than Threshold.
type Bloom struct {
	framegraph.BasePass
	in, out string
	params  BloomParams
}

// NewBloom creates a bloom pass reading in and writing out.
func NewBloom(in, out string, p BloomParams) *Bloom {
	return &Bloom{
		BasePass: framegraph.NewBasePass(NameBloom,
			[]framegraph.ResourceRef{framegraph.Read(in)},
			[]framegraph.ResourceRef{framegraph.Write(out)}),
		in:     in,
		out:    out,
		params: p,
	}
}

// Params returns the current parameters.
func (p *Bloom) Params() BloomParams { return p.params }

// SetStrength sets the glow strength.
func (p *Bloom) SetStrength(s float64) { p.params.Strength = s }

// SetRadius sets the kernel spread.
func (p *Bloom) SetRadius(r float64) { p.params.Radius = r }

// SetThreshold sets the luminance threshold.
func (p *Bloom) SetThreshold(t float64) { p.params.Threshold = t }

// Shaders implements framegraph.ShaderUser.
func (p *Bloom) Shaders() []shader.Source {
	return []shader.Source{bloomShader}
}

// Execute implements framegraph.Pass.
func (p *Bloom) Execute(ctx *framegraph.Context) error {
	src := ctx.ReadTexture(p.in)
	u := bloomUniforms{BloomParams: p.params}
	if src.Width() > 0 && src.Height() > 0 {
		u.TexelX, u.TexelY = 1/float64(src.Width()), 1/float64(src.Height())
	}

	bright := func(c render.Color) render.Color {
		if c.Luminance() < u.Threshold {
			return render.Color{}
		}
		return c
	}
	return drawFullscreen(ctx, p.out, bloomShader, u,
		func(s, t float64, _, _ int) render.Color {
			base := render.Sample(src, s, t)
			var glow render.Color
			for y := -2; y <= 2; y++ {
				for x := -2; x <= 2; x++ {
					o := render.Sample(src, s+float64(x)*u.TexelX*u.Radius, t+float64(y)*u.TexelY*u.Radius)
					glow = glow.Add(bright(o))
				}
			}
			out := base.Add(glow.Scale(u.Strength / 25))
			out.A = base.A
			return out
		})
}

var (
	_ framegraph.Pass       = (*Bloom)(nil)
	_ framegraph.ShaderUser = (*Bloom)(nil)
)
