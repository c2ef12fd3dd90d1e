// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"math"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
)

// DefaultGamma is the display gamma of the output pass.
const DefaultGamma = 2.2

type outputUniforms struct {
	Gamma float64
}

// Output gamma-encodes its input onto the screen.
type Output struct {
	framegraph.BasePass
	in    string
	gamma float64
}

// NewOutput creates the final pass. A non-positive gamma selects
// DefaultGamma.
func NewOutput(in string, gamma float64) *Output {
	p := &Output{
		BasePass: framegraph.NewBasePass(NameOutput,
			[]framegraph.ResourceRef{framegraph.Read(in)},
			[]framegraph.ResourceRef{framegraph.Write(framegraph.Screen)}),
		in: in,
	}
	p.SetGamma(gamma)
	return p
}

// Gamma returns the display gamma.
func (p *Output) Gamma() float64 { return p.gamma }

// SetGamma sets the display gamma.
func (p *Output) SetGamma(g float64) {
	if g <= 0 {
		g = DefaultGamma
	}
	p.gamma = g
}

// Shaders implements framegraph.ShaderUser.
func (p *Output) Shaders() []shader.Source {
	return []shader.Source{outputShader}
}

// Execute implements framegraph.Pass.
func (p *Output) Execute(ctx *framegraph.Context) error {
	src := ctx.ReadTexture(p.in)
	inv := 1 / p.gamma
	return drawFullscreen(ctx, framegraph.Screen, outputShader, outputUniforms{Gamma: p.gamma},
		func(s, t float64, _, _ int) render.Color {
			c := render.Sample(src, s, t)
			return render.Color{
				R: math.Pow(math.Max(c.R, 0), inv),
				G: math.Pow(math.Max(c.G, 0), inv),
				B: math.Pow(math.Max(c.B, 0), inv),
				A: c.A,
			}
		})
}

var (
	_ framegraph.Pass       = (*Output)(nil)
	_ framegraph.ShaderUser = (*Output)(nil)
)
