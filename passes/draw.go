// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
)

// drawFullscreen draws one full-screen quad into the declared output out.
func drawFullscreen(ctx *framegraph.Context, out string, src shader.Source, params any, frag render.FragmentFunc) error {
	return ctx.DrawTo(out, render.NewQuad(&render.Material{
		Label:    ctx.PassName(),
		Shader:   src.WGSL,
		Params:   params,
		Fragment: frag,
	}))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Built-in sources, looked up once.
var (
	lensingShader      = shader.MustLookup(shader.Lensing)
	accumulationShader = shader.MustLookup(shader.CloudAccumulation)
	reprojectionShader = shader.MustLookup(shader.TemporalReprojection)
	bloomShader        = shader.MustLookup(shader.Bloom)
	toneMappingShader  = shader.MustLookup(shader.ToneMapping)
	outputShader       = shader.MustLookup(shader.Output)
)
