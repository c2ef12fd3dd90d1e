// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
)

// Composite blends an optional overlay over a base image using the
// overlay's alpha. Until the overlay has been produced the base passes
// through unchanged.
type Composite struct {
	framegraph.BasePass
	base, overlay, out string
}

// NewComposite creates a composite pass.
func NewComposite(base, overlay, out string) *Composite {
	return &Composite{
		BasePass: framegraph.NewBasePass(NameComposite,
			[]framegraph.ResourceRef{framegraph.Read(base), framegraph.ReadOptional(overlay)},
			[]framegraph.ResourceRef{framegraph.Write(out)}),
		base:    base,
		overlay: overlay,
		out:     out,
	}
}

// Execute implements framegraph.Pass.
func (p *Composite) Execute(ctx *framegraph.Context) error {
	base := ctx.ReadTexture(p.base)
	overlay := ctx.ReadTexture(p.overlay)
	return ctx.DrawTo(p.out, render.NewQuad(&render.Material{
		Label: NameComposite,
		Fragment: func(u, v float64, _, _ int) render.Color {
			b := render.Sample(base, u, v)
			if overlay == nil {
				return b
			}
			o := render.Sample(overlay, u, v)
			out := b.Lerp(o, o.A)
			out.A = b.A
			return out
		},
	}))
}

var _ framegraph.Pass = (*Composite)(nil)
