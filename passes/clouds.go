// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"errors"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/framegraph/shader"
	"github.com/gogpu/framegraph/temporal"
)

// CloudFunc evaluates the cloud layer at a full-resolution uv. The result
// alpha is the cloud coverage.
type CloudFunc func(u, v float64) render.Color

// CloudRender evaluates a CloudFunc into the reduced-resolution cloud
// buffer, jittering each texel to this frame's Bayer sub-pixel.
type CloudRender struct {
	framegraph.BasePass
	holder *temporal.CloudAccumulation
	fn     CloudFunc
}

// CloudAccumulation merges the freshly rendered cloud sub-pixel into the
// full-resolution accumulation buffer. After a full Bayer cycle every
// pixel carries a real sample.
type CloudAccumulation struct {
	framegraph.BasePass
	holder *temporal.CloudAccumulation
}

var errNilCloudFunc = errors.New("passes: nil cloud func")

// NewClouds registers the cloud buffers in reg and returns the render and
// accumulation passes sharing them. The accumulation pass owns the buffers
// and releases them when disposed.
func NewClouds(reg *resource.Registry, fn CloudFunc, opts ...temporal.Option) (*CloudRender, *CloudAccumulation, error) {
	if fn == nil {
		return nil, nil, errNilCloudFunc
	}
	holder, err := temporal.NewCloudAccumulation(reg, opts...)
	if err != nil {
		return nil, nil, err
	}

	r := &CloudRender{
		BasePass: framegraph.NewBasePass(NameCloudRender, nil,
			[]framegraph.ResourceRef{framegraph.Write(temporal.CloudRenderKey)}),
		holder: holder,
		fn:     fn,
	}
	a := &CloudAccumulation{
		BasePass: framegraph.NewBasePass(NameCloudAccumulation,
			[]framegraph.ResourceRef{
				framegraph.Read(temporal.CloudRenderKey),
				framegraph.ReadOptional(temporal.AccumulationKey),
			},
			[]framegraph.ResourceRef{framegraph.Write(temporal.AccumulationKey)}),
		holder: holder,
	}
	a.OnDispose(holder.Dispose)
	return r, a, nil
}

// Holder returns the accumulation state shared by both passes.
func (p *CloudRender) Holder() *temporal.CloudAccumulation { return p.holder }

// Execute implements framegraph.Pass.
func (p *CloudRender) Execute(ctx *framegraph.Context) error {
	off := p.holder.BeginFrame()
	target := ctx.WriteTarget(temporal.CloudRenderKey)
	cw, ch := float64(target.Width()), float64(target.Height())
	jx, jy := (float64(off.X)+0.5)/2, (float64(off.Y)+0.5)/2
	fn := p.fn
	return ctx.DrawTo(temporal.CloudRenderKey, render.NewQuad(&render.Material{
		Label: NameCloudRender,
		Fragment: func(_, _ float64, x, y int) render.Color {
			return fn((float64(x)+jx)/cw, (float64(y)+jy)/ch)
		},
	}))
}

// Holder returns the accumulation state shared by both passes.
func (p *CloudAccumulation) Holder() *temporal.CloudAccumulation { return p.holder }

// Shaders implements framegraph.ShaderUser.
func (p *CloudAccumulation) Shaders() []shader.Source {
	return []shader.Source{accumulationShader}
}

// Resize implements framegraph.Resizer.
func (p *CloudAccumulation) Resize(width, height int) error {
	return p.holder.Resize(width, height)
}

// Execute implements framegraph.Pass.
func (p *CloudAccumulation) Execute(ctx *framegraph.Context) error {
	u := p.holder.Uniforms()
	cloud := ctx.ReadTexture(temporal.CloudRenderKey)
	history := u.History
	valid := u.HistoryValid && history != nil
	off := u.Offset

	target := ctx.WriteTarget(temporal.AccumulationKey)
	w, h := target.Width(), target.Height()
	cw, ch := cloud.Width(), cloud.Height()

	err := drawFullscreen(ctx, temporal.AccumulationKey, accumulationShader, u,
		func(_, _ float64, x, y int) render.Color {
			if !valid || (x%2 == off.X && y%2 == off.Y) {
				return render.Load(cloud, x*cw/w, y*ch/h)
			}
			return render.Load(history, x, y)
		})
	if err != nil {
		return err
	}
	p.holder.UpdateState(target.Texture(), w, h)
	p.holder.UpdateCameraMatrices(ctx.Camera)
	return nil
}

var (
	_ framegraph.Pass       = (*CloudRender)(nil)
	_ framegraph.Pass       = (*CloudAccumulation)(nil)
	_ framegraph.Resizer    = (*CloudAccumulation)(nil)
	_ framegraph.ShaderUser = (*CloudAccumulation)(nil)
)
