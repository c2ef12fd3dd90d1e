// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the collaborators the frame graph drives.
//
// The frame graph does not draw anything itself. It binds render targets,
// issues full-screen quads and touches a handful of renderer, scene and
// camera properties. This package names exactly that surface.
//
// # Core Interfaces
//
//   - Renderer: binds targets, clears and draws full-screen quads
//   - Texture / RenderTarget: sampled inputs and drawable outputs
//   - Scene: background, environment and override material
//   - Camera: layer mask and view-projection
//   - DeviceHandle: GPU device hand-off from the host application
//
// # CPU Implementations
//
//   - SoftwareRenderer: evaluates Material.Fragment per pixel
//   - PixmapTarget: float32 RGBA render target with bilinear sampling
//   - BasicScene, BasicCamera
//
// The CPU implementations are exact and slow. They back the tests and
// headless tools such as cmd/fxdemo.
//
// # Usage
//
//	r := render.NewSoftwareRenderer(640, 360)
//	target := render.NewPixmapTarget("tmp", 640, 360, gputypes.TextureFormatRGBA16Float)
//	r.SetRenderTarget(target)
//	_ = r.Render(render.NewQuad(&render.Material{
//	    Fragment: func(u, v float64, _, _ int) render.Color {
//	        return render.RGB(u, v, 0)
//	    },
//	}))
package render
