// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// Renderer is the drawing backend the frame graph drives.
//
// The graph needs very little from it: bind a render target, issue a
// full-screen draw, and get/set the handful of clear settings the state
// barrier protects. Nothing is ever read back synchronously.
//
// Thread Safety: Renderers are NOT thread-safe. The frame graph calls them
// from the host's per-frame callback only.
type Renderer interface {
	// SetRenderTarget binds the target subsequent draws go to.
	// Nil binds the screen.
	SetRenderTarget(target RenderTarget)

	// RenderTarget returns the currently bound target, nil for the screen.
	RenderTarget() RenderTarget

	// Render draws a full-screen quad into the bound target.
	Render(quad *Quad) error

	// ClearColor returns the clear color by value.
	ClearColor() Color

	// ClearAlpha returns the clear alpha.
	ClearAlpha() float64

	// SetClearColor sets the clear color and alpha.
	SetClearColor(c Color, alpha float64)

	// AutoClear returns the automatic clear flags.
	AutoClear() ClearFlags

	// SetAutoClear replaces the automatic clear flags.
	SetAutoClear(flags ClearFlags)
}

// ClearFlags controls which buffers a renderer clears before drawing.
// Color, Depth and Stencil only apply while Auto is set.
type ClearFlags struct {
	Auto    bool
	Color   bool
	Depth   bool
	Stencil bool
}

// DefaultClearFlags returns the flags renderers start with: everything on.
func DefaultClearFlags() ClearFlags {
	return ClearFlags{Auto: true, Color: true, Depth: true, Stencil: true}
}

// FragmentFunc computes the color of one fragment.
// (u, v) are normalized pixel-center coordinates, (x, y) the integer pixel.
type FragmentFunc func(u, v float64, x, y int) Color

// Material describes what a full-screen draw computes.
//
// Shader holds the WGSL source a GPU renderer compiles; Fragment is the
// equivalent CPU program evaluated by SoftwareRenderer. A material may carry
// either or both. Params is the uniform block the shader expects; GPU
// renderers encode it, SoftwareRenderer ignores it.
type Material struct {
	Label    string
	Shader   string
	Params   any
	Fragment FragmentFunc
}

// Quad is a full-screen draw submission.
type Quad struct {
	Material *Material
}

// NewQuad returns a quad drawing m.
func NewQuad(m *Material) *Quad {
	return &Quad{Material: m}
}
