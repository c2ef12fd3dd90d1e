// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"log/slog"

	"github.com/gogpu/framegraph/bridge"
	"github.com/gogpu/framegraph/render"
)

// Context is what a pass sees while it executes.
//
// It resolves only the resources the pass declared: inputs to their
// committed textures and outputs to their write targets. Undeclared ids
// resolve to nil.
type Context struct {
	Renderer render.Renderer
	Scene    render.Scene
	Camera   render.Camera

	// Frame counts frames since the graph was created, starting at 1.
	Frame uint64

	// Width and Height are the full-resolution graph size.
	Width, Height int

	pass   string
	reads  map[string]render.Texture
	writes map[string]render.RenderTarget
	bridge *bridge.Bridge
	logger *slog.Logger
}

// PassName returns the name of the executing pass.
func (c *Context) PassName() string { return c.pass }

// ReadTexture returns the texture of a declared input. Optional inputs that
// do not exist yet resolve to nil.
func (c *Context) ReadTexture(id string) render.Texture {
	return c.reads[id]
}

// WriteTarget returns the target of a declared output. Screen and
// undeclared ids resolve to nil.
func (c *Context) WriteTarget(id string) render.RenderTarget {
	return c.writes[id]
}

// Writes reports whether id is a declared output.
func (c *Context) Writes(id string) bool {
	_, ok := c.writes[id]
	return ok
}

// Draw binds target (nil is the screen) and draws quad.
func (c *Context) Draw(target render.RenderTarget, quad *render.Quad) error {
	c.Renderer.SetRenderTarget(target)
	return c.Renderer.Render(quad)
}

// DrawTo draws quad into the declared output id.
func (c *Context) DrawTo(id string, quad *render.Quad) error {
	if !c.Writes(id) {
		return &PassError{Pass: c.pass, Resource: id, Err: errUndeclaredOutput}
	}
	return c.Draw(c.writes[id], quad)
}

// Import returns the value the bridge captured for id this frame.
func (c *Context) Import(id string) (any, bool) {
	if c.bridge == nil {
		return nil, false
	}
	return c.bridge.Imported(id)
}

// QueueExport hands v to the export registered as id. It reports whether
// such an export exists.
func (c *Context) QueueExport(id string, v any) bool {
	if c.bridge == nil {
		return false
	}
	return c.bridge.QueueExport(id, v)
}

// Logger returns the framegraph logger tagged with the pass name.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		c.logger = Logger().With("pass", c.pass)
	}
	return c.logger
}
