// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/barrier"
	"github.com/gogpu/framegraph/bridge"
	"github.com/gogpu/framegraph/gputimer"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/framegraph/temporal"
)

type passEntry struct {
	pass      Pass
	shaderErr error
}

// FrameGraph runs an ordered list of passes over a resource registry.
//
// Passes execute in the order they were added; the graph never reorders
// them. One frame is BeginFrame, Execute, EndFrame (or Render, which does
// all three). A FrameGraph is driven from a single goroutine.
//
// Example:
//
//	g := framegraph.New(resource.NewSoftwareAllocator(), framegraph.WithSize(w, h))
//	defer g.Dispose()
//	g.AddPass(scenePass)
//	g.AddPass(bloomPass)
//	for running {
//	    g.Render(renderer, scene, camera)
//	}
type FrameGraph struct {
	opts     options
	registry *resource.Registry
	bridge   *bridge.Bridge
	ownsBr   bool
	barrier  *barrier.StateBarrier
	timer    gputimer.Timer

	passes   []passEntry
	writers  map[string]string
	onResize []func(width, height int)
	history  map[uint64]temporal.Invalidator
	nextHist uint64

	renderer render.Renderer
	scene    render.Scene
	camera   render.Camera
	frame    uint64
	inFrame  bool
	report   FrameReport
	last     FrameReport
	disposed bool
}

// New creates a graph whose resources are allocated by alloc.
func New(alloc resource.Allocator, opts ...Option) *FrameGraph {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &FrameGraph{
		opts:     o,
		registry: resource.NewRegistry(alloc, o.width, o.height),
		bridge:   o.bridge,
		barrier:  barrier.New(),
		timer:    o.timer,
		writers:  make(map[string]string),
	}
	if g.bridge == nil {
		g.bridge = bridge.New()
		g.ownsBr = true
	}
	return g
}

// Registry returns the resource registry.
func (g *FrameGraph) Registry() *resource.Registry { return g.registry }

// Bridge returns the import/export bridge.
func (g *FrameGraph) Bridge() *bridge.Bridge { return g.bridge }

// Timer returns the pass timer, nil before the first frame unless one was
// supplied with WithTimer.
func (g *FrameGraph) Timer() gputimer.Timer { return g.timer }

// Size returns the full-resolution size.
func (g *FrameGraph) Size() (width, height int) { return g.registry.Size() }

// AddPass appends p to the execution order.
//
// It rejects passes with an empty or duplicate name, passes writing a
// resource another pass already writes, and passes reading and writing the
// same single-buffered resource. When a shader cache is configured the
// pass's shaders are compiled now; a compile failure is logged and the pass
// never executes.
func (g *FrameGraph) AddPass(p Pass) error {
	if g.disposed {
		return ErrDisposed
	}
	if p == nil {
		return ErrNilPass
	}
	name := p.Name()
	if name == "" {
		return ErrEmptyPassName
	}
	if _, ok := g.find(name); ok {
		return &PassError{Pass: name, Err: ErrDuplicatePass}
	}

	reads := make(map[string]bool)
	for _, in := range p.Inputs() {
		reads[in.ResourceID] = true
	}
	for _, out := range p.Outputs() {
		id := out.ResourceID
		if id == Screen {
			continue
		}
		if owner, ok := g.writers[id]; ok {
			return &PassError{Pass: name, Resource: id, Err: fmt.Errorf("%w (%s)", ErrWriterConflict, owner)}
		}
		if reads[id] && g.isSingle(id) {
			return &PassError{Pass: name, Resource: id, Err: ErrReadWriteAlias}
		}
	}

	entry := passEntry{pass: p}
	if su, ok := p.(ShaderUser); ok && g.opts.cache != nil {
		if err := g.opts.cache.CompileAll(su.Shaders()); err != nil {
			entry.shaderErr = err
			Logger().Warn("framegraph: shader compilation failed, pass disabled",
				"pass", name, "error", err)
		}
	}

	for _, out := range p.Outputs() {
		if out.ResourceID != Screen {
			g.writers[out.ResourceID] = name
		}
	}
	g.passes = append(g.passes, entry)
	return nil
}

// isSingle reports whether id is a registered owned single-buffered
// resource. Unknown ids are checked again when the pass executes.
func (g *FrameGraph) isSingle(id string) bool {
	res, ok := g.registry.Get(id)
	return ok && !res.External() && res.Descriptor().Kind == resource.Single
}

func (g *FrameGraph) find(name string) (int, bool) {
	for i, e := range g.passes {
		if e.pass.Name() == name {
			return i, true
		}
	}
	return -1, false
}

// RemovePass removes and disposes the named pass.
func (g *FrameGraph) RemovePass(name string) bool {
	i, ok := g.find(name)
	if !ok {
		return false
	}
	p := g.passes[i].pass
	g.passes = append(g.passes[:i], g.passes[i+1:]...)
	for id, owner := range g.writers {
		if owner == name {
			delete(g.writers, id)
		}
	}
	p.Dispose()
	return true
}

// Pass returns the named pass.
func (g *FrameGraph) Pass(name string) (Pass, bool) {
	i, ok := g.find(name)
	if !ok {
		return nil, false
	}
	return g.passes[i].pass, true
}

// Passes returns the passes in execution order.
func (g *FrameGraph) Passes() []Pass {
	out := make([]Pass, len(g.passes))
	for i, e := range g.passes {
		out[i] = e.pass
	}
	return out
}

// OnResize registers fn to run after every effective Resize.
func (g *FrameGraph) OnResize(fn func(width, height int)) {
	if fn != nil {
		g.onResize = append(g.onResize, fn)
	}
}

// TrackHistory registers a temporal holder owned outside the graph, such
// as a host temporal.DepthHistory, to be invalidated by Resize. The
// returned function stops tracking it.
func (g *FrameGraph) TrackHistory(h temporal.Invalidator) (untrack func()) {
	if h == nil || g.disposed {
		return func() {}
	}
	if g.history == nil {
		g.history = make(map[uint64]temporal.Invalidator)
	}
	g.nextHist++
	id := g.nextHist
	g.history[id] = h
	return func() { delete(g.history, id) }
}

// Resize reallocates resources for the new size, invalidates holders
// registered with TrackHistory and notifies Resizer passes and OnResize
// listeners. Nothing happens when the size is unchanged.
//
// Holders owned by passes are reached through Resizer. Any other holder
// keeps its history across the resize unless it is tracked, listens via
// OnResize, or the host calls temporal.InvalidateAll, which affects every
// graph in the process.
func (g *FrameGraph) Resize(width, height int) error {
	if g.disposed {
		return ErrDisposed
	}
	w, h := g.registry.Size()
	if w == width && h == height {
		return nil
	}
	if err := g.registry.Resize(width, height); err != nil {
		return fmt.Errorf("framegraph: resize: %w", err)
	}
	for _, h := range g.history {
		h.Invalidate()
	}

	var errs []error
	for _, e := range g.passes {
		if r, ok := e.pass.(Resizer); ok {
			if err := r.Resize(width, height); err != nil {
				errs = append(errs, &PassError{Pass: e.pass.Name(), Err: err})
			}
		}
	}
	for _, fn := range g.onResize {
		fn(width, height)
	}
	return errors.Join(errs...)
}

// BeginFrame starts a frame: it polls the timer, captures bridge imports
// and snapshots renderer, scene and camera state. s and c may be nil.
func (g *FrameGraph) BeginFrame(r render.Renderer, s render.Scene, c render.Camera) {
	if g.disposed || r == nil {
		return
	}
	if g.inFrame {
		g.EndFrame()
	}
	g.renderer, g.scene, g.camera = r, s, c
	g.frame++
	g.inFrame = true
	g.report = FrameReport{Frame: g.frame}

	if g.timer == nil {
		g.timer = gputimer.New(r, g.opts.timerOpts...)
	}
	g.timer.Poll()

	g.bridge.BeginFrame()
	g.report.Imports = len(g.bridge.CaptureImports())
	g.barrier.Capture(r, s, c)
}

// Execute runs every pass in order. It must be called between BeginFrame
// and EndFrame; otherwise it does nothing.
func (g *FrameGraph) Execute() {
	if !g.inFrame {
		return
	}
	w, h := g.registry.Size()
	for _, e := range g.passes {
		res := g.run(e, w, h)
		g.report.Passes = append(g.report.Passes, res)
		if g.opts.isolation {
			g.barrier.Reapply(g.renderer, g.scene, g.camera)
		}
	}
}

func (g *FrameGraph) run(e passEntry, width, height int) PassResult {
	p := e.pass
	name := p.Name()
	result := PassResult{Name: name}

	if e.shaderErr != nil {
		result.Status = PassShaderFailed
		result.Err = e.shaderErr
		return result
	}
	if en, ok := p.(Enabler); ok && !en.Enabled() {
		Logger().Debug("framegraph: pass disabled", "pass", name)
		result.Status = PassDisabled
		return result
	}

	ctx, missing, err := g.resolve(p, width, height)
	if err != nil {
		Logger().Warn("framegraph: pass skipped", "pass", name, "resource", missing, "error", err)
		result.Status = PassMissingResource
		result.Missing = missing
		result.Err = err
		return result
	}

	g.timer.Begin(name)
	err = invoke(p, ctx)
	g.timer.End(name)

	if err != nil {
		Logger().Warn("framegraph: pass failed", "pass", name, "error", err)
		result.Status = PassFailed
		result.Err = err
		return result
	}

	for _, out := range p.Outputs() {
		if out.ResourceID != Screen {
			g.registry.Commit(out.ResourceID)
		}
	}
	result.Status = PassExecuted
	return result
}

var errMissingResource = errors.New("framegraph: resource not available")

// resolve builds the pass context. It returns the id of the first resource
// that did not resolve.
func (g *FrameGraph) resolve(p Pass, width, height int) (*Context, string, error) {
	ctx := &Context{
		Renderer: g.renderer,
		Scene:    g.scene,
		Camera:   g.camera,
		Frame:    g.frame,
		Width:    width,
		Height:   height,
		pass:     p.Name(),
		reads:    make(map[string]render.Texture),
		writes:   make(map[string]render.RenderTarget),
		bridge:   g.bridge,
	}

	for _, in := range p.Inputs() {
		tex := g.registry.ReadTexture(in.ResourceID)
		if tex == nil && !in.Optional {
			return nil, in.ResourceID, errMissingResource
		}
		ctx.reads[in.ResourceID] = tex
	}
	for _, out := range p.Outputs() {
		id := out.ResourceID
		if id == Screen {
			ctx.writes[id] = nil
			continue
		}
		target := g.registry.WriteTarget(id)
		if target == nil {
			return nil, id, errMissingResource
		}
		if tex, ok := ctx.reads[id]; ok && tex != nil && tex == target.Texture() {
			return nil, id, ErrReadWriteAlias
		}
		ctx.writes[id] = target
	}
	return ctx, "", nil
}

// invoke runs Execute behind a recover boundary.
func invoke(p Pass, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PassError{Pass: p.Name(), Err: fmt.Errorf("%w: %v", ErrPassPanic, r)}
		}
	}()
	return p.Execute(ctx)
}

// EndFrame restores the captured state, applies queued exports and hands
// the frame's timestamps to the timer.
func (g *FrameGraph) EndFrame() {
	if !g.inFrame {
		return
	}
	g.inFrame = false
	g.barrier.Restore(g.renderer, g.scene, g.camera)
	g.report.Exports = g.bridge.ExecuteExports()
	g.timer.EndFrame()

	g.last = g.report
	g.report = FrameReport{}
	g.renderer, g.scene, g.camera = nil, nil, nil
}

// Render runs one complete frame and returns its report.
func (g *FrameGraph) Render(r render.Renderer, s render.Scene, c render.Camera) FrameReport {
	g.BeginFrame(r, s, c)
	g.Execute()
	g.EndFrame()
	return g.last
}

// LastFrame returns the report of the last completed frame.
func (g *FrameGraph) LastFrame() FrameReport { return g.last }

// Frame returns the number of frames begun so far.
func (g *FrameGraph) Frame() uint64 { return g.frame }

// Dispose disposes every pass and releases all resources. A bridge passed
// with WithBridge is left alone. Safe to call more than once.
func (g *FrameGraph) Dispose() {
	if g.disposed {
		return
	}
	if g.inFrame {
		g.EndFrame()
	}
	g.disposed = true
	for i := len(g.passes) - 1; i >= 0; i-- {
		g.passes[i].pass.Dispose()
	}
	g.passes = nil
	g.writers = make(map[string]string)
	g.history = nil
	g.registry.Dispose()
	if g.ownsBr {
		g.bridge.Dispose()
	}
	if g.timer != nil {
		g.timer.Reset()
	}
	g.barrier.Clear()
}
