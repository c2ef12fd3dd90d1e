// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph/bridge"
	"github.com/gogpu/framegraph/gputimer"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/framegraph/shader"
	"github.com/gogpu/framegraph/temporal"
	"github.com/gogpu/gputypes"
)

type fixture struct {
	r *render.SoftwareRenderer
	s *render.BasicScene
	c *render.BasicCamera
}

func newFixture(w, h int) fixture {
	return fixture{
		r: render.NewSoftwareRenderer(w, h),
		s: render.NewScene(render.Black),
		c: render.NewPerspectiveCamera(60, float64(w)/float64(h), 0.1, 100),
	}
}

func (f fixture) args() (render.Renderer, render.Scene, render.Camera) {
	return f.r, f.s, f.c
}

func newTestGraph(t *testing.T, w, h int, opts ...Option) *FrameGraph {
	t.Helper()
	g := New(resource.NewSoftwareAllocator(), append([]Option{WithSize(w, h)}, opts...)...)
	t.Cleanup(g.Dispose)
	return g
}

func mustAdd(t *testing.T, g *FrameGraph, p Pass) {
	t.Helper()
	if err := g.AddPass(p); err != nil {
		t.Fatalf("AddPass(%s) error = %v", p.Name(), err)
	}
}

func mustRegister(t *testing.T, g *FrameGraph, d resource.Descriptor) {
	t.Helper()
	if _, err := g.Registry().Register(d); err != nil {
		t.Fatalf("Register(%s) error = %v", d.Key, err)
	}
}

// recordingPass runs fn (if any) and counts executions.
type recordingPass struct {
	BasePass
	runs     int
	fn       func(ctx *Context) error
	shaders  []shader.Source
	disposes int
}

func (p *recordingPass) Execute(ctx *Context) error {
	p.runs++
	if p.fn != nil {
		return p.fn(ctx)
	}
	return nil
}

func (p *recordingPass) Shaders() []shader.Source { return p.shaders }

func (p *recordingPass) Dispose() {
	if !p.Disposed() {
		p.disposes++
	}
	p.BasePass.Dispose()
}

func fill(c render.Color) *render.Quad {
	return render.NewQuad(&render.Material{
		Fragment: func(_, _ float64, _, _ int) render.Color { return c },
	})
}

func TestAddPassValidation(t *testing.T) {
	g := newTestGraph(t, 4, 4)
	mustRegister(t, g, resource.Descriptor{Key: "single"})
	mustRegister(t, g, resource.Descriptor{Key: "history", Kind: resource.PingPong})

	tests := []struct {
		name string
		pass Pass
		want error
	}{
		{"nil", nil, ErrNilPass},
		{"empty name", &recordingPass{BasePass: NewBasePass("", nil, nil)}, ErrEmptyPassName},
		{"alias", &recordingPass{BasePass: NewBasePass("alias",
			[]ResourceRef{Read("single")}, []ResourceRef{Write("single")})}, ErrReadWriteAlias},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.pass == nil {
				if err := g.AddPass(nil); !errors.Is(err, tt.want) {
					t.Errorf("AddPass() error = %v, want %v", err, tt.want)
				}
				return
			}
			if err := g.AddPass(tt.pass); !errors.Is(err, tt.want) {
				t.Errorf("AddPass() error = %v, want %v", err, tt.want)
			}
		})
	}

	// Ping-pong keys may be read and written by one pass.
	mustAdd(t, g, &recordingPass{BasePass: NewBasePass("accumulate",
		[]ResourceRef{ReadOptional("history")}, []ResourceRef{Write("history")})})

	err := g.AddPass(&recordingPass{BasePass: NewBasePass("accumulate", nil, nil)})
	if !errors.Is(err, ErrDuplicatePass) {
		t.Errorf("AddPass(duplicate) error = %v, want %v", err, ErrDuplicatePass)
	}

	err = g.AddPass(&recordingPass{BasePass: NewBasePass("second-writer", nil, []ResourceRef{Write("history")})})
	var pe *PassError
	if !errors.Is(err, ErrWriterConflict) || !errors.As(err, &pe) || pe.Resource != "history" {
		t.Errorf("AddPass(second writer) error = %v, want writer conflict on history", err)
	}

	// Screen can have several writers.
	mustAdd(t, g, &recordingPass{BasePass: NewBasePass("s1", nil, []ResourceRef{Write(Screen)})})
	mustAdd(t, g, &recordingPass{BasePass: NewBasePass("s2", nil, []ResourceRef{Write(Screen)})})
}

func TestUnknownInputSkipsPass(t *testing.T) {
	g := newTestGraph(t, 4, 4)
	p := &recordingPass{BasePass: NewBasePass("p", []ResourceRef{Read("nope")}, nil)}
	mustAdd(t, g, p)

	report := g.Render(newFixture(4, 4).args())
	if p.runs != 0 {
		t.Error("pass with missing input executed")
	}
	if st, _ := report.Status("p"); st != PassMissingResource {
		t.Errorf("Status(p) = %v, want %v", st, PassMissingResource)
	}
	if report.Passes[0].Missing != "nope" {
		t.Errorf("Missing = %q, want nope", report.Passes[0].Missing)
	}
}

func TestExecutionOrderAndCommit(t *testing.T) {
	g := newTestGraph(t, 2, 2)
	mustRegister(t, g, resource.Descriptor{Key: "a"})
	mustRegister(t, g, resource.Descriptor{Key: "b"})

	var order []string
	producer := &recordingPass{BasePass: NewBasePass("producer", nil, []ResourceRef{Write("a")})}
	producer.fn = func(ctx *Context) error {
		order = append(order, "producer")
		return ctx.DrawTo("a", fill(render.Red))
	}
	consumer := &recordingPass{BasePass: NewBasePass("consumer", []ResourceRef{Read("a")}, []ResourceRef{Write("b")})}
	consumer.fn = func(ctx *Context) error {
		order = append(order, "consumer")
		src := ctx.ReadTexture("a")
		return ctx.DrawTo("b", render.NewQuad(&render.Material{
			Fragment: func(_, _ float64, x, y int) render.Color { return render.Load(src, x, y) },
		}))
	}
	mustAdd(t, g, producer)
	mustAdd(t, g, consumer)

	report := g.Render(newFixture(2, 2).args())
	if len(order) != 2 || order[0] != "producer" {
		t.Errorf("order = %v, want [producer consumer]", order)
	}
	if got := report.Executed(); len(got) != 2 {
		t.Errorf("Executed() = %v", got)
	}
	out := g.Registry().ReadTexture("b").(*render.Pixmap)
	if out.At(1, 1) != render.Red {
		t.Errorf("b(1,1) = %v, want red", out.At(1, 1))
	}
}

func TestConsumerBeforeProducerSkipsFirstFrame(t *testing.T) {
	g := newTestGraph(t, 2, 2)
	mustRegister(t, g, resource.Descriptor{Key: "a"})

	consumer := &recordingPass{BasePass: NewBasePass("consumer", []ResourceRef{Read("a")}, nil)}
	producer := &recordingPass{BasePass: NewBasePass("producer", nil, []ResourceRef{Write("a")})}
	mustAdd(t, g, consumer)
	mustAdd(t, g, producer)

	f := newFixture(2, 2)
	g.Render(f.args())
	if consumer.runs != 0 {
		t.Error("consumer ran before anything was produced")
	}
	g.Render(f.args())
	if consumer.runs != 1 {
		t.Errorf("consumer runs = %d on second frame, want 1", consumer.runs)
	}
}

func TestPingPongHistory(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	mustRegister(t, g, resource.Descriptor{Key: "history", Kind: resource.PingPong})

	var seen []render.Color
	p := &recordingPass{BasePass: NewBasePass("accumulate",
		[]ResourceRef{ReadOptional("history")}, []ResourceRef{Write("history")})}
	p.fn = func(ctx *Context) error {
		prev := ctx.ReadTexture("history")
		prevColor := render.Load(prev, 0, 0)
		seen = append(seen, prevColor)
		if prev != nil && prev == ctx.WriteTarget("history").Texture() {
			t.Error("history read and write alias")
		}
		return ctx.DrawTo("history", fill(render.RGB(float64(ctx.Frame), 0, 0)))
	}
	mustAdd(t, g, p)

	f := newFixture(1, 1)
	for i := 0; i < 3; i++ {
		g.Render(f.args())
	}
	if seen[0] != render.Transparent {
		t.Errorf("frame 1 history = %v, want none", seen[0])
	}
	if seen[1].R != 1 || seen[2].R != 2 {
		t.Errorf("history = %v, want previous frame's value each frame", seen)
	}
}

func TestFailedPassDoesNotCommit(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	mustRegister(t, g, resource.Descriptor{Key: "a"})
	mustRegister(t, g, resource.Descriptor{Key: "b"})

	failing := &recordingPass{BasePass: NewBasePass("failing", nil, []ResourceRef{Write("a")})}
	failing.fn = func(*Context) error { return errors.New("boom") }
	panicking := &recordingPass{BasePass: NewBasePass("panicking", nil, []ResourceRef{Write("b")})}
	panicking.fn = func(*Context) error { panic("kaboom") }
	after := &recordingPass{BasePass: NewBasePass("after", nil, []ResourceRef{Write(Screen)})}
	mustAdd(t, g, failing)
	mustAdd(t, g, panicking)
	mustAdd(t, g, after)

	report := g.Render(newFixture(1, 1).args())
	if g.Registry().ReadTexture("a") != nil || g.Registry().ReadTexture("b") != nil {
		t.Error("failed pass output was committed")
	}
	if after.runs != 1 {
		t.Error("a failing pass stopped the frame")
	}
	if report.Passes[1].Status != PassFailed || !errors.Is(report.Passes[1].Err, ErrPassPanic) {
		t.Errorf("panicking result = %+v, want failed with %v", report.Passes[1], ErrPassPanic)
	}
}

func TestDisabledPassSkipped(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	p := &recordingPass{BasePass: NewBasePass("p", nil, nil)}
	p.SetEnabled(false)
	mustAdd(t, g, p)
	report := g.Render(newFixture(1, 1).args())
	if p.runs != 0 {
		t.Error("disabled pass executed")
	}
	if st, _ := report.Status("p"); st != PassDisabled {
		t.Errorf("Status(p) = %v, want %v", st, PassDisabled)
	}
}

func TestPassIsolation(t *testing.T) {
	tests := []struct {
		isolation bool
		want      render.Color
	}{
		{true, render.Black},
		{false, render.Red},
	}
	for _, tt := range tests {
		g := newTestGraph(t, 1, 1, WithPassIsolation(tt.isolation))
		var seen render.Color
		leak := &recordingPass{BasePass: NewBasePass("leak", nil, nil)}
		leak.fn = func(ctx *Context) error {
			ctx.Renderer.SetClearColor(render.Red, 1)
			ctx.Scene.SetBackground(render.Red)
			return nil
		}
		observe := &recordingPass{BasePass: NewBasePass("observe", nil, nil)}
		observe.fn = func(ctx *Context) error {
			seen = ctx.Renderer.ClearColor()
			return nil
		}
		mustAdd(t, g, leak)
		mustAdd(t, g, observe)

		f := newFixture(1, 1)
		g.Render(f.args())
		if seen != tt.want {
			t.Errorf("isolation=%v: next pass saw clear color %v, want %v", tt.isolation, seen, tt.want)
		}
		// Whatever the isolation mode, the frame end restores everything.
		if f.r.ClearColor() != render.Black || f.s.Background() != render.Black {
			t.Errorf("isolation=%v: state leaked out of the frame", tt.isolation)
		}
	}
}

func TestScreenOutput(t *testing.T) {
	g := newTestGraph(t, 2, 2)
	p := &recordingPass{BasePass: NewBasePass("output", nil, []ResourceRef{Write(Screen)})}
	p.fn = func(ctx *Context) error {
		if ctx.WriteTarget(Screen) != nil {
			t.Error("WriteTarget(Screen) != nil")
		}
		return ctx.DrawTo(Screen, fill(render.Green))
	}
	mustAdd(t, g, p)
	f := newFixture(2, 2)
	g.Render(f.args())
	if got := f.r.Screen().Pixmap().At(0, 0); got != render.Green {
		t.Errorf("screen = %v, want green", got)
	}
}

func TestDrawToUndeclared(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	mustRegister(t, g, resource.Descriptor{Key: "a"})
	p := &recordingPass{BasePass: NewBasePass("p", nil, nil)}
	p.fn = func(ctx *Context) error { return ctx.DrawTo("a", fill(render.Red)) }
	mustAdd(t, g, p)
	report := g.Render(newFixture(1, 1).args())
	if report.Passes[0].Status != PassFailed {
		t.Errorf("DrawTo(undeclared) status = %v, want failed", report.Passes[0].Status)
	}
}

func TestBridgeEndToEnd(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	f := newFixture(1, 1)

	b := g.Bridge()
	if err := b.RegisterImport(bridge.Import{
		ID:  "background",
		Get: func() (any, error) { return f.s.Background(), nil },
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterExport(bridge.Export{
		ID:  "background",
		Set: func(v any) error { f.s.SetBackground(v); return nil },
	}); err != nil {
		t.Fatal(err)
	}

	var imported []any
	p := &recordingPass{BasePass: NewBasePass("tint", nil, nil)}
	p.fn = func(ctx *Context) error {
		v, _ := ctx.Import("background")
		imported = append(imported, v)
		ctx.QueueExport("background", render.Red)
		ctx.QueueExport("nobody-listens", 1)
		return nil
	}
	mustAdd(t, g, p)

	report := g.Render(f.args())
	if imported[0] != render.Black {
		t.Errorf("first import = %v, want black", imported[0])
	}
	if f.s.Background() != render.Red {
		t.Errorf("background after frame = %v, want red", f.s.Background())
	}
	if report.Exports != 1 || report.Imports != 1 {
		t.Errorf("report imports/exports = %d/%d, want 1/1", report.Imports, report.Exports)
	}

	g.Render(f.args())
	if imported[1] != render.Red {
		t.Errorf("second import = %v, want red", imported[1])
	}
}

func TestResize(t *testing.T) {
	g := newTestGraph(t, 4, 4)
	mustRegister(t, g, resource.Descriptor{Key: "half", Scale: 0.5})

	resized := 0
	g.OnResize(func(w, h int) { resized++ })

	rp := &resizingPass{BasePass: NewBasePass("r", nil, nil)}
	mustAdd(t, g, rp)

	if err := g.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	if resized != 0 || rp.calls != 0 {
		t.Error("Resize() to the same size notified listeners")
	}
	if err := g.Resize(8, 6); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	res, _ := g.Registry().Get("half")
	if w, h := res.Size(); w != 4 || h != 3 {
		t.Errorf("half size = %dx%d, want 4x3", w, h)
	}
	if resized != 1 || rp.calls != 1 {
		t.Errorf("listeners = %d, Resizer calls = %d, want 1 and 1", resized, rp.calls)
	}

	rp.err = errors.New("cannot")
	if err := g.Resize(10, 10); !errors.Is(err, rp.err) {
		t.Errorf("Resize() error = %v, want %v", err, rp.err)
	}
}

func TestResizeInvalidatesTrackedHistory(t *testing.T) {
	g := newTestGraph(t, 4, 4)
	tracked := temporal.NewDepthHistory()
	defer tracked.Dispose()
	other := temporal.NewDepthHistory()
	defer other.Dispose()

	depth := render.NewPixmap("depth", 4, 4, gputypes.TextureFormatRGBA16Float)
	tracked.UpdateState(depth, 4, 4)
	other.UpdateState(depth, 4, 4)

	untrack := g.TrackHistory(tracked)
	if err := g.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	if !tracked.Valid() {
		t.Error("Resize() to the same size invalidated history")
	}

	if err := g.Resize(8, 8); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if tracked.Valid() {
		t.Error("tracked history still valid after Resize()")
	}
	if !other.Valid() {
		t.Error("untracked history invalidated by Resize()")
	}

	untrack()
	tracked.UpdateState(depth, 8, 8)
	if err := g.Resize(16, 16); err != nil {
		t.Fatal(err)
	}
	if !tracked.Valid() {
		t.Error("history invalidated after untrack")
	}
}

type resizingPass struct {
	BasePass
	calls int
	err   error
}

func (p *resizingPass) Execute(*Context) error { return nil }

func (p *resizingPass) Resize(int, int) error {
	p.calls++
	return p.err
}

func TestShaderCompileFailureDisablesPass(t *testing.T) {
	cache, err := shader.NewCache(8, shader.WithCompiler(func(wgsl string) ([]byte, error) {
		if wgsl == "broken" {
			return nil, errors.New("parse error")
		}
		return []byte{0, 0, 0, 0}, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	g := newTestGraph(t, 1, 1, WithShaderCache(cache))

	good := &recordingPass{BasePass: NewBasePass("good", nil, nil), shaders: []shader.Source{{Name: "g", WGSL: "ok"}}}
	bad := &recordingPass{BasePass: NewBasePass("bad", nil, nil), shaders: []shader.Source{{Name: "b", WGSL: "broken"}}}
	mustAdd(t, g, good)
	mustAdd(t, g, bad)

	report := g.Render(newFixture(1, 1).args())
	if good.runs != 1 || bad.runs != 0 {
		t.Errorf("runs good/bad = %d/%d, want 1/0", good.runs, bad.runs)
	}
	if st, _ := report.Status("bad"); st != PassShaderFailed {
		t.Errorf("Status(bad) = %v, want %v", st, PassShaderFailed)
	}
	if cache.Len() != 1 {
		t.Errorf("cache.Len() = %d, want 1", cache.Len())
	}
}

func TestTimerSelectedFromRenderer(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	mustAdd(t, g, &recordingPass{BasePass: NewBasePass("timed", nil, nil)})
	f := newFixture(1, 1)

	g.Render(f.args())
	if g.Timer() == nil || !g.Timer().Enabled() {
		t.Fatal("software renderer should select the query timer")
	}
	g.Render(f.args())
	if _, ok := g.Timer().Stats("timed"); !ok {
		t.Error("Stats(timed) missing after a later frame polled")
	}
}

func TestWithTimer(t *testing.T) {
	f := newFixture(1, 1)
	f.r.EnableTimestamps(false)
	g := newTestGraph(t, 1, 1, WithTimer(gputimer.New(f.r)))
	g.Render(f.args())
	if g.Timer().Enabled() {
		t.Error("timer without timestamp support is enabled")
	}
}

func TestRemovePassAndDispose(t *testing.T) {
	g := New(resource.NewSoftwareAllocator(), WithSize(2, 2))
	mustRegister(t, g, resource.Descriptor{Key: "a"})
	a := &recordingPass{BasePass: NewBasePass("a", nil, []ResourceRef{Write("a")})}
	b := &recordingPass{BasePass: NewBasePass("b", nil, nil)}
	mustAdd(t, g, a)
	mustAdd(t, g, b)

	if !g.RemovePass("a") || a.disposes != 1 {
		t.Error("RemovePass(a) did not dispose the pass")
	}
	if g.RemovePass("a") {
		t.Error("second RemovePass(a) = true")
	}
	// The writer slot is free again.
	mustAdd(t, g, &recordingPass{BasePass: NewBasePass("a2", nil, []ResourceRef{Write("a")})})
	if names := len(g.Passes()); names != 2 {
		t.Errorf("len(Passes()) = %d, want 2", names)
	}
	if _, ok := g.Pass("b"); !ok {
		t.Error("Pass(b) missing")
	}

	g.Dispose()
	g.Dispose()
	if b.disposes != 1 {
		t.Errorf("b disposed %d times, want 1", b.disposes)
	}
	if err := g.AddPass(b); !errors.Is(err, ErrDisposed) {
		t.Errorf("AddPass() after Dispose error = %v, want %v", err, ErrDisposed)
	}
	g.Render(newFixture(1, 1).args())
}

func TestBasePassDispose(t *testing.T) {
	p := NewBasePass("p", []ResourceRef{Write("x")}, []ResourceRef{Read("y")})
	if p.Inputs()[0].Access != AccessRead || p.Outputs()[0].Access != AccessWrite {
		t.Error("NewBasePass did not normalize access")
	}
	var order []int
	p.OnDispose(func() { order = append(order, 1) })
	p.OnDispose(func() { order = append(order, 2) })
	p.Dispose()
	p.Dispose()
	if len(order) != 2 || order[0] != 2 {
		t.Errorf("dispose order = %v, want [2 1]", order)
	}
	if p.Enabled() {
		t.Error("disposed pass reports enabled")
	}
}

func TestFrameCounter(t *testing.T) {
	g := newTestGraph(t, 1, 1)
	var frames []uint64
	p := &recordingPass{BasePass: NewBasePass("p", nil, nil)}
	p.fn = func(ctx *Context) error {
		frames = append(frames, ctx.Frame)
		return nil
	}
	mustAdd(t, g, p)
	f := newFixture(1, 1)
	g.Render(f.args())
	g.Render(f.args())
	if len(frames) != 2 || frames[0] != 1 || frames[1] != 2 {
		t.Errorf("frames = %v, want [1 2]", frames)
	}
	if g.LastFrame().Frame != 2 {
		t.Errorf("LastFrame().Frame = %d, want 2", g.LastFrame().Frame)
	}
}
