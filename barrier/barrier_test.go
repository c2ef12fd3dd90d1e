// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package barrier

import (
	"testing"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
)

type fixture struct {
	r *render.SoftwareRenderer
	s *render.BasicScene
	c *render.BasicCamera
}

func newFixture() fixture {
	return fixture{
		r: render.NewSoftwareRenderer(4, 4),
		s: render.NewScene(render.Black),
		c: render.NewPerspectiveCamera(60, 1, 0.1, 100),
	}
}

func TestRoundTripIndependentCycles(t *testing.T) {
	f := newFixture()
	b := New()

	for _, tc := range []struct {
		name     string
		original render.Color
	}{
		{"red", render.Red},
		{"blue", render.Blue},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f.s.SetBackground(tc.original)
			b.Capture(f.r, f.s, f.c)
			f.s.SetBackground(render.Green)
			b.Restore(f.r, f.s, f.c)

			if got := f.s.Background(); got != tc.original {
				t.Errorf("Background() = %v, want %v", got, tc.original)
			}
			if b.HasCapturedState() {
				t.Error("HasCapturedState() = true after Restore")
			}
		})
	}
}

func TestRestoreAllFields(t *testing.T) {
	f := newFixture()
	target := render.NewPixmapTarget("t", 2, 2, gputypes.TextureFormatRGBA8Unorm)
	override := &render.Material{Label: "override"}
	env := render.RGB(0.2, 0.2, 0.2)

	f.r.SetRenderTarget(target)
	f.r.SetClearColor(render.Red, 0.25)
	f.r.SetAutoClear(render.ClearFlags{Auto: true, Color: true, Depth: false, Stencil: true})
	f.s.SetEnvironment(env)
	f.s.SetOverrideMaterial(override)
	f.c.SetLayers(render.LayerMask(4))

	b := New()
	b.Capture(f.r, f.s, f.c)
	if !b.HasCapturedState() {
		t.Fatal("HasCapturedState() = false after Capture")
	}

	f.r.SetRenderTarget(nil)
	f.r.SetClearColor(render.White, 1)
	f.r.SetAutoClear(render.ClearFlags{})
	f.s.SetEnvironment(nil)
	f.s.SetOverrideMaterial(nil)
	f.c.SetLayers(render.DefaultLayers)

	b.Restore(f.r, f.s, f.c)

	if f.r.RenderTarget() != target {
		t.Error("render target not restored")
	}
	if f.r.ClearColor() != render.Red || f.r.ClearAlpha() != 0.25 {
		t.Errorf("clear = %v/%v, want red/0.25", f.r.ClearColor(), f.r.ClearAlpha())
	}
	if got := f.r.AutoClear(); got != (render.ClearFlags{Auto: true, Color: true, Stencil: true}) {
		t.Errorf("AutoClear() = %+v", got)
	}
	if f.s.Environment() != env {
		t.Errorf("Environment() = %v, want %v", f.s.Environment(), env)
	}
	if f.s.OverrideMaterial() != override {
		t.Error("override material not restored")
	}
	if f.c.Layers() != render.LayerMask(4) {
		t.Errorf("Layers() = %b, want %b", f.c.Layers(), render.LayerMask(4))
	}
}

func TestCaptureCopiesColorPointers(t *testing.T) {
	f := newFixture()
	bg := render.RGB(1, 0, 0)
	f.s.SetBackground(&bg)

	b := New()
	b.Capture(f.r, f.s, f.c)
	bg.R = 0 // mutate the live value in place
	b.Restore(f.r, f.s, f.c)

	got, ok := f.s.Background().(*render.Color)
	if !ok {
		t.Fatalf("Background() = %T, want *render.Color", f.s.Background())
	}
	if got.R != 1 {
		t.Errorf("restored background = %v, want red", *got)
	}
}

func TestRestoreWithoutCapture(t *testing.T) {
	f := newFixture()
	f.s.SetBackground(render.Green)
	f.r.SetClearColor(render.Blue, 0.5)

	b := New()
	b.Restore(f.r, f.s, f.c)
	b.Reapply(f.r, f.s, f.c)

	if f.s.Background() != render.Green || f.r.ClearColor() != render.Blue {
		t.Error("Restore() without Capture changed state")
	}
}

func TestClearDropsSnapshot(t *testing.T) {
	f := newFixture()
	b := New()
	f.s.SetBackground(render.Red)
	b.Capture(f.r, f.s, f.c)
	b.Clear()
	f.s.SetBackground(render.Green)
	b.Restore(f.r, f.s, f.c)
	if f.s.Background() != render.Green {
		t.Error("Restore() after Clear() restored state")
	}
}

func TestReapplyKeepsSnapshot(t *testing.T) {
	f := newFixture()
	b := New()
	f.r.SetClearColor(render.Red, 1)
	b.Capture(f.r, f.s, f.c)

	for i := 0; i < 2; i++ {
		f.r.SetClearColor(render.Green, 1)
		b.Reapply(f.r, f.s, f.c)
		if f.r.ClearColor() != render.Red {
			t.Fatalf("Reapply() #%d clear color = %v, want red", i, f.r.ClearColor())
		}
	}
	if !b.HasCapturedState() {
		t.Error("Reapply() consumed the snapshot")
	}
}

func TestNilSceneAndCamera(t *testing.T) {
	r := render.NewSoftwareRenderer(1, 1)
	b := New()
	b.Capture(r, nil, nil)
	snap, ok := b.Snapshot()
	if !ok || snap.HasScene || snap.HasCamera {
		t.Errorf("Snapshot() = %+v, %v", snap, ok)
	}
	b.Restore(r, nil, nil)
}
