// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package barrier isolates renderer, scene and camera configuration from
// the passes that touch it.
//
// A StateBarrier captures the configuration before a group of passes runs
// and writes it back afterwards, so a pass that changes the clear color or
// the scene background cannot leak that change into later passes or into
// the host's own rendering.
package barrier

import (
	"github.com/gogpu/framegraph/render"
)

// Snapshot is the captured configuration.
//
// Colors are held by value; Background and Environment go through
// render.Snapshot so mutable color values are copied too.
type Snapshot struct {
	Target     render.RenderTarget
	ClearColor render.Color
	ClearAlpha float64
	AutoClear  render.ClearFlags

	HasScene         bool
	Background       any
	Environment      any
	OverrideMaterial *render.Material

	HasCamera bool
	Layers    render.Layers
}

// Capture reads the configuration of r, s and c. Nil scene or camera are
// skipped.
func Capture(r render.Renderer, s render.Scene, c render.Camera) Snapshot {
	snap := Snapshot{
		Target:     r.RenderTarget(),
		ClearColor: r.ClearColor(),
		ClearAlpha: r.ClearAlpha(),
		AutoClear:  r.AutoClear(),
	}
	if s != nil {
		snap.HasScene = true
		snap.Background = render.Snapshot(s.Background())
		snap.Environment = render.Snapshot(s.Environment())
		snap.OverrideMaterial = s.OverrideMaterial()
	}
	if c != nil {
		snap.HasCamera = true
		snap.Layers = c.Layers()
	}
	return snap
}

// Apply writes snap back to r, s and c.
func (snap Snapshot) Apply(r render.Renderer, s render.Scene, c render.Camera) {
	r.SetRenderTarget(snap.Target)
	r.SetClearColor(snap.ClearColor, snap.ClearAlpha)
	r.SetAutoClear(snap.AutoClear)
	if snap.HasScene && s != nil {
		// Each restore hands out a fresh copy so the scene never holds the
		// snapshot's own storage.
		s.SetBackground(render.Snapshot(snap.Background))
		s.SetEnvironment(render.Snapshot(snap.Environment))
		s.SetOverrideMaterial(snap.OverrideMaterial)
	}
	if snap.HasCamera && c != nil {
		c.SetLayers(snap.Layers)
	}
}

// StateBarrier holds at most one outstanding snapshot.
type StateBarrier struct {
	snap     Snapshot
	captured bool
}

// New creates an empty barrier.
func New() *StateBarrier {
	return &StateBarrier{}
}

// Capture stores the current configuration, replacing any outstanding
// snapshot.
func (b *StateBarrier) Capture(r render.Renderer, s render.Scene, c render.Camera) {
	if r == nil {
		return
	}
	b.snap = Capture(r, s, c)
	b.captured = true
}

// HasCapturedState reports whether a snapshot is outstanding.
func (b *StateBarrier) HasCapturedState() bool { return b.captured }

// Snapshot returns the outstanding snapshot.
func (b *StateBarrier) Snapshot() (Snapshot, bool) { return b.snap, b.captured }

// Restore writes the snapshot back and consumes it. Without an outstanding
// snapshot it does nothing.
func (b *StateBarrier) Restore(r render.Renderer, s render.Scene, c render.Camera) {
	if !b.captured || r == nil {
		return
	}
	b.snap.Apply(r, s, c)
	b.Clear()
}

// Reapply writes the snapshot back and keeps it outstanding.
func (b *StateBarrier) Reapply(r render.Renderer, s render.Scene, c render.Camera) {
	if !b.captured || r == nil {
		return
	}
	b.snap.Apply(r, s, c)
}

// Clear drops the snapshot without restoring it.
func (b *StateBarrier) Clear() {
	b.snap = Snapshot{}
	b.captured = false
}
