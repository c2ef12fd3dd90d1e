// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "testing"

type params struct{ exposure float64 }

func (p *params) Clone() any {
	c := *p
	return &c
}

func TestSnapshot(t *testing.T) {
	c := RGB(1, 0, 0)
	pc := &c
	snap := Snapshot(pc).(*Color)
	pc.G = 1
	if snap.G != 0 {
		t.Errorf("Snapshot(*Color) shares storage: %v", *snap)
	}

	weights := []float64{1, 2}
	ws := Snapshot(weights).([]float64)
	weights[0] = 9
	if ws[0] != 1 {
		t.Errorf("Snapshot([]float64) shares storage: %v", ws)
	}

	p := &params{exposure: 1}
	ps := Snapshot(p).(*params)
	p.exposure = 2
	if ps.exposure != 1 {
		t.Errorf("Snapshot(Cloner) exposure = %v, want 1", ps.exposure)
	}

	m := &Material{Label: "override"}
	if Snapshot(m) != any(m) {
		t.Error("Snapshot(*Material) should keep identity")
	}
	if Snapshot(nil) != nil {
		t.Error("Snapshot(nil) != nil")
	}
}
