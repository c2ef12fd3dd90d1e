// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputimer

import (
	"errors"
	"testing"
	"time"
)

// fakeQuerier writes scripted ticks and hands out pending resolutions.
type fakeQuerier struct {
	supported bool
	clock     uint64
	step      uint64
	slots     map[int]uint64
	pending   []*PendingResolution
	ranges    [][2]int
}

func newFakeQuerier(step uint64) *fakeQuerier {
	return &fakeQuerier{supported: true, step: step, slots: make(map[int]uint64)}
}

func (f *fakeQuerier) TimestampsSupported() bool { return f.supported }
func (f *fakeQuerier) TimestampPeriod() float64  { return 1 }

func (f *fakeQuerier) WriteTimestamp(slot int) {
	f.clock += f.step
	f.slots[slot] = f.clock
}

func (f *fakeQuerier) ResolveTimestamps(first, count int) Resolution {
	p := &PendingResolution{}
	f.pending = append(f.pending, p)
	f.ranges = append(f.ranges, [2]int{first, count})
	return p
}

// resolve completes pending resolution i with the slot values it covers.
func (f *fakeQuerier) resolve(i int) {
	first, count := f.ranges[i][0], f.ranges[i][1]
	values := make([]uint64, count)
	for j := range values {
		values[j] = f.slots[first+j]
	}
	f.pending[i].Resolve(values)
}

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		name       string
		capability any
		want       bool
	}{
		{"nil", nil, false},
		{"not a querier", struct{}{}, false},
		{"unsupported", &fakeQuerier{supported: false}, false},
		{"supported", newFakeQuerier(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.capability).Enabled(); got != tt.want {
				t.Errorf("New(%s).Enabled() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNoopTimerIsInert(t *testing.T) {
	timer := New(nil)
	timer.Begin("bloom")
	timer.End("bloom")
	timer.EndFrame()
	timer.Poll()
	if _, ok := timer.Stats("bloom"); ok {
		t.Error("noop timer produced stats")
	}
	if len(timer.Labels()) != 0 {
		t.Errorf("Labels() = %v, want empty", timer.Labels())
	}
}

func TestQueryTimerResolvesOnLaterPoll(t *testing.T) {
	q := newFakeQuerier(1000)
	timer := New(q)

	timer.Begin("bloom")
	timer.End("bloom")
	timer.EndFrame()

	timer.Poll()
	if _, ok := timer.Stats("bloom"); ok {
		t.Fatal("stats available before resolution")
	}

	q.resolve(0)
	timer.Poll()
	s, ok := timer.Stats("bloom")
	if !ok {
		t.Fatal("Stats(bloom) missing after resolution")
	}
	if s.Last != time.Microsecond || s.Samples != 1 {
		t.Errorf("Stats(bloom) = %+v, want Last=1µs Samples=1", s)
	}
}

func TestQueryTimerDropsFramesBeyondBudget(t *testing.T) {
	q := newFakeQuerier(10)
	timer := New(q, WithFramesInFlight(2))

	for i := 0; i < 3; i++ {
		timer.Begin("pass")
		timer.End("pass")
		timer.EndFrame()
	}
	// Frame 0 was dropped when frame 2 was submitted.
	for i := range q.pending {
		q.resolve(i)
	}
	timer.Poll()

	s, ok := timer.Stats("pass")
	if !ok {
		t.Fatal("Stats(pass) missing")
	}
	if s.Samples != 2 {
		t.Errorf("Samples = %d, want 2", s.Samples)
	}
}

func TestQueryTimerSlotsDoNotOverlapInFlight(t *testing.T) {
	q := newFakeQuerier(1)
	timer := New(q, WithFramesInFlight(2), WithMaxRegions(4))
	for i := 0; i < 3; i++ {
		timer.Begin("a")
		timer.End("a")
		timer.EndFrame()
	}
	seen := map[int]bool{}
	for _, r := range q.ranges {
		if seen[r[0]] {
			t.Errorf("slot block %d reused while in flight", r[0])
		}
		seen[r[0]] = true
	}
}

func TestQueryTimerEmptyFramesKeepSlotBlocks(t *testing.T) {
	q := newFakeQuerier(10)
	timer := New(q, WithFramesInFlight(2), WithMaxRegions(4))

	timer.Begin("a")
	timer.End("a")
	timer.EndFrame()

	// Frames without regions submit nothing and must not rotate the ring.
	timer.EndFrame()
	timer.EndFrame()

	q.step = 100
	timer.Begin("b")
	timer.End("b")
	timer.EndFrame()

	if q.ranges[0][0] == q.ranges[1][0] {
		t.Fatalf("frames share slot block %d", q.ranges[0][0])
	}
	q.resolve(0)
	q.resolve(1)
	timer.Poll()

	if s, ok := timer.Stats("a"); !ok || s.Last != 10*time.Nanosecond {
		t.Errorf("Stats(a) = %+v, %v, want Last=10ns", s, ok)
	}
	if s, ok := timer.Stats("b"); !ok || s.Last != 100*time.Nanosecond {
		t.Errorf("Stats(b) = %+v, %v, want Last=100ns", s, ok)
	}
}

func TestQueryTimerRetiresFrameWhoseBlockIsReused(t *testing.T) {
	q := newFakeQuerier(10)
	timer := New(q, WithFramesInFlight(2), WithMaxRegions(4))

	for _, label := range []string{"a", "b", "c"} {
		timer.Begin(label)
		timer.End(label)
		timer.EndFrame()
		if label == "b" {
			q.resolve(1)
			timer.Poll()
		}
	}
	// "a" is still unresolved; "d" reuses its block.
	timer.Begin("d")
	timer.End("d")
	timer.EndFrame()
	if q.ranges[0][0] != q.ranges[3][0] {
		t.Fatalf("block of d = %d, want %d", q.ranges[3][0], q.ranges[0][0])
	}

	for i := range q.pending {
		q.resolve(i)
	}
	timer.Poll()
	if _, ok := timer.Stats("a"); ok {
		t.Error("Stats(a) recorded from a reused slot block")
	}
	for _, label := range []string{"b", "c", "d"} {
		if _, ok := timer.Stats(label); !ok {
			t.Errorf("Stats(%s) missing", label)
		}
	}
}

func TestQueryTimerIgnoresUnendedAndFailed(t *testing.T) {
	q := newFakeQuerier(5)
	timer := New(q)

	timer.Begin("open")
	timer.End("unknown")
	timer.EndFrame()
	q.resolve(0)

	timer.Begin("failed")
	timer.End("failed")
	timer.EndFrame()
	q.pending[1].Fail(errors.New("device lost"))

	timer.Poll()
	if labels := timer.Labels(); len(labels) != 0 {
		t.Errorf("Labels() = %v, want none", labels)
	}
}

func TestQueryTimerRegionLimit(t *testing.T) {
	q := newFakeQuerier(1)
	timer := New(q, WithMaxRegions(1))
	timer.Begin("first")
	timer.End("first")
	timer.Begin("second")
	timer.End("second")
	timer.EndFrame()
	q.resolve(0)
	timer.Poll()

	if _, ok := timer.Stats("second"); ok {
		t.Error("region beyond limit was measured")
	}
	if _, ok := timer.Stats("first"); !ok {
		t.Error("Stats(first) missing")
	}
}

func TestStatsAverage(t *testing.T) {
	var s Stats
	s.update(10 * time.Millisecond)
	s.update(30 * time.Millisecond)
	if s.Average != 20*time.Millisecond {
		t.Errorf("Average = %v, want 20ms", s.Average)
	}
	if s.Max != 30*time.Millisecond || s.Last != 30*time.Millisecond {
		t.Errorf("Max/Last = %v/%v, want 30ms/30ms", s.Max, s.Last)
	}
}

func TestReset(t *testing.T) {
	q := newFakeQuerier(1)
	timer := New(q)
	timer.Begin("a")
	timer.End("a")
	timer.EndFrame()
	q.resolve(0)
	timer.Poll()
	timer.Reset()
	if len(timer.Labels()) != 0 {
		t.Errorf("Labels() after Reset = %v", timer.Labels())
	}
}
