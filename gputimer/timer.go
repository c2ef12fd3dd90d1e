// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputimer

import (
	"sort"
	"time"

	"github.com/gogpu/framegraph/internal/logging"
)

// Timer measures labelled GPU regions.
//
// A region is opened with Begin and closed with End. EndFrame hands the
// frame's timestamps to the GPU; Poll, usually called at the start of the
// next frame, folds every resolved frame into Stats.
type Timer interface {
	// Enabled reports whether measurements are actually taken.
	Enabled() bool

	Begin(label string)
	End(label string)
	EndFrame()
	Poll()

	// Stats returns the statistics of label, if any sample was recorded.
	Stats(label string) (Stats, bool)

	// Labels returns every label with statistics, sorted.
	Labels() []string

	// Reset drops pending frames and statistics.
	Reset()
}

// Option configures a Timer.
type Option func(*options)

type options struct {
	framesInFlight int
	maxRegions     int
}

func defaultOptions() options {
	return options{
		framesInFlight: 3,
		maxRegions:     32,
	}
}

// WithFramesInFlight sets how many frames may wait for resolution before
// the oldest is dropped. Values below 1 are ignored.
func WithFramesInFlight(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.framesInFlight = n
		}
	}
}

// WithMaxRegions sets how many regions one frame can time. Regions beyond
// the limit are not measured. Values below 1 are ignored.
func WithMaxRegions(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxRegions = n
		}
	}
}

// New selects the timer strategy for capability.
//
// capability is typically the renderer. When it implements TimestampQuerier
// and reports support, a query-based timer is returned; otherwise a timer
// that records nothing.
func New(capability any, opts ...Option) Timer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	q, ok := capability.(TimestampQuerier)
	if !ok || !q.TimestampsSupported() {
		logging.Logger().Info("gputimer: timestamp queries unavailable, timing disabled")
		return noopTimer{}
	}
	logging.Logger().Info("gputimer: using timestamp queries",
		"framesInFlight", o.framesInFlight, "maxRegions", o.maxRegions)
	return newQueryTimer(q, o)
}

// noopTimer is selected when timestamp queries are unavailable.
type noopTimer struct{}

func (noopTimer) Enabled() bool              { return false }
func (noopTimer) Begin(string)               {}
func (noopTimer) End(string)                 {}
func (noopTimer) EndFrame()                  {}
func (noopTimer) Poll()                      {}
func (noopTimer) Stats(string) (Stats, bool) { return Stats{}, false }
func (noopTimer) Labels() []string           { return nil }
func (noopTimer) Reset()                     {}

type region struct {
	label string
	start int
	ended bool
}

type pendingFrame struct {
	id         uint64
	seq        uint64
	regions    []region
	resolution Resolution
}

// queryTimer records begin/end timestamps into a ring of slot blocks, one
// block per frame that can be in flight plus the frame being recorded.
//
// Blocks are indexed by seq, which advances only when a frame is handed
// to the GPU, so frames without regions never rotate the ring.
type queryTimer struct {
	q    TimestampQuerier
	opts options

	frame   uint64
	seq     uint64
	regions []region
	pending []pendingFrame
	stats   map[string]*Stats
}

func newQueryTimer(q TimestampQuerier, o options) *queryTimer {
	return &queryTimer{
		q:     q,
		opts:  o,
		stats: make(map[string]*Stats),
	}
}

func (t *queryTimer) Enabled() bool { return true }

func (t *queryTimer) blockBase() int { return t.blockBaseOf(t.seq) }

func (t *queryTimer) Begin(label string) {
	if len(t.regions) == 0 {
		t.retireStale()
	}
	if len(t.regions) >= t.opts.maxRegions {
		logging.Logger().Debug("gputimer: region limit reached", "label", label)
		return
	}
	slot := t.blockBase() + len(t.regions)*2
	t.regions = append(t.regions, region{label: label, start: slot})
	t.q.WriteTimestamp(slot)
}

func (t *queryTimer) End(label string) {
	for i := len(t.regions) - 1; i >= 0; i-- {
		r := &t.regions[i]
		if r.label == label && !r.ended {
			r.ended = true
			t.q.WriteTimestamp(r.start + 1)
			return
		}
	}
}

func (t *queryTimer) EndFrame() {
	defer func() {
		t.regions = nil
		t.frame++
	}()

	if len(t.regions) == 0 {
		return
	}
	if len(t.pending) >= t.opts.framesInFlight {
		logging.Logger().Debug("gputimer: dropping unresolved frame", "frame", t.pending[0].id)
		t.pending = t.pending[1:]
	}
	res := t.q.ResolveTimestamps(t.blockBase(), len(t.regions)*2)
	t.pending = append(t.pending, pendingFrame{
		id:         t.frame,
		seq:        t.seq,
		regions:    t.regions,
		resolution: res,
	})
	t.seq++
}

// retireStale drops pending frames whose slot block the frame about to be
// recorded reuses.
func (t *queryTimer) retireStale() {
	blocks := uint64(t.opts.framesInFlight + 1) //nolint:gosec // framesInFlight >= 1
	kept := t.pending[:0]
	for _, f := range t.pending {
		if t.seq-f.seq >= blocks {
			logging.Logger().Debug("gputimer: dropping unresolved frame", "frame", f.id)
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(t.pending); i++ {
		t.pending[i] = pendingFrame{}
	}
	t.pending = kept
}

func (t *queryTimer) Poll() {
	kept := t.pending[:0]
	for _, f := range t.pending {
		if !f.resolution.Ready() {
			kept = append(kept, f)
			continue
		}
		t.collect(f)
	}
	for i := len(kept); i < len(t.pending); i++ {
		t.pending[i] = pendingFrame{}
	}
	t.pending = kept
}

func (t *queryTimer) collect(f pendingFrame) {
	values, err := f.resolution.Values()
	if err != nil {
		logging.Logger().Warn("gputimer: timestamp resolution failed", "frame", f.id, "error", err)
		return
	}
	period := t.q.TimestampPeriod()
	base := t.blockBaseOf(f.seq)
	for _, r := range f.regions {
		if !r.ended {
			continue
		}
		i := r.start - base
		if i+1 >= len(values) {
			continue
		}
		begin, end := values[i], values[i+1]
		if end < begin {
			continue
		}
		d := time.Duration(float64(end-begin) * period)
		s, ok := t.stats[r.label]
		if !ok {
			s = &Stats{}
			t.stats[r.label] = s
		}
		s.update(d)
	}
}

func (t *queryTimer) blockBaseOf(seq uint64) int {
	blocks := uint64(t.opts.framesInFlight + 1)    //nolint:gosec // framesInFlight >= 1
	return int(seq%blocks) * t.opts.maxRegions * 2 //nolint:gosec // bounded by blocks
}

func (t *queryTimer) Stats(label string) (Stats, bool) {
	s, ok := t.stats[label]
	if !ok {
		return Stats{}, false
	}
	return *s, true
}

func (t *queryTimer) Labels() []string {
	labels := make([]string, 0, len(t.stats))
	for l := range t.stats {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (t *queryTimer) Reset() {
	t.regions = nil
	t.pending = nil
	t.stats = make(map[string]*Stats)
}

var (
	_ Timer = noopTimer{}
	_ Timer = (*queryTimer)(nil)
)
