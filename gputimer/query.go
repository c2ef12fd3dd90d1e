// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputimer

import "errors"

// TimestampQuerier is the renderer capability the query timer needs.
type TimestampQuerier interface {
	// TimestampsSupported reports whether timestamp queries can be used.
	TimestampsSupported() bool

	// TimestampPeriod returns nanoseconds per timestamp tick.
	TimestampPeriod() float64

	// WriteTimestamp records the current GPU time into slot.
	WriteTimestamp(slot int)

	// ResolveTimestamps schedules a read-back of slots [first, first+count).
	ResolveTimestamps(first, count int) Resolution
}

// Resolution is an asynchronous timestamp read-back.
type Resolution interface {
	// Ready reports whether Values can be called without blocking.
	Ready() bool

	// Values returns the resolved ticks. Only valid once Ready is true.
	Values() ([]uint64, error)
}

// ErrNotReady is returned by Values on a resolution that has not resolved.
var ErrNotReady = errors.New("gputimer: resolution not ready")

// staticResolution is a resolution whose outcome is known up front.
type staticResolution struct {
	values []uint64
	err    error
}

func (r *staticResolution) Ready() bool { return true }

func (r *staticResolution) Values() ([]uint64, error) { return r.values, r.err }

// ReadyResolution returns a resolution that is already resolved to values.
func ReadyResolution(values []uint64) Resolution {
	return &staticResolution{values: values}
}

// FailedResolution returns a resolved resolution that reports err.
func FailedResolution(err error) Resolution {
	return &staticResolution{err: err}
}

// PendingResolution is a resolution completed later by calling Resolve or
// Fail. Backends with real asynchronous read-back (mapped query buffers)
// return one and complete it from their map callback.
type PendingResolution struct {
	ready  bool
	values []uint64
	err    error
}

// Resolve completes the resolution with values.
func (p *PendingResolution) Resolve(values []uint64) {
	p.values = values
	p.ready = true
}

// Fail completes the resolution with err.
func (p *PendingResolution) Fail(err error) {
	p.err = err
	p.ready = true
}

// Ready reports whether the resolution has completed.
func (p *PendingResolution) Ready() bool { return p.ready }

// Values returns the resolved ticks or ErrNotReady.
func (p *PendingResolution) Values() ([]uint64, error) {
	if !p.ready {
		return nil, ErrNotReady
	}
	return p.values, p.err
}
