// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package temporal

import "sync/atomic"

// Signal reports whether an effect is globally enabled.
type Signal func() bool

// Enabled calls s. A nil Signal is enabled.
func (s Signal) Enabled() bool { return s == nil || s() }

// Always returns a Signal that is always enabled.
func Always() Signal {
	return func() bool { return true }
}

// Toggle is a settable enablement flag.
type Toggle struct {
	on atomic.Bool
}

// NewToggle creates a toggle in the given state.
func NewToggle(enabled bool) *Toggle {
	t := &Toggle{}
	t.on.Store(enabled)
	return t
}

// Set changes the state.
func (t *Toggle) Set(enabled bool) { t.on.Store(enabled) }

// Enabled returns the state.
func (t *Toggle) Enabled() bool { return t.on.Load() }

// Signal returns a Signal reading t.
func (t *Toggle) Signal() Signal { return t.Enabled }

// Option configures a history holder.
type Option func(*options)

type options struct {
	enabled    Signal
	cloudScale float64
}

func defaultOptions() options {
	return options{
		enabled:    Always(),
		cloudScale: 0.5,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithEnabled sets the enablement signal. Nil keeps the default, which is
// always enabled.
func WithEnabled(s Signal) Option {
	return func(o *options) {
		if s != nil {
			o.enabled = s
		}
	}
}

// WithCloudScale sets the resolution scale of the cloud render buffer.
// Values outside (0, 1] are ignored.
func WithCloudScale(scale float64) Option {
	return func(o *options) {
		if scale > 0 && scale <= 1 {
			o.cloudScale = scale
		}
	}
}
