// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"github.com/gogpu/framegraph/bridge"
	"github.com/gogpu/framegraph/gputimer"
	"github.com/gogpu/framegraph/shader"
)

// Option configures a FrameGraph during creation.
//
// Example:
//
//	g := framegraph.New(resource.NewSoftwareAllocator(),
//	    framegraph.WithSize(1920, 1080),
//	    framegraph.WithPassIsolation(true),
//	)
type Option func(*options)

type options struct {
	width, height int
	timer         gputimer.Timer
	timerOpts     []gputimer.Option
	cache         *shader.Cache
	isolation     bool
	bridge        *bridge.Bridge
}

func defaultOptions() options {
	return options{
		width:     1280,
		height:    720,
		isolation: true,
	}
}

// WithSize sets the initial full-resolution size. Non-positive values are
// ignored.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithTimer uses t instead of selecting a timer from the renderer's
// capabilities on the first frame.
func WithTimer(t gputimer.Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// WithTimerOptions configures the timer selected on the first frame.
func WithTimerOptions(opts ...gputimer.Option) Option {
	return func(o *options) {
		o.timerOpts = append(o.timerOpts, opts...)
	}
}

// WithShaderCache compiles the shaders of every added pass through c.
// A pass whose shaders fail to compile is never executed.
func WithShaderCache(c *shader.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithPassIsolation controls whether renderer, scene and camera state is
// reset to the frame-start snapshot after every pass. Enabled by default;
// when disabled the state is only restored at EndFrame.
func WithPassIsolation(enabled bool) Option {
	return func(o *options) {
		o.isolation = enabled
	}
}

// WithBridge shares b instead of creating a private bridge. A shared bridge
// is not disposed with the graph.
func WithBridge(b *bridge.Bridge) Option {
	return func(o *options) {
		o.bridge = b
	}
}
