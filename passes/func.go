// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"errors"

	"github.com/gogpu/framegraph"
)

// ExecuteFunc is the body of a Func pass.
type ExecuteFunc func(ctx *framegraph.Context) error

// Func is a pass whose body is a callback. Host scene rendering is
// usually a Func writing SceneColor and SceneDepth.
type Func struct {
	framegraph.BasePass
	fn ExecuteFunc
}

// NewFunc creates a callback pass.
func NewFunc(name string, inputs, outputs []framegraph.ResourceRef, fn ExecuteFunc) *Func {
	return &Func{
		BasePass: framegraph.NewBasePass(name, inputs, outputs),
		fn:       fn,
	}
}

var errNilFunc = errors.New("passes: nil execute func")

// Execute runs the callback.
func (p *Func) Execute(ctx *framegraph.Context) error {
	if p.fn == nil {
		return errNilFunc
	}
	return p.fn(ctx)
}

var _ framegraph.Pass = (*Func)(nil)
