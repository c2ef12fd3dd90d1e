// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"github.com/gogpu/framegraph/shader"
)

// Screen is the pseudo resource naming the renderer's default target.
// Writing it draws to the screen; it cannot be read.
const Screen = "@screen"

// Access says how a pass uses a resource.
type Access int

const (
	// AccessRead reads the resource's committed version.
	AccessRead Access = iota

	// AccessWrite draws into the resource's write target.
	AccessWrite
)

// String returns "read" or "write".
func (a Access) String() string {
	if a == AccessWrite {
		return "write"
	}
	return "read"
}

// ResourceRef declares one resource a pass uses.
type ResourceRef struct {
	ResourceID string
	Access     Access

	// Optional inputs resolve to nil instead of skipping the pass. History
	// buffers are optional: they do not exist on the first frame.
	Optional bool
}

// Read declares a required input.
func Read(id string) ResourceRef {
	return ResourceRef{ResourceID: id, Access: AccessRead}
}

// ReadOptional declares an input the pass can do without.
func ReadOptional(id string) ResourceRef {
	return ResourceRef{ResourceID: id, Access: AccessRead, Optional: true}
}

// Write declares an output.
func Write(id string) ResourceRef {
	return ResourceRef{ResourceID: id, Access: AccessWrite}
}

// Pass is a unit of work with declared resource reads and writes.
//
// Execute receives a Context that resolves exactly the declared resources.
// A pass returning an error (or panicking) contributes nothing to the
// frame; its outputs are not committed.
type Pass interface {
	Name() string
	Inputs() []ResourceRef
	Outputs() []ResourceRef
	Execute(ctx *Context) error

	// Dispose releases what the pass allocated privately. It must be safe
	// to call more than once.
	Dispose()
}

// Enabler is implemented by passes that can be switched off. Disabled
// passes are skipped without a warning.
type Enabler interface {
	Enabled() bool
}

// Resizer is implemented by passes holding size-dependent state.
type Resizer interface {
	Resize(width, height int) error
}

// ShaderUser is implemented by passes with GPU shaders. The graph compiles
// them when the pass is added.
type ShaderUser interface {
	Shaders() []shader.Source
}

// BasePass implements the bookkeeping part of Pass. Embed it and add
// Execute.
//
// Example:
//
//	type grayPass struct {
//	    framegraph.BasePass
//	}
//
//	func newGrayPass() *grayPass {
//	    return &grayPass{BasePass: framegraph.NewBasePass("gray",
//	        []framegraph.ResourceRef{framegraph.Read("scene.color")},
//	        []framegraph.ResourceRef{framegraph.Write("gray")})}
//	}
type BasePass struct {
	name      string
	inputs    []ResourceRef
	outputs   []ResourceRef
	disabled  bool
	disposed  bool
	onDispose []func()
}

// NewBasePass creates the bookkeeping for a pass. Access fields of the
// refs are normalized to their list.
func NewBasePass(name string, inputs, outputs []ResourceRef) BasePass {
	in := make([]ResourceRef, len(inputs))
	for i, r := range inputs {
		r.Access = AccessRead
		in[i] = r
	}
	out := make([]ResourceRef, len(outputs))
	for i, r := range outputs {
		r.Access = AccessWrite
		r.Optional = false
		out[i] = r
	}
	return BasePass{name: name, inputs: in, outputs: out}
}

// Name returns the pass name.
func (p *BasePass) Name() string { return p.name }

// Inputs returns a copy of the declared inputs.
func (p *BasePass) Inputs() []ResourceRef { return append([]ResourceRef(nil), p.inputs...) }

// Outputs returns a copy of the declared outputs.
func (p *BasePass) Outputs() []ResourceRef { return append([]ResourceRef(nil), p.outputs...) }

// Enabled reports whether the pass runs.
func (p *BasePass) Enabled() bool { return !p.disabled && !p.disposed }

// SetEnabled switches the pass on or off.
func (p *BasePass) SetEnabled(enabled bool) { p.disabled = !enabled }

// OnDispose registers fn to run once when the pass is disposed.
func (p *BasePass) OnDispose(fn func()) {
	if fn != nil {
		p.onDispose = append(p.onDispose, fn)
	}
}

// Dispose runs the OnDispose callbacks in reverse order. Safe to call more
// than once.
func (p *BasePass) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	for i := len(p.onDispose) - 1; i >= 0; i-- {
		p.onDispose[i]()
	}
	p.onDispose = nil
}

// Disposed reports whether Dispose has run.
func (p *BasePass) Disposed() bool { return p.disposed }
