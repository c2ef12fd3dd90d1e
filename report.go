// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// PassStatus is the outcome of one pass in one frame.
type PassStatus int

const (
	// PassExecuted means the pass ran and its outputs were committed.
	PassExecuted PassStatus = iota

	// PassDisabled means the pass reported Enabled() == false.
	PassDisabled

	// PassMissingResource means a required input or an output did not
	// resolve.
	PassMissingResource

	// PassFailed means Execute returned an error or panicked.
	PassFailed

	// PassShaderFailed means the pass's shaders did not compile.
	PassShaderFailed
)

// String returns the status name.
func (s PassStatus) String() string {
	switch s {
	case PassExecuted:
		return "executed"
	case PassDisabled:
		return "disabled"
	case PassMissingResource:
		return "missing-resource"
	case PassFailed:
		return "failed"
	case PassShaderFailed:
		return "shader-failed"
	default:
		return "unknown"
	}
}

// PassResult is the outcome of one pass.
type PassResult struct {
	Name   string
	Status PassStatus

	// Missing names the resource that did not resolve.
	Missing string

	// Err is set for PassFailed and PassShaderFailed.
	Err error
}

// FrameReport summarizes one frame.
type FrameReport struct {
	Frame   uint64
	Passes  []PassResult
	Imports int
	Exports int
}

// Status returns the status of the named pass.
func (r FrameReport) Status(name string) (PassStatus, bool) {
	for _, p := range r.Passes {
		if p.Name == name {
			return p.Status, true
		}
	}
	return 0, false
}

// Executed returns the names of the passes that ran, in order.
func (r FrameReport) Executed() []string {
	var names []string
	for _, p := range r.Passes {
		if p.Status == PassExecuted {
			names = append(names, p.Name)
		}
	}
	return names
}
