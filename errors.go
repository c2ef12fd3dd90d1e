// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"
)

// Errors returned by FrameGraph.AddPass and used inside PassError.
var (
	ErrNilPass        = errors.New("framegraph: nil pass")
	ErrEmptyPassName  = errors.New("framegraph: empty pass name")
	ErrDuplicatePass  = errors.New("framegraph: duplicate pass name")
	ErrWriterConflict = errors.New("framegraph: resource already has a writer")
	ErrReadWriteAlias = errors.New("framegraph: single-buffered resource is both read and written")
	ErrPassPanic      = errors.New("framegraph: pass panicked")
	ErrDisposed       = errors.New("framegraph: graph disposed")
)

// PassError reports a failure attributed to one pass, and optionally one
// resource of that pass.
type PassError struct {
	Pass     string
	Resource string
	Err      error
}

func (e *PassError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("pass %q, resource %q: %v", e.Pass, e.Resource, e.Err)
	}
	return fmt.Sprintf("pass %q: %v", e.Pass, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }

var errUndeclaredOutput = errors.New("framegraph: output not declared by pass")
