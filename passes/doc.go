// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package passes provides the built-in post-processing passes and
// BuildChain, which assembles them into the standard effect chain:
//
//	scene -> clouds -> lensing -> temporal reprojection -> bloom -> tone mapping -> output
//
// Every pass carries its WGSL module (see package shader) and an
// equivalent CPU fragment program, so the chain runs unchanged on the
// software renderer. Knobs are plain setters; the graph is driven from a
// single goroutine and passes read their knobs during Execute.
package passes
