// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package resource owns the render targets passes read from and write to.
//
// Every intermediate target of a frame graph is registered under a string
// key. Passes look textures up by key and the registry answers nil for keys
// that are unknown or not produced yet, so a miswired pass degrades into a
// skipped pass instead of a crash.
//
// Ping-pong resources hold two buffers. A pass always writes one and reads
// the other; Commit swaps them once the write succeeded, so what was just
// written becomes next frame's history.
package resource
