// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framegraph runs post-processing passes over named GPU resources.
//
// A FrameGraph owns an ordered list of passes and a resource registry. Each
// pass declares the resources it reads and writes; every frame the graph
// resolves those declarations, skips passes whose inputs are not available,
// runs the rest in insertion order and commits what they wrote. Ping-pong
// resources swap after a successful write, so a pass reading its own output
// key always sees last frame's result.
//
// # Frame Lifecycle
//
//	BeginFrame  poll GPU timer, capture bridge imports, snapshot renderer/scene/camera
//	Execute     for each pass: resolve, time, execute, commit, re-apply snapshot
//	EndFrame    restore snapshot, apply bridge exports, submit timer queries
//
// A pass that fails, panics or misses a resource never stops the frame; it
// just contributes nothing. LastFrame reports what happened to every pass.
//
// # Sub-packages
//
//   - render: collaborator contracts and the CPU reference renderer
//   - resource: registry, ping-pong pairs, allocators (resource/halalloc for wgpu HAL)
//   - temporal: depth history and Bayer cloud accumulation holders
//   - barrier: renderer/scene/camera state capture and restore
//   - bridge: imports from and exports to objects outside the graph
//   - gputimer: per-pass GPU timing
//   - shader: built-in WGSL and the naga compile cache
//   - passes: the built-in effect chain
//   - config: HCL pipeline settings
//
// # Logging
//
// framegraph is silent by default. SetLogger installs a *slog.Logger for
// the root package and every sub-package.
package framegraph
