// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package temporal holds per-effect history state for time-accumulating
// passes.
//
// Each effect owns its own holder (DepthHistory, CloudAccumulation) and
// disposes it. Holders register themselves in a package-level invalidation
// set so InvalidateAll can discard every history at once, for example when
// the rendered object changes. Nothing else is shared between holders.
//
// History validity follows one rule: it is established by UpdateState and
// only while the effect's enablement Signal reports true. A disabled effect
// drops its history on its next UpdateState.
package temporal
