// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputimer measures per-pass GPU time.
//
// The strategy is chosen once, when the timer is created: a renderer that
// implements TimestampQuerier and reports support gets a query-based timer,
// anything else gets a timer whose methods do nothing. Call sites never
// branch on the capability.
//
// Timestamp results arrive asynchronously. The timer never blocks waiting
// for them: Poll collects whatever has resolved, and frames that are still
// pending when the in-flight budget is exhausted are dropped.
package gputimer
