// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputimer

import "time"

// statsWindow is the number of samples the running average spans.
const statsWindow = 64

// Stats summarizes the measured durations of one label.
type Stats struct {
	Last    time.Duration
	Average time.Duration
	Max     time.Duration
	Samples uint64
}

func (s *Stats) update(d time.Duration) {
	s.Samples++
	s.Last = d
	s.Max = max(s.Max, d)

	// Plain mean until the window fills, exponential average after.
	if s.Samples <= statsWindow {
		s.Average += (d - s.Average) / time.Duration(s.Samples) //nolint:gosec // Samples <= 64
	} else {
		s.Average = ((statsWindow-1)*s.Average + d) / statsWindow
	}
}
