// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package temporal

import "sync"

// Invalidator is implemented by every history holder.
type Invalidator interface {
	Invalidate()
}

// liveSet tracks holders that have not been disposed.
var liveSet = struct {
	mu   sync.Mutex
	next uint64
	byID map[uint64]Invalidator
}{byID: make(map[uint64]Invalidator)}

func track(i Invalidator) uint64 {
	liveSet.mu.Lock()
	defer liveSet.mu.Unlock()
	liveSet.next++
	liveSet.byID[liveSet.next] = i
	return liveSet.next
}

func untrack(id uint64) {
	liveSet.mu.Lock()
	defer liveSet.mu.Unlock()
	delete(liveSet.byID, id)
}

// InvalidateAll invalidates every live holder and returns how many there
// were.
func InvalidateAll() int {
	liveSet.mu.Lock()
	holders := make([]Invalidator, 0, len(liveSet.byID))
	for _, h := range liveSet.byID {
		holders = append(holders, h)
	}
	liveSet.mu.Unlock()

	for _, h := range holders {
		h.Invalidate()
	}
	return len(holders)
}

// Live returns the number of holders created and not yet disposed.
func Live() int {
	liveSet.mu.Lock()
	defer liveSet.mu.Unlock()
	return len(liveSet.byID)
}
