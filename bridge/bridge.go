// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package bridge moves values between a frame graph and objects it does
// not own.
//
// Imports are read once per frame by CaptureImports and frozen until the
// next capture. Exports are queued by passes while the frame executes and
// applied once by ExecuteExports. Every getter, validator, transform and
// setter runs behind a recover boundary: a failing entry contributes
// nothing to the frame and never stops the others.
package bridge

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/gogpu/framegraph/internal/logging"
	"github.com/gogpu/framegraph/render"
)

// Registration errors.
var (
	ErrEmptyID   = errors.New("bridge: empty id")
	ErrNilGetter = errors.New("bridge: import has no getter")
	ErrNilSetter = errors.New("bridge: export has no setter")
)

// Import reads a value from outside the graph.
type Import struct {
	ID string

	// Get returns the current external value.
	Get func() (any, error)

	// Validate rejects values that must not enter the graph. Optional.
	Validate func(any) bool
}

// Export writes a value computed by the graph to an external object.
type Export struct {
	ID string

	// ResourceID names the graph resource the value is derived from.
	// Informational; see Bridge.ExportsFor.
	ResourceID string

	// Set applies the value.
	Set func(any) error

	// Transform converts the queued value before Set. Optional.
	Transform func(any) (any, error)
}

// Bridge holds import and export registrations and the per-frame state.
// It is safe for concurrent use; callbacks run without the lock held.
type Bridge struct {
	mu          sync.Mutex
	imports     map[string]Import
	importOrder []string
	exports     map[string]Export
	exportOrder []string
	captured    map[string]any
	queue       map[string]any
}

// New creates an empty bridge.
func New() *Bridge {
	return &Bridge{
		imports:  make(map[string]Import),
		exports:  make(map[string]Export),
		captured: make(map[string]any),
		queue:    make(map[string]any),
	}
}

// RegisterImport adds imp, replacing a previous import with the same ID.
func (b *Bridge) RegisterImport(imp Import) error {
	if imp.ID == "" {
		return ErrEmptyID
	}
	if imp.Get == nil {
		return fmt.Errorf("%w: %s", ErrNilGetter, imp.ID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	if _, ok := b.imports[imp.ID]; !ok {
		b.importOrder = append(b.importOrder, imp.ID)
	}
	b.imports[imp.ID] = imp
	return nil
}

// UnregisterImport removes an import and its captured value.
func (b *Bridge) UnregisterImport(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.imports[id]; !ok {
		return false
	}
	delete(b.imports, id)
	delete(b.captured, id)
	b.importOrder = remove(b.importOrder, id)
	return true
}

// RegisterExport adds exp, replacing a previous export with the same ID
// while keeping its position in the execution order.
func (b *Bridge) RegisterExport(exp Export) error {
	if exp.ID == "" {
		return ErrEmptyID
	}
	if exp.Set == nil {
		return fmt.Errorf("%w: %s", ErrNilSetter, exp.ID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	if _, ok := b.exports[exp.ID]; !ok {
		b.exportOrder = append(b.exportOrder, exp.ID)
	}
	b.exports[exp.ID] = exp
	return nil
}

// UnregisterExport removes an export and any value queued for it.
func (b *Bridge) UnregisterExport(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.exports[id]; !ok {
		return false
	}
	delete(b.exports, id)
	delete(b.queue, id)
	b.exportOrder = remove(b.exportOrder, id)
	return true
}

// CaptureImports reads every import and returns a copy of the captured
// values. Imports whose getter fails or panics, or whose value is rejected
// by the validator, are absent until the next capture.
func (b *Bridge) CaptureImports() map[string]any {
	b.mu.Lock()
	imports := make([]Import, 0, len(b.importOrder))
	for _, id := range b.importOrder {
		imports = append(imports, b.imports[id])
	}
	b.mu.Unlock()

	captured := make(map[string]any, len(imports))
	for _, imp := range imports {
		v, ok := capture(imp)
		if ok {
			captured[imp.ID] = v
		}
	}

	b.mu.Lock()
	b.captured = captured
	b.mu.Unlock()

	return maps.Clone(captured)
}

func capture(imp Import) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Warn("bridge: import panicked", "id", imp.ID, "panic", r)
			v, ok = nil, false
		}
	}()

	v, err := imp.Get()
	if err != nil {
		logging.Logger().Warn("bridge: import failed", "id", imp.ID, "error", err)
		return nil, false
	}
	if imp.Validate != nil && !imp.Validate(v) {
		logging.Logger().Warn("bridge: import rejected by validator", "id", imp.ID)
		return nil, false
	}
	return render.Snapshot(v), true
}

// Imported returns the value captured for id this frame.
func (b *Bridge) Imported(id string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.captured[id]
	if !ok {
		return nil, false
	}
	return render.Snapshot(v), true
}

// Value returns the value captured for id converted to T.
func Value[T any](b *Bridge, id string) (T, bool) {
	var zero T
	v, ok := b.Imported(id)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// QueueExport stores v for the export registered as id and reports whether
// one is. Values for unknown ids are dropped; a pass may produce values
// nobody has wired up yet. A second queue for the same id replaces the
// first.
func (b *Bridge) QueueExport(id string, v any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.exports[id]; !ok {
		return false
	}
	b.init()
	b.queue[id] = render.Snapshot(v)
	return true
}

// PendingExports returns the number of queued values.
func (b *Bridge) PendingExports() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// ExecuteExports applies the queued values in registration order and
// returns how many setters succeeded. The queue is cleared in every case.
func (b *Bridge) ExecuteExports() int {
	type job struct {
		exp   Export
		value any
	}

	b.mu.Lock()
	jobs := make([]job, 0, len(b.queue))
	for _, id := range b.exportOrder {
		if v, ok := b.queue[id]; ok {
			jobs = append(jobs, job{exp: b.exports[id], value: v})
		}
	}
	b.queue = make(map[string]any)
	b.mu.Unlock()

	applied := 0
	for _, j := range jobs {
		if apply(j.exp, j.value) {
			applied++
		}
	}
	return applied
}

func apply(exp Export, v any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Warn("bridge: export panicked", "id", exp.ID, "panic", r)
			ok = false
		}
	}()

	if exp.Transform != nil {
		var err error
		v, err = exp.Transform(v)
		if err != nil {
			logging.Logger().Warn("bridge: export transform failed", "id", exp.ID, "error", err)
			return false
		}
	}
	if err := exp.Set(v); err != nil {
		logging.Logger().Warn("bridge: export failed", "id", exp.ID, "error", err)
		return false
	}
	return true
}

// ExportsFor returns the ids of exports derived from resourceID, in
// registration order.
func (b *Bridge) ExportsFor(resourceID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for _, id := range b.exportOrder {
		if b.exports[id].ResourceID == resourceID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Imports returns the registered import ids in registration order.
func (b *Bridge) Imports() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.importOrder...)
}

// Exports returns the registered export ids in registration order.
func (b *Bridge) Exports() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.exportOrder...)
}

// BeginFrame drops last frame's captured imports and queued exports.
func (b *Bridge) BeginFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.captured = make(map[string]any)
	b.queue = make(map[string]any)
}

// EndFrame is ExecuteExports.
func (b *Bridge) EndFrame() int { return b.ExecuteExports() }

// Reset removes every registration and all per-frame state.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.imports = make(map[string]Import)
	b.exports = make(map[string]Export)
	b.importOrder = nil
	b.exportOrder = nil
	b.captured = make(map[string]any)
	b.queue = make(map[string]any)
}

// Dispose is Reset. Safe to call more than once.
func (b *Bridge) Dispose() { b.Reset() }

// init makes a zero Bridge usable. Caller holds b.mu.
func (b *Bridge) init() {
	if b.imports == nil {
		b.imports = make(map[string]Import)
	}
	if b.exports == nil {
		b.exports = make(map[string]Export)
	}
	if b.captured == nil {
		b.captured = make(map[string]any)
	}
	if b.queue == nil {
		b.queue = make(map[string]any)
	}
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
