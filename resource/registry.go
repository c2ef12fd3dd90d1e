// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framegraph/internal/logging"
	"github.com/gogpu/framegraph/render"
)

// Registry maps resource keys to render targets.
//
// Lookups of unknown or not yet produced keys return nil. The registry is
// safe for concurrent use, although a frame graph drives it from a single
// goroutine.
//
// Example:
//
//	reg := resource.NewRegistry(resource.NewSoftwareAllocator(), 1920, 1080)
//	reg.Register(resource.Descriptor{Key: "bloom", Scale: 0.5})
//	reg.Register(resource.Descriptor{Key: "history", Kind: resource.PingPong})
type Registry struct {
	mu        sync.RWMutex
	alloc     Allocator
	width     int
	height    int
	resources map[string]*Resource
	order     []string
	disposed  bool
}

// NewRegistry creates a registry sized width x height.
// Non-positive sizes are raised to 1.
func NewRegistry(alloc Allocator, width, height int) *Registry {
	return &Registry{
		alloc:     alloc,
		width:     max(width, 1),
		height:    max(height, 1),
		resources: make(map[string]*Resource),
	}
}

// Size returns the full-resolution size.
func (r *Registry) Size() (width, height int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.width, r.height
}

// Register allocates a resource for desc.
func (r *Registry) Register(desc Descriptor) (*Resource, error) {
	if desc.Key == "" {
		return nil, ErrEmptyKey
	}
	if desc.Scale < 0 {
		return nil, &KeyError{Key: desc.Key, Err: ErrInvalidScale}
	}
	desc = desc.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil, ErrDisposed
	}
	if _, ok := r.resources[desc.Key]; ok {
		return nil, &KeyError{Key: desc.Key, Err: ErrDuplicateKey}
	}

	res := &Resource{desc: desc}
	if err := r.allocate(res); err != nil {
		return nil, err
	}
	r.resources[desc.Key] = res
	r.order = append(r.order, desc.Key)
	return res, nil
}

// RegisterExternal registers a read-only texture produced by the host,
// such as the scene color or depth. tex may be nil until the host has one.
func (r *Registry) RegisterExternal(key string, tex render.Texture) error {
	if key == "" {
		return ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return ErrDisposed
	}
	if _, ok := r.resources[key]; ok {
		return &KeyError{Key: key, Err: ErrDuplicateKey}
	}
	res := &Resource{desc: Descriptor{Key: key, Label: key}, isExt: true, external: tex}
	if tex != nil {
		res.width, res.height = tex.Width(), tex.Height()
	}
	r.resources[key] = res
	r.order = append(r.order, key)
	return nil
}

// SetExternal replaces the texture of an external resource, registering
// it first when the key is new.
func (r *Registry) SetExternal(key string, tex render.Texture) error {
	r.mu.Lock()
	res, ok := r.resources[key]
	if !ok {
		r.mu.Unlock()
		return r.RegisterExternal(key, tex)
	}
	defer r.mu.Unlock()

	if !res.isExt {
		return &KeyError{Key: key, Err: ErrNotExternal}
	}
	res.external = tex
	res.width, res.height = 0, 0
	if tex != nil {
		res.width, res.height = tex.Width(), tex.Height()
	}
	return nil
}

// Unregister releases and removes key. It reports whether key existed.
func (r *Registry) Unregister(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[key]
	if !ok {
		return false
	}
	res.release()
	delete(r.resources, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the resource registered under key.
func (r *Registry) Get(key string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[key]
	return res, ok
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// ReadTexture returns the readable texture of key, or nil when key is
// unknown or has not been produced yet.
func (r *Registry) ReadTexture(key string) render.Texture {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if res, ok := r.resources[key]; ok {
		return res.ReadTexture()
	}
	return nil
}

// WriteTarget returns the target to draw key into, or nil when key is
// unknown or external.
func (r *Registry) WriteTarget(key string) render.RenderTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if res, ok := r.resources[key]; ok {
		return res.WriteTarget()
	}
	return nil
}

// Commit marks the write target of key as the readable version. Ping-pong
// resources swap buffers. Unknown keys are ignored.
func (r *Registry) Commit(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[key]; ok {
		res.commit()
	}
}

// Invalidate forgets the readable version of key. The buffers stay
// allocated. Unknown and external keys are ignored.
func (r *Registry) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[key]; ok && !res.isExt {
		res.produced = false
	}
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// Resize changes the full-resolution size.
//
// Nothing happens when the size is unchanged. Otherwise every owned
// resource whose scaled size changes is reallocated under the same key and
// loses its readable version. External resources are left to the host.
func (r *Registry) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return ErrDisposed
	}
	if r.width == width && r.height == height {
		return nil
	}
	r.width, r.height = width, height

	var errs []error
	for _, key := range r.order {
		res := r.resources[key]
		if res.isExt {
			continue
		}
		w := ScaledSize(width, res.desc.Scale)
		h := ScaledSize(height, res.desc.Scale)
		if w == res.width && h == res.height {
			continue
		}
		logging.Logger().Debug("resource: reallocating",
			"key", key, "width", w, "height", h)
		if err := r.allocate(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispose releases every resource. The registry rejects registrations
// afterwards. Safe to call more than once.
func (r *Registry) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.order {
		r.resources[key].release()
	}
	r.resources = make(map[string]*Resource)
	r.order = nil
	r.disposed = true
}

// allocate (re)creates the buffers of res at its scaled size. The old
// buffers are released only after the new ones exist. Caller holds r.mu.
func (r *Registry) allocate(res *Resource) error {
	if r.alloc == nil {
		return &KeyError{Key: res.desc.Key, Err: ErrNoAllocator}
	}
	d := res.desc
	w := ScaledSize(r.width, d.Scale)
	h := ScaledSize(r.height, d.Scale)

	switch d.Kind {
	case PingPong:
		a, err := r.alloc.Allocate(d.Label+".a", w, h, d.Format)
		if err != nil {
			return &KeyError{Key: d.Key, Err: fmt.Errorf("%w: %w", ErrAllocatorFail, err)}
		}
		b, err := r.alloc.Allocate(d.Label+".b", w, h, d.Format)
		if err != nil {
			a.Dispose()
			return &KeyError{Key: d.Key, Err: fmt.Errorf("%w: %w", ErrAllocatorFail, err)}
		}
		res.release()
		res.pair = NewPair(a, b)
	default:
		t, err := r.alloc.Allocate(d.Label, w, h, d.Format)
		if err != nil {
			return &KeyError{Key: d.Key, Err: fmt.Errorf("%w: %w", ErrAllocatorFail, err)}
		}
		res.release()
		res.single = t
	}
	res.width, res.height = w, h
	return nil
}
