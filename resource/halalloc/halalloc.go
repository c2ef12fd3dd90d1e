// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package halalloc allocates frame graph render targets on a wgpu HAL
// device owned by the host application.
package halalloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned by FromProvider and Allocate.
var (
	ErrNoHAL       = errors.New("halalloc: provider does not expose HAL types")
	ErrNotDevice   = errors.New("halalloc: provider HalDevice is not hal.Device")
	ErrInvalidSize = errors.New("halalloc: texture size must be positive")
)

// Usage is the usage every allocated target gets: drawable and sampleable.
const Usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

// Allocator creates textures and views on a HAL device.
type Allocator struct {
	device hal.Device

	mu   sync.Mutex
	live int
}

// New creates an allocator on device.
func New(device hal.Device) *Allocator {
	return &Allocator{device: device}
}

// FromProvider extracts the HAL device from a host device provider.
//
// The HAL device is found, in order, on the provider itself
// (HalDevice() any, as gogpu's context exposes it), as the provider's
// Device() value, or behind Device().HalDevice() as on *wgpu.Device.
// A provider without a device, such as render.NullDeviceHandle, yields
// ErrNoHAL.
func FromProvider(provider render.DeviceHandle) (*Allocator, error) {
	if provider == nil {
		return nil, ErrNoHAL
	}

	var dev any
	if hp, ok := provider.(interface{ HalDevice() any }); ok {
		dev = hp.HalDevice()
	} else {
		switch d := provider.Device().(type) {
		case nil:
			return nil, ErrNoHAL
		case hal.Device:
			dev = d
		case interface{ HalDevice() hal.Device }:
			dev = d.HalDevice()
		default:
			return nil, ErrNoHAL
		}
	}

	device, ok := dev.(hal.Device)
	if !ok || device == nil {
		return nil, ErrNotDevice
	}
	return New(device), nil
}

// Allocate creates a 2D texture and its default view.
func (a *Allocator) Allocate(label string, width, height int, format gputypes.TextureFormat) (render.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrInvalidSize, label, width, height)
	}

	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // checked positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}

	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %s: %w", label, err)
	}

	a.mu.Lock()
	a.live++
	a.mu.Unlock()

	return &Target{
		alloc:  a,
		label:  label,
		width:  width,
		height: height,
		format: format,
		tex:    tex,
		view:   view,
	}, nil
}

// Live returns the number of targets allocated and not yet disposed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *Allocator) release(t *Target) {
	if t.view != nil {
		a.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		a.device.DestroyTexture(t.tex)
		t.tex = nil
	}
	a.mu.Lock()
	a.live--
	a.mu.Unlock()
}

// Target is a HAL texture usable as both render target and texture.
// It has no CPU access, so render.Sample returns transparent black for it.
type Target struct {
	alloc    *Allocator
	label    string
	width    int
	height   int
	format   gputypes.TextureFormat
	tex      hal.Texture
	view     hal.TextureView
	disposed bool
}

// Label returns the debug label.
func (t *Target) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Target) Height() int { return t.height }

// Format returns the texture format.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// Texture returns t itself.
func (t *Target) Texture() render.Texture { return t }

// HalTexture returns the underlying texture, nil once disposed.
func (t *Target) HalTexture() hal.Texture { return t.tex }

// HalView returns the default view, nil once disposed.
func (t *Target) HalView() hal.TextureView { return t.view }

// Dispose destroys the view and texture. Safe to call more than once.
func (t *Target) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.alloc.release(t)
}

var (
	_ resource.Allocator  = (*Allocator)(nil)
	_ render.RenderTarget = (*Target)(nil)
	_ render.Texture      = (*Target)(nil)
)
