// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Layers is a 32-bit visibility mask. Layer n is visible when bit n is set.
type Layers uint32

// DefaultLayers has only layer 0 enabled.
const DefaultLayers Layers = 1

// LayerMask returns a mask with only layer n enabled.
func LayerMask(n int) Layers {
	if n < 0 || n > 31 {
		return 0
	}
	return 1 << uint(n)
}

// Enable returns l with layer n enabled.
func (l Layers) Enable(n int) Layers { return l | LayerMask(n) }

// Disable returns l with layer n disabled.
func (l Layers) Disable(n int) Layers { return l &^ LayerMask(n) }

// Toggle returns l with layer n flipped.
func (l Layers) Toggle(n int) Layers { return l ^ LayerMask(n) }

// IsEnabled reports whether layer n is enabled.
func (l Layers) IsEnabled(n int) bool { return l&LayerMask(n) != 0 }

// Test reports whether l and other share at least one layer.
func (l Layers) Test(other Layers) bool { return l&other != 0 }

// Camera is the part of a camera the frame graph reads.
// The graph never mutates the camera transform; only Layers is writable.
type Camera interface {
	Layers() Layers
	SetLayers(l Layers)

	// ViewProjection returns projection * view, row-major.
	ViewProjection() f64.Mat4

	Near() float64
	Far() float64
}

// BasicCamera is a minimal Camera holding explicit matrices.
type BasicCamera struct {
	layers     Layers
	projection f64.Mat4
	view       f64.Mat4
	near, far  float64
}

// NewPerspectiveCamera creates a camera with a perspective projection.
// fovY is in degrees. The view matrix starts as identity.
func NewPerspectiveCamera(fovY, aspect, near, far float64) *BasicCamera {
	return &BasicCamera{
		layers:     DefaultLayers,
		projection: Perspective(fovY, aspect, near, far),
		view:       Identity(),
		near:       near,
		far:        far,
	}
}

// Layers returns the visibility mask.
func (c *BasicCamera) Layers() Layers { return c.layers }

// SetLayers replaces the visibility mask.
func (c *BasicCamera) SetLayers(l Layers) { c.layers = l }

// Near returns the near clip distance.
func (c *BasicCamera) Near() float64 { return c.near }

// Far returns the far clip distance.
func (c *BasicCamera) Far() float64 { return c.far }

// SetView replaces the view (world-to-camera) matrix.
func (c *BasicCamera) SetView(m f64.Mat4) { c.view = m }

// SetProjection replaces the projection matrix and clip distances.
func (c *BasicCamera) SetProjection(m f64.Mat4, near, far float64) {
	c.projection = m
	c.near = near
	c.far = far
}

// ViewProjection returns projection * view.
func (c *BasicCamera) ViewProjection() f64.Mat4 {
	return Mul(c.projection, c.view)
}

// Ensure BasicCamera implements Camera.
var _ Camera = (*BasicCamera)(nil)

// Identity returns the 4x4 identity matrix.
func Identity() f64.Mat4 {
	return f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns a * b for row-major matrices.
func Mul(a, b f64.Mat4) f64.Mat4 {
	var m f64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a[r*4+k] * b[k*4+c]
			}
			m[r*4+c] = s
		}
	}
	return m
}

// Perspective returns a right-handed perspective projection with depth in
// [0, 1], the WebGPU clip convention. fovY is in degrees.
func Perspective(fovY, aspect, near, far float64) f64.Mat4 {
	f := 1 / math.Tan(fovY*math.Pi/360)
	if aspect == 0 {
		aspect = 1
	}
	nf := near - far
	if nf == 0 {
		nf = -1
	}
	return f64.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far / nf, far * near / nf,
		0, 0, -1, 0,
	}
}

// MulVec returns m * v for a column vector v.
func MulVec(m f64.Mat4, v [4]float64) [4]float64 {
	var out [4]float64
	for r := 0; r < 4; r++ {
		out[r] = m[r*4]*v[0] + m[r*4+1]*v[1] + m[r*4+2]*v[2] + m[r*4+3]*v[3]
	}
	return out
}

// Invert returns the inverse of m. ok is false when m is singular.
func Invert(m f64.Mat4) (inv f64.Mat4, ok bool) {
	// Gauss-Jordan with partial pivoting on [m | I].
	var a [4][8]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = m[r*4+c]
		}
		a[r][4+r] = 1
	}
	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return f64.Mat4{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		p := a[col][col]
		for c := 0; c < 8; c++ {
			a[col][c] /= p
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			for c := 0; c < 8; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			inv[r*4+c] = a[r][4+c]
		}
	}
	return inv, true
}
