// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"math"

	"github.com/gogpu/gputypes"
)

// Texture is something a pass can read from.
//
// Implementations may be CPU-backed (Pixmap) or GPU-backed
// (halalloc.Target). Passes never assume which one they receive; CPU
// fragment code goes through Sample, which degrades to transparent black for
// textures without CPU access.
type Texture interface {
	// Label returns the debug label the texture was allocated with.
	Label() string

	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the pixel format of the texture.
	Format() gputypes.TextureFormat
}

// RenderTarget is something a pass can draw into.
//
// A nil RenderTarget passed to Renderer.SetRenderTarget means the screen.
type RenderTarget interface {
	// Texture returns the texture that holds what was drawn into the target.
	Texture() Texture

	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Dispose releases the backing storage. It must be idempotent.
	Dispose()
}

// Sampler is implemented by textures whose texels are reachable from the CPU.
type Sampler interface {
	// Load returns the texel at integer coordinates, clamped to the edge.
	Load(x, y int) Color

	// Sample returns the bilinearly filtered value at normalized
	// coordinates, clamped to the edge. (0,0) is the top-left corner.
	Sample(u, v float64) Color
}

// Sample reads t at (u, v) when t is CPU-accessible and returns transparent
// black otherwise.
func Sample(t Texture, u, v float64) Color {
	if s, ok := t.(Sampler); ok {
		return s.Sample(u, v)
	}
	return Transparent
}

// Load reads the texel (x, y) of t when t is CPU-accessible and returns
// transparent black otherwise.
func Load(t Texture, x, y int) Color {
	if s, ok := t.(Sampler); ok {
		return s.Load(x, y)
	}
	return Transparent
}

// Pixmap is a CPU texture storing four float32 channels per pixel.
//
// Float storage keeps HDR values intact between passes (bloom and tone
// mapping operate above 1.0). The declared Format is metadata only.
type Pixmap struct {
	label  string
	width  int
	height int
	format gputypes.TextureFormat
	pix    []float32
}

// NewPixmap creates a zeroed pixmap. Negative sizes are treated as zero.
func NewPixmap(label string, width, height int, format gputypes.TextureFormat) *Pixmap {
	width = max(width, 0)
	height = max(height, 0)
	return &Pixmap{
		label:  label,
		width:  width,
		height: height,
		format: format,
		pix:    make([]float32, width*height*4),
	}
}

// Label returns the debug label.
func (p *Pixmap) Label() string { return p.label }

// Width returns the pixmap width in pixels.
func (p *Pixmap) Width() int { return p.width }

// Height returns the pixmap height in pixels.
func (p *Pixmap) Height() int { return p.height }

// Format returns the declared pixel format.
func (p *Pixmap) Format() gputypes.TextureFormat { return p.format }

// Pix returns the raw RGBA float32 data, row-major.
func (p *Pixmap) Pix() []float32 { return p.pix }

// At returns the pixel at (x, y), or transparent black outside the bounds.
func (p *Pixmap) At(x, y int) Color {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return Color{
		R: float64(p.pix[i]),
		G: float64(p.pix[i+1]),
		B: float64(p.pix[i+2]),
		A: float64(p.pix[i+3]),
	}
}

// Set writes the pixel at (x, y). Writes outside the bounds are ignored.
func (p *Pixmap) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.pix[i] = float32(c.R)
	p.pix[i+1] = float32(c.G)
	p.pix[i+2] = float32(c.B)
	p.pix[i+3] = float32(c.A)
}

// Fill sets every pixel to c.
func (p *Pixmap) Fill(c Color) {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	for i := 0; i < len(p.pix); i += 4 {
		p.pix[i] = r
		p.pix[i+1] = g
		p.pix[i+2] = b
		p.pix[i+3] = a
	}
}

// Load returns the texel at (x, y), clamped to the edge.
func (p *Pixmap) Load(x, y int) Color {
	if p.width == 0 || p.height == 0 {
		return Transparent
	}
	x = min(max(x, 0), p.width-1)
	y = min(max(y, 0), p.height-1)
	return p.At(x, y)
}

// Sample returns the bilinearly filtered value at (u, v).
func (p *Pixmap) Sample(u, v float64) Color {
	if p.width == 0 || p.height == 0 {
		return Transparent
	}
	fx := u*float64(p.width) - 0.5
	fy := v*float64(p.height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := p.Load(x0, y0).Lerp(p.Load(x0+1, y0), tx)
	bottom := p.Load(x0, y0+1).Lerp(p.Load(x0+1, y0+1), tx)
	return top.Lerp(bottom, ty)
}

// Image converts the pixmap to an 8-bit image, clamping HDR values.
func (p *Pixmap) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetNRGBA(x, y, p.At(x, y).NRGBA())
		}
	}
	return img
}

// Ensure Pixmap implements Texture and Sampler.
var (
	_ Texture = (*Pixmap)(nil)
	_ Sampler = (*Pixmap)(nil)
)

// PixmapTarget is a CPU-backed render target.
//
// Example:
//
//	target := render.NewPixmapTarget("bloom", 800, 600, gputypes.TextureFormatRGBA16Float)
//	renderer.SetRenderTarget(target)
//	renderer.Render(quad)
//	img := target.Pixmap().Image()
type PixmapTarget struct {
	pixmap   *Pixmap
	disposed bool
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(label string, width, height int, format gputypes.TextureFormat) *PixmapTarget {
	return &PixmapTarget{pixmap: NewPixmap(label, width, height, format)}
}

// Texture returns the pixmap holding the target contents.
func (t *PixmapTarget) Texture() Texture { return t.pixmap }

// Pixmap returns the pixmap holding the target contents.
func (t *PixmapTarget) Pixmap() *Pixmap { return t.pixmap }

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.pixmap.width }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.pixmap.height }

// Dispose drops the pixel storage. Safe to call more than once.
func (t *PixmapTarget) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.pixmap.pix = nil
	t.pixmap.width = 0
	t.pixmap.height = 0
}

// Disposed reports whether Dispose has been called.
func (t *PixmapTarget) Disposed() bool { return t.disposed }

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)
