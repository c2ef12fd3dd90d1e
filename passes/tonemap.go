// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"fmt"
	"strings"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/shader"
)

// Operator selects a tone mapping curve. The values match the shader.
type Operator uint32

// Tone mapping operators.
const (
	OperatorNone Operator = iota
	OperatorReinhard
	OperatorACES
	OperatorUncharted2
)

var operatorNames = [...]string{"none", "reinhard", "aces", "uncharted2"}

// String returns the operator's configuration name.
func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", uint32(o))
}

// ParseOperator parses a configuration name, case-insensitively.
func ParseOperator(s string) (Operator, error) {
	for i, n := range operatorNames {
		if strings.EqualFold(s, n) {
			return Operator(i), nil //nolint:gosec // index of a 4-element array
		}
	}
	return OperatorNone, fmt.Errorf("passes: unknown tone mapping operator %q", s)
}

type toneUniforms struct {
	Operator Operator
	Exposure float64
}

// ToneMapping maps HDR color to display range. Exposure is multiplied in
// before the curve; when an exposure import is set and the bridge captured
// a numeric value for it, that value replaces the configured exposure for
// the frame.
type ToneMapping struct {
	framegraph.BasePass
	in, out        string
	operator       Operator
	exposure       float64
	exposureImport string
}

// NewToneMapping creates a tone mapping pass reading in and writing out.
func NewToneMapping(in, out string, op Operator, exposure float64) *ToneMapping {
	return &ToneMapping{
		BasePass: framegraph.NewBasePass(NameToneMapping,
			[]framegraph.ResourceRef{framegraph.Read(in)},
			[]framegraph.ResourceRef{framegraph.Write(out)}),
		in:       in,
		out:      out,
		operator: op,
		exposure: exposure,
	}
}

// Operator returns the curve in use.
func (p *ToneMapping) Operator() Operator { return p.operator }

// SetOperator selects the curve.
func (p *ToneMapping) SetOperator(op Operator) { p.operator = op }

// Exposure returns the configured exposure.
func (p *ToneMapping) Exposure() float64 { return p.exposure }

// SetExposure sets the configured exposure.
func (p *ToneMapping) SetExposure(e float64) { p.exposure = e }

// SetExposureImport names the bridge import read for exposure. Empty
// disables the import.
func (p *ToneMapping) SetExposureImport(id string) { p.exposureImport = id }

// Shaders implements framegraph.ShaderUser.
func (p *ToneMapping) Shaders() []shader.Source {
	return []shader.Source{toneMappingShader}
}

// Execute implements framegraph.Pass.
func (p *ToneMapping) Execute(ctx *framegraph.Context) error {
	src := ctx.ReadTexture(p.in)
	u := toneUniforms{Operator: p.operator, Exposure: p.exposure}
	if p.exposureImport != "" {
		if v, ok := ctx.Import(p.exposureImport); ok {
			if e, ok := toFloat(v); ok {
				u.Exposure = e
			} else {
				ctx.Logger().Debug("passes: exposure import is not numeric", "id", p.exposureImport)
			}
		}
	}
	return drawFullscreen(ctx, p.out, toneMappingShader, u,
		func(s, t float64, _, _ int) render.Color {
			c := render.Sample(src, s, t)
			return u.Operator.apply(c.Scale(u.Exposure))
		})
}

func (o Operator) apply(c render.Color) render.Color {
	var f func(float64) float64
	switch o {
	case OperatorReinhard:
		f = func(x float64) float64 { return x / (1 + x) }
	case OperatorACES:
		f = aces
	case OperatorUncharted2:
		white := uncharted2(11.2)
		f = func(x float64) float64 { return uncharted2(x*2) / white }
	default:
		return c
	}
	return render.Color{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
}

func aces(x float64) float64 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp((x*(a*x+b))/(x*(c*x+d)+e), 0, 1)
}

func uncharted2(x float64) float64 {
	const a, b, c, d, e, f = 0.15, 0.50, 0.10, 0.20, 0.02, 0.30
	return (x*(a*x+c*b)+d*e)/(x*(a*x+b)+d*f) - e/f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case *float64:
		if n != nil {
			return *n, true
		}
	}
	return 0, false
}

var (
	_ framegraph.Pass       = (*ToneMapping)(nil)
	_ framegraph.ShaderUser = (*ToneMapping)(nil)
)
