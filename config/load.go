// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/gogpu/framegraph/internal/logging"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Option configures expression evaluation.
type Option func(*options)

type options struct {
	width, height int
	vars          map[string]cty.Value
}

func defaultOptions() options {
	return options{width: 1280, height: 720, vars: make(map[string]cty.Value)}
}

// WithSize sets the frame size exposed as width, height and aspect.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithVariables exposes vars to expressions. The size variables cannot be
// overridden.
func WithVariables(vars map[string]cty.Value) Option {
	return func(o *options) {
		for k, v := range vars {
			o.vars[k] = v
		}
	}
}

// WithNumber exposes a single numeric variable.
func WithNumber(name string, v float64) Option {
	return func(o *options) {
		o.vars[name] = cty.NumberFloatVal(v)
	}
}

func (o options) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(o.vars)+3)
	for k, v := range o.vars {
		vars[k] = v
	}
	vars["width"] = cty.NumberIntVal(int64(o.width))
	vars["height"] = cty.NumberIntVal(int64(o.height))
	vars["aspect"] = cty.NumberFloatVal(float64(o.width) / float64(o.height))

	return &hcl.EvalContext{
		Variables: vars,
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"abs":   stdlib.AbsoluteFunc,
			"floor": stdlib.FloorFunc,
			"ceil":  stdlib.CeilFunc,
		},
	}
}

type rawFile struct {
	Lensing     *rawLensing     `hcl:"lensing,block"`
	Clouds      *rawClouds      `hcl:"clouds,block"`
	Temporal    *rawTemporal    `hcl:"temporal,block"`
	Bloom       *rawBloom       `hcl:"bloom,block"`
	ToneMapping *rawToneMapping `hcl:"tone_mapping,block"`
	Output      *rawOutput      `hcl:"output,block"`
}

type rawLensing struct {
	Enabled  *bool     `hcl:"enabled,optional"`
	Strength *float64  `hcl:"strength,optional"`
	Radius   *float64  `hcl:"radius,optional"`
	Center   []float64 `hcl:"center,optional"`
}

type rawClouds struct {
	Enabled *bool    `hcl:"enabled,optional"`
	Scale   *float64 `hcl:"scale,optional"`
}

type rawTemporal struct {
	Enabled               *bool    `hcl:"enabled,optional"`
	HistoryWeight         *float64 `hcl:"history_weight,optional"`
	DisocclusionThreshold *float64 `hcl:"disocclusion_threshold,optional"`
}

type rawBloom struct {
	Enabled   *bool    `hcl:"enabled,optional"`
	Strength  *float64 `hcl:"strength,optional"`
	Radius    *float64 `hcl:"radius,optional"`
	Threshold *float64 `hcl:"threshold,optional"`
}

type rawToneMapping struct {
	Enabled        *bool    `hcl:"enabled,optional"`
	Operator       *string  `hcl:"operator,optional"`
	Exposure       *float64 `hcl:"exposure,optional"`
	ExposureImport *string  `hcl:"exposure_import,optional"`
}

type rawOutput struct {
	Gamma *float64 `hcl:"gamma,optional"`
}

// Parse decodes HCL source. filename is used in diagnostics only. The
// result is validated.
func Parse(src []byte, filename string, opts ...Option) (Settings, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("config: parse %s: %w", filename, diags)
	}
	return decode(file.Body, filename, opts)
}

// Load reads and decodes the HCL file at path.
func Load(path string, opts ...Option) (Settings, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, diags)
	}
	return decode(file.Body, path, opts)
}

func decode(body hcl.Body, filename string, opts []Option) (Settings, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var raw rawFile
	if diags := gohcl.DecodeBody(body, o.evalContext(), &raw); diags.HasErrors() {
		return Settings{}, fmt.Errorf("config: decode %s: %w", filename, diags)
	}

	s := Default()
	if err := raw.merge(&s); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", filename, err)
	}
	logging.Logger().Debug("config: loaded", "file", filename,
		"lensing", s.Lensing.Enabled, "clouds", s.Clouds.Enabled, "temporal", s.Temporal.Enabled,
		"bloom", s.Bloom.Enabled, "toneMapping", s.ToneMapping.Enabled)
	return s, nil
}

func (r *rawFile) merge(s *Settings) error {
	if l := r.Lensing; l != nil {
		set(&s.Lensing.Enabled, l.Enabled)
		set(&s.Lensing.Strength, l.Strength)
		set(&s.Lensing.Radius, l.Radius)
		if l.Center != nil {
			if len(l.Center) != 2 {
				return fmt.Errorf("%w: lensing.center needs 2 elements, got %d", ErrInvalid, len(l.Center))
			}
			s.Lensing.CenterX, s.Lensing.CenterY = l.Center[0], l.Center[1]
		}
	}
	if c := r.Clouds; c != nil {
		set(&s.Clouds.Enabled, c.Enabled)
		set(&s.Clouds.Scale, c.Scale)
	}
	if t := r.Temporal; t != nil {
		set(&s.Temporal.Enabled, t.Enabled)
		set(&s.Temporal.HistoryWeight, t.HistoryWeight)
		set(&s.Temporal.DisocclusionThreshold, t.DisocclusionThreshold)
	}
	if b := r.Bloom; b != nil {
		set(&s.Bloom.Enabled, b.Enabled)
		set(&s.Bloom.Strength, b.Strength)
		set(&s.Bloom.Radius, b.Radius)
		set(&s.Bloom.Threshold, b.Threshold)
	}
	if t := r.ToneMapping; t != nil {
		set(&s.ToneMapping.Enabled, t.Enabled)
		set(&s.ToneMapping.Operator, t.Operator)
		set(&s.ToneMapping.Exposure, t.Exposure)
		set(&s.ToneMapping.ExposureImport, t.ExposureImport)
	}
	if out := r.Output; out != nil {
		set(&s.Output.Gamma, out.Gamma)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
