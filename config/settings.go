// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Settings is the complete effect chain configuration.
type Settings struct {
	Lensing     Lensing
	Clouds      Clouds
	Temporal    Temporal
	Bloom       Bloom
	ToneMapping ToneMapping
	Output      Output
}

// Lensing configures the lensing pass.
type Lensing struct {
	Enabled          bool
	Strength         float64
	Radius           float64
	CenterX, CenterY float64
}

// Clouds configures cloud rendering and accumulation.
type Clouds struct {
	Enabled bool
	// Scale is the cloud buffer resolution relative to the frame, in (0, 1].
	Scale float64
}

// Temporal configures temporal reprojection.
type Temporal struct {
	Enabled               bool
	HistoryWeight         float64
	DisocclusionThreshold float64
}

// Bloom configures the bloom pass.
type Bloom struct {
	Enabled   bool
	Strength  float64
	Radius    float64
	Threshold float64
}

// ToneMapping configures the tone mapping pass.
type ToneMapping struct {
	Enabled bool
	// Operator is one of none, reinhard, aces, uncharted2.
	Operator string
	Exposure float64
	// ExposureImport names a bridge import overriding Exposure.
	ExposureImport string
}

// Output configures the final pass.
type Output struct {
	Gamma float64
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Lensing: Lensing{
			Enabled:  true,
			Strength: 0.05,
			Radius:   0.25,
			CenterX:  0.5,
			CenterY:  0.5,
		},
		Clouds: Clouds{
			Enabled: true,
			Scale:   0.5,
		},
		Temporal: Temporal{
			Enabled:               true,
			HistoryWeight:         0.9,
			DisocclusionThreshold: 0.01,
		},
		Bloom: Bloom{
			Enabled:   true,
			Strength:  0.6,
			Radius:    1,
			Threshold: 1,
		},
		ToneMapping: ToneMapping{
			Enabled:  true,
			Operator: "aces",
			Exposure: 1,
		},
		Output: Output{
			Gamma: 2.2,
		},
	}
}

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("config: invalid settings")

var operators = []string{"none", "reinhard", "aces", "uncharted2"}

// Validate reports every out-of-range value.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(s.Lensing.Radius > 0, "lensing.radius must be positive, got %g", s.Lensing.Radius)
	check(s.Clouds.Scale > 0 && s.Clouds.Scale <= 1, "clouds.scale must be in (0, 1], got %g", s.Clouds.Scale)
	check(s.Temporal.HistoryWeight >= 0 && s.Temporal.HistoryWeight <= 1,
		"temporal.history_weight must be in [0, 1], got %g", s.Temporal.HistoryWeight)
	check(s.Temporal.DisocclusionThreshold >= 0,
		"temporal.disocclusion_threshold must not be negative, got %g", s.Temporal.DisocclusionThreshold)
	check(s.Bloom.Strength >= 0, "bloom.strength must not be negative, got %g", s.Bloom.Strength)
	check(s.Bloom.Radius >= 0, "bloom.radius must not be negative, got %g", s.Bloom.Radius)
	check(s.ToneMapping.Exposure > 0, "tone_mapping.exposure must be positive, got %g", s.ToneMapping.Exposure)
	check(validOperator(s.ToneMapping.Operator),
		"tone_mapping.operator must be one of %s, got %q", strings.Join(operators, ", "), s.ToneMapping.Operator)
	check(s.Output.Gamma > 0, "output.gamma must be positive, got %g", s.Output.Gamma)

	return errors.Join(errs...)
}

func validOperator(op string) bool {
	for _, o := range operators {
		if strings.EqualFold(op, o) {
			return true
		}
	}
	return false
}
