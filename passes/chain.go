// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/config"
	"github.com/gogpu/framegraph/internal/logging"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/framegraph/temporal"
)

// Sources describes what the host renders before the chain.
type Sources struct {
	// Color and Depth are the keys the host's scene pass writes. Empty
	// selects SceneColor and SceneDepth. Missing keys are registered as
	// full-resolution single buffers.
	Color, Depth string

	// Clouds is evaluated by the cloud passes. Nil leaves clouds out even
	// when enabled in the settings.
	Clouds CloudFunc

	// CloudsEnabled gates cloud accumulation at runtime. Nil means always.
	CloudsEnabled temporal.Signal
}

// Chain holds the passes BuildChain added. Passes left out by the
// settings are nil.
type Chain struct {
	CloudRender          *CloudRender
	CloudAccumulation    *CloudAccumulation
	Composite            *Composite
	Lensing              *Lensing
	TemporalReprojection *TemporalReprojection
	Bloom                *Bloom
	ToneMapping          *ToneMapping
	Output               *Output
}

// BuildChain registers the chain's resources in g and appends its passes
// after any passes already added. Each enabled stage reads the output of
// the previous one; Output always runs and writes the screen.
//
// On error, passes added so far are removed again.
func BuildChain(g *framegraph.FrameGraph, s config.Settings, src Sources) (*Chain, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if src.Color == "" {
		src.Color = SceneColor
	}
	if src.Depth == "" {
		src.Depth = SceneDepth
	}

	b := &chainBuilder{g: g}
	c, err := b.build(s, src)
	if err != nil {
		b.rollback()
		return nil, err
	}
	logging.Logger().Info("passes: chain built", "passes", b.added)
	return c, nil
}

type chainBuilder struct {
	g          *framegraph.FrameGraph
	added      []string
	registered []string
}

func (b *chainBuilder) register(key string, kind resource.Kind) error {
	reg := b.g.Registry()
	if reg.Has(key) {
		return nil
	}
	if _, err := reg.Register(resource.Descriptor{Key: key, Kind: kind}); err != nil {
		return err
	}
	b.registered = append(b.registered, key)
	return nil
}

func (b *chainBuilder) add(p framegraph.Pass) error {
	if err := b.g.AddPass(p); err != nil {
		return err
	}
	b.added = append(b.added, p.Name())
	return nil
}

func (b *chainBuilder) rollback() {
	for i := len(b.added) - 1; i >= 0; i-- {
		b.g.RemovePass(b.added[i])
	}
	for _, key := range b.registered {
		b.g.Registry().Unregister(key)
	}
}

func (b *chainBuilder) build(s config.Settings, src Sources) (*Chain, error) {
	var errs []error
	for _, key := range []string{src.Color, src.Depth} {
		errs = append(errs, b.register(key, resource.Single))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("passes: register chain resources: %w", err)
	}

	c := &Chain{}
	current := src.Color

	if s.Clouds.Enabled && src.Clouds != nil {
		r, a, err := NewClouds(b.g.Registry(), src.Clouds,
			temporal.WithCloudScale(s.Clouds.Scale), temporal.WithEnabled(src.CloudsEnabled))
		if err != nil {
			return nil, err
		}
		if err := b.add(r); err != nil {
			a.Dispose()
			return nil, err
		}
		if err := b.add(a); err != nil {
			a.Dispose()
			return nil, err
		}
		if err := b.register(CompositeOut, resource.Single); err != nil {
			return nil, err
		}
		comp := NewComposite(current, temporal.AccumulationKey, CompositeOut)
		if err := b.add(comp); err != nil {
			return nil, err
		}
		c.CloudRender, c.CloudAccumulation, c.Composite = r, a, comp
		current = CompositeOut
	}

	if s.Lensing.Enabled {
		if err := b.register(LensingOut, resource.Single); err != nil {
			return nil, err
		}
		c.Lensing = NewLensing(current, LensingOut, LensingParams{
			CenterX:  s.Lensing.CenterX,
			CenterY:  s.Lensing.CenterY,
			Strength: s.Lensing.Strength,
			Radius:   s.Lensing.Radius,
		})
		if err := b.add(c.Lensing); err != nil {
			return nil, err
		}
		current = LensingOut
	}

	if s.Temporal.Enabled {
		for _, key := range []string{ColorHistory, DepthHistory} {
			if err := b.register(key, resource.PingPong); err != nil {
				return nil, err
			}
		}
		c.TemporalReprojection = NewTemporalReprojection(current, src.Depth, TemporalParams{
			HistoryWeight:         s.Temporal.HistoryWeight,
			DisocclusionThreshold: s.Temporal.DisocclusionThreshold,
		})
		if err := b.add(c.TemporalReprojection); err != nil {
			c.TemporalReprojection.Dispose()
			return nil, err
		}
		current = ColorHistory
	}

	if s.Bloom.Enabled {
		if err := b.register(BloomOut, resource.Single); err != nil {
			return nil, err
		}
		c.Bloom = NewBloom(current, BloomOut, BloomParams{
			Strength:  s.Bloom.Strength,
			Radius:    s.Bloom.Radius,
			Threshold: s.Bloom.Threshold,
		})
		if err := b.add(c.Bloom); err != nil {
			return nil, err
		}
		current = BloomOut
	}

	if s.ToneMapping.Enabled {
		op, err := ParseOperator(s.ToneMapping.Operator)
		if err != nil {
			return nil, err
		}
		if err := b.register(ToneMappedOut, resource.Single); err != nil {
			return nil, err
		}
		c.ToneMapping = NewToneMapping(current, ToneMappedOut, op, s.ToneMapping.Exposure)
		c.ToneMapping.SetExposureImport(s.ToneMapping.ExposureImport)
		if err := b.add(c.ToneMapping); err != nil {
			return nil, err
		}
		current = ToneMappedOut
	}

	c.Output = NewOutput(current, s.Output.Gamma)
	if err := b.add(c.Output); err != nil {
		return nil, err
	}
	return c, nil
}
