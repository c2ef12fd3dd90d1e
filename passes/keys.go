// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

// Resource keys used by the standard chain.
const (
	SceneColor    = "scene.color"
	SceneDepth    = "scene.depth"
	CompositeOut  = "composite.out"
	LensingOut    = "lensing.out"
	ColorHistory  = "taa.history"
	DepthHistory  = "depth.history"
	BloomOut      = "bloom.out"
	ToneMappedOut = "tonemap.out"
)

// Pass names used by the standard chain.
const (
	NameCloudRender          = "cloud-render"
	NameCloudAccumulation    = "cloud-accumulation"
	NameComposite            = "composite"
	NameLensing              = "lensing"
	NameTemporalReprojection = "temporal-reprojection"
	NameBloom                = "bloom"
	NameToneMapping          = "tone-mapping"
	NameOutput               = "output"
)
