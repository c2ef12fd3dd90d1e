// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads effect chain settings from HCL.
//
// Every block and attribute is optional; anything left out keeps its
// Default value. Attribute values are expressions evaluated with the
// variables width, height and aspect (the frame size), any variables the
// caller supplies, and a few numeric functions:
//
//	bloom {
//	  strength  = aspect > 1.5 ? 0.8 : 0.5
//	  threshold = 1.0
//	}
//
//	tone_mapping {
//	  operator = "aces"
//	  exposure = max(exposure_bias, 0.5)
//	}
package config
