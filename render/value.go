// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// Cloner is implemented by mutable values that need a deep copy when they
// are snapshotted.
type Cloner interface {
	Clone() any
}

// Snapshot returns a copy of v that later mutation of v cannot affect.
//
// Colors are copied by value, *Color pointers are copied into a fresh
// allocation, float slices are duplicated and Cloner values are cloned.
// Anything else (textures, materials) is returned as is: those are
// references by nature and are compared by identity.
func Snapshot(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Color:
		return x
	case *Color:
		if x == nil {
			return x
		}
		c := *x
		return &c
	case []float64:
		if x == nil {
			return x
		}
		return append([]float64(nil), x...)
	case []float32:
		if x == nil {
			return x
		}
		return append([]float32(nil), x...)
	case Cloner:
		return x.Clone()
	}
	return v
}
