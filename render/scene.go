// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// Scene is the part of a scene graph the frame graph touches.
//
// Background and Environment are opaque: a Color, a Texture, or whatever the
// host uses. No traversal is ever performed.
type Scene interface {
	Background() any
	SetBackground(v any)

	Environment() any
	SetEnvironment(v any)

	OverrideMaterial() *Material
	SetOverrideMaterial(m *Material)
}

// BasicScene is a minimal Scene implementation.
type BasicScene struct {
	background       any
	environment      any
	overrideMaterial *Material
}

// NewScene creates a scene with the given background.
func NewScene(background any) *BasicScene {
	return &BasicScene{background: background}
}

// Background returns the scene background.
func (s *BasicScene) Background() any { return s.background }

// SetBackground replaces the scene background.
func (s *BasicScene) SetBackground(v any) { s.background = v }

// Environment returns the environment map.
func (s *BasicScene) Environment() any { return s.environment }

// SetEnvironment replaces the environment map.
func (s *BasicScene) SetEnvironment(v any) { s.environment = v }

// OverrideMaterial returns the material forced on every object, if any.
func (s *BasicScene) OverrideMaterial() *Material { return s.overrideMaterial }

// SetOverrideMaterial sets the material forced on every object.
func (s *BasicScene) SetOverrideMaterial(m *Material) { s.overrideMaterial = m }

// Ensure BasicScene implements Scene.
var _ Scene = (*BasicScene)(nil)
