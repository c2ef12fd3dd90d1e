// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader holds the WGSL sources of the built-in passes and compiles
// them to SPIR-V through naga.
//
// Compilation happens once per distinct source: Cache keys modules by name
// and source hash and keeps the most recently used ones.
package shader

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed wgsl/*.wgsl
var wgslFS embed.FS

// Built-in shader names.
const (
	Fullscreen           = "fullscreen"
	Lensing              = "lensing"
	CloudAccumulation    = "cloud_accumulation"
	TemporalReprojection = "temporal_reprojection"
	Bloom                = "bloom"
	ToneMapping          = "tone_mapping"
	Output               = "output"
)

// Source is a named WGSL module.
type Source struct {
	Name string
	WGSL string
}

// Lookup returns the built-in source called name.
func Lookup(name string) (Source, bool) {
	data, err := wgslFS.ReadFile(path.Join("wgsl", name+".wgsl"))
	if err != nil {
		return Source{}, false
	}
	return Source{Name: name, WGSL: string(data)}, true
}

// MustLookup is like Lookup but panics for unknown names. Intended for
// package-level initialization of built-in passes.
func MustLookup(name string) Source {
	s, ok := Lookup(name)
	if !ok {
		panic("shader: unknown built-in " + name)
	}
	return s
}

// Names returns the names of all built-in sources, sorted.
func Names() []string {
	entries, err := wgslFS.ReadDir("wgsl")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	sort.Strings(names)
	return names
}
