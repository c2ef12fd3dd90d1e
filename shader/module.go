// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package shader

import (
	"github.com/gogpu/wgpu/hal"
)

// CreateModule creates a HAL shader module from a compiled module.
func CreateModule(device hal.Device, m *Module) (hal.ShaderModule, error) {
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: m.Name,
		Source: hal.ShaderSource{
			SPIRV: m.SPIRV,
		},
	})
}
