// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// ErrUnaligned is returned by ToWords for input that is not a whole number
// of 32-bit words.
var ErrUnaligned = errors.New("shader: SPIR-V length is not a multiple of 4")

// CompileFunc turns WGSL into SPIR-V bytes.
type CompileFunc func(wgsl string) ([]byte, error)

// NagaCompile compiles WGSL with naga.
func NagaCompile(wgsl string) ([]byte, error) {
	return naga.Compile(wgsl)
}

// ToWords converts little-endian SPIR-V bytes to 32-bit words.
func ToWords(spirv []byte) ([]uint32, error) {
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnaligned, len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}
