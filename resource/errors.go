// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Registry.
var (
	ErrEmptyKey      = errors.New("resource: empty key")
	ErrDuplicateKey  = errors.New("resource: duplicate key")
	ErrUnknownKey    = errors.New("resource: unknown key")
	ErrNotExternal   = errors.New("resource: key is not external")
	ErrInvalidScale  = errors.New("resource: scale must not be negative")
	ErrInvalidSize   = errors.New("resource: size must be positive")
	ErrDisposed      = errors.New("resource: registry disposed")
	ErrNoAllocator   = errors.New("resource: no allocator")
	ErrAllocatorFail = errors.New("resource: allocation failed")
)

// KeyError reports a failure concerning one resource key.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }
