// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
)

func newTestRegistry(t *testing.T, w, h int) (*Registry, *SoftwareAllocator) {
	t.Helper()
	alloc := NewSoftwareAllocator()
	reg := NewRegistry(alloc, w, h)
	t.Cleanup(reg.Dispose)
	return reg, alloc
}

func TestRegistryUnknownKeyIsNil(t *testing.T) {
	reg, _ := newTestRegistry(t, 4, 4)
	if got := reg.ReadTexture("missing"); got != nil {
		t.Errorf("ReadTexture(missing) = %v, want nil", got)
	}
	if got := reg.WriteTarget("missing"); got != nil {
		t.Errorf("WriteTarget(missing) = %v, want nil", got)
	}
	reg.Commit("missing")
	reg.Invalidate("missing")
}

func TestRegistryRegisterErrors(t *testing.T) {
	reg, _ := newTestRegistry(t, 4, 4)

	if _, err := reg.Register(Descriptor{}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Register(empty) error = %v, want %v", err, ErrEmptyKey)
	}
	if _, err := reg.Register(Descriptor{Key: "a", Scale: -1}); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("Register(scale -1) error = %v, want %v", err, ErrInvalidScale)
	}
	if _, err := reg.Register(Descriptor{Key: "a"}); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	_, err := reg.Register(Descriptor{Key: "a"})
	var keyErr *KeyError
	if !errors.As(err, &keyErr) || keyErr.Key != "a" || !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Register(duplicate) error = %v, want KeyError{a, duplicate}", err)
	}
}

func TestRegistrySingleLifecycle(t *testing.T) {
	reg, _ := newTestRegistry(t, 8, 6)
	res, err := reg.Register(Descriptor{Key: "bloom", Scale: 0.5})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if w, h := res.Size(); w != 4 || h != 3 {
		t.Errorf("Size() = %dx%d, want 4x3", w, h)
	}
	if res.Descriptor().Format != gputypes.TextureFormatRGBA16Float {
		t.Errorf("default Format = %v, want RGBA16Float", res.Descriptor().Format)
	}

	if reg.ReadTexture("bloom") != nil {
		t.Error("ReadTexture() before commit should be nil")
	}
	target := reg.WriteTarget("bloom")
	if target == nil {
		t.Fatal("WriteTarget() = nil")
	}
	reg.Commit("bloom")
	if got := reg.ReadTexture("bloom"); got != target.Texture() {
		t.Error("ReadTexture() after commit is not the written texture")
	}

	reg.Invalidate("bloom")
	if reg.ReadTexture("bloom") != nil {
		t.Error("ReadTexture() after Invalidate should be nil")
	}
}

func TestRegistryPingPong(t *testing.T) {
	reg, alloc := newTestRegistry(t, 4, 4)
	if _, err := reg.Register(Descriptor{Key: "history", Kind: PingPong}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if alloc.Allocations() != 2 {
		t.Errorf("Allocations() = %d, want 2", alloc.Allocations())
	}

	first := reg.WriteTarget("history")
	if reg.ReadTexture("history") != nil {
		t.Error("ReadTexture() before first commit should be nil")
	}
	reg.Commit("history")

	second := reg.WriteTarget("history")
	if first == second {
		t.Fatal("WriteTarget() did not swap after commit")
	}
	if got := reg.ReadTexture("history"); got != first.Texture() {
		t.Error("ReadTexture() should return the buffer written last frame")
	}
	if render.Texture(second.Texture()) == reg.ReadTexture("history") {
		t.Error("read and write buffers alias")
	}

	reg.Commit("history")
	if reg.WriteTarget("history") != first {
		t.Error("third frame should write the first buffer again")
	}
}

func TestRegistryExternal(t *testing.T) {
	reg, _ := newTestRegistry(t, 4, 4)
	depth := render.NewPixmap("depth", 4, 4, gputypes.TextureFormatRGBA16Float)

	if err := reg.SetExternal("scene.depth", depth); err != nil {
		t.Fatalf("SetExternal() error = %v", err)
	}
	if got := reg.ReadTexture("scene.depth"); got != depth {
		t.Errorf("ReadTexture(external) = %v, want depth", got)
	}
	if reg.WriteTarget("scene.depth") != nil {
		t.Error("WriteTarget(external) should be nil")
	}

	if err := reg.RegisterExternal("scene.depth", nil); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("RegisterExternal(duplicate) error = %v", err)
	}
	if _, err := reg.Register(Descriptor{Key: "owned"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetExternal("owned", depth); !errors.Is(err, ErrNotExternal) {
		t.Errorf("SetExternal(owned) error = %v, want %v", err, ErrNotExternal)
	}

	if err := reg.SetExternal("scene.depth", nil); err != nil {
		t.Fatal(err)
	}
	if reg.ReadTexture("scene.depth") != nil {
		t.Error("ReadTexture() after clearing external should be nil")
	}
}

func TestRegistryResize(t *testing.T) {
	reg, alloc := newTestRegistry(t, 1920, 1080)
	if _, err := reg.Register(Descriptor{Key: "full"}); err != nil {
		t.Fatal(err)
	}
	half, err := reg.Register(Descriptor{Key: "half", Scale: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	reg.Commit("full")
	before := alloc.Allocations()

	if err := reg.Resize(1920, 1080); err != nil {
		t.Fatalf("Resize(same) error = %v", err)
	}
	if alloc.Allocations() != before {
		t.Error("Resize() with unchanged size reallocated")
	}

	if err := reg.Resize(1280, 720); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if w, h := half.Size(); w != 640 || h != 360 {
		t.Errorf("half Size() = %dx%d, want 640x360", w, h)
	}
	if reg.ReadTexture("full") != nil {
		t.Error("resized resource kept its readable version")
	}
	if got, ok := reg.Get("half"); !ok || got != half {
		t.Error("Resize() changed resource identity")
	}

	if err := reg.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0, 10) error = %v, want %v", err, ErrInvalidSize)
	}
}

func TestRegistryResizeScaledSizeUnchanged(t *testing.T) {
	reg, alloc := newTestRegistry(t, 3, 3)
	if _, err := reg.Register(Descriptor{Key: "tiny", Scale: 0.1}); err != nil {
		t.Fatal(err)
	}
	before := alloc.Allocations()
	if err := reg.Resize(5, 5); err != nil {
		t.Fatal(err)
	}
	if alloc.Allocations() != before {
		t.Error("resource with unchanged 1x1 scaled size was reallocated")
	}
}

func TestRegistryUnregisterAndKeys(t *testing.T) {
	reg, _ := newTestRegistry(t, 2, 2)
	for _, k := range []string{"a", "b", "c"} {
		if _, err := reg.Register(Descriptor{Key: k}); err != nil {
			t.Fatal(err)
		}
	}
	target := reg.WriteTarget("b").(*render.PixmapTarget)

	if !reg.Unregister("b") {
		t.Fatal("Unregister(b) = false")
	}
	if !target.Disposed() {
		t.Error("Unregister() did not dispose the target")
	}
	if reg.Unregister("b") {
		t.Error("second Unregister(b) = true")
	}
	keys := reg.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}
}

func TestRegistryDispose(t *testing.T) {
	reg, _ := newTestRegistry(t, 2, 2)
	if _, err := reg.Register(Descriptor{Key: "a", Kind: PingPong}); err != nil {
		t.Fatal(err)
	}
	reg.Dispose()
	reg.Dispose()
	if reg.Len() != 0 {
		t.Errorf("Len() after Dispose = %d", reg.Len())
	}
	if _, err := reg.Register(Descriptor{Key: "b"}); !errors.Is(err, ErrDisposed) {
		t.Errorf("Register() after Dispose error = %v, want %v", err, ErrDisposed)
	}
}

func TestRegistryAllocatorFailure(t *testing.T) {
	boom := errors.New("out of memory")
	calls := 0
	alloc := AllocatorFunc(func(label string, w, h int, f gputypes.TextureFormat) (render.RenderTarget, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return render.NewPixmapTarget(label, w, h, f), nil
	})
	reg := NewRegistry(alloc, 2, 2)
	_, err := reg.Register(Descriptor{Key: "pp", Kind: PingPong})
	if !errors.Is(err, boom) || !errors.Is(err, ErrAllocatorFail) {
		t.Errorf("Register() error = %v, want wrapped %v", err, boom)
	}
	if reg.Has("pp") {
		t.Error("failed registration left a resource behind")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		dim   int
		scale float64
		want  int
	}{
		{1920, 1, 1920},
		{1080, 0.5, 540},
		{1081, 0.5, 540},
		{3, 0.1, 1},
	}
	for _, tt := range tests {
		if got := ScaledSize(tt.dim, tt.scale); got != tt.want {
			t.Errorf("ScaledSize(%d, %v) = %d, want %d", tt.dim, tt.scale, got, tt.want)
		}
	}
}
