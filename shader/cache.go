// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"hash/fnv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/framegraph/internal/logging"
)

// DefaultCacheSize is the number of modules a Cache keeps by default.
const DefaultCacheSize = 32

// Module is a compiled shader.
type Module struct {
	Name  string
	Hash  uint64
	SPIRV []uint32
}

type cacheKey struct {
	name string
	hash uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCompiler replaces the WGSL compiler. The default is NagaCompile.
func WithCompiler(fn CompileFunc) CacheOption {
	return func(c *Cache) {
		if fn != nil {
			c.compile = fn
		}
	}
}

// WithEvict registers a callback run when a module leaves the cache, so
// GPU-side objects created from it can be released.
func WithEvict(fn func(*Module)) CacheOption {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// Cache compiles WGSL sources and keeps the most recently used modules.
//
// Example:
//
//	cache, _ := shader.NewCache(shader.DefaultCacheSize)
//	mod, err := cache.Compile(shader.MustLookup(shader.Bloom))
type Cache struct {
	mu       sync.Mutex
	compile  CompileFunc
	onEvict  func(*Module)
	modules  *lru.Cache[cacheKey, *Module]
	compiles int
}

// NewCache creates a cache holding up to size modules.
func NewCache(size int, opts ...CacheOption) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c := &Cache{compile: NagaCompile}
	for _, opt := range opts {
		opt(c)
	}
	modules, err := lru.NewWithEvict[cacheKey, *Module](size, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("shader: create cache: %w", err)
	}
	c.modules = modules
	return c, nil
}

func (c *Cache) evicted(_ cacheKey, m *Module) {
	if c.onEvict != nil {
		c.onEvict(m)
	}
}

// Compile returns the module for src, compiling it on a miss.
func (c *Cache) Compile(src Source) (*Module, error) {
	key := cacheKey{name: src.Name, hash: hashSource(src.WGSL)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.modules.Get(key); ok {
		return m, nil
	}

	spirv, err := c.compile(src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %s: %w", src.Name, err)
	}
	words, err := ToWords(spirv)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %s: %w", src.Name, err)
	}
	c.compiles++

	m := &Module{Name: src.Name, Hash: key.hash, SPIRV: words}
	c.modules.Add(key, m)
	logging.Logger().Debug("shader: compiled", "name", src.Name, "words", len(words))
	return m, nil
}

// CompileAll compiles every source and returns the first error.
func (c *Cache) CompileAll(srcs []Source) error {
	for _, s := range srcs {
		if _, err := c.Compile(s); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of cached modules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modules.Len()
}

// Compiles returns the number of compilations performed (cache misses).
func (c *Cache) Compiles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiles
}

// Purge drops every module, running the eviction callback for each.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules.Purge()
}

func hashSource(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
