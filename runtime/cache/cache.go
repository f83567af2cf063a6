// Package cache provides the process-wide, shared sized caches described
// in spec §3 ("Caches") and §5 ("Shared mutable state"): the parser's AST
// cache and the evaluator's compiled-delegate cache. Both are bounded LRUs
// over github.com/hashicorp/golang-lru/v2 — spec §9's Open Questions
// explicitly allow finer-grained LRU eviction in place of the coarser
// "clear everything on overflow" behavior, and golang-lru is already
// internally synchronized, which satisfies the "reads/writes must be
// atomic, last-write-wins is acceptable" requirement without this package
// taking its own lock.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a generic bounded key/value cache. The zero value is not usable;
// construct with New.
type Cache[K comparable, V any] struct {
	inner *lru.Cache[K, V]

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cumulative hit/miss counters, the cache-statistics
// plumbing named as an external collaborator in spec §1 but carried here
// as an ambient introspection hook (see SPEC_FULL.md).
type Stats struct {
	Hits   int64
	Misses int64
	Len    int
}

// New constructs a Cache bounded to maxSize entries. maxSize must be >= 1.
func New[K comparable, V any](maxSize int) *Cache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	inner, err := lru.New[K, V](maxSize)
	if err != nil {
		// Only possible if maxSize < 1, guarded above.
		panic(err)
	}
	return &Cache[K, V]{inner: inner}
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put inserts or overwrites key's value. All values stored for the same
// key are expected to be semantically equal (spec §5), so Put never
// reports whether it overwrote an existing entry.
func (c *Cache[K, V]) Put(key K, value V) {
	c.inner.Add(key, value)
}

// Len returns the number of entries currently cached.
func (c *Cache[K, V]) Len() int {
	return c.inner.Len()
}

// Clear empties the cache, matching the coarse "clear entirely" eviction
// semantics described in spec §9 for callers that want it explicitly (e.g.
// tests asserting cold-cache behavior) even though golang-lru otherwise
// evicts per-entry.
func (c *Cache[K, V]) Clear() {
	c.inner.Purge()
}

// Stats reports the cache's cumulative hit/miss counters and current size.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.inner.Len()}
}
