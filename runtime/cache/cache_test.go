package cache

import "testing"

func TestCacheGetPutRoundTrip(t *testing.T) {
	c := New[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("Get on empty cache returned ok=true")
	}

	c.Put("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(%q) = (%v, %v), want (1, true)", "a", got, ok)
	}
}

func TestCacheStatsCountsHitsAndMisses(t *testing.T) {
	c := New[string, int](4)

	c.Get("missing")
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("still-missing")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Stats().Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 2 {
		t.Errorf("Stats().Misses = %d, want 2", stats.Misses)
	}
	if stats.Len != 1 {
		t.Errorf("Stats().Len = %d, want 1", stats.Len)
	}
}

func TestCacheLen(t *testing.T) {
	c := New[int, string](8)
	for i := 0; i < 5; i++ {
		c.Put(i, "v")
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}

func TestCacheClearResetsEntriesButNotCumulativeStats(t *testing.T) {
	c := New[string, int](4)
	c.Put("a", 1)
	c.Get("a")

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Errorf("Get(%q) after Clear() returned ok=true", "a")
	}
	// Clear only empties entries; cumulative hit/miss counters are not reset.
	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Stats().Hits after Clear() = %d, want 1 (unaffected by Clear)", stats.Hits)
	}
}

func TestCacheEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // touch a, making b the least recently used

	c.Put("c", 3) // should evict b, not a

	if _, ok := c.Get("a"); !ok {
		t.Errorf("Get(%q) = not found, want hit (a should survive eviction)", "a")
	}
	if _, ok := c.Get("b"); ok {
		t.Errorf("Get(%q) = found, want evicted (b was least recently used)", "b")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("Get(%q) = not found, want hit", "c")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (bounded at capacity)", c.Len())
	}
}

func TestNewClampsMaxSizeBelowOne(t *testing.T) {
	c := New[string, int](0)
	c.Put("a", 1)
	c.Put("b", 2)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (maxSize clamped to 1)", c.Len())
	}
}
