package cache

import (
	"testing"
	"time"
)

func TestGetMissingKey(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "uno")
	got, ok := c.Get("a")
	if !ok || got != "uno" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a, making b the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c := NewLRUCache[int](2, -time.Second)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](4, -time.Second)
	c.Set("a", 1)
	c.Set("b", 2)
	if got := c.CleanExpired(); got != 2 {
		t.Errorf("CleanExpired = %d, want 2", got)
	}
	if c.Size() != 0 {
		t.Errorf("size after clean = %d", c.Size())
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}
}
