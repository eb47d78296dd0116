package content

import (
	"context"
	"fmt"
	"testing"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"
)

func newTestCache(hot, warm int, ttl time.Duration) (*TieredCache, memory.KVStore) {
	kv := memory.NewGoCacheStore(24 * time.Hour)
	return NewTieredCache(hot, warm, ttl, kv, logger.NewNopLogger()), kv
}

func testContent(containerID string) *entity.GeneratedContent {
	return &entity.GeneratedContent{
		ContainerId:   containerID,
		ContainerType: "learn",
		Subject:       "math",
		Title:         "Addition practice",
		Instructions:  "Answer every question",
	}
}

func TestCacheHitAfterPut(t *testing.T) {
	cache, _ := newTestCache(50, 200, 30*time.Minute)
	ctx := context.Background()

	cache.Put(ctx, "k1", "u1", testContent("learn-math"))
	got, ok := cache.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected a hit after put")
	}
	if got.ContainerId != "learn-math" {
		t.Errorf("container = %q, want learn-math", got.ContainerId)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	cache, _ := newTestCache(50, 200, 30*time.Minute)
	if _, ok := cache.Get(context.Background(), "missing"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestCacheExpiryByTTL(t *testing.T) {
	cache, _ := newTestCache(50, 200, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base }
	cache.Put(ctx, "k1", "u1", testContent("learn-math"))

	cache.now = func() time.Time { return base.Add(29 * time.Minute) }
	if _, ok := cache.Get(ctx, "k1"); !ok {
		t.Error("entry should still be live within the TTL")
	}

	cache.now = func() time.Time { return base.Add(31 * time.Minute) }
	if _, ok := cache.Get(ctx, "k1"); ok {
		t.Error("entry should have expired past the TTL")
	}

	hot, warm := cache.Stats()
	if hot != 0 || warm != 0 {
		t.Errorf("tiers = %d/%d after expiry, want 0/0", hot, warm)
	}
}

func TestHotTierEvictsLeastRecentlyAccessed(t *testing.T) {
	cache, _ := newTestCache(2, 200, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	tick := 0
	cache.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	cache.Put(ctx, "k1", "u1", testContent("c1"))
	cache.Put(ctx, "k2", "u1", testContent("c2"))
	cache.Get(ctx, "k1") // k1 is now the most recently accessed

	cache.Put(ctx, "k3", "u1", testContent("c3")) // evicts k2 from hot

	hot, warm := cache.Stats()
	if hot != 2 {
		t.Errorf("hot size = %d, want 2", hot)
	}
	if warm != 3 {
		t.Errorf("warm size = %d, want 3", warm)
	}

	// k2 must still be servable from the warm tier.
	if _, ok := cache.Get(ctx, "k2"); !ok {
		t.Error("expected evicted hot entry to remain in the warm tier")
	}
}

func TestWarmTierEvictsOldestByCreation(t *testing.T) {
	cache, _ := newTestCache(50, 2, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	tick := 0
	cache.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	cache.Put(ctx, "k1", "u1", testContent("c1"))
	cache.Put(ctx, "k2", "u1", testContent("c2"))
	cache.Get(ctx, "k1") // access order must not matter for the warm tier
	cache.Put(ctx, "k3", "u1", testContent("c3"))

	_, warm := cache.Stats()
	if warm != 2 {
		t.Errorf("warm size = %d, want 2", warm)
	}

	cache.mu.Lock()
	if _, ok := cache.warm["k1"]; ok {
		t.Error("expected the oldest-created entry to be evicted from warm")
	}
	cache.mu.Unlock()
}

func TestWarmHitPromotesToHot(t *testing.T) {
	cache, _ := newTestCache(1, 200, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	tick := 0
	cache.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	cache.Put(ctx, "k1", "u1", testContent("c1"))
	cache.Put(ctx, "k2", "u1", testContent("c2")) // hot holds only k2 now

	cache.mu.Lock()
	_, k1Hot := cache.hot["k1"]
	cache.mu.Unlock()
	if k1Hot {
		t.Fatal("expected k1 out of the hot tier before the warm hit")
	}

	if _, ok := cache.Get(ctx, "k1"); !ok {
		t.Fatal("expected k1 to hit via the warm tier")
	}

	cache.mu.Lock()
	_, k1Hot = cache.hot["k1"]
	cache.mu.Unlock()
	if !k1Hot {
		t.Error("expected the warm hit to be promoted into the hot tier")
	}
}

func TestDurableCopySurvivesMemoryLoss(t *testing.T) {
	kv := memory.NewGoCacheStore(24 * time.Hour)
	ctx := context.Background()

	first := NewTieredCache(50, 200, 30*time.Minute, kv, logger.NewNopLogger())
	first.Put(ctx, "k1", "u1", testContent("learn-math"))

	// A fresh cache over the same store simulates a restart.
	second := NewTieredCache(50, 200, 30*time.Minute, kv, logger.NewNopLogger())
	got, ok := second.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected the durable copy to repopulate a fresh cache")
	}
	if got.ContainerId != "learn-math" {
		t.Errorf("container = %q, want learn-math", got.ContainerId)
	}

	hot, warm := second.Stats()
	if hot != 1 || warm != 1 {
		t.Errorf("tiers = %d/%d after repopulation, want 1/1", hot, warm)
	}
}

func TestInvalidateUserRemovesOnlyTheirEntries(t *testing.T) {
	cache, kv := newTestCache(50, 200, 30*time.Minute)
	ctx := context.Background()

	cache.Put(ctx, "u1-k1", "u1", testContent("c1"))
	cache.Put(ctx, "u1-k2", "u1", testContent("c2"))
	cache.Put(ctx, "u2-k1", "u2", testContent("c3"))

	removed := cache.InvalidateUser(ctx, "u1")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, ok := cache.Get(ctx, "u1-k1"); ok {
		t.Error("expected u1 entries gone")
	}
	if _, ok := cache.Get(ctx, "u2-k1"); !ok {
		t.Error("expected u2 entries untouched")
	}
	if _, found, _ := kv.Get(ctx, "content:cache:u1-k1"); found {
		t.Error("expected the durable copy removed too")
	}
}

func TestInvalidateUserReachesHotOnlyEntries(t *testing.T) {
	// Warm capacity 1: putting k2 evicts k1 from warm, leaving k1 only in
	// the hot tier with a durable copy in the KV store.
	cache, kv := newTestCache(50, 1, 30*time.Minute)
	ctx := context.Background()

	cache.Put(ctx, "u1-k1", "u1", testContent("c1"))
	cache.Put(ctx, "u1-k2", "u1", testContent("c2"))

	removed := cache.InvalidateUser(ctx, "u1")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, found, _ := kv.Get(ctx, "content:cache:u1-k1"); found {
		t.Error("expected the hot-only entry's durable copy removed")
	}
	if _, ok := cache.Get(ctx, "u1-k1"); ok {
		t.Error("expected the hot-only entry gone after invalidation")
	}
}

func TestInvalidateUserSweepsDurableOrphans(t *testing.T) {
	// Capacity 1 in both tiers: putting k2 evicts k1 everywhere in memory,
	// leaving only its durable copy behind.
	cache, kv := newTestCache(1, 1, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	tick := 0
	cache.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	cache.Put(ctx, "u1-k1", "u1", testContent("c1"))
	cache.Put(ctx, "u1-k2", "u1", testContent("c2"))

	removed := cache.InvalidateUser(ctx, "u1")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, found, _ := kv.Get(ctx, "content:cache:u1-k1"); found {
		t.Error("expected the orphaned durable copy removed")
	}
	if _, ok := cache.Get(ctx, "u1-k1"); ok {
		t.Error("expected no content served after invalidation")
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	cache, _ := newTestCache(50, 200, 30*time.Minute)
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base }
	for i := 0; i < 5; i++ {
		cache.Put(ctx, fmt.Sprintf("old-%d", i), "u1", testContent("c"))
	}

	cache.now = func() time.Time { return base.Add(20 * time.Minute) }
	cache.Put(ctx, "fresh", "u1", testContent("c"))

	cache.now = func() time.Time { return base.Add(40 * time.Minute) }
	removed := cache.Sweep()
	if removed != 5 {
		t.Errorf("swept = %d, want 5", removed)
	}

	hot, warm := cache.Stats()
	if hot != 1 || warm != 1 {
		t.Errorf("tiers = %d/%d after sweep, want 1/1", hot, warm)
	}
}
