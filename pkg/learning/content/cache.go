package content

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"
)

type cacheEntry struct {
	Key          string                   `json:"key"`
	UserId       string                   `json:"user_id"`
	Content      *entity.GeneratedContent `json:"content"`
	CreatedAt    time.Time                `json:"created_at"`
	LastAccessed time.Time                `json:"last_accessed"`
	ExpiresAt    time.Time                `json:"expires_at"`
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// TieredCache keeps generated content in two in-memory tiers with different
// eviction policies. The hot tier optimizes for recency of access and evicts
// least-recently-accessed; the warm tier optimizes for turnover and evicts
// oldest-by-creation. Every entry carries its own TTL counted from creation.
// Writes also land in the key/value store best-effort so content survives a
// process restart within the TTL.
type TieredCache struct {
	mu   sync.Mutex
	hot  map[string]*cacheEntry
	warm map[string]*cacheEntry

	hotCapacity  int
	warmCapacity int
	ttl          time.Duration

	kv     memory.KVStore
	logger logger.ILogger

	now func() time.Time
}

func NewTieredCache(hotCapacity, warmCapacity int, ttl time.Duration, kv memory.KVStore, log logger.ILogger) *TieredCache {
	return &TieredCache{
		hot:          make(map[string]*cacheEntry),
		warm:         make(map[string]*cacheEntry),
		hotCapacity:  hotCapacity,
		warmCapacity: warmCapacity,
		ttl:          ttl,
		kv:           kv,
		logger:       log,
		now:          time.Now,
	}
}

const cacheKVPrefix = "content:cache:"

// Get checks the hot tier first, then the warm tier (promoting a warm hit
// into the hot tier), then the key/value store. Expired entries are evicted
// on sight and reported as misses.
func (c *TieredCache) Get(ctx context.Context, key string) (*entity.GeneratedContent, bool) {
	c.mu.Lock()
	now := c.now()

	if entry, ok := c.hot[key]; ok {
		if entry.expired(now) {
			delete(c.hot, key)
			delete(c.warm, key)
		} else {
			entry.LastAccessed = now
			c.mu.Unlock()
			return entry.Content, true
		}
	}

	if entry, ok := c.warm[key]; ok {
		if entry.expired(now) {
			delete(c.warm, key)
		} else {
			entry.LastAccessed = now
			c.promoteLocked(entry)
			c.mu.Unlock()
			return entry.Content, true
		}
	}
	c.mu.Unlock()

	return c.getDurable(ctx, key)
}

// getDurable repopulates both tiers from the key/value store on a memory miss.
func (c *TieredCache) getDurable(ctx context.Context, key string) (*entity.GeneratedContent, bool) {
	raw, found, err := c.kv.Get(ctx, cacheKVPrefix+key)
	if err != nil {
		c.logger.Warn("content_cache", "durable read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("content_cache", "durable entry malformed, dropping", map[string]interface{}{"key": key, "error": err.Error()})
		_ = c.kv.Delete(ctx, cacheKVPrefix+key)
		return nil, false
	}
	if entry.expired(c.now()) {
		_ = c.kv.Delete(ctx, cacheKVPrefix+key)
		return nil, false
	}

	c.mu.Lock()
	entry.LastAccessed = c.now()
	c.insertLocked(&entry)
	c.mu.Unlock()
	return entry.Content, true
}

// Put writes the entry into both tiers and the key/value store.
func (c *TieredCache) Put(ctx context.Context, key, userID string, generated *entity.GeneratedContent) {
	now := c.now()
	entry := &cacheEntry{
		Key:          key,
		UserId:       userID,
		Content:      generated,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    now.Add(c.ttl),
	}

	c.mu.Lock()
	c.insertLocked(entry)
	c.mu.Unlock()

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("content_cache", "durable write skipped, marshal failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.kv.Set(ctx, cacheKVPrefix+key, raw, c.ttl); err != nil {
		c.logger.Warn("content_cache", "durable write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (c *TieredCache) insertLocked(entry *cacheEntry) {
	c.promoteLocked(entry)
	c.warm[entry.Key] = entry
	if len(c.warm) > c.warmCapacity {
		c.evictWarmLocked()
	}
}

// promoteLocked places the entry in the hot tier, evicting the
// least-recently-accessed entry when over capacity.
func (c *TieredCache) promoteLocked(entry *cacheEntry) {
	c.hot[entry.Key] = entry
	if len(c.hot) <= c.hotCapacity {
		return
	}
	var coldest *cacheEntry
	for _, e := range c.hot {
		if coldest == nil || e.LastAccessed.Before(coldest.LastAccessed) {
			coldest = e
		}
	}
	if coldest != nil {
		delete(c.hot, coldest.Key)
	}
}

// evictWarmLocked drops the oldest-by-creation entry.
func (c *TieredCache) evictWarmLocked() {
	var oldest *cacheEntry
	for _, e := range c.warm {
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(c.warm, oldest.Key)
	}
}

// InvalidateUser removes every entry belonging to the user from both tiers
// and from the key/value store.
func (c *TieredCache) InvalidateUser(ctx context.Context, userID string) int {
	c.mu.Lock()
	// An entry can live in either tier alone (warm eviction keeps the hot
	// copy, and vice versa), so collect keys from both before touching
	// the durable store.
	seen := make(map[string]struct{})
	for key, entry := range c.warm {
		if entry.UserId == userID {
			delete(c.warm, key)
			seen[key] = struct{}{}
		}
	}
	for key, entry := range c.hot {
		if entry.UserId == userID {
			delete(c.hot, key)
			seen[key] = struct{}{}
		}
	}
	c.mu.Unlock()

	removed := len(seen)
	for key := range seen {
		if err := c.kv.Delete(ctx, cacheKVPrefix+key); err != nil {
			c.logger.Warn("content_cache", "durable delete failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	// A durable copy can outlive both memory tiers; sweep the store for
	// any the tiers no longer reference.
	durable, err := c.kv.ListByPrefix(ctx, cacheKVPrefix)
	if err != nil {
		c.logger.Warn("content_cache", "durable scan failed", map[string]interface{}{"error": err.Error()})
		return removed
	}
	for kvKey, raw := range durable {
		var entry cacheEntry
		if json.Unmarshal(raw, &entry) != nil || entry.UserId != userID {
			continue
		}
		if _, ok := seen[entry.Key]; ok {
			continue
		}
		removed++
		if err := c.kv.Delete(ctx, kvKey); err != nil {
			c.logger.Warn("content_cache", "durable delete failed", map[string]interface{}{"key": entry.Key, "error": err.Error()})
		}
	}
	return removed
}

// Sweep removes every expired entry from both tiers. Intended to run
// periodically from a background ticker.
func (c *TieredCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.warm {
		if entry.expired(now) {
			delete(c.warm, key)
			removed++
		}
	}
	for key, entry := range c.hot {
		if entry.expired(now) {
			delete(c.hot, key)
		}
	}
	return removed
}

// Stats exposes tier occupancy for the health endpoint.
func (c *TieredCache) Stats() (hot, warm int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hot), len(c.warm)
}
