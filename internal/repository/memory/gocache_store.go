package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// GoCacheStore is the session-scoped KVStore: in-process, purged on restart.
type GoCacheStore struct {
	cache *cache.Cache
}

// NewGoCacheStore creates a store with the given default expiration,
// purging expired items every 10 minutes.
func NewGoCacheStore(defaultTTL time.Duration) *GoCacheStore {
	return &GoCacheStore{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (s *GoCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.([]byte), true, nil
	}
	return nil, false, nil
}

func (s *GoCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == NoExpiry {
		s.cache.Set(key, value, cache.NoExpiration)
		return nil
	}
	if ttl == 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *GoCacheStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *GoCacheStore) ListByPrefix(_ context.Context, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for key, item := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			out[key] = item.Object.([]byte)
		}
	}
	return out, nil
}
