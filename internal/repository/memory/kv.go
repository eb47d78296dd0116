package memory

import (
	"context"
	"time"
)

// KVStore is the persistence boundary for live engine state: session state,
// the daily context, and cached content. Two scopes exist side by side — a
// session-scoped store (gone on restart) and a device-scoped store (Redis).
// Callers treat every failure as a miss; nothing behind this port is fatal.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
}

// NoExpiry disables TTL for a Set.
const NoExpiry time.Duration = -1
