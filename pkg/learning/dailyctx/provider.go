package dailyctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"

	"github.com/google/uuid"
)

// ErrContextUnavailable is returned when no daily context exists for the
// user or the stored one has expired. Content generation cannot proceed
// without one; the caller must re-initialize the learning day.
var ErrContextUnavailable = errors.New("daily context unavailable")

// Provider exposes the read-only daily context boundary.
type Provider interface {
	Current(ctx context.Context, userID uuid.UUID) (*entity.DailyContext, error)
}

// Store extends Provider with the write side used at day initialization.
type Store interface {
	Provider
	Set(ctx context.Context, dc *entity.DailyContext) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

const keyPrefix = "dailyctx:"

// KVProvider keeps the daily context in the device-scoped key/value store so
// it survives process restarts within the day.
type KVProvider struct {
	kv  memory.KVStore
	log logger.ILogger
}

func NewKVProvider(kv memory.KVStore, log logger.ILogger) *KVProvider {
	return &KVProvider{kv: kv, log: log}
}

func (p *KVProvider) key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func (p *KVProvider) Current(ctx context.Context, userID uuid.UUID) (*entity.DailyContext, error) {
	raw, found, err := p.kv.Get(ctx, p.key(userID))
	if err != nil {
		// Storage failure reads as a miss
		p.log.Warn("dailyctx", "context read failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, ErrContextUnavailable
	}
	if !found {
		return nil, ErrContextUnavailable
	}

	var dc entity.DailyContext
	if err := json.Unmarshal(raw, &dc); err != nil {
		p.log.Warn("dailyctx", "stored context is malformed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, ErrContextUnavailable
	}

	if dc.Expired(time.Now()) {
		return nil, ErrContextUnavailable
	}
	return &dc, nil
}

func (p *KVProvider) Set(ctx context.Context, dc *entity.DailyContext) error {
	raw, err := json.Marshal(dc)
	if err != nil {
		return fmt.Errorf("marshal daily context: %w", err)
	}
	ttl := memory.NoExpiry
	if !dc.ExpiresAt.IsZero() {
		ttl = time.Until(dc.ExpiresAt)
	}
	if err := p.kv.Set(ctx, p.key(dc.UserId), raw, ttl); err != nil {
		return fmt.Errorf("store daily context: %w", err)
	}
	return nil
}

func (p *KVProvider) Clear(ctx context.Context, userID uuid.UUID) error {
	return p.kv.Delete(ctx, p.key(userID))
}
