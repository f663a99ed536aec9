package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// HistoryCache keeps a room's full replay history as one JSON blob. Only
// the room's single message consumer writes it, so a hit is always current.
type HistoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewHistoryCache(rdb *redis.Client, ttl time.Duration) *HistoryCache {
	return &HistoryCache{rdb: rdb, ttl: ttl}
}

func historyKey(roomID string) string {
	return "history:" + roomID
}

func (c *HistoryCache) Get(ctx context.Context, roomID string) ([]domain.HistoryEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, historyKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Unreadable blob; treat as a miss and let the next Set repair it.
		_ = c.rdb.Del(ctx, historyKey(roomID)).Err()
		return nil, false, nil
	}
	return entries, true, nil
}

func (c *HistoryCache) Set(ctx context.Context, roomID string, entries []domain.HistoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, historyKey(roomID), raw, c.ttl).Err()
}

func (c *HistoryCache) Invalidate(ctx context.Context, roomID string) error {
	return c.rdb.Del(ctx, historyKey(roomID)).Err()
}
