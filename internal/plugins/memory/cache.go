package memory

import (
	"context"
	"sync"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// Cache is the in-process history cache used when no Redis URL is configured.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]domain.HistoryEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]domain.HistoryEntry)}
}

func (c *Cache) Get(_ context.Context, roomID string) ([]domain.HistoryEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[roomID]
	if !ok {
		return nil, false, nil
	}
	out := make([]domain.HistoryEntry, len(cached))
	copy(out, cached)
	return out, true, nil
}

func (c *Cache) Set(_ context.Context, roomID string, entries []domain.HistoryEntry) error {
	stored := make([]domain.HistoryEntry, len(entries))
	copy(stored, entries)
	c.mu.Lock()
	c.entries[roomID] = stored
	c.mu.Unlock()
	return nil
}

func (c *Cache) Invalidate(_ context.Context, roomID string) error {
	c.mu.Lock()
	delete(c.entries, roomID)
	c.mu.Unlock()
	return nil
}
