package contracts

import (
	"context"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// HistoryCache fronts the message store for join-time replay. A miss is
// (nil, false, nil); the store remains the source of truth. Set is called
// only by a room's single message consumer, so readers never race a writer
// into caching a stale snapshot; Invalidate covers out-of-band deletes.
type HistoryCache interface {
	Get(ctx context.Context, roomID string) ([]domain.HistoryEntry, bool, error)
	Set(ctx context.Context, roomID string, entries []domain.HistoryEntry) error
	Invalidate(ctx context.Context, roomID string) error
}
