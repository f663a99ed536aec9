package presence

import (
	"sync"
	"time"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// Tracker is the in-memory online/offline signal keyed by user id. Last
// write wins; no ordering guarantee across concurrent connections for the
// same user. State is rebuilt empty on process restart.
type Tracker struct {
	mu     sync.RWMutex
	status map[string]domain.Presence
}

func NewTracker() *Tracker {
	return &Tracker{
		status: make(map[string]domain.Presence),
	}
}

func (t *Tracker) SetOnline(userID string) {
	t.set(userID, true)
}

func (t *Tracker) SetOffline(userID string) {
	t.set(userID, false)
}

func (t *Tracker) set(userID string, online bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[userID] = domain.Presence{
		IsOnline:     online,
		LastActiveAt: time.Now(),
	}
}

// Get reports the last known status; ok is false for users never seen in
// this process lifetime.
func (t *Tracker) Get(userID string) (domain.Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.status[userID]
	return p, ok
}
