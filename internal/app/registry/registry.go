package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/pratham-srivastava-07/Nexus/internal/core/contracts"
	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

type connState struct {
	client   contracts.Client
	identity domain.Identity
	rooms    map[string]struct{}
}

// Registry holds the process-local connection state: connection → identity
// and joined rooms, plus the reverse index room → live connections. It also
// owns the per-room worker lifecycle: the first connection in a room starts
// its queue consumer, the last one out cancels it. Never touches the store.
type Registry struct {
	log       *slog.Logger
	mu        sync.RWMutex
	conns     map[string]*connState
	rooms     map[string]map[string]contracts.Client
	workers   map[string]context.CancelFunc
	runWorker func(ctx context.Context, roomID string) error
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:     log,
		conns:   make(map[string]*connState),
		rooms:   make(map[string]map[string]contracts.Client),
		workers: make(map[string]context.CancelFunc),
	}
}

// RunWorker installs the per-room consumer launcher. Must be set before the
// first connection registers.
func (r *Registry) RunWorker(fn func(ctx context.Context, roomID string) error) {
	r.runWorker = fn
}

func (r *Registry) Register(c contracts.Client, id domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.conns[c.ID()]; ok {
		// Re-register overwrites identity and resets the room set.
		for roomID := range prev.rooms {
			r.removeFromRoomLocked(c.ID(), roomID)
		}
	}
	r.conns[c.ID()] = &connState{
		client:   c,
		identity: id,
		rooms:    make(map[string]struct{}),
	}
}

func (r *Registry) Identity(connID string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.conns[connID]
	if !ok {
		return domain.Identity{}, false
	}
	return state.identity, true
}

func (r *Registry) AddToRoom(c contracts.Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.conns[c.ID()]
	if !ok {
		return
	}
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]contracts.Client)
		if r.runWorker != nil {
			ctx, cancel := context.WithCancel(context.Background())
			r.workers[roomID] = cancel
			go func() {
				// context.Canceled is the last occupant leaving, not a failure.
				if err := r.runWorker(ctx, roomID); err != nil && !errors.Is(err, context.Canceled) {
					r.log.Error("registry - room worker exited", logging.Room(roomID), logging.Err(err))
				}
			}()
		}
	}
	r.rooms[roomID][c.ID()] = c
	state.rooms[roomID] = struct{}{}
}

func (r *Registry) RemoveFromRoom(c contracts.Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.conns[c.ID()]; ok {
		delete(state.rooms, roomID)
	}
	r.removeFromRoomLocked(c.ID(), roomID)
}

// removeFromRoomLocked drops the reverse-index entry and stops the room's
// worker when the fan-out set empties. Caller holds mu.
func (r *Registry) removeFromRoomLocked(connID, roomID string) {
	set, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.rooms, roomID)
		if cancel := r.workers[roomID]; cancel != nil {
			cancel()
			delete(r.workers, roomID)
		}
	}
}

func (r *Registry) InRoom(connID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.conns[connID]
	if !ok {
		return false
	}
	_, joined := state.rooms[roomID]
	return joined
}

func (r *Registry) ConnectionsInRoom(roomID string) []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[roomID]
	out := make([]contracts.Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Unregister(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.conns[c.ID()]
	if !ok {
		return
	}
	for roomID := range state.rooms {
		r.removeFromRoomLocked(c.ID(), roomID)
	}
	delete(r.conns, c.ID())
}

func (r *Registry) SendTo(ctx context.Context, connID string, frame any) {
	r.mu.RLock()
	state, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	_ = state.client.Send(ctx, data)
}

func (r *Registry) Broadcast(ctx context.Context, roomID string, frame any) {
	r.broadcast(ctx, roomID, "", frame)
}

func (r *Registry) BroadcastExcept(ctx context.Context, roomID, exceptConnID string, frame any) {
	r.broadcast(ctx, roomID, exceptConnID, frame)
}

func (r *Registry) broadcast(ctx context.Context, roomID, exceptConnID string, frame any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	for connID, c := range r.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}
		_ = c.Send(ctx, data)
	}
}
