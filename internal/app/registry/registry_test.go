package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

type fakeClient struct {
	id   string
	mu   sync.Mutex
	sent [][]byte
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	c.sent = append(c.sent, copied)
	return nil
}

func (c *fakeClient) Close() {}

func (c *fakeClient) messages(t *testing.T) []domain.Info {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Info, 0, len(c.sent))
	for _, raw := range c.sent {
		var f domain.Info
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func Test_Register_And_Identity(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	c := &fakeClient{id: "conn-1"}

	_, ok := r.Identity("conn-1")
	req.False(ok)

	r.Register(c, domain.Identity{UserID: "u-1", Username: "alice"})
	id, ok := r.Identity("conn-1")
	req.True(ok)
	req.Equal("alice", id.Username)

	// Re-register overwrites identity and resets the room set.
	r.AddToRoom(c, "room-1")
	r.Register(c, domain.Identity{UserID: "u-2", Username: "bob"})
	id, _ = r.Identity("conn-1")
	req.Equal("bob", id.Username)
	req.False(r.InRoom("conn-1", "room-1"))
}

func Test_Room_Membership_Tracking(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	a := &fakeClient{id: "conn-a"}
	b := &fakeClient{id: "conn-b"}
	r.Register(a, domain.Identity{UserID: "u-a"})
	r.Register(b, domain.Identity{UserID: "u-b"})

	r.AddToRoom(a, "room-1")
	r.AddToRoom(b, "room-1")
	r.AddToRoom(a, "room-2")

	req.True(r.InRoom("conn-a", "room-1"))
	req.True(r.InRoom("conn-a", "room-2"))
	req.False(r.InRoom("conn-b", "room-2"))
	req.Len(r.ConnectionsInRoom("room-1"), 2)

	r.RemoveFromRoom(a, "room-1")
	req.False(r.InRoom("conn-a", "room-1"))
	req.Len(r.ConnectionsInRoom("room-1"), 1)

	// Adding to a room requires a registered connection.
	ghost := &fakeClient{id: "conn-ghost"}
	r.AddToRoom(ghost, "room-1")
	req.False(r.InRoom("conn-ghost", "room-1"))
}

func Test_Unregister_Cleans_All_Rooms(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())
	c := &fakeClient{id: "conn-1"}
	r.Register(c, domain.Identity{UserID: "u-1"})
	r.AddToRoom(c, "room-1")
	r.AddToRoom(c, "room-2")

	r.Unregister(c)
	_, ok := r.Identity("conn-1")
	req.False(ok)
	req.Empty(r.ConnectionsInRoom("room-1"))
	req.Empty(r.ConnectionsInRoom("room-2"))

	// Idempotent.
	r.Unregister(c)
}

func Test_Broadcast_And_Except(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := NewRegistry(slog.Default())
	a := &fakeClient{id: "conn-a"}
	b := &fakeClient{id: "conn-b"}
	outsider := &fakeClient{id: "conn-c"}
	r.Register(a, domain.Identity{UserID: "u-a"})
	r.Register(b, domain.Identity{UserID: "u-b"})
	r.Register(outsider, domain.Identity{UserID: "u-c"})
	r.AddToRoom(a, "room-1")
	r.AddToRoom(b, "room-1")

	r.Broadcast(ctx, "room-1", domain.Info{Type: domain.FrameInfo, Message: "to all"})
	r.BroadcastExcept(ctx, "room-1", "conn-a", domain.Info{Type: domain.FrameInfo, Message: "to others"})
	r.SendTo(ctx, "conn-b", domain.Info{Type: domain.FrameInfo, Message: "direct"})
	r.SendTo(ctx, "conn-gone", domain.Info{Type: domain.FrameInfo, Message: "dropped"})

	aMsgs := a.messages(t)
	req.Len(aMsgs, 1)
	req.Equal("to all", aMsgs[0].Message)

	bMsgs := b.messages(t)
	req.Len(bMsgs, 3)
	req.Equal("to all", bMsgs[0].Message)
	req.Equal("to others", bMsgs[1].Message)
	req.Equal("direct", bMsgs[2].Message)

	req.Empty(outsider.messages(t))
}

func Test_Concurrent_Room_Mutations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := NewRegistry(slog.Default())

	const n = 16
	clients := make([]*fakeClient, n)
	for i := range clients {
		clients[i] = &fakeClient{id: "conn-" + string(rune('a'+i))}
		r.Register(clients[i], domain.Identity{UserID: clients[i].id})
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *fakeClient) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r.AddToRoom(c, "room-1")
				r.Broadcast(ctx, "room-1", domain.Info{Type: domain.FrameInfo, Message: "ping"})
				r.RemoveFromRoom(c, "room-1")
			}
			r.AddToRoom(c, "room-1")
		}(c)
	}
	wg.Wait()

	// Every connection settled in the room and the indexes agree.
	req.Len(r.ConnectionsInRoom("room-1"), n)
	for _, c := range clients {
		req.True(r.InRoom(c.id, "room-1"))
	}
}

func Test_Worker_Lifecycle_Follows_Room_Occupancy(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(slog.Default())

	var started atomic.Int32
	stopped := make(chan string, 4)
	r.RunWorker(func(ctx context.Context, roomID string) error {
		started.Add(1)
		<-ctx.Done()
		stopped <- roomID
		return nil
	})

	a := &fakeClient{id: "conn-a"}
	b := &fakeClient{id: "conn-b"}
	r.Register(a, domain.Identity{UserID: "u-a"})
	r.Register(b, domain.Identity{UserID: "u-b"})

	// First occupant starts the worker; the second does not start another.
	r.AddToRoom(a, "room-1")
	r.AddToRoom(b, "room-1")
	req.Eventually(func() bool { return started.Load() == 1 }, time.Second, 10*time.Millisecond)

	// Worker survives until the room empties.
	r.RemoveFromRoom(a, "room-1")
	select {
	case <-stopped:
		t.Fatal("worker stopped while the room was still occupied")
	case <-time.After(50 * time.Millisecond):
	}

	r.RemoveFromRoom(b, "room-1")
	select {
	case roomID := <-stopped:
		req.Equal("room-1", roomID)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop when the room emptied")
	}

	// Re-occupancy starts a fresh worker.
	r.AddToRoom(a, "room-1")
	req.Eventually(func() bool { return started.Load() == 2 }, time.Second, 10*time.Millisecond)
}

type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, rec slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *capturingHandler) WithGroup(string) slog.Handler { return h }

func (h *capturingHandler) errorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, rec := range h.records {
		if rec.Level >= slog.LevelError {
			n++
		}
	}
	return n
}

func Test_Worker_Exit_Logging(t *testing.T) {
	req := require.New(t)
	handler := &capturingHandler{}
	r := NewRegistry(slog.New(handler))

	drained := make(chan struct{}, 2)
	r.RunWorker(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		drained <- struct{}{}
		return ctx.Err()
	})

	c := &fakeClient{id: "conn-a"}
	r.Register(c, domain.Identity{UserID: "u-a"})

	// The last occupant leaving cancels the worker; that exit is silent.
	r.AddToRoom(c, "room-1")
	r.RemoveFromRoom(c, "room-1")
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop when the room emptied")
	}
	time.Sleep(50 * time.Millisecond)
	req.Zero(handler.errorCount())

	// A worker dying for any other reason is logged.
	r.RunWorker(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		drained <- struct{}{}
		return errors.New("stream gone")
	})
	r.AddToRoom(c, "room-1")
	r.RemoveFromRoom(c, "room-1")
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop when the room emptied")
	}
	req.Eventually(func() bool { return handler.errorCount() == 1 }, time.Second, 10*time.Millisecond)
}
