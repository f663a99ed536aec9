package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/internal/plugins/memory"
)

func newRoomEnv(t *testing.T) (*RoomService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewRoomService(slog.Default(),
		memory.NewRoomRepo(store),
		memory.NewMemberRepo(store),
		memory.NewMessageRepo(store),
	)
	return svc, store
}

func newStoredUser(t *testing.T, store *memory.Store, phone, name string) *domain.User {
	t.Helper()
	u, err := store.Create(context.Background(), domain.NewUser(phone, name))
	require.NoError(t, err)
	return u
}

func Test_EnsureRoom_Creates_Then_Resolves(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)
	owner := newStoredUser(t, store, "+15550001111", "alice")

	room, err := svc.EnsureRoom(ctx, "room-1", owner.ID)
	req.NoError(err)
	req.Equal("room-1", room.ID)
	req.Equal(owner.ID, room.OwnerID)
	req.False(room.IsGroup)

	// A later caller joins the existing room; ownership does not change.
	other := newStoredUser(t, store, "+15550002222", "bob")
	same, err := svc.EnsureRoom(ctx, "room-1", other.ID)
	req.NoError(err)
	req.Equal(owner.ID, same.OwnerID)
}

func Test_CreateRoom_Duplicate_And_Group_Name(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)
	owner := newStoredUser(t, store, "+15550001111", "alice")

	_, err := svc.CreateRoom(ctx, "room-1", owner.ID, false, "")
	req.NoError(err)

	_, err = svc.CreateRoom(ctx, "room-1", owner.ID, false, "")
	req.ErrorIs(err, domain.ErrRoomExists)

	_, err = svc.CreateRoom(ctx, "", owner.ID, true, "")
	req.ErrorIs(err, domain.ErrInvalidFrame)

	group, err := svc.CreateRoom(ctx, "", owner.ID, true, "friends")
	req.NoError(err)
	req.True(group.IsGroup)
	req.Equal("friends", group.Name)
	req.NotEmpty(group.ID)
}

func Test_ResolveOrCreateHomeRoom(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)
	alice := newStoredUser(t, store, "+15550001111", "alice")
	bob := newStoredUser(t, store, "+15550002222", "bob")

	// No owned room, preferred id supplied: it becomes the home room.
	home, err := svc.ResolveOrCreateHomeRoom(ctx, alice.ID, "alice-home")
	req.NoError(err)
	req.Equal("alice-home", home.ID)

	// An owned room wins over any preferred id.
	again, err := svc.ResolveOrCreateHomeRoom(ctx, alice.ID, "something-else")
	req.NoError(err)
	req.Equal("alice-home", again.ID)

	// No owned room and no preference: an id is generated.
	generated, err := svc.ResolveOrCreateHomeRoom(ctx, bob.ID, "")
	req.NoError(err)
	req.NotEmpty(generated.ID)
	req.Equal(bob.ID, generated.OwnerID)

	// A preferred id owned by someone else is joined, not duplicated.
	carol := newStoredUser(t, store, "+15550003333", "carol")
	shared, err := svc.ResolveOrCreateHomeRoom(ctx, carol.ID, "alice-home")
	req.NoError(err)
	req.Equal(alice.ID, shared.OwnerID)
}

func Test_EnsureRoom_Concurrent_Callers_Converge(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)

	const n = 8
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = newStoredUser(t, store, "+1555000"+string(rune('0'+i)), "u")
	}

	var wg sync.WaitGroup
	rooms := make([]*domain.Room, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms[i], errs[i] = svc.EnsureRoom(ctx, "contested", users[i].ID)
		}(i)
	}
	wg.Wait()

	// Exactly one creator won; every caller got the same room.
	winner, err := store.RoomByID(ctx, "contested")
	req.NoError(err)
	for i := 0; i < n; i++ {
		req.NoError(errs[i])
		req.Equal(winner.OwnerID, rooms[i].OwnerID)
	}
}

func Test_CreateRoom_Concurrent_Callers_One_Winner(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)

	const n = 8
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = newStoredUser(t, store, "+1555000"+string(rune('0'+i)), "u")
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateRoom(ctx, "contested-create", users[i].ID, false, "")
		}(i)
	}
	wg.Wait()

	// Exactly one caller created the room; every other one got the conflict.
	created := 0
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			created++
			continue
		}
		req.ErrorIs(errs[i], domain.ErrRoomExists)
	}
	req.Equal(1, created)

	room, err := store.RoomByID(ctx, "contested-create")
	req.NoError(err)
	req.Equal("contested-create", room.ID)
}

func Test_Membership_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)
	alice := newStoredUser(t, store, "+15550001111", "alice")
	_, err := svc.EnsureRoom(ctx, "room-1", alice.ID)
	req.NoError(err)

	m1, err := svc.EnsureMembership(ctx, "room-1", alice.ID)
	req.NoError(err)
	m2, err := svc.EnsureMembership(ctx, "room-1", alice.ID)
	req.NoError(err)
	req.Equal(m1.JoinedAt, m2.JoinedAt)

	members, err := svc.Members(ctx, "room-1")
	req.NoError(err)
	req.Len(members, 1)

	// Leaving twice is a no-op, not an error.
	req.NoError(svc.RemoveMembership(ctx, "room-1", alice.ID))
	req.NoError(svc.RemoveMembership(ctx, "room-1", alice.ID))
}

func Test_FindRoom_Preview(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, store := newRoomEnv(t)
	alice := newStoredUser(t, store, "+15550001111", "alice")
	_, err := svc.EnsureRoom(ctx, "room-1", alice.ID)
	req.NoError(err)
	_, err = svc.EnsureMembership(ctx, "room-1", alice.ID)
	req.NoError(err)

	// Empty room previews with no last message.
	preview, err := svc.FindRoom(ctx, "room-1")
	req.NoError(err)
	req.Nil(preview.LastMessage)
	req.Len(preview.Members, 1)

	at := time.Now()
	for i, body := range []string{"old", "new"} {
		msg := &domain.Message{ID: uuid.NewString(), RoomID: "room-1", SenderID: alice.ID, Body: body, Type: domain.MessageText, Timestamp: at.Add(time.Duration(i) * time.Second)}
		req.NoError(store.InsertMessage(ctx, msg))
	}

	preview, err = svc.FindRoom(ctx, "room-1")
	req.NoError(err)
	req.NotNil(preview.LastMessage)
	req.Equal("new", preview.LastMessage.Body)

	_, err = svc.FindRoom(ctx, "missing")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}
