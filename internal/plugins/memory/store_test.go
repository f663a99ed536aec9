package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

func seedUser(t *testing.T, s *Store, phone, name string) *domain.User {
	t.Helper()
	u, err := s.Create(context.Background(), domain.NewUser(phone, name))
	require.NoError(t, err)
	return u
}

func seedRoom(t *testing.T, s *Store, id, ownerID string) {
	t.Helper()
	require.NoError(t, s.CreateRoom(context.Background(), &domain.Room{ID: id, OwnerID: ownerID}))
}

func Test_Store_User_Phone_Is_Unique(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()

	first := seedUser(t, s, "+15550001111", "alice")

	// Second create with the same phone yields the stored row, not a new one.
	again, err := s.Create(ctx, domain.NewUser("+15550001111", "impostor"))
	req.NoError(err)
	req.Equal(first.ID, again.ID)
	req.Equal("alice", again.Username)

	found, err := s.FindByPhone(ctx, "+15550001111")
	req.NoError(err)
	req.Equal(first.ID, found.ID)

	_, err = s.FindByPhone(ctx, "+15550009999")
	req.ErrorIs(err, domain.ErrUserNotFound)
}

func Test_Store_Room_Create_Conflict(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "+15550001111", "alice")

	seedRoom(t, s, "room-1", owner.ID)
	err := s.CreateRoom(ctx, &domain.Room{ID: "room-1", OwnerID: owner.ID})
	req.ErrorIs(err, domain.ErrRoomExists)

	// Unknown owner is a referential failure.
	err = s.CreateRoom(ctx, &domain.Room{ID: "room-2", OwnerID: uuid.NewString()})
	req.ErrorIs(err, domain.ErrForeignKey)
}

func Test_Store_Membership_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "+15550001111", "alice")
	seedRoom(t, s, "room-1", u.ID)

	m1, err := s.UpsertMember(ctx, "room-1", u.ID)
	req.NoError(err)
	m2, err := s.UpsertMember(ctx, "room-1", u.ID)
	req.NoError(err)
	req.Equal(m1.JoinedAt, m2.JoinedAt)

	members, err := s.ListMembers(ctx, "room-1")
	req.NoError(err)
	req.Len(members, 1)
	req.Equal("alice", members[0].Username)

	// Removing twice is fine.
	req.NoError(s.RemoveMember(ctx, "room-1", u.ID))
	req.NoError(s.RemoveMember(ctx, "room-1", u.ID))
	_, err = s.FindMember(ctx, "room-1", u.ID)
	req.ErrorIs(err, domain.ErrNotInRoom)
}

func Test_Store_Messages_Ordered_By_Timestamp_Then_Seq(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "+15550001111", "alice")
	seedRoom(t, s, "room-1", u.ID)

	at := time.Now()
	// Same timestamp: insertion order must break the tie.
	for _, body := range []string{"first", "second", "third"} {
		msg := &domain.Message{ID: uuid.NewString(), RoomID: "room-1", SenderID: u.ID, Body: body, Type: domain.MessageText, Timestamp: at}
		req.NoError(s.InsertMessage(ctx, msg))
	}
	// An earlier timestamp inserted late still sorts first.
	early := &domain.Message{ID: uuid.NewString(), RoomID: "room-1", SenderID: u.ID, Body: "earliest", Type: domain.MessageText, Timestamp: at.Add(-time.Minute)}
	req.NoError(s.InsertMessage(ctx, early))

	msgs, err := s.ListMessages(ctx, "room-1", 0)
	req.NoError(err)
	req.Len(msgs, 4)
	req.Equal("earliest", msgs[0].Body)
	req.Equal("first", msgs[1].Body)
	req.Equal("second", msgs[2].Body)
	req.Equal("third", msgs[3].Body)

	// Tail limit keeps the newest, still ascending.
	tail, err := s.ListMessages(ctx, "room-1", 2)
	req.NoError(err)
	req.Len(tail, 2)
	req.Equal("second", tail[0].Body)
	req.Equal("third", tail[1].Body)

	last, err := s.LastMessage(ctx, "room-1")
	req.NoError(err)
	req.Equal("third", last.Body)
}

func Test_Store_Insert_Requires_Room_And_Sender(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "+15550001111", "alice")
	seedRoom(t, s, "room-1", u.ID)

	err := s.InsertMessage(ctx, &domain.Message{ID: uuid.NewString(), RoomID: "missing", SenderID: u.ID})
	req.ErrorIs(err, domain.ErrForeignKey)

	err = s.InsertMessage(ctx, &domain.Message{ID: uuid.NewString(), RoomID: "room-1", SenderID: uuid.NewString()})
	req.ErrorIs(err, domain.ErrForeignKey)
}

func Test_Store_MarkRoomRead_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	alice := seedUser(t, s, "+15550001111", "alice")
	bob := seedUser(t, s, "+15550002222", "bob")
	seedRoom(t, s, "room-1", alice.ID)

	at := time.Now()
	for i, sender := range []string{alice.ID, bob.ID, bob.ID} {
		msg := &domain.Message{ID: uuid.NewString(), RoomID: "room-1", SenderID: sender, Body: "m", Type: domain.MessageText, Timestamp: at.Add(time.Duration(i) * time.Second)}
		req.NoError(s.InsertMessage(ctx, msg))
	}

	// Alice reads the room: only Bob's two messages flip.
	n, err := s.MarkRoomMessagesRead(ctx, "room-1", alice.ID)
	req.NoError(err)
	req.EqualValues(2, n)

	// Second pass finds nothing unread.
	n, err = s.MarkRoomMessagesRead(ctx, "room-1", alice.ID)
	req.NoError(err)
	req.EqualValues(0, n)

	msgs, err := s.ListMessages(ctx, "room-1", 0)
	req.NoError(err)
	req.False(msgs[0].ReadReceipt)
	req.True(msgs[1].ReadReceipt)
	req.True(msgs[2].ReadReceipt)
}

func Test_Store_Delete_Message_Reindexes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "+15550001111", "alice")
	seedRoom(t, s, "room-1", u.ID)

	ids := make([]string, 3)
	at := time.Now()
	for i := range ids {
		ids[i] = uuid.NewString()
		msg := &domain.Message{ID: ids[i], RoomID: "room-1", SenderID: u.ID, Body: "m", Type: domain.MessageText, Timestamp: at.Add(time.Duration(i) * time.Second)}
		req.NoError(s.InsertMessage(ctx, msg))
	}

	req.NoError(s.DeleteMessage(ctx, ids[0]))
	req.ErrorIs(s.DeleteMessage(ctx, ids[0]), domain.ErrMessageNotFound)

	// Surviving messages stay addressable after the shift.
	req.NoError(s.MarkMessageRead(ctx, ids[2]))
	msgs, err := s.ListMessages(ctx, "room-1", 0)
	req.NoError(err)
	req.Len(msgs, 2)
	req.True(msgs[1].ReadReceipt)
}
