package domain

import "context"

// UserRepository handles the durable identity. Phone is the natural key;
// uniqueness is enforced by the store, not by check-then-create.
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Create inserts u, or returns the already-stored user when another
	// writer won the race on the phone key.
	Create(ctx context.Context, u *User) (*User, error)
	UpdateUsername(ctx context.Context, id, username string) error
}

// RoomRepository handles room lifecycle. Create returns ErrRoomExists when
// the id is taken, surfaced from the store-level uniqueness constraint.
type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*Room, error)
	FindByOwner(ctx context.Context, ownerID string) (*Room, error)
	Create(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository handles the (roomId,userId) join table. Upsert and Remove
// are both idempotent; the store enforces pair uniqueness.
type MemberRepository interface {
	Upsert(ctx context.Context, roomID, userID string) (*RoomMember, error)
	Remove(ctx context.Context, roomID, userID string) error
	Find(ctx context.Context, roomID, userID string) (*RoomMember, error)
	ListByRoom(ctx context.Context, roomID string) ([]RoomMember, error)
}

// MessageRepository handles append-only chat content. Insert assigns Seq and
// returns ErrForeignKey when room or sender is absent. ListByRoom orders by
// (timestamp, seq) ascending; limit > 0 returns the tail, still ascending.
type MessageRepository interface {
	Insert(ctx context.Context, m *Message) error
	ListByRoom(ctx context.Context, roomID string, limit int) ([]Message, error)
	LastByRoom(ctx context.Context, roomID string) (*Message, error)
	MarkRead(ctx context.Context, messageID string) error
	MarkRoomRead(ctx context.Context, roomID, excludingUserID string) (int64, error)
	Delete(ctx context.Context, messageID string) error
}
