package memory

import (
	"context"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// The repository interfaces overlap in method names, so the shared Store is
// exposed through one thin adapter per repository.

type UserRepo struct{ s *Store }

func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.s.FindByPhone(ctx, phone)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.s.FindByID(ctx, id)
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.s.Create(ctx, u)
}

func (r *UserRepo) UpdateUsername(ctx context.Context, id, username string) error {
	return r.s.UpdateUsername(ctx, id, username)
}

type RoomRepo struct{ s *Store }

func NewRoomRepo(s *Store) *RoomRepo { return &RoomRepo{s: s} }

func (r *RoomRepo) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.s.RoomByID(ctx, id)
}

func (r *RoomRepo) FindByOwner(ctx context.Context, ownerID string) (*domain.Room, error) {
	return r.s.RoomByOwner(ctx, ownerID)
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	return r.s.CreateRoom(ctx, room)
}

func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	return r.s.DeleteRoom(ctx, id)
}

type MemberRepo struct{ s *Store }

func NewMemberRepo(s *Store) *MemberRepo { return &MemberRepo{s: s} }

func (r *MemberRepo) Upsert(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	return r.s.UpsertMember(ctx, roomID, userID)
}

func (r *MemberRepo) Remove(ctx context.Context, roomID, userID string) error {
	return r.s.RemoveMember(ctx, roomID, userID)
}

func (r *MemberRepo) Find(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	return r.s.FindMember(ctx, roomID, userID)
}

func (r *MemberRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	return r.s.ListMembers(ctx, roomID)
}

type MessageRepo struct{ s *Store }

func NewMessageRepo(s *Store) *MessageRepo { return &MessageRepo{s: s} }

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	return r.s.InsertMessage(ctx, m)
}

func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	return r.s.ListMessages(ctx, roomID, limit)
}

func (r *MessageRepo) LastByRoom(ctx context.Context, roomID string) (*domain.Message, error) {
	return r.s.LastMessage(ctx, roomID)
}

func (r *MessageRepo) MarkRead(ctx context.Context, messageID string) error {
	return r.s.MarkMessageRead(ctx, messageID)
}

func (r *MessageRepo) MarkRoomRead(ctx context.Context, roomID, excludingUserID string) (int64, error) {
	return r.s.MarkRoomMessagesRead(ctx, roomID, excludingUserID)
}

func (r *MessageRepo) Delete(ctx context.Context, messageID string) error {
	return r.s.DeleteMessage(ctx, messageID)
}
