package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

// RoomService is the Room Directory: durable room and membership lifecycle.
// Rooms come into being lazily the first time a join, message or register
// references an unknown id; only CreateRoom treats an existing id as an error.
type RoomService struct {
	log      *slog.Logger
	rooms    domain.RoomRepository
	members  domain.MemberRepository
	messages domain.MessageRepository
}

func NewRoomService(
	log *slog.Logger,
	rooms domain.RoomRepository,
	members domain.MemberRepository,
	messages domain.MessageRepository,
) *RoomService {
	return &RoomService{
		log:      log,
		rooms:    rooms,
		members:  members,
		messages: messages,
	}
}

// ResolveOrCreateHomeRoom returns the room owned by userID, verbatim, when
// one exists. Otherwise the preferred id (or a generated one) is resolved
// lazily: an existing room with that id is joined as-is, an unknown one is
// created with the user as owner.
func (s *RoomService) ResolveOrCreateHomeRoom(ctx context.Context, userID, preferredID string) (*domain.Room, error) {
	owned, err := s.rooms.FindByOwner(ctx, userID)
	if err == nil {
		return owned, nil
	}
	if !errors.Is(err, domain.ErrRoomNotFound) {
		s.log.ErrorContext(ctx, "rooms - home room - owner lookup failed", logging.User(userID), logging.Err(err))
		return nil, err
	}
	if preferredID == "" {
		preferredID = uuid.NewString()
	}
	return s.EnsureRoom(ctx, preferredID, userID)
}

// EnsureRoom resolves roomID, creating a non-group room owned by ownerID on
// first reference. Safe under concurrent callers: the loser of a create race
// returns the winner's room.
func (s *RoomService) EnsureRoom(ctx context.Context, roomID, ownerID string) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, domain.ErrRoomNotFound) {
		return nil, err
	}
	room = &domain.Room{ID: roomID, OwnerID: ownerID}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, domain.ErrRoomExists) {
			return s.rooms.FindByID(ctx, roomID)
		}
		s.log.ErrorContext(ctx, "rooms - ensure room - create failed", logging.Room(roomID), logging.Err(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "rooms - ensure room - room created", logging.Room(roomID), logging.User(ownerID))
	return room, nil
}

// CreateRoom explicitly creates a room and fails with ErrRoomExists on a
// duplicate id. A group room requires a name.
func (s *RoomService) CreateRoom(ctx context.Context, roomID, ownerID string, isGroup bool, name string) (*domain.Room, error) {
	if isGroup && name == "" {
		return nil, fmt.Errorf("%w: group room requires a name", domain.ErrInvalidFrame)
	}
	if roomID == "" {
		roomID = uuid.NewString()
	}
	room := &domain.Room{ID: roomID, OwnerID: ownerID, IsGroup: isGroup, Name: name}
	if err := s.rooms.Create(ctx, room); err != nil {
		s.log.ErrorContext(ctx, "rooms - create room - create failed", logging.Room(roomID), logging.Err(err))
		return nil, err
	}
	return room, nil
}

// FindRoom returns the room with its members and most recent message, for
// list previews.
func (s *RoomService) FindRoom(ctx context.Context, roomID string) (*domain.RoomPreview, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	last, err := s.messages.LastByRoom(ctx, roomID)
	if err != nil && !errors.Is(err, domain.ErrMessageNotFound) {
		return nil, err
	}
	return &domain.RoomPreview{Room: *room, Members: members, LastMessage: last}, nil
}

// EnsureMembership upserts the (roomID, userID) row. Calling it for an
// existing member is a no-op, not an error.
func (s *RoomService) EnsureMembership(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	member, err := s.members.Upsert(ctx, roomID, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "rooms - ensure membership - upsert failed", logging.Room(roomID), logging.User(userID), logging.Err(err))
		return nil, err
	}
	return member, nil
}

// RemoveMembership deletes the membership row. Removing a non-member is a
// no-op.
func (s *RoomService) RemoveMembership(ctx context.Context, roomID, userID string) error {
	if err := s.members.Remove(ctx, roomID, userID); err != nil {
		s.log.ErrorContext(ctx, "rooms - remove membership - delete failed", logging.Room(roomID), logging.User(userID), logging.Err(err))
		return err
	}
	s.log.InfoContext(ctx, "rooms - remove membership - removed", logging.Room(roomID), logging.User(userID))
	return nil
}

// Members lists the room's durable membership.
func (s *RoomService) Members(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	return s.members.ListByRoom(ctx, roomID)
}
