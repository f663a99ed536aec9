package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pratham-srivastava-07/Nexus/internal/core/contracts"
	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

var tracer = otel.Tracer("message-service")

// MessageService is the Message Store front: it accepts validated frames
// onto the per-room queue, and on the consumer side persists and fans out.
// The split keeps store I/O off the accepting connection's frame loop while
// a single consumer per room keeps broadcast order equal to append order.
type MessageService struct {
	log      *slog.Logger
	queue    contracts.MessageQueue
	registry contracts.Registry
	cache    contracts.HistoryCache
	repo     domain.MessageRepository
	rooms    *RoomService
	tx       TxRunner
}

func NewMessageService(
	log *slog.Logger,
	queue contracts.MessageQueue,
	registry contracts.Registry,
	cache contracts.HistoryCache,
	repo domain.MessageRepository,
	rooms *RoomService,
	tx TxRunner,
) *MessageService {
	return &MessageService{
		log:      log,
		queue:    queue,
		registry: registry,
		cache:    cache,
		repo:     repo,
		rooms:    rooms,
		tx:       tx,
	}
}

// Accept validates and normalizes an inbound message frame and publishes it
// to the room's queue. The payload carries the originating connection id so
// the persistence side can address a failure reply.
func (s *MessageService) Accept(ctx context.Context, connID string, sender domain.Identity, f domain.Frame) (domain.MessagePayload, error) {
	if f.RoomID == "" {
		return domain.MessagePayload{}, fmt.Errorf("%w: roomId is required", domain.ErrInvalidFrame)
	}
	media := f.Media
	if f.ImageURL != "" {
		media = f.ImageURL
	}
	ts := time.Now()
	if f.Timestamp != nil {
		ts = *f.Timestamp
	}
	payload := domain.MessagePayload{
		ConnID:    connID,
		RoomID:    f.RoomID,
		SenderID:  sender.UserID,
		Username:  sender.Username,
		Body:      f.Text,
		Media:     media,
		Type:      domain.NormalizeMessageType(f.MessageType, f.ImageURL),
		Timestamp: ts,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.MessagePayload{}, err
	}
	if err := s.queue.Publish(ctx, f.RoomID, raw); err != nil {
		s.log.ErrorContext(ctx, "messages - accept - publish failed", logging.Room(f.RoomID), logging.Err(err))
		return domain.MessagePayload{}, err
	}
	return payload, nil
}

// SaveAndBroadcast runs on the room's single consumer: it ensures room and
// membership exist, appends the message in one transaction, then fans the
// payload out to every live connection in the room, the sender included.
// On a store failure the sender gets an explicit info failure frame and no
// occupant sees anything.
func (s *MessageService) SaveAndBroadcast(ctx context.Context, payload *domain.MessagePayload) error {
	ctx, span := tracer.Start(ctx, "MessageService.SaveAndBroadcast")
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.room_id", payload.RoomID),
		attribute.String("chat.sender_id", payload.SenderID),
	)

	msg := &domain.Message{
		ID:         uuid.NewString(),
		RoomID:     payload.RoomID,
		SenderID:   payload.SenderID,
		SenderName: payload.Username,
		Body:       payload.Body,
		Media:      payload.Media,
		Type:       payload.Type,
		Timestamp:  payload.Timestamp,
	}
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.rooms.EnsureRoom(txCtx, payload.RoomID, payload.SenderID); err != nil {
			return err
		}
		if _, err := s.rooms.EnsureMembership(txCtx, payload.RoomID, payload.SenderID); err != nil {
			return err
		}
		return s.repo.Insert(txCtx, msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		s.log.ErrorContext(ctx, "messages - save and broadcast - append failed",
			logging.Room(payload.RoomID), logging.User(payload.SenderID), logging.Err(err))
		s.registry.SendTo(ctx, payload.ConnID, domain.Info{
			Type:    domain.FrameInfo,
			Message: "message could not be delivered",
			RoomID:  payload.RoomID,
		})
		return err
	}

	s.refreshCache(ctx, *msg)

	s.registry.Broadcast(ctx, payload.RoomID, domain.ChatBroadcast{
		Type:        domain.FrameMessage,
		RoomID:      payload.RoomID,
		Username:    payload.Username,
		Text:        payload.Body,
		Timestamp:   payload.Timestamp,
		MessageType: payload.Type,
		Media:       payload.Media,
	})
	return nil
}

// refreshCache keeps the room's full-history blob current. It runs only on
// the room's single consumer, which is what makes the read-modify-write
// safe: no other writer ever touches the blob, so a reader can never store
// a snapshot that misses an append. A warm blob gets the new entry spliced
// in; a cold one is rebuilt from the store.
func (s *MessageService) refreshCache(ctx context.Context, m domain.Message) {
	entries, ok, err := s.cache.Get(ctx, m.RoomID)
	if err != nil {
		s.log.WarnContext(ctx, "messages - refresh cache - read failed", logging.Room(m.RoomID), logging.Err(err))
		return
	}
	if !ok {
		msgs, err := s.repo.ListByRoom(ctx, m.RoomID, 0)
		if err != nil {
			s.log.WarnContext(ctx, "messages - refresh cache - list failed", logging.Room(m.RoomID), logging.Err(err))
			return
		}
		entries = make([]domain.HistoryEntry, 0, len(msgs))
		for _, stored := range msgs {
			entries = append(entries, domain.NewHistoryEntry(stored))
		}
	} else {
		entries = append(entries, domain.NewHistoryEntry(m))
		// A client-supplied timestamp may predate the cached tail. The blob
		// is in append order, so a stable sort restores (timestamp, seq).
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		})
	}
	if err := s.cache.Set(ctx, m.RoomID, entries); err != nil {
		s.log.WarnContext(ctx, "messages - refresh cache - write failed", logging.Room(m.RoomID), logging.Err(err))
	}
}

// History returns the room's messages ascending by (timestamp, insertion).
// limit > 0 returns the most recent limit messages, still ascending. Full
// histories are served from the cache when warm; readers never write the
// cache, so a read racing an append cannot park a stale snapshot in it.
func (s *MessageService) History(ctx context.Context, roomID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		if entries, ok, err := s.cache.Get(ctx, roomID); err != nil {
			s.log.WarnContext(ctx, "messages - history - cache read failed", logging.Room(roomID), logging.Err(err))
		} else if ok {
			return entries, nil
		}
	}
	msgs, err := s.repo.ListByRoom(ctx, roomID, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "messages - history - list failed", logging.Room(roomID), logging.Err(err))
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, domain.NewHistoryEntry(m))
	}
	return entries, nil
}

// MarkRead flips one message's read receipt. Idempotent.
func (s *MessageService) MarkRead(ctx context.Context, messageID string) error {
	return s.repo.MarkRead(ctx, messageID)
}

// MarkRoomRead flips the read receipt on every unread message in the room
// not sent by excludingUserID and returns the count mutated.
func (s *MessageService) MarkRoomRead(ctx context.Context, roomID, excludingUserID string) (int64, error) {
	count, err := s.repo.MarkRoomRead(ctx, roomID, excludingUserID)
	if err != nil {
		s.log.ErrorContext(ctx, "messages - mark room read - update failed", logging.Room(roomID), logging.Err(err))
		return 0, err
	}
	return count, nil
}

// Delete removes a message outside the normal flow (maintenance only). The
// room id is needed to drop the cached history the message may sit in.
func (s *MessageService) Delete(ctx context.Context, roomID, messageID string) error {
	if err := s.repo.Delete(ctx, messageID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, roomID); err != nil {
		s.log.WarnContext(ctx, "messages - delete - cache invalidate failed", logging.Room(roomID), logging.Err(err))
	}
	return nil
}
