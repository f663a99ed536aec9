package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pratham-srivastava-07/Nexus/internal/core/contracts"
	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/internal/core/services"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

// RoomWorker consumes per-room message queues. One instance is shared by all
// rooms; each Run call is one room's single consumer loop, so processing one
// payload at a time keeps broadcast order equal to append order.
type RoomWorker struct {
	log      *slog.Logger
	queue    contracts.MessageQueue
	messages *services.MessageService
	group    string
}

var _ contracts.AsyncWorker = (*RoomWorker)(nil)

func NewRoomWorker(
	log *slog.Logger,
	queue contracts.MessageQueue,
	messages *services.MessageService,
	group string,
) *RoomWorker {
	return &RoomWorker{
		log:      log,
		queue:    queue,
		messages: messages,
		group:    group,
	}
}

// Run consumes the room's queue until ctx is cancelled.
func (w *RoomWorker) Run(ctx context.Context, roomID string) error {
	w.log.InfoContext(ctx, "worker - started", logging.Room(roomID))
	return w.queue.Subscribe(ctx, roomID, w.group, func(ctx context.Context, messageID string, raw []byte) error {
		return w.ProcessMessage(ctx, roomID, messageID, raw)
	})
}

// ProcessMessage persists one queued payload and fans it out. Failures are
// acknowledged too: the sender has already received an explicit failure
// reply, and store errors are surfaced to the caller rather than retried.
func (w *RoomWorker) ProcessMessage(ctx context.Context, roomID, messageID string, raw []byte) error {
	var payload domain.MessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		w.log.ErrorContext(ctx, "worker - undecodable payload dropped",
			logging.Room(roomID), logging.Err(err))
		w.ackAndDelete(ctx, roomID, messageID)
		return nil
	}
	if err := w.messages.SaveAndBroadcast(ctx, &payload); err != nil {
		w.log.ErrorContext(ctx, "worker - save and broadcast failed",
			logging.Room(payload.RoomID), logging.User(payload.SenderID), logging.Err(err))
	}
	w.ackAndDelete(ctx, roomID, messageID)
	return nil
}

func (w *RoomWorker) ackAndDelete(ctx context.Context, roomID, messageID string) {
	if err := w.queue.Ack(ctx, roomID, w.group, messageID); err != nil {
		w.log.ErrorContext(ctx, "worker - ack failed", logging.Room(roomID), logging.Err(err))
	}
	if err := w.queue.Delete(ctx, roomID, messageID); err != nil {
		w.log.ErrorContext(ctx, "worker - delete failed", logging.Room(roomID), logging.Err(err))
	}
}
