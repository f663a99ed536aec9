package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pratham-srivastava-07/Nexus/internal/core/contracts"
	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/internal/core/services"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

var tracer = otel.Tracer("dispatcher")

// Dispatcher parses inbound frames, validates them, and routes each to
// exactly one handler. Malformed frames are answered with an info error to
// the sender only; unrecognized frame types are logged and ignored. Handler
// failures never reach other connections.
type Dispatcher struct {
	log      *slog.Logger
	registry contracts.Registry
	presence contracts.Presence
	users    *services.UserService
	rooms    *services.RoomService
	messages *services.MessageService
}

func NewDispatcher(
	log *slog.Logger,
	registry contracts.Registry,
	presence contracts.Presence,
	users *services.UserService,
	rooms *services.RoomService,
	messages *services.MessageService,
) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		presence: presence,
		users:    users,
		rooms:    rooms,
		messages: messages,
	}
}

// Dispatch handles one inbound frame for one connection. Routing is
// exclusive: a frame triggers at most one handler.
func (d *Dispatcher) Dispatch(ctx context.Context, c contracts.Client, raw []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		d.log.WarnContext(ctx, "dispatch - malformed frame", logging.Conn(c.ID()), logging.Err(err))
		d.replyInfo(ctx, c, "", "malformed frame")
		return
	}

	ctx, span := tracer.Start(ctx, "Dispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.frame_type", frame.Type),
		attribute.String("chat.conn_id", c.ID()),
	)

	switch frame.Type {
	case domain.FrameRegister:
		d.handleRegister(ctx, c, frame)
	case domain.FrameJoinRoom:
		d.handleJoinRoom(ctx, c, frame)
	case domain.FrameLeaveRoom:
		d.handleLeaveRoom(ctx, c, frame)
	case domain.FrameMessage:
		d.handleMessage(ctx, c, frame)
	default:
		// Protocol error: unknown types are ignored, the connection stays open.
		span.SetStatus(codes.Error, "unrecognized frame type")
		d.log.WarnContext(ctx, "dispatch - unrecognized frame type",
			logging.Conn(c.ID()), logging.Frame(frame.Type))
	}
}

// HandleClose runs the transport-level close effect: presence offline and
// full registry cleanup. Safe to call more than once.
func (d *Dispatcher) HandleClose(ctx context.Context, c contracts.Client) {
	if id, ok := d.registry.Identity(c.ID()); ok {
		d.presence.SetOffline(id.UserID)
		d.log.InfoContext(ctx, "dispatch - connection closed",
			logging.Conn(c.ID()), logging.User(id.UserID))
	}
	d.registry.Unregister(c)
}

func (d *Dispatcher) handleRegister(ctx context.Context, c contracts.Client, f domain.Frame) {
	if f.PhoneNumber == "" {
		d.replyInfo(ctx, c, f.RoomID, "phoneNumber is required")
		return
	}

	user, err := d.users.ResolveOrCreate(ctx, f.PhoneNumber, f.UserName)
	if err != nil {
		d.log.ErrorContext(ctx, "register - resolve user failed", logging.Conn(c.ID()), logging.Err(err))
		d.replyInfo(ctx, c, f.RoomID, "registration failed")
		return
	}
	home, err := d.rooms.ResolveOrCreateHomeRoom(ctx, user.ID, f.RoomID)
	if err != nil {
		d.log.ErrorContext(ctx, "register - resolve home room failed",
			logging.Conn(c.ID()), logging.User(user.ID), logging.Err(err))
		d.replyInfo(ctx, c, f.RoomID, "registration failed")
		return
	}
	if _, err := d.rooms.EnsureMembership(ctx, home.ID, user.ID); err != nil {
		d.replyInfo(ctx, c, home.ID, "registration failed")
		return
	}

	d.registry.Register(c, domain.Identity{UserID: user.ID, Username: user.Username})
	d.registry.AddToRoom(c, home.ID)
	d.presence.SetOnline(user.ID)

	d.log.InfoContext(ctx, "register - connection registered",
		logging.Conn(c.ID()), logging.User(user.ID), logging.Room(home.ID))
	d.registry.SendTo(ctx, c.ID(), domain.RoomEvent{
		Type:    domain.FrameRoomEntered,
		Message: fmt.Sprintf("You have entered in a room with Room ID: %s", home.ID),
		RoomID:  home.ID,
	})
}

func (d *Dispatcher) handleJoinRoom(ctx context.Context, c contracts.Client, f domain.Frame) {
	id, ok := d.registry.Identity(c.ID())
	if !ok {
		d.replyInfo(ctx, c, f.RoomID, "register before joining a room")
		return
	}
	if f.RoomID == "" {
		d.replyInfo(ctx, c, "", "roomId is required")
		return
	}

	if _, err := d.rooms.EnsureRoom(ctx, f.RoomID, id.UserID); err != nil {
		d.replyInfo(ctx, c, f.RoomID, "could not join room")
		return
	}
	if _, err := d.rooms.EnsureMembership(ctx, f.RoomID, id.UserID); err != nil {
		d.replyInfo(ctx, c, f.RoomID, "could not join room")
		return
	}
	d.registry.AddToRoom(c, f.RoomID)

	d.registry.SendTo(ctx, c.ID(), domain.RoomEvent{
		Type:    domain.FrameRoomJoin,
		Message: fmt.Sprintf("You have joined Room ID: %s", f.RoomID),
		RoomID:  f.RoomID,
	})

	history, err := d.messages.History(ctx, f.RoomID, 0)
	if err != nil {
		history = []domain.HistoryEntry{}
	}
	d.registry.SendTo(ctx, c.ID(), domain.ChatHistory{
		Type:     domain.FrameChatHistory,
		RoomID:   f.RoomID,
		Messages: history,
	})

	d.registry.BroadcastExcept(ctx, f.RoomID, c.ID(), domain.Info{
		Type:    domain.FrameInfo,
		Message: fmt.Sprintf("%s has joined the room.", id.Username),
		RoomID:  f.RoomID,
	})
	d.log.InfoContext(ctx, "join - member joined",
		logging.Conn(c.ID()), logging.User(id.UserID), logging.Room(f.RoomID))
}

func (d *Dispatcher) handleLeaveRoom(ctx context.Context, c contracts.Client, f domain.Frame) {
	id, ok := d.registry.Identity(c.ID())
	if !ok {
		d.replyInfo(ctx, c, f.RoomID, "register before leaving a room")
		return
	}
	if f.RoomID == "" {
		d.replyInfo(ctx, c, "", "roomId is required")
		return
	}

	if err := d.rooms.RemoveMembership(ctx, f.RoomID, id.UserID); err != nil {
		d.replyInfo(ctx, c, f.RoomID, "could not leave room")
		return
	}
	d.registry.RemoveFromRoom(c, f.RoomID)

	d.registry.SendTo(ctx, c.ID(), domain.RoomEvent{
		Type:    domain.FrameRoomLeft,
		Message: fmt.Sprintf("You have left Room ID: %s", f.RoomID),
		RoomID:  f.RoomID,
	})

	// The leaver is already out of the fan-out set; everyone left is "other".
	d.registry.Broadcast(ctx, f.RoomID, domain.Info{
		Type:    domain.FrameInfo,
		Message: fmt.Sprintf("%s has left the room.", id.Username),
		RoomID:  f.RoomID,
	})
	d.log.InfoContext(ctx, "leave - member left",
		logging.Conn(c.ID()), logging.User(id.UserID), logging.Room(f.RoomID))
}

func (d *Dispatcher) handleMessage(ctx context.Context, c contracts.Client, f domain.Frame) {
	id, ok := d.registry.Identity(c.ID())
	if !ok {
		d.replyInfo(ctx, c, f.RoomID, "register before sending messages")
		return
	}
	if f.RoomID == "" {
		d.replyInfo(ctx, c, "", "roomId is required")
		return
	}
	if !d.registry.InRoom(c.ID(), f.RoomID) {
		d.replyInfo(ctx, c, f.RoomID, "join the room before sending messages")
		return
	}

	if _, err := d.messages.Accept(ctx, c.ID(), id, f); err != nil {
		d.log.ErrorContext(ctx, "message - accept failed",
			logging.Conn(c.ID()), logging.Room(f.RoomID), logging.Err(err))
		d.replyInfo(ctx, c, f.RoomID, "message could not be delivered")
		return
	}
}

// replyInfo answers the sender, and only the sender, with an info frame.
func (d *Dispatcher) replyInfo(ctx context.Context, c contracts.Client, roomID, message string) {
	data, err := json.Marshal(domain.Info{
		Type:    domain.FrameInfo,
		Message: message,
		RoomID:  roomID,
	})
	if err != nil {
		return
	}
	_ = c.Send(ctx, data)
}
