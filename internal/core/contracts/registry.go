package contracts

import (
	"context"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// Registry is the single source of truth for who is connected and to which
// rooms, independent of the persistent store. All operations are safe for
// concurrent use and never touch the store.
type Registry interface {
	// Register associates a connection with an identity and an empty room
	// set. A second register on the same connection overwrites the identity
	// and resets the room set.
	Register(c Client, id domain.Identity)
	// Identity reports the registered identity for a connection, if any.
	Identity(connID string) (domain.Identity, bool)
	// AddToRoom and RemoveFromRoom mutate the connection's room set and the
	// room's connection set atomically with respect to other registry
	// operations on the same room.
	AddToRoom(c Client, roomID string)
	RemoveFromRoom(c Client, roomID string)
	// InRoom reports whether the connection currently subscribes to roomID.
	InRoom(connID, roomID string) bool
	// ConnectionsInRoom returns the current live fan-out set.
	ConnectionsInRoom(roomID string) []Client
	// Unregister removes the connection from every room set and deletes its
	// identity. Idempotent.
	Unregister(c Client)
	// SendTo delivers a frame to one local connection, if still present.
	SendTo(ctx context.Context, connID string, frame any)
	// Broadcast delivers a frame to every live connection in the room,
	// the sender included.
	Broadcast(ctx context.Context, roomID string, frame any)
	// BroadcastExcept delivers a frame to every live connection in the room
	// except the named one (occupant notifications).
	BroadcastExcept(ctx context.Context, roomID, exceptConnID string, frame any)
}

// Client is the minimal surface the registry needs to talk to one live
// websocket connection.
type Client interface {
	ID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
