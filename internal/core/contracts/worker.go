package contracts

import "context"

// AsyncWorker is the per-room consumer loop. The registry starts one when a
// room gains its first live connection and cancels it when the room empties.
type AsyncWorker interface {
	// Run starts consuming the room's queue until ctx is cancelled.
	Run(ctx context.Context, roomID string) error
	// ProcessMessage persists one queued payload, broadcasts it, and
	// acknowledges the queue entry.
	ProcessMessage(ctx context.Context, roomID, messageID string, raw []byte) error
}
