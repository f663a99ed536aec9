package contracts

import "github.com/pratham-srivastava-07/Nexus/internal/core/domain"

// Presence is the cheap, non-durable online/offline signal. Implementations
// are process-local; state is rebuilt empty on restart.
type Presence interface {
	SetOnline(userID string)
	SetOffline(userID string)
	// Get reports the last known status. ok is false for users never seen
	// in this process lifetime.
	Get(userID string) (domain.Presence, bool)
}
