package domain

import "time"

// Session is the per-user navigation state. It is created by the engine's
// Start operation, exclusively mutated under the session manager's per-key
// lock, and removed by the store's eviction policy.
type Session struct {
	// ID identifies the session (typically the chat/user id of the transport).
	ID string `json:"id"`

	// CurrentBlockID is the block the session is parked at.
	CurrentBlockID string `json:"current_block_id"`

	// LastMessageRef is an opaque transport handle for the most recently
	// rendered message. The engine never interprets it; transports use it to
	// honor hide/replace instructions.
	LastMessageRef string `json:"last_message_ref,omitempty"`

	// UpdatedAt is bumped on every transition; stores may use it for idle
	// expiry.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session parked at the given entry block.
func NewSession(id, entryBlockID string) *Session {
	return &Session{
		ID:             id,
		CurrentBlockID: entryBlockID,
		UpdatedAt:      time.Now().UTC(),
	}
}
