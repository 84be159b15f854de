package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// SessionStore defines the interface for persisting navigation state.
// Implementations own the session lifecycle policy (TTL, eviction); the
// engine only reads and writes through this contract.
type SessionStore interface {
	// Save persists the session under its id.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for the given id.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for the given id.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of all live sessions.
	List(ctx context.Context) ([]string, error)
}
