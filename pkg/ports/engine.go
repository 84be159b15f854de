package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

// Engine is the driving port for transports (HTTP, MCP, CLI). Start and
// Advance return the ordered render sequence for the step: a single
// descriptor for interactive targets, or several when message chains are
// auto-followed.
type Engine interface {
	// Start creates or unconditionally resets the session at the entry block.
	Start(ctx context.Context, sessionID string) ([]domain.Render, error)

	// Advance takes the transition named by selector from the session's
	// current block. Invalid selectors return an error wrapping
	// domain.ErrInvalidSelector and leave the session untouched.
	Advance(ctx context.Context, sessionID, selector string) ([]domain.Render, error)

	// Reset removes the session entirely.
	Reset(ctx context.Context, sessionID string) error

	// Flow returns the currently published flow graph.
	Flow() *flow.Flow
}
