package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSelector is the class of runtime errors returned by Advance when
// the supplied selector does not name a transition of the current block. It
// is recoverable: the session stays at its pre-call block and the transport
// should surface the press as an ignored action.
var ErrInvalidSelector = errors.New("invalid selector")

// ErrFlowTerminated is returned by Advance when the session is parked at a
// terminal block. Only a fresh Start resets it.
var ErrFlowTerminated = errors.New("flow terminated")

// SelectorError reports which selector was rejected and where. It unwraps to
// ErrInvalidSelector.
type SelectorError struct {
	SessionID string
	BlockID   string
	Selector  string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q for block %q (session %s)", e.Selector, e.BlockID, e.SessionID)
}

func (e *SelectorError) Unwrap() error { return ErrInvalidSelector }
