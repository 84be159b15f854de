// Package runtime implements the transition engine: the state machine that
// moves sessions through a validated flow graph and produces render
// descriptors for the transport.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/metrics"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/session"
)

// defaultMaxChain bounds how many message blocks are auto-followed in one
// step. Guards against pathological chains; validated flows with cycles of
// plain messages stop here too.
const defaultMaxChain = 20

// Engine drives per-session navigation through the flow graph. The graph is
// held behind an atomic pointer so a hot reload publishes a fully validated
// flow without stopping in-flight sessions.
type Engine struct {
	graph    atomic.Pointer[flow.Flow]
	sessions *session.Manager
	logger   *slog.Logger
	maxChain int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxChainDepth overrides the message auto-follow bound.
func WithMaxChainDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxChain = depth
		}
	}
}

// NewEngine creates an engine over a validated flow and a session manager.
func NewEngine(f *flow.Flow, sessions *session.Manager, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		logger:   logging.NewNop(),
		maxChain: defaultMaxChain,
	}
	e.graph.Store(f)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Flow returns the currently published flow graph.
func (e *Engine) Flow() *flow.Flow {
	return e.graph.Load()
}

// Swap atomically publishes a new flow graph. The new graph must already be
// validated; in-flight sessions see either the old graph in full or the new
// one in full, never a mixture.
func (e *Engine) Swap(f *flow.Flow) {
	e.graph.Store(f)
	e.logger.Info("flow graph swapped", "flow_id", f.ID(), "blocks", f.Len())
}

// Start creates or unconditionally resets the session at the entry block and
// returns the render sequence for it. A second Start never merges with prior
// state.
func (e *Engine) Start(ctx context.Context, sessionID string) ([]domain.Render, error) {
	f := e.Flow()

	var renders []domain.Render
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess := domain.NewSession(sessionID, f.Entry())
		var err error
		renders, err = e.follow(f, sess, f.Entry(), false)
		if err != nil {
			return err
		}
		return e.sessions.Store().Save(ctx, sess)
	})
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues("start", metrics.ResultError).Inc()
		return nil, err
	}

	metrics.SessionsStarted.Inc()
	metrics.TransitionsTotal.WithLabelValues("start", metrics.ResultOK).Inc()
	e.logger.Debug("session started", "session_id", sessionID, "block", renders[len(renders)-1].BlockID)
	return renders, nil
}

// Advance takes the transition named by selector from the session's current
// block. On an invalid selector the session stays at its pre-call block and
// the error unwraps to domain.ErrInvalidSelector; a parked terminal session
// returns domain.ErrFlowTerminated.
func (e *Engine) Advance(ctx context.Context, sessionID, selector string) ([]domain.Render, error) {
	f := e.Flow()

	var renders []domain.Render
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := e.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		current, ok := f.Lookup(sess.CurrentBlockID)
		if !ok {
			// The graph was swapped and the session's block no longer exists.
			// Restart at the entry block rather than stranding the user.
			e.logger.Warn("session parked at unknown block, restarting",
				"session_id", sessionID, "block", sess.CurrentBlockID)
			sess = domain.NewSession(sessionID, f.Entry())
			renders, err = e.follow(f, sess, f.Entry(), false)
			if err != nil {
				return err
			}
			return e.sessions.Store().Save(ctx, sess)
		}

		if domain.IsTerminal(current) {
			return domain.ErrFlowTerminated
		}

		target, ok := resolveSelector(current, selector)
		if !ok {
			return &domain.SelectorError{
				SessionID: sessionID,
				BlockID:   current.BlockID(),
				Selector:  selector,
			}
		}

		// Hide the old, then decide how to present the new: HidePrevious
		// comes from the block being left, ReplaceInPlace from the target.
		renders, err = e.follow(f, sess, target, current.BlockRules().HideOnNext)
		if err != nil {
			return err
		}
		return e.sessions.Store().Save(ctx, sess)
	})

	switch {
	case err == nil:
		result := metrics.ResultOK
		if renders[len(renders)-1].Terminal {
			result = metrics.ResultTerminal
		}
		metrics.TransitionsTotal.WithLabelValues("advance", result).Inc()
		return renders, nil
	case errors.Is(err, domain.ErrInvalidSelector), errors.Is(err, domain.ErrFlowTerminated):
		metrics.TransitionsTotal.WithLabelValues("advance", metrics.ResultInvalidSelector).Inc()
		e.logger.Debug("advance rejected", "session_id", sessionID, "selector", selector, "err", err)
		return nil, err
	default:
		metrics.TransitionsTotal.WithLabelValues("advance", metrics.ResultError).Inc()
		return nil, err
	}
}

// Reset removes the session entirely; the next Start recreates it.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Sessions returns the ids of live sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// follow parks the session at startID and auto-advances through plain
// message blocks with an unconditional next, collecting one render
// descriptor per visited block. Each descriptor's HidePrevious carries the
// hide rule of the block just left; the first one is governed by the caller.
func (e *Engine) follow(f *flow.Flow, sess *domain.Session, startID string, hidePrevious bool) ([]domain.Render, error) {
	current, ok := f.Lookup(startID)
	if !ok {
		// Validation proves resolvability; this means the flow and the
		// session came from different graphs.
		return nil, fmt.Errorf("block %q not found in flow %q", startID, f.ID())
	}

	renders := make([]domain.Render, 0, 1)
	visited := make(map[string]bool)

	for depth := 0; depth < e.maxChain; depth++ {
		renders = append(renders, project(current, hidePrevious))
		sess.CurrentBlockID = current.BlockID()
		sess.UpdatedAt = time.Now().UTC()

		if visited[current.BlockID()] {
			break
		}
		visited[current.BlockID()] = true

		// Only plain messages continue on their own; menus wait for input
		// and terminals end the path.
		msg, isMessage := current.(*domain.Message)
		if !isMessage || msg.Next == "" {
			break
		}

		next, ok := f.Lookup(msg.Next)
		if !ok {
			return nil, fmt.Errorf("block %q not found in flow %q", msg.Next, f.ID())
		}
		hidePrevious = current.BlockRules().HideOnNext
		current = next
	}

	return renders, nil
}

// resolveSelector maps a caller-supplied selector onto the target block id.
// For message blocks the selector is the sole next (or empty); for mes-menu
// the single button id (or empty); for menus it must be one of the button
// ids.
func resolveSelector(b domain.Block, selector string) (string, bool) {
	switch blk := b.(type) {
	case *domain.Message:
		if blk.Next != "" && (selector == "" || selector == blk.Next) {
			return blk.Next, true
		}
	case *domain.Menu:
		for _, btn := range blk.Buttons {
			if btn.ID == selector {
				return btn.Next, true
			}
		}
	case *domain.MesMenu:
		if selector == "" || selector == blk.Button.ID {
			return blk.Button.Next, true
		}
	}
	return "", false
}
