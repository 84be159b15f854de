package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/metrics"
	"github.com/espalier-dev/espalier/internal/runtime"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/session"
)

// Version is the library version, reported by the CLI and the MCP adapter.
const Version = "0.3.0"

// Engine is the high-level entry point for the Espalier library. It wraps
// the internal runtime and a session manager behind a simplified API.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	store    ports.SessionStore
	locker   ports.DistributedLocker
	logger   *slog.Logger
	maxChain int
}

var _ ports.Engine = (*Engine)(nil)

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for the engine and session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionStore replaces the default in-memory session store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithMaxChainDepth overrides the message auto-follow bound.
func WithMaxChainDepth(depth int) Option {
	return func(e *Engine) {
		e.maxChain = depth
	}
}

// New loads, parses, and validates the flow document at path and builds an
// engine over it. Parse failures return the full flow.ErrorList.
func New(path string, opts ...Option) (*Engine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow document: %w", err)
	}
	return NewFromSource(src, opts...)
}

// NewFromSource builds an engine from raw document bytes.
func NewFromSource(src []byte, opts ...Option) (*Engine, error) {
	f, err := flow.Parse(src)
	if err != nil {
		metrics.ParseErrorsTotal.Inc()
		return nil, err
	}
	return NewFromFlow(f, opts...), nil
}

// NewFromFlow builds an engine over an already validated flow.
func NewFromFlow(f *flow.Flow, opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, managerOpts...)

	runtimeOpts := []runtime.Option{runtime.WithLogger(e.logger.With("flow", f.ID()))}
	if e.maxChain > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithMaxChainDepth(e.maxChain))
	}
	e.runtime = runtime.NewEngine(f, e.sessions, runtimeOpts...)
	return e
}

// Start creates or unconditionally resets the session at the entry block.
func (e *Engine) Start(ctx context.Context, sessionID string) ([]domain.Render, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Advance takes the transition named by selector from the session's current
// block.
func (e *Engine) Advance(ctx context.Context, sessionID, selector string) ([]domain.Render, error) {
	return e.runtime.Advance(ctx, sessionID, selector)
}

// Reset removes the session entirely.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.runtime.Reset(ctx, sessionID)
}

// Sessions returns the ids of live sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.runtime.Sessions(ctx)
}

// Flow returns the currently published flow graph.
func (e *Engine) Flow() *flow.Flow {
	return e.runtime.Flow()
}

// Reload parses and validates a new document and atomically swaps it in. On
// any parse error the old graph stays published untouched.
func (e *Engine) Reload(src []byte) error {
	f, err := flow.Parse(src)
	if err != nil {
		metrics.ParseErrorsTotal.Inc()
		return err
	}
	e.runtime.Swap(f)
	return nil
}
