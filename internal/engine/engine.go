// Package engine is the domain engine (spec §4.4, §4.5): it enforces every
// semantic invariant the data model carries — description limits, the task
// state machine, dependency gating, blocker-reason rules, cascade semantics,
// tag normalization, soft-delete filtering, and workspace-metadata capture.
// It talks to one workspace's store and knows nothing about pagination, mode
// projection, or the response-size budget — those live one layer up in
// internal/query.
package engine

import (
	"time"

	"github.com/kodelink/task-mcp/internal/storage/sqlite"
)

// Engine enforces the domain invariants for a single workspace database.
type Engine struct {
	store *sqlite.Store
	clock func() time.Time
}

// New builds an Engine over an already-opened workspace store.
func New(store *sqlite.Store) *Engine {
	return &Engine{store: store, clock: time.Now}
}

// now returns the engine's notion of the current time, always UTC, so every
// persisted timestamp is comparable regardless of host locale.
func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// WithClock overrides the engine's time source, for deterministic tests
// (spec §8, scenarios that depend on ordering and retention windows).
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}
