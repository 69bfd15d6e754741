// Package sqlite is the per-workspace store (spec §4.2): schema creation and
// migration, connection acquisition with the required pragmas, and low-level
// row operations for tasks, entities, links. It knows nothing about the
// domain invariants in spec §4.4/§4.5 — that enforcement lives one layer up,
// in internal/engine, so this package stays a thin, testable row mapper.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kodelink/task-mcp/internal/storage"
)

// Store wraps one workspace's SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the workspace database at path,
// applying the required pragmas, base schema, and any pending forward-only
// migrations (spec §4.2).
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := storage.OpenReadWrite(path)
	if err != nil {
		return nil, err
	}
	// A workspace database is written by a single workspace at a time from
	// this process; serializing through one *sql.DB connection plus SQLite's
	// own WAL keeps writes linearizable without a separate in-process lock
	// (spec §5, "single writer via its write-ahead log and a busy timeout").
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping workspace db %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, baseSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema %s: %w", path, err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the raw *sql.DB. No package in this module calls it
// (internal/audit goes through the Store's own methods); no other package
// should reach through it for writes.
func (s *Store) DB() *sql.DB { return s.db }

// withTx runs fn inside a single transaction, per spec §4.2's "All multi-row
// mutations ... occur inside a single transaction" and §5's "Multi-step
// operations ... occur in one transaction to preserve invariants".
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transaction", err)
	}
	return nil
}
