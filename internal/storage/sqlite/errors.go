package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common database conditions. The engine layer
// (internal/engine) maps ErrNotFound onto errs.NotFound; every other store
// error, ErrConflict and ErrBusy included, reaches callers wrapped as
// errs.Internal, so no path produces errs.LockContended. This package stays
// dependency-free and speaks only in terms of sql.ErrNoRows and these three
// sentinels, exactly like the teacher's internal/storage/sqlite/errors.go.
var (
	// ErrNotFound indicates the requested resource was not found in the database
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation or conflicting state
	ErrConflict = errors.New("conflict")

	// ErrBusy indicates the connection hit the busy timeout (spec §4.2, §5):
	// a retriable lock-contention error.
	ErrBusy = errors.New("database busy")
)

// wrapDBError wraps a database error with operation context, converting
// sql.ErrNoRows to ErrNotFound and recognized SQLite error strings to
// ErrConflict/ErrBusy for consistent, errors.Is-able handling upstream.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy"):
		return fmt.Errorf("%s: %w: %v", op, ErrBusy, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func isConflict(err error) bool { return errors.Is(err, ErrConflict) }
func isBusy(err error) bool     { return errors.Is(err, ErrBusy) }
