package engine

import (
	"errors"

	"github.com/kodelink/task-mcp/internal/storage/sqlite"
)

// isNotFoundErr reports whether err (from the sqlite store) signals that a
// row doesn't exist, so the engine can translate it into errs.NotFound
// instead of leaking a storage-layer sentinel upward.
func isNotFoundErr(err error) bool {
	return errors.Is(err, sqlite.ErrNotFound)
}
