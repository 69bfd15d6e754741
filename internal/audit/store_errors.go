package audit

import (
	"errors"

	"github.com/kodelink/task-mcp/internal/storage/sqlite"
)

// errIsNotFound reports whether err (from the sqlite store) signals that a
// row doesn't exist, mirroring internal/engine's store_errors.go.
func errIsNotFound(err error) bool {
	return errors.Is(err, sqlite.ErrNotFound)
}
