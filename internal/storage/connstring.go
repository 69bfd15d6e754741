// Package storage holds the pieces shared by the master-registry and
// per-workspace SQLite stores: the connection-string builder and the
// read-write and read-only open helpers.
package storage

import (
	"fmt"
	"strings"
)

// BusyTimeout is the fixed busy-wait spec §4.2 and §5 require: a connection
// may wait up to 5s on a write lock before the driver returns a busy error,
// which the sqlite store reports as sqlite.ErrBusy. Unlike the teacher's BD_LOCK_TIMEOUT env
// var, this is not environment-configurable (spec §6, "No other I/O") —
// internal/config plumbs an override explicitly if one is ever needed.
const BusyTimeout = 5000 // milliseconds

// SQLiteConnString builds a modernc.org/sqlite DSN with the pragmas spec
// §4.2 requires on every connection: WAL journaling (concurrent reads during
// writes), enforced foreign keys, and the fixed busy timeout. If readOnly is
// true the connection is opened in read-only mode (mode=ro).
func SQLiteConnString(path string, readOnly bool) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", BusyTimeout),
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
	}
	if readOnly {
		params = append(params, "mode=ro")
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}
