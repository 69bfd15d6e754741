package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenReadOnly opens a SQLite database in read-only mode. No package in this
// module calls it: internal/audit reads only the current workspace's store
// and the master registry, never another workspace's database.
func OpenReadOnly(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteConnString(dbPath, true))
	if err != nil {
		return nil, fmt.Errorf("open %s read-only: %w", dbPath, err)
	}
	return db, nil
}

// OpenReadWrite opens a SQLite database with the read-write pragmas spec
// §4.2 requires.
func OpenReadWrite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteConnString(dbPath, false))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return db, nil
}
