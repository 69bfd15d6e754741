package sqlite

import (
	"database/sql"
	"fmt"
)

// migrateWorkspaceMetadataColumn adds the workspace_metadata column to tasks
// if it's missing (spec §4.2): "Column additions for the workspace_metadata
// field use a forward-only migration: if the column is missing, add it
// (nullable). Legacy rows thus have null metadata and are tolerated."
//
// Grounded on the teacher's internal/storage/sqlite/migrations package,
// which checks pragma_table_info before every ALTER TABLE ADD COLUMN so
// repeated opens of an already-migrated database are no-ops.
func migrateWorkspaceMetadataColumn(db *sql.DB) error {
	return addColumnIfMissing(db, "tasks", "workspace_metadata", "TEXT")
}

func addColumnIfMissing(db *sql.DB, table, column, definition string) error {
	var exists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0 FROM pragma_table_info(?) WHERE name = ?
	`, table, column).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// runMigrations applies every forward-only migration. New migrations are
// appended here, never rewritten, so a database created by any prior build
// upgrades in place.
func runMigrations(db *sql.DB) error {
	if err := migrateWorkspaceMetadataColumn(db); err != nil {
		return err
	}
	return nil
}
