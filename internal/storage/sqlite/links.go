package sqlite

import (
	"context"
	"database/sql"

	"github.com/kodelink/task-mcp/internal/types"
)

const linkColumns = `
	id, task_id, entity_id, created_by, created_at, deleted_at
`

// InsertLink inserts l and sets l.ID. Callers check LinkExists first: the
// engine reports an already-linked, non-deleted pair as a Conflict, and the
// partial unique index on (task_id, entity_id) rejects a duplicate insert.
func (s *Store) InsertLink(ctx context.Context, l *types.TaskEntityLink) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO task_entity_links (task_id, entity_id, created_by, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.TaskID, l.EntityID, l.CreatedBy, formatTime(l.CreatedAt), formatTimePtr(l.DeletedAt))
	if err != nil {
		return wrapDBError("insert link", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("insert link: last insert id", err)
	}
	l.ID = id
	return nil
}

// SoftDeleteLink marks the non-deleted link between taskID and entityID as
// deleted at deletedAt. A no-op (not an error) if no such link exists.
func (s *Store) SoftDeleteLink(ctx context.Context, taskID, entityID int64, deletedAt string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_entity_links SET deleted_at = ?
		WHERE task_id = ? AND entity_id = ? AND deleted_at IS NULL
	`, deletedAt, taskID, entityID)
	return wrapDBError("soft delete link", err)
}

// SoftDeleteLinksForTask marks every non-deleted link for taskID as deleted,
// used by the engine's cascade delete (spec §4.4).
func (s *Store) SoftDeleteLinksForTask(ctx context.Context, taskID int64, deletedAt string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_entity_links SET deleted_at = ?
		WHERE task_id = ? AND deleted_at IS NULL
	`, deletedAt, taskID)
	return wrapDBError("soft delete links for task", err)
}

// SoftDeleteLinksForEntity marks every non-deleted link for entityID as
// deleted, used by the engine's entity cascade delete (spec §4.6).
func (s *Store) SoftDeleteLinksForEntity(ctx context.Context, entityID int64, deletedAt string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_entity_links SET deleted_at = ?
		WHERE entity_id = ? AND deleted_at IS NULL
	`, deletedAt, entityID)
	return wrapDBError("soft delete links for entity", err)
}

// LinkExists reports whether a non-deleted link between taskID and entityID
// already exists.
func (s *Store) LinkExists(ctx context.Context, taskID, entityID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0 FROM task_entity_links
		WHERE task_id = ? AND entity_id = ? AND deleted_at IS NULL
	`, taskID, entityID).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check link exists", err)
	}
	return exists, nil
}

// ListLinksForTask returns every non-deleted link for taskID, newest link
// first (spec §4.5 get_task_entities: "Ordered by link creation desc").
func (s *Store) ListLinksForTask(ctx context.Context, taskID int64) ([]*types.TaskEntityLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+linkColumns+` FROM task_entity_links
		WHERE task_id = ? AND deleted_at IS NULL ORDER BY created_at DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("list links for task", err)
	}
	defer func() { _ = rows.Close() }()
	return scanLinkRows(rows)
}

// ListLinksForEntity returns every non-deleted link for entityID, newest
// link first (spec §4.5 get_entity_tasks: "same pattern" as
// get_task_entities).
func (s *Store) ListLinksForEntity(ctx context.Context, entityID int64) ([]*types.TaskEntityLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+linkColumns+` FROM task_entity_links
		WHERE entity_id = ? AND deleted_at IS NULL ORDER BY created_at DESC, id DESC
	`, entityID)
	if err != nil {
		return nil, wrapDBError("list links for entity", err)
	}
	defer func() { _ = rows.Close() }()
	return scanLinkRows(rows)
}

func scanLinkRows(rows *sql.Rows) ([]*types.TaskEntityLink, error) {
	var out []*types.TaskEntityLink
	for rows.Next() {
		var (
			l                    types.TaskEntityLink
			createdAt            string
			deletedAt            sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TaskID, &l.EntityID, &l.CreatedBy, &createdAt, &deletedAt); err != nil {
			return nil, wrapDBError("scan link", err)
		}
		var err error
		l.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			ts, err := parseTime(deletedAt.String)
			if err != nil {
				return nil, err
			}
			l.DeletedAt = &ts
		}
		out = append(out, &l)
	}
	return out, wrapDBError("iterate links", rows.Err())
}
