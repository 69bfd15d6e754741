package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kodelink/task-mcp/internal/types"
)

const entityColumns = `
	id, entity_type, name, identifier, description, metadata, tags, created_by,
	created_at, updated_at, deleted_at
`

// InsertEntity inserts e and sets e.ID.
func (s *Store) InsertEntity(ctx context.Context, e *types.Entity) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (
			entity_type, name, identifier, description, metadata, tags, created_by,
			created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(e.EntityType), e.Name, nullString(e.Identifier), e.Description, e.Metadata,
		types.TagString(e.Tags), e.CreatedBy, formatTime(e.CreatedAt), formatTime(e.UpdatedAt), formatTimePtr(e.DeletedAt),
	)
	if err != nil {
		return wrapDBError("insert entity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("insert entity: last insert id", err)
	}
	e.ID = id
	return nil
}

// UpdateEntity overwrites every mutable column of the entity with id e.ID.
func (s *Store) UpdateEntity(ctx context.Context, e *types.Entity) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE entities SET
			entity_type = ?, name = ?, identifier = ?, description = ?, metadata = ?,
			tags = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?
	`,
		string(e.EntityType), e.Name, nullString(e.Identifier), e.Description, e.Metadata,
		types.TagString(e.Tags), formatTime(e.UpdatedAt), formatTimePtr(e.DeletedAt), e.ID,
	)
	return wrapDBError("update entity", err)
}

// GetEntity loads an entity by id regardless of soft-delete state (spec
// §4.5: get_entity returns the row "or NotFound (including soft-deleted)" —
// i.e. a soft-deleted entity is still readable by id, unlike list/search).
func (s *Store) GetEntity(ctx context.Context, id int64) (*types.Entity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	return scanEntity(row)
}

// ListAllEntities returns every entity row (including soft-deleted).
func (s *Store) ListAllEntities(ctx context.Context) ([]*types.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entityColumns+` FROM entities ORDER BY id`)
	if err != nil {
		return nil, wrapDBError("list entities", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Entity
	for rows.Next() {
		e, err := scanEntityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, wrapDBError("iterate entities", rows.Err())
}

func scanEntity(row *sql.Row) (*types.Entity, error)      { return scanEntityGeneric(row) }
func scanEntityRows(rows *sql.Rows) (*types.Entity, error) { return scanEntityGeneric(rows) }

func scanEntityGeneric(sc rowScanner) (*types.Entity, error) {
	var (
		e                             types.Entity
		entityType, tagString         string
		identifier, description, meta sql.NullString
		createdAt, updatedAt          string
		deletedAt                     sql.NullString
	)
	err := sc.Scan(
		&e.ID, &entityType, &e.Name, &identifier, &description, &meta, &tagString, &e.CreatedBy,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, wrapDBError("scan entity", err)
	}
	e.EntityType = types.EntityType(entityType)
	if identifier.Valid {
		v := identifier.String
		e.Identifier = &v
	}
	e.Description = description.String
	e.Metadata = meta.String
	e.Tags = types.SplitTagString(tagString)
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		ts, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		e.DeletedAt = &ts
	}
	return &e, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// SoftDeleteEntityCascade marks entityID deleted at now and soft-deletes
// every live link referencing it, in one transaction (spec §4.5
// delete_entity: "always cascades... no cascade flag"). It returns the
// number of links it soft-deleted.
func (s *Store) SoftDeleteEntityCascade(ctx context.Context, entityID int64, now time.Time) (int, error) {
	var deletedLinks int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ts := formatTime(now)
		if _, err := tx.ExecContext(ctx, `
			UPDATE entities SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
		`, ts, entityID); err != nil {
			return wrapDBError("soft delete entity", err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE task_entity_links SET deleted_at = ?
			WHERE entity_id = ? AND deleted_at IS NULL
		`, ts, entityID)
		if err != nil {
			return wrapDBError("cascade soft delete links for entity", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDBError("cascade soft delete links for entity: rows affected", err)
		}
		deletedLinks = int(n)
		return nil
	})
	return deletedLinks, err
}

// EntityConflictExists reports whether a non-deleted entity with the given
// (entity_type, identifier) already exists, excluding excludeID (used by
// UpdateEntity's identifier-change re-check, spec §4.5). A nil identifier
// never collides.
func (s *Store) EntityConflictExists(ctx context.Context, entityType types.EntityType, identifier *string, excludeID int64) (bool, error) {
	if identifier == nil {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0 FROM entities
		WHERE entity_type = ? AND identifier = ? AND deleted_at IS NULL AND id != ?
	`, string(entityType), *identifier, excludeID).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check entity conflict", err)
	}
	return exists, nil
}
