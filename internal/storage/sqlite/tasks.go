package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kodelink/task-mcp/internal/types"
)

const taskColumns = `
	id, title, description, status, priority, parent_task_id, depends_on, tags,
	blocker_reason, file_references, created_by, created_at, updated_at,
	completed_at, deleted_at, workspace_metadata
`

// TaskRow is the raw, un-filtered row shape this package deals in. The
// engine layer decides what soft-delete filtering and projection means;
// this package just moves bytes in and out of SQLite.
type TaskRow = types.Task

// InsertTask inserts t and sets t.ID to the assigned row id.
func (s *Store) InsertTask(ctx context.Context, t *types.Task) error {
	depends, err := json.Marshal(nonNilInt64s(t.DependsOn))
	if err != nil {
		return err
	}
	refs, err := json.Marshal(nonNilStrings(t.FileReferences))
	if err != nil {
		return err
	}
	meta, err := marshalWorkspaceMetadata(t.WorkspaceMetadata)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			title, description, status, priority, parent_task_id, depends_on, tags,
			blocker_reason, file_references, created_by, created_at, updated_at,
			completed_at, deleted_at, workspace_metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullInt64(t.ParentTaskID),
		string(depends), types.TagString(t.Tags), t.BlockerReason, string(refs), t.CreatedBy,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt), formatTimePtr(t.DeletedAt),
		meta,
	)
	if err != nil {
		return wrapDBError("insert task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("insert task: last insert id", err)
	}
	t.ID = id
	return nil
}

// UpdateTask overwrites every mutable column of the task with id t.ID from
// t's current field values. workspace_metadata is never part of this call —
// it's immutable after creation (spec §3).
func (s *Store) UpdateTask(ctx context.Context, t *types.Task) error {
	depends, err := json.Marshal(nonNilInt64s(t.DependsOn))
	if err != nil {
		return err
	}
	refs, err := json.Marshal(nonNilStrings(t.FileReferences))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, status = ?, priority = ?, parent_task_id = ?,
			depends_on = ?, tags = ?, blocker_reason = ?, file_references = ?,
			updated_at = ?, completed_at = ?, deleted_at = ?
		WHERE id = ?
	`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullInt64(t.ParentTaskID),
		string(depends), types.TagString(t.Tags), t.BlockerReason, string(refs),
		formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt), formatTimePtr(t.DeletedAt),
		t.ID,
	)
	return wrapDBError("update task", err)
}

// GetTask loads a task by id regardless of soft-delete state; the engine
// decides whether a deleted row should be treated as NotFound for a given
// operation.
func (s *Store) GetTask(ctx context.Context, id int64) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListAllTasks returns every task row (including soft-deleted) for
// engine-side filtering; workspace DBs are small per-developer stores, so a
// single scan plus in-memory filtering is simpler and plenty fast, matching
// the scale this spec targets (one developer's tasks, not a shared
// multi-thousand-row tracker).
func (s *Store) ListAllTasks(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, wrapDBError("iterate tasks", rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row *sql.Row) (*types.Task, error) {
	return scanTaskGeneric(row)
}

func scanTaskRows(rows *sql.Rows) (*types.Task, error) {
	return scanTaskGeneric(rows)
}

func scanTaskGeneric(sc rowScanner) (*types.Task, error) {
	var (
		t                                     types.Task
		status, priority, tagString           string
		parentTaskID                          sql.NullInt64
		dependsOnJSON, fileReferencesJSON      string
		createdAt, updatedAt                   string
		completedAt, deletedAt, workspaceMeta  sql.NullString
	)
	err := sc.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &parentTaskID,
		&dependsOnJSON, &tagString, &t.BlockerReason, &fileReferencesJSON, &t.CreatedBy,
		&createdAt, &updatedAt, &completedAt, &deletedAt, &workspaceMeta,
	)
	if err != nil {
		return nil, wrapDBError("scan task", err)
	}

	t.Status = types.Status(status)
	t.Priority = types.Priority(priority)
	t.Tags = types.SplitTagString(tagString)
	if parentTaskID.Valid {
		v := parentTaskID.Int64
		t.ParentTaskID = &v
	}
	var depends []int64
	if err := json.Unmarshal([]byte(dependsOnJSON), &depends); err != nil {
		return nil, err
	}
	t.DependsOn = depends

	var refs []string
	if err := json.Unmarshal([]byte(fileReferencesJSON), &refs); err != nil {
		return nil, err
	}
	t.FileReferences = refs

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		t.CompletedAt = &ts
	}
	if deletedAt.Valid {
		ts, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		t.DeletedAt = &ts
	}
	if workspaceMeta.Valid && workspaceMeta.String != "" {
		var meta types.WorkspaceMetadata
		if err := json.Unmarshal([]byte(workspaceMeta.String), &meta); err != nil {
			return nil, err
		}
		t.WorkspaceMetadata = &meta
	}
	return &t, nil
}

func marshalWorkspaceMetadata(m *types.WorkspaceMetadata) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nonNilInt64s(s []int64) []int64 {
	if s == nil {
		return []int64{}
	}
	return s
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatTime writes fixed-width UTC timestamps (always nine fractional
// digits), so SQL string comparisons and ORDER BY on these columns follow
// time order. parseTime's RFC3339Nano layout reads them back unchanged.
func formatTime(t time.Time) string { return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00") }

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
