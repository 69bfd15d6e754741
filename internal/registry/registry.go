package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/storage"
	"github.com/kodelink/task-mcp/internal/types"
)

// Registry wraps the master DB (spec §4.3).
type Registry struct {
	db *sql.DB
}

// Open opens (creating if necessary) the master database at path, applying
// the base schema. Like a workspace store, it keeps a single connection: the
// master DB is small and write-light (spec §5, "contention is low because
// writes are small"), so one *sql.DB with MaxOpenConns(1) avoids SQLITE_BUSY
// noise between concurrent registrations without any extra locking.
func Open(ctx context.Context, path string) (*Registry, error) {
	db, err := storage.OpenReadWrite(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping master db %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, baseSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create master schema %s: %w", path, err)
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying connection.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Register is the idempotent upsert spec §4.3 requires: insert the workspace
// row if unseen, otherwise bump last_accessed. Every core entry point calls
// this before touching the workspace store (spec §2 data-flow).
func (r *Registry) Register(ctx context.Context, id, absPath string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, workspace_path, friendly_name, created_at, last_accessed)
		VALUES (?, ?, NULL, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_accessed = excluded.last_accessed
	`, id, absPath, formatTime(now), formatTime(now))
	if err != nil {
		return errs.Wrap(errs.Internal, err, "register workspace %s", id)
	}
	return nil
}

// SetFriendlyName sets (or clears, if name is "") the human-readable label
// for a workspace, auto-registering it first if unseen (spec §4.3).
func (r *Registry) SetFriendlyName(ctx context.Context, id, absPath, name string, now time.Time) error {
	if err := r.Register(ctx, id, absPath, now); err != nil {
		return err
	}
	var arg any
	if name != "" {
		arg = name
	}
	_, err := r.db.ExecContext(ctx, `UPDATE workspaces SET friendly_name = ? WHERE id = ?`, arg, id)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "set friendly name for workspace %s", id)
	}
	return nil
}

// GetWorkspace returns a single registry row, or NotFound.
func (r *Registry) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_path, friendly_name, created_at, last_accessed
		FROM workspaces WHERE id = ?
	`, id)
	return scanWorkspace(row)
}

// ListWorkspaces returns every known workspace, most recently accessed
// first (spec SUPPLEMENTED FEATURES #5).
func (r *Registry) ListWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_path, friendly_name, created_at, last_accessed
		FROM workspaces ORDER BY last_accessed DESC
	`)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list workspaces")
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "iterate workspaces")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(sc rowScanner) (*types.Workspace, error) {
	var (
		w                      types.Workspace
		friendlyName           sql.NullString
		createdAt, lastAccess  string
	)
	err := sc.Scan(&w.ID, &w.WorkspacePath, &friendlyName, &createdAt, &lastAccess)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.New(errs.NotFound, "workspace not found")
		}
		return nil, errs.Wrap(errs.Internal, err, "scan workspace row")
	}
	if friendlyName.Valid {
		v := friendlyName.String
		w.FriendlyName = &v
	}
	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "parse workspace created_at")
	}
	w.LastAccessed, err = parseTime(lastAccess)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "parse workspace last_accessed")
	}
	return &w, nil
}

// formatTime writes fixed-width UTC timestamps (always nine fractional
// digits), so ORDER BY last_accessed and the timestamp window filters in
// usage.go follow time order.
func formatTime(t time.Time) string { return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00") }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
