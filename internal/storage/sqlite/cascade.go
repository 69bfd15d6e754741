package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// SoftDeleteTaskCascade marks rootID deleted at now, and (when cascade is
// true) every live descendant reachable by following parent_task_id,
// soft-deleting every live task_entity_link owned by each affected task in
// the same transaction (spec §4.4 delete_task; §5 "multi-step operations ...
// occur in one transaction"). It returns the ids actually marked deleted
// (already-deleted rows in the subtree are left untouched).
func (s *Store) SoftDeleteTaskCascade(ctx context.Context, rootID int64, cascade bool, now time.Time) ([]int64, error) {
	var affected []int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		targets := []int64{rootID}
		if cascade {
			descendants, err := liveDescendants(ctx, tx, rootID)
			if err != nil {
				return err
			}
			targets = append(targets, descendants...)
		}

		ts := formatTime(now)
		for _, id := range targets {
			res, err := tx.ExecContext(ctx, `
				UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
			`, ts, id)
			if err != nil {
				return wrapDBError("cascade soft delete task", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return wrapDBError("cascade soft delete task: rows affected", err)
			}
			if n > 0 {
				affected = append(affected, id)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE task_entity_links SET deleted_at = ?
				WHERE task_id = ? AND deleted_at IS NULL
			`, ts, id); err != nil {
				return wrapDBError("cascade soft delete links", err)
			}
		}
		return nil
	})
	return affected, err
}

// liveDescendants returns every non-deleted task id reachable from rootID by
// following parent_task_id, via iterative breadth-first expansion with an
// explicit visited set (spec §9, "Tree expansion": prefer iterative
// expansion over unbounded recursion, to tolerate a structurally anomalous
// parent cycle rather than looping forever).
func liveDescendants(ctx context.Context, tx *sql.Tx, rootID int64) ([]int64, error) {
	visited := map[int64]struct{}{rootID: {}}
	var out []int64
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var next []int64
		for _, parent := range frontier {
			rows, err := tx.QueryContext(ctx, `
				SELECT id FROM tasks WHERE parent_task_id = ? AND deleted_at IS NULL
			`, parent)
			if err != nil {
				return nil, wrapDBError("query descendants", err)
			}
			var children []int64
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					_ = rows.Close()
					return nil, wrapDBError("scan descendant id", err)
				}
				children = append(children, id)
			}
			closeErr := rows.Close()
			if err := rows.Err(); err != nil {
				return nil, wrapDBError("iterate descendants", err)
			}
			if closeErr != nil {
				return nil, wrapDBError("close descendant rows", closeErr)
			}
			for _, c := range children {
				if _, seen := visited[c]; seen {
					continue
				}
				visited[c] = struct{}{}
				out = append(out, c)
				next = append(next, c)
			}
		}
		frontier = next
	}
	return out, nil
}

// PurgeDeletedTasks permanently removes task rows whose deleted_at predates
// cutoff, along with any task_entity_links referencing them, and nulls out
// parent_task_id on any surviving task that pointed at a purged row so the
// tasks table never carries a dangling foreign key (spec §4.4
// cleanup_deleted_tasks; §3's "parent resolves as missing" semantics extend
// naturally to a physically-removed parent). Returns the number of task rows
// purged.
func (s *Store) PurgeDeletedTasks(ctx context.Context, cutoff time.Time) (int, error) {
	var purged int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM tasks WHERE deleted_at IS NOT NULL AND deleted_at < ?
		`, formatTime(cutoff))
		if err != nil {
			return wrapDBError("select purge candidates", err)
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return wrapDBError("scan purge candidate", err)
			}
			ids = append(ids, id)
		}
		closeErr := rows.Close()
		if err := rows.Err(); err != nil {
			return wrapDBError("iterate purge candidates", err)
		}
		if closeErr != nil {
			return wrapDBError("close purge candidate rows", closeErr)
		}
		if len(ids) == 0 {
			return nil
		}

		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET parent_task_id = NULL WHERE parent_task_id = ?`, id); err != nil {
				return wrapDBError("clear dangling parent references", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM task_entity_links WHERE task_id = ?`, id); err != nil {
				return wrapDBError("purge task links", err)
			}
			res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
			if err != nil {
				return wrapDBError("purge task", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return wrapDBError("purge task: rows affected", err)
			}
			purged += int(n)
		}
		return nil
	})
	return purged, err
}
