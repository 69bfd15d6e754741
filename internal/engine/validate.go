package engine

import (
	"context"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

// validateDescription enforces the shared ≤10,000 char ceiling (spec §3) for
// both tasks and entities.
func validateDescription(desc string) error {
	if len(desc) > types.MaxDescriptionLen {
		return errs.New(errs.InvalidInput, "description exceeds %d characters", types.MaxDescriptionLen)
	}
	return nil
}

// taskIndex is a snapshot of every non-deleted task in the workspace, keyed
// by id, used for existence checks, dependency-gate evaluation, and cycle
// detection within one validation pass. Loading the whole (small) workspace
// once per mutating operation is simpler than per-id point queries and
// matches sqlite.Store.ListAllTasks's own rationale.
type taskIndex map[int64]*types.Task

func (e *Engine) loadLiveTaskIndex(ctx context.Context) (taskIndex, error) {
	all, err := e.store.ListAllTasks(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "load tasks")
	}
	idx := make(taskIndex, len(all))
	for _, t := range all {
		if t.IsDeleted() {
			continue
		}
		idx[t.ID] = t
	}
	return idx, nil
}

// require returns the non-deleted task for id, or NotFound.
func (idx taskIndex) require(id int64, role string) (*types.Task, error) {
	t, ok := idx[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "%s task %d does not exist or is deleted", role, id)
	}
	return t, nil
}

// validateDependsOn checks every id in depends exists, is non-deleted, and
// is not selfID itself (spec §3 invariant).
func validateDependsOn(idx taskIndex, selfID int64, depends []int64) error {
	for _, depID := range depends {
		if depID == selfID {
			return errs.New(errs.InvalidInput, "a task cannot depend on itself")
		}
		if _, err := idx.require(depID, "dependency"); err != nil {
			return err
		}
	}
	return nil
}

// checkDependencyGate enforces spec §4.4: entering in_progress or done
// requires every depends_on task to already be status=done.
func checkDependencyGate(idx taskIndex, status types.Status, depends []int64) error {
	if status != types.StatusInProgress && status != types.StatusDone {
		return nil
	}
	for _, depID := range depends {
		dep, ok := idx[depID]
		if !ok || dep.Status != types.StatusDone {
			return errs.New(errs.DependencyNotSat, "dependency %d is not done", depID)
		}
	}
	return nil
}

// checkParentCycle walks the parent chain starting at newParentID, failing
// with Cycle if it ever encounters selfID (spec §4.4: "must not create a
// cycle (walk ancestors)"). Iterative with an explicit visited set (spec §9,
// Tree expansion note) so a pre-existing corrupt parent loop in the data
// can't hang this check.
func checkParentCycle(idx taskIndex, selfID, newParentID int64) error {
	visited := map[int64]struct{}{}
	cur := newParentID
	for {
		if cur == selfID {
			return errs.New(errs.Cycle, "setting parent to %d would create a parent cycle", newParentID)
		}
		if _, seen := visited[cur]; seen {
			// Pre-existing anomaly in the data, not something this change
			// caused; stop rather than loop forever.
			return nil
		}
		visited[cur] = struct{}{}
		parent, ok := idx[cur]
		if !ok || parent.ParentTaskID == nil {
			return nil
		}
		cur = *parent.ParentTaskID
	}
}

// checkDependencyCycle walks the depends_on graph transitively from every id
// in newDepends, failing with Cycle if any path leads back to selfID (spec
// §4.4: "no cycles in the dependency DAG (walk transitively)").
func checkDependencyCycle(idx taskIndex, selfID int64, newDepends []int64) error {
	visited := map[int64]struct{}{}
	var walk func(id int64) error
	walk = func(id int64) error {
		if id == selfID {
			return errs.New(errs.Cycle, "dependency on %d would create a dependency cycle", id)
		}
		if _, seen := visited[id]; seen {
			return nil
		}
		visited[id] = struct{}{}
		t, ok := idx[id]
		if !ok {
			return nil
		}
		for _, next := range t.DependsOn {
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}
	for _, depID := range newDepends {
		if err := walk(depID); err != nil {
			return err
		}
	}
	return nil
}

// dependentsOf returns the ids of every live task that names taskID in its
// own depends_on — the reverse edge of the dependency graph (SPEC_FULL
// supplemented feature #1, get_dependents).
func dependentsOf(idx taskIndex, taskID int64) []int64 {
	var out []int64
	for _, t := range idx {
		for _, dep := range t.DependsOn {
			if dep == taskID {
				out = append(out, t.ID)
				break
			}
		}
	}
	return out
}

// mustValidEntityType is a small guard shared by create/update entity.
func mustValidEntityType(et types.EntityType) error {
	if !et.IsValid() {
		return errs.New(errs.InvalidInput, "invalid entity_type %q", string(et))
	}
	return nil
}
