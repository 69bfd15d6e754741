package engine

import (
	"context"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

// TaskNode is one node of a get_task_tree expansion (spec §4.4): the task
// plus its live, non-deleted children, recursively.
type TaskNode struct {
	Task     *types.Task
	Children []*TaskNode
}

// GetTaskTree returns rootID's node plus a depth-first expansion of its
// live descendants (spec §4.4: "lazy depth-first expansion of non-deleted
// descendants... no depth limit"). Expansion is iterative with an explicit
// visited set (spec §9) so a structurally anomalous parent cycle in the data
// can't hang the call.
func (e *Engine) GetTaskTree(ctx context.Context, rootID int64) (*TaskNode, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	root, err := idx.require(rootID, "root")
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[int64][]*types.Task, len(idx))
	for _, t := range idx {
		if t.ParentTaskID != nil {
			childrenOf[*t.ParentTaskID] = append(childrenOf[*t.ParentTaskID], t)
		}
	}
	for _, kids := range childrenOf {
		sortTasksByPriorityThenCreated(kids)
	}

	visited := map[int64]struct{}{rootID: {}}
	var build func(t *types.Task) *TaskNode
	build = func(t *types.Task) *TaskNode {
		node := &TaskNode{Task: t}
		for _, child := range childrenOf[t.ID] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	return build(root), nil
}

// WorkspaceStats is the get_workspace_stats rollup (SPEC_FULL supplemented
// feature #4).
type WorkspaceStats struct {
	TasksByStatus     map[types.Status]int
	TasksByPriority   map[types.Priority]int
	EntitiesByType    map[types.EntityType]int
	OpenDependencyEdges int
	TotalLiveTasks    int
	TotalLiveEntities int
}

// GetWorkspaceStats computes a cheap summary over the whole live workspace:
// task counts by status/priority, entity counts by type, and the count of
// dependency edges whose target isn't yet done (SPEC_FULL supplemented
// feature #4).
func (e *Engine) GetWorkspaceStats(ctx context.Context) (*WorkspaceStats, error) {
	taskIdx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := e.store.ListAllEntities(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "load entities for stats")
	}

	stats := &WorkspaceStats{
		TasksByStatus:   make(map[types.Status]int),
		TasksByPriority: make(map[types.Priority]int),
		EntitiesByType:  make(map[types.EntityType]int),
	}
	for _, t := range taskIdx {
		stats.TasksByStatus[t.Status]++
		stats.TasksByPriority[t.Priority]++
		stats.TotalLiveTasks++
		for _, depID := range t.DependsOn {
			dep, ok := taskIdx[depID]
			if !ok || dep.Status != types.StatusDone {
				stats.OpenDependencyEdges++
			}
		}
	}
	for _, en := range entities {
		if en.IsDeleted() {
			continue
		}
		stats.EntitiesByType[en.EntityType]++
		stats.TotalLiveEntities++
	}
	return stats, nil
}
