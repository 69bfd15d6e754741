package engine

import (
	"sort"

	"github.com/kodelink/task-mcp/internal/types"
)

// sortTasksByPriorityThenCreated orders by priority desc, then created_at
// asc, stably (spec §4.4: "Deterministic for tests").
func sortTasksByPriorityThenCreated(tasks []*types.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority.Rank() != tasks[j].Priority.Rank() {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// sortTasksNewestFirst orders by created_at desc, stably (spec §4.4
// get_blocked_tasks: "newest first").
func sortTasksNewestFirst(tasks []*types.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// sortEntitiesNewestFirst orders by created_at desc, stably (spec §4.5
// list_entities: "orders by created_at desc").
func sortEntitiesNewestFirst(entities []*types.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].CreatedAt.After(entities[j].CreatedAt)
	})
}
