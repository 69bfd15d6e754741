package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

func ptrStatus(s types.Status) *types.Status { return &s }

// TestDependencyGate mirrors scenario S1: a task can't enter in_progress
// while its dependency isn't done, and can once the dependency completes.
func TestDependencyGate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	a, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "A", WorkspacePath: "/ws"})
	require.NoError(t, err)
	b, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "B", DependsOn: []int64{a.ID}, WorkspacePath: "/ws"})
	require.NoError(t, err)

	_, err = e.UpdateTask(ctx, b.ID, engine.TaskPatch{Status: ptrStatus(types.StatusInProgress)})
	require.Error(t, err)
	assert.Equal(t, errs.DependencyNotSat, errs.KindOf(err))

	doneA, err := e.UpdateTask(ctx, a.ID, engine.TaskPatch{Status: ptrStatus(types.StatusDone)})
	require.NoError(t, err)
	require.NotNil(t, doneA.CompletedAt)

	updatedB, err := e.UpdateTask(ctx, b.ID, engine.TaskPatch{Status: ptrStatus(types.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, updatedB.Status)
}

// TestBlockerReasonEnforcement mirrors scenario S2.
func TestBlockerReasonEnforcement(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	task, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "T", WorkspacePath: "/ws"})
	require.NoError(t, err)

	_, err = e.UpdateTask(ctx, task.ID, engine.TaskPatch{Status: ptrStatus(types.StatusBlocked)})
	require.Error(t, err)
	assert.Equal(t, errs.BlockerReasonMissing, errs.KindOf(err))

	reason := "waiting for X"
	blocked, err := e.UpdateTask(ctx, task.ID, engine.TaskPatch{
		Status:        ptrStatus(types.StatusBlocked),
		BlockerReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, reason, blocked.BlockerReason)

	reopened, err := e.UpdateTask(ctx, task.ID, engine.TaskPatch{Status: ptrStatus(types.StatusTodo)})
	require.NoError(t, err)
	assert.Empty(t, reopened.BlockerReason)
}

// TestSoftDeleteAndCleanup mirrors scenario S3.
func TestSoftDeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	p, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "P", WorkspacePath: "/ws"})
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, engine.CreateTaskInput{Title: "C", ParentTaskID: &p.ID, WorkspacePath: "/ws"})
	require.NoError(t, err)

	result, err := e.DeleteTask(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Len(t, result.DeletedTaskIDs, 2)

	listed, err := e.ListTasks(ctx, engine.TaskFilters{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	purged, err := e.CleanupDeletedTasks(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	listedAfterPurge, err := e.ListTasks(ctx, engine.TaskFilters{})
	require.NoError(t, err)
	assert.Empty(t, listedAfterPurge)
}

func TestCreateTask_TitleRequired(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.CreateTask(ctx, engine.CreateTaskInput{WorkspacePath: "/ws"})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
}

func TestUpdateTask_ParentCycleRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	a, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "A", WorkspacePath: "/ws"})
	require.NoError(t, err)
	b, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "B", ParentTaskID: &a.ID, WorkspacePath: "/ws"})
	require.NoError(t, err)

	newParent := b.ID
	_, err = e.UpdateTask(ctx, a.ID, engine.TaskPatch{ParentTaskID: &newParent})
	require.Error(t, err)
	assert.Equal(t, errs.Cycle, errs.KindOf(err))
}

func TestUpdateTask_DependencyCycleRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	a, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "A", WorkspacePath: "/ws"})
	require.NoError(t, err)
	b, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "B", DependsOn: []int64{a.ID}, WorkspacePath: "/ws"})
	require.NoError(t, err)

	newDeps := []int64{b.ID}
	_, err = e.UpdateTask(ctx, a.ID, engine.TaskPatch{DependsOn: &newDeps})
	require.Error(t, err)
	assert.Equal(t, errs.Cycle, errs.KindOf(err))
}

func TestGetDependents(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	a, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "A", WorkspacePath: "/ws"})
	require.NoError(t, err)
	b, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "B", DependsOn: []int64{a.ID}, WorkspacePath: "/ws"})
	require.NoError(t, err)

	deps, err := e.GetDependents(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, b.ID, deps[0].ID)
}

func TestGetNextTasks_OnlyReadyTodoTasks(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	a, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "A", WorkspacePath: "/ws"})
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, engine.CreateTaskInput{Title: "B", DependsOn: []int64{a.ID}, WorkspacePath: "/ws"})
	require.NoError(t, err)

	next, err := e.GetNextTasks(ctx)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, a.ID, next[0].ID)
}
