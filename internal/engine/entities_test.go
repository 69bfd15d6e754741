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

// TestEntityUniquenessAndCascade mirrors scenario S4.
func TestEntityUniquenessAndCascade(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	ident := "/x/a.py"
	en, err := e.CreateEntity(ctx, engine.CreateEntityInput{
		EntityType: types.EntityTypeFile, Name: "a", Identifier: &ident,
	})
	require.NoError(t, err)

	_, err = e.CreateEntity(ctx, engine.CreateEntityInput{
		EntityType: types.EntityTypeFile, Name: "a", Identifier: &ident,
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	task, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "T", WorkspacePath: "/ws"})
	require.NoError(t, err)

	_, err = e.LinkEntityToTask(ctx, task.ID, en.ID, "tester")
	require.NoError(t, err)

	_, err = e.LinkEntityToTask(ctx, task.ID, en.ID, "tester")
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	delResult, err := e.DeleteEntity(ctx, en.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, delResult.DeletedLinks)

	again, err := e.CreateEntity(ctx, engine.CreateEntityInput{
		EntityType: types.EntityTypeFile, Name: "a", Identifier: &ident,
	})
	require.NoError(t, err)
	assert.NotEqual(t, en.ID, again.ID)
}

func TestCreateEntity_InvalidType(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.CreateEntity(ctx, engine.CreateEntityInput{EntityType: "bogus", Name: "x"})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
}

func TestGetTaskEntities_OrderedNewestLinkFirst(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	task, err := e.CreateTask(ctx, engine.CreateTaskInput{Title: "T", WorkspacePath: "/ws"})
	require.NoError(t, err)

	id1, id2 := "/a", "/b"
	e1, err := e.CreateEntity(ctx, engine.CreateEntityInput{EntityType: types.EntityTypeFile, Name: "one", Identifier: &id1})
	require.NoError(t, err)
	e2, err := e.CreateEntity(ctx, engine.CreateEntityInput{EntityType: types.EntityTypeFile, Name: "two", Identifier: &id2})
	require.NoError(t, err)

	_, err = e.LinkEntityToTask(ctx, task.ID, e1.ID, "")
	require.NoError(t, err)
	_, err = e.LinkEntityToTask(ctx, task.ID, e2.ID, "")
	require.NoError(t, err)

	views, err := e.GetTaskEntities(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, e2.ID, views[0].Entity.ID)
	assert.Equal(t, e1.ID, views[1].Entity.ID)
}
