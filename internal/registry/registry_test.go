package registry_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/registry"
)

func openTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "master.db")
	r, err := registry.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegister_IdempotentAndMonotonicLastAccessed(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	require.NoError(t, r.Register(ctx, "abc12345", "/work/a", t1))
	require.NoError(t, r.Register(ctx, "abc12345", "/work/a", t2))
	require.NoError(t, r.Register(ctx, "abc12345", "/work/a", t3))

	all, err := r.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "abc12345", all[0].ID)
	require.WithinDuration(t, t3, all[0].LastAccessed, time.Second)
	require.WithinDuration(t, t1, all[0].CreatedAt, time.Second)
}

func TestSetFriendlyName_AutoRegisters(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t)

	require.NoError(t, r.SetFriendlyName(ctx, "deadbeef", "/work/b", "my-project", time.Now().UTC()))

	w, err := r.GetWorkspace(ctx, "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, w.FriendlyName)
	require.Equal(t, "my-project", *w.FriendlyName)
}

func TestGetUsageStats_AggregatesByToolAndDay(t *testing.T) {
	ctx := context.Background()
	r := openTestRegistry(t)
	require.NoError(t, r.Register(ctx, "wsid0001", "/work/c", time.Now().UTC()))

	now := time.Now().UTC()
	require.NoError(t, r.RecordUsage(ctx, "create_task", "wsid0001", now, true))
	require.NoError(t, r.RecordUsage(ctx, "create_task", "wsid0001", now, false))
	require.NoError(t, r.RecordUsage(ctx, "list_tasks", "wsid0001", now, true))

	stats, err := r.GetUsageStats(ctx, 30, "")
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalCalls)
	require.Len(t, stats.ByTool, 2)

	filtered, err := r.GetUsageStats(ctx, 30, "create_task")
	require.NoError(t, err)
	require.Equal(t, 2, filtered.TotalCalls)
	require.Len(t, filtered.ByTool, 1)
	require.Equal(t, "create_task", filtered.ByTool[0].ToolName)
	require.InDelta(t, 0.5, filtered.ByTool[0].SuccessRate, 0.001)
}
