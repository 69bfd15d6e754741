package core_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/config"
	"github.com/kodelink/task-mcp/internal/core"
	"github.com/kodelink/task-mcp/internal/errs"
)

func newTestCore(t *testing.T) *core.Core {
	t.Helper()
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.DataRoot = t.TempDir()
	c, err := core.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestPagination_ConcatenationAcrossCore mirrors scenario S5: pages fetched
// across the whole result set concatenate back to the unpaginated listing.
func TestPagination_ConcatenationAcrossCore(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)
	ws := filepath.Join(t.TempDir(), "project")

	const n = 250
	for i := 0; i < n; i++ {
		_, err := c.CreateTask(ctx, core.CreateTaskArgs{
			WorkspacePath: ws, Title: fmt.Sprintf("task-%03d", i),
		})
		require.NoError(t, err)
	}

	var seen []string
	offset := 0
	for {
		page, err := c.ListTasks(ctx, ws, core.TaskFilterArgs{}, core.ListParams{Limit: 50, Offset: offset})
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			seen = append(seen, item.Title)
		}
		assert.Equal(t, n, page.TotalCount)
		offset += 50
	}
	assert.Len(t, seen, n)
}

// TestResponseSizeExceeded_OnLargeDetailsListing mirrors scenario S5's size
// budget half: a details-mode listing of enough large tasks exceeds the
// configured ceiling and returns ResponseSizeExceeded rather than a huge
// payload.
func TestResponseSizeExceeded_OnLargeDetailsListing(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.DataRoot = t.TempDir()
	cfg.MaxResponseTokens = 500
	cfg.WarnResponseTokens = 300
	c, err := core.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ws := filepath.Join(t.TempDir(), "project")
	bigDescription := strings.Repeat("x", 2000)
	for i := 0; i < 20; i++ {
		_, err := c.CreateTask(ctx, core.CreateTaskArgs{
			WorkspacePath: ws, Title: fmt.Sprintf("task-%d", i), Description: bigDescription,
		})
		require.NoError(t, err)
	}

	_, err = c.ListTasks(ctx, ws, core.TaskFilterArgs{}, core.ListParams{Mode: "details", Limit: 20})
	require.Error(t, err)
	assert.Equal(t, errs.ResponseSizeExceeded, errs.KindOf(err))
}

// TestCrossWorkspaceIsolationAndAudit mirrors scenario S6: two distinct
// workspace paths never see each other's tasks, and an audit on one flags a
// task whose file_references/tags point at the other.
func TestCrossWorkspaceIsolationAndAudit(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)

	wsA := filepath.Join(t.TempDir(), "alpha-project")
	wsB := filepath.Join(t.TempDir(), "beta-project")

	_, err := c.CreateTask(ctx, core.CreateTaskArgs{WorkspacePath: wsA, Title: "alpha task"})
	require.NoError(t, err)
	contaminated, err := c.CreateTask(ctx, core.CreateTaskArgs{
		WorkspacePath:  wsB,
		Title:          "beta task referencing alpha",
		FileReferences: []string{filepath.Join(wsA, "main.go")},
		Tags:           []string{"alpha-project"},
	})
	require.NoError(t, err)

	listA, err := c.ListTasks(ctx, wsA, core.TaskFilterArgs{}, core.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, listA.TotalCount)

	listB, err := c.ListTasks(ctx, wsB, core.TaskFilterArgs{}, core.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, listB.TotalCount)

	report, err := c.AuditWorkspaceIntegrity(ctx, wsB, core.AuditWorkspaceIntegrityArgs{})
	require.NoError(t, err)
	assert.True(t, report.ContaminationFound)
	assert.NotZero(t, report.Statistics.ContaminatedTasks)

	valid, err := c.ValidateTaskWorkspace(ctx, wsB, contaminated.ID)
	require.NoError(t, err)
	assert.True(t, valid.Valid) // task's own workspace_metadata matches wsB; contamination is in its fields, not its metadata
}

func TestWorkspaceRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCore(t)
	ws := filepath.Join(t.TempDir(), "named-project")

	_, err := c.CreateTask(ctx, core.CreateTaskArgs{WorkspacePath: ws, Title: "seed"})
	require.NoError(t, err)
	require.NoError(t, c.SetFriendlyName(ctx, ws, "my-project"))

	w, err := c.GetWorkspace(ctx, ws)
	require.NoError(t, err)
	require.NotNil(t, w.FriendlyName)
	assert.Equal(t, "my-project", *w.FriendlyName)

	all, err := c.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
