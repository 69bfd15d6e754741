package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/audit"
	"github.com/kodelink/task-mcp/internal/registry"
	"github.com/kodelink/task-mcp/internal/storage/sqlite"
	"github.com/kodelink/task-mcp/internal/types"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workspace.db")
	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "master.db")
	r, err := registry.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// TestValidateTaskWorkspace_MismatchAndLegacy mirrors scenario S6's
// validate_task_workspace half.
func TestValidateTaskWorkspace_MismatchAndLegacy(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	reg := openTestRegistry(t)
	a := audit.New(store, reg)

	now := time.Now().UTC()
	mismatched := &types.Task{
		Title:     "from another workspace",
		Status:    types.StatusTodo,
		Priority:  types.PriorityMedium,
		CreatedAt: now, UpdatedAt: now,
		WorkspaceMetadata: &types.WorkspaceMetadata{WorkspacePath: "/workspace/other"},
	}
	require.NoError(t, store.InsertTask(ctx, mismatched))

	res, err := a.ValidateTaskWorkspace(ctx, mismatched.ID, "/workspace/current")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.False(t, res.WorkspaceMatch)
	assert.NotEmpty(t, res.Warnings)

	legacy := &types.Task{
		Title: "legacy", Status: types.StatusTodo, Priority: types.PriorityMedium,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertTask(ctx, legacy))

	legacyRes, err := a.ValidateTaskWorkspace(ctx, legacy.ID, "/workspace/current")
	require.NoError(t, err)
	assert.True(t, legacyRes.Valid)
	assert.NotEmpty(t, legacyRes.Warnings)
}

// TestAuditWorkspaceIntegrity_FlagsCrossWorkspaceContamination mirrors
// scenario S6's audit_workspace_integrity half: a task whose file_references
// and tags point at a sibling workspace should surface as contamination.
func TestAuditWorkspaceIntegrity_FlagsCrossWorkspaceContamination(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	reg := openTestRegistry(t)
	a := audit.New(store, reg)

	now := time.Now().UTC()
	require.NoError(t, reg.Register(ctx, "aaaaaaaa", "/workspace/current", now))
	require.NoError(t, reg.Register(ctx, "bbbbbbbb", "/workspace/sibling-project", now))

	contaminated := &types.Task{
		Title:          "touches sibling",
		Status:         types.StatusTodo,
		Priority:       types.PriorityMedium,
		FileReferences: []string{"/workspace/sibling-project/main.go"},
		Tags:           []string{"sibling-project"},
		CreatedAt:      now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertTask(ctx, contaminated))

	clean := &types.Task{
		Title:          "stays local",
		Status:         types.StatusTodo,
		Priority:       types.PriorityMedium,
		FileReferences: []string{"/workspace/current/main.go"},
		CreatedAt:      now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertTask(ctx, clean))

	ident := "/workspace/sibling-project/lib.py"
	entity := &types.Entity{EntityType: types.EntityTypeFile, Name: "lib", Identifier: &ident, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.InsertEntity(ctx, entity))

	report, err := a.AuditWorkspaceIntegrity(ctx, "/workspace/current", audit.Options{})
	require.NoError(t, err)

	assert.True(t, report.ContaminationFound)
	assert.NotEmpty(t, report.AuditID)
	assert.NotEmpty(t, report.FileReferenceMismatches)
	assert.NotEmpty(t, report.SuspiciousTags)
	assert.NotEmpty(t, report.EntityIdentifierMismatches)
	assert.Equal(t, 1, report.ContaminatedEntities)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAuditWorkspaceIntegrity_NoContaminationWhenClean(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	reg := openTestRegistry(t)
	a := audit.New(store, reg)

	now := time.Now().UTC()
	clean := &types.Task{
		Title:          "tidy",
		Status:         types.StatusTodo,
		Priority:       types.PriorityMedium,
		FileReferences: []string{"/workspace/current/a.go"},
		CreatedAt:      now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertTask(ctx, clean))

	report, err := a.AuditWorkspaceIntegrity(ctx, "/workspace/current", audit.Options{})
	require.NoError(t, err)
	assert.False(t, report.ContaminationFound)
	assert.Equal(t, 0, report.ContaminatedTasks)
	assert.Empty(t, report.Recommendations)
}
