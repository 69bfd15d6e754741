package workspace_test

import (
	"path/filepath"
	"testing"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EmptyPathIsWorkspaceMissing(t *testing.T) {
	r := workspace.New(t.TempDir())
	_, err := r.Resolve("")
	require.Error(t, err)
	assert.Equal(t, errs.WorkspaceMissing, errs.KindOf(err))
}

func TestResolve_Deterministic(t *testing.T) {
	root := t.TempDir()
	r := workspace.New(root)

	a, err := r.Resolve(filepath.Join(root, "proj"))
	require.NoError(t, err)
	b, err := r.Resolve(filepath.Join(root, "proj"))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, a.ID, 8)
	assert.Equal(t, a.WorkspaceDBPath, b.WorkspaceDBPath)
}

func TestResolve_DistinctPathsDistinctIDs(t *testing.T) {
	root := t.TempDir()
	r := workspace.New(root)

	a, err := r.Resolve(filepath.Join(root, "proj-a"))
	require.NoError(t, err)
	b, err := r.Resolve(filepath.Join(root, "proj-b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestResolve_DerivesDBPaths(t *testing.T) {
	dataRoot := t.TempDir()
	r := workspace.New(dataRoot)

	got, err := r.Resolve(filepath.Join(dataRoot, "proj"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataRoot, "master.db"), got.MasterDBPath)
	assert.Equal(t, filepath.Join(dataRoot, "databases", "project_"+got.ID+".db"), got.WorkspaceDBPath)
}

func TestEnsureDirs_CreatesParents(t *testing.T) {
	dataRoot := filepath.Join(t.TempDir(), "nested", "data-root")
	r := workspace.New(dataRoot)

	resolved, err := r.Resolve(filepath.Join(t.TempDir(), "proj"))
	require.NoError(t, err)

	require.NoError(t, workspace.EnsureDirs(resolved))
	assert.DirExists(t, filepath.Dir(resolved.MasterDBPath))
	assert.DirExists(t, filepath.Dir(resolved.WorkspaceDBPath))
}
