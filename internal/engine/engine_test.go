package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/storage/sqlite"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workspace.db")
	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return engine.New(store)
}
