package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirs creates the parent directories for the master and workspace
// database files, releasing any filesystem handles used during setup (spec
// §4.1: "creating parent directories as needed with guaranteed release of any
// filesystem handles used during setup" — os.MkdirAll never holds a handle
// open, so this is a thin, clearly-named wrapper rather than a resource that
// needs a defer).
func EnsureDirs(r Resolved) error {
	if err := os.MkdirAll(filepath.Dir(r.MasterDBPath), 0o755); err != nil {
		return fmt.Errorf("create master db dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.WorkspaceDBPath), 0o755); err != nil {
		return fmt.Errorf("create workspace db dir: %w", err)
	}
	return nil
}
