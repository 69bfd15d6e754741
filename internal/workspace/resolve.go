// Package workspace implements the path & workspace resolver: spec §4.1.
//
// Every core entry point receives an explicit workspace path; auto-detection
// via environment variable or cwd is forbidden (spec §9, first open
// question — this core takes the stricter, later contract).
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/kodelink/task-mcp/internal/errs"
)

// Resolved is the outcome of resolving an explicit workspace path.
type Resolved struct {
	// AbsPath is the absolute, lexically-cleaned, symlink-resolved (when
	// possible) workspace path.
	AbsPath string

	// ID is the 8 lowercase hex character prefix of sha256(AbsPath).
	ID string

	// MasterDBPath is "<data_root>/master.db".
	MasterDBPath string

	// WorkspaceDBPath is "<data_root>/databases/project_<id>.db".
	WorkspaceDBPath string
}

// Resolver derives deterministic, filesystem-backed locations for a given
// workspace path and a configured data root.
type Resolver struct {
	DataRoot string
}

// New builds a Resolver rooted at dataRoot ("~/.task-mcp" by convention,
// spec §6). dataRoot is a value injected by the caller, never process-wide
// mutable state (Design Notes).
func New(dataRoot string) *Resolver {
	return &Resolver{DataRoot: dataRoot}
}

// Resolve validates and normalizes workspacePath, deriving its id and on-disk
// database locations. It does not touch the filesystem beyond the symlink
// resolution needed for a deterministic absolute path; callers are
// responsible for creating parent directories (see EnsureDirs).
func (r *Resolver) Resolve(workspacePath string) (Resolved, error) {
	if workspacePath == "" {
		return Resolved{}, errs.New(errs.WorkspaceMissing, "workspace_path is required")
	}

	abs, err := filepath.Abs(workspacePath)
	if err != nil {
		return Resolved{}, errs.Wrap(errs.InvalidInput, err, "cannot resolve absolute path for %q", workspacePath)
	}
	abs = filepath.Clean(abs)
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	// A missing directory (not yet created) is tolerated: EvalSymlinks fails
	// in that case and we fall back to the lexically-cleaned absolute path.
	// The mapping must still be deterministic, which Clean+Abs already gives us.

	id := workspaceID(abs)

	return Resolved{
		AbsPath:         abs,
		ID:              id,
		MasterDBPath:    filepath.Join(r.DataRoot, "master.db"),
		WorkspaceDBPath: filepath.Join(r.DataRoot, "databases", fmt.Sprintf("project_%s.db", id)),
	}, nil
}

// workspaceID computes the 8 lowercase hex character workspace id (spec §6):
// the first 8 hex chars of sha256(absPath).
func workspaceID(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(sum[:])[:8]
}
