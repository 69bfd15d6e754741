package types

import "time"

// Workspace is a master-registry row (spec §3): one per known workspace,
// keyed by the 8-hex id derived from its absolute path.
type Workspace struct {
	ID            string
	WorkspacePath string
	FriendlyName  *string
	CreatedAt     time.Time
	LastAccessed  time.Time
}

// ToolUsage is an append-only telemetry row (spec §3, §4.7).
type ToolUsage struct {
	ID          int64
	ToolName    string
	WorkspaceID string
	Timestamp   time.Time
	Success     bool
}
