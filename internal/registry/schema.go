// Package registry wraps the master DB (spec §4.3, §6): the single shared
// catalog of every known workspace, plus append-only tool-usage telemetry.
// It knows nothing about tasks or entities — those live entirely inside a
// workspace's own store (internal/storage/sqlite).
package registry

const baseSchema = `
CREATE TABLE IF NOT EXISTS workspaces (
	id             TEXT PRIMARY KEY,
	workspace_path TEXT NOT NULL UNIQUE,
	friendly_name  TEXT,
	created_at     TEXT NOT NULL,
	last_accessed  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workspaces_last_accessed ON workspaces(last_accessed);

CREATE TABLE IF NOT EXISTS tool_usage (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_name    TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	success      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tool_usage_timestamp ON tool_usage(timestamp);
CREATE INDEX IF NOT EXISTS idx_tool_usage_tool_name ON tool_usage(tool_name);
CREATE INDEX IF NOT EXISTS idx_tool_usage_workspace_id ON tool_usage(workspace_id);
`
