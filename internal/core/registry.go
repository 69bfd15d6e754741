package core

import (
	"context"
	"time"

	"github.com/kodelink/task-mcp/internal/errs"
)

// WorkspaceView is one list_workspaces/get_workspace row (spec §4.3).
type WorkspaceView struct {
	ID            string    `json:"id"`
	WorkspacePath string    `json:"workspace_path"`
	FriendlyName  *string   `json:"friendly_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastAccessed  time.Time `json:"last_accessed"`
}

// ListWorkspaces returns every workspace the master registry has recorded,
// most recently accessed first (SPEC_FULL supplemented feature #5).
func (c *Core) ListWorkspaces(ctx context.Context) ([]WorkspaceView, error) {
	all, err := c.reg.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WorkspaceView, len(all))
	for i, w := range all {
		out[i] = WorkspaceView{
			ID: w.ID, WorkspacePath: w.WorkspacePath, FriendlyName: w.FriendlyName,
			CreatedAt: w.CreatedAt, LastAccessed: w.LastAccessed,
		}
	}
	return out, nil
}

// GetWorkspace resolves workspacePath and returns its registry row, if one
// exists (SPEC_FULL supplemented feature #5). Resolving also touches
// last_accessed, same as every other operation.
func (c *Core) GetWorkspace(ctx context.Context, workspacePath string) (WorkspaceView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return WorkspaceView{}, err
	}
	w, err := c.reg.GetWorkspace(ctx, h.resolved.ID)
	if err != nil {
		return WorkspaceView{}, errs.Wrap(errs.NotFound, err, "workspace %s not registered", workspacePath)
	}
	return WorkspaceView{
		ID: w.ID, WorkspacePath: w.WorkspacePath, FriendlyName: w.FriendlyName,
		CreatedAt: w.CreatedAt, LastAccessed: w.LastAccessed,
	}, nil
}

// SetFriendlyName assigns a human-readable alias to workspacePath, so
// callers can distinguish workspaces by name rather than id.
func (c *Core) SetFriendlyName(ctx context.Context, workspacePath, name string) error {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return err
	}
	return c.reg.SetFriendlyName(ctx, h.resolved.ID, h.resolved.AbsPath, name, time.Now().UTC())
}

// UsageStatsView is the get_usage_stats response (spec §4.7).
type UsageStatsView struct {
	TotalCalls int              `json:"total_calls"`
	ByTool     []ToolStatView   `json:"by_tool"`
	Timeline   []DayStatView    `json:"timeline"`
}

// ToolStatView is one tool's aggregate within a usage-stats window.
type ToolStatView struct {
	ToolName    string  `json:"tool_name"`
	Calls       int     `json:"calls"`
	SuccessRate float64 `json:"success_rate"`
}

// DayStatView is one calendar day's call count within a usage-stats window.
type DayStatView struct {
	Date  string `json:"date"`
	Calls int    `json:"calls"`
}

// GetUsageStats aggregates tool_usage over the trailing days window,
// optionally filtered to one tool (spec §4.7). It isn't workspace-scoped —
// the master registry tracks usage across every workspace a process has
// touched — so it doesn't go through c.open.
func (c *Core) GetUsageStats(ctx context.Context, days int, toolName string) (UsageStatsView, error) {
	stats, err := c.reg.GetUsageStats(ctx, days, toolName)
	if err != nil {
		return UsageStatsView{}, err
	}
	out := UsageStatsView{TotalCalls: stats.TotalCalls}
	for _, t := range stats.ByTool {
		out.ByTool = append(out.ByTool, ToolStatView{ToolName: t.ToolName, Calls: t.Calls, SuccessRate: t.SuccessRate})
	}
	for _, d := range stats.Timeline {
		out.Timeline = append(out.Timeline, DayStatView{Date: d.Date, Calls: d.Calls})
	}
	return out, nil
}
