package registry

import (
	"context"
	"time"

	"github.com/kodelink/task-mcp/internal/errs"
)

// RecordUsage appends one append-only tool_usage row (spec §4.7). Callers in
// internal/core swallow any error this returns — a dropped usage row is
// acceptable, a failed operation because of telemetry is not (spec §4.3).
func (r *Registry) RecordUsage(ctx context.Context, toolName, workspaceID string, at time.Time, success bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tool_usage (tool_name, workspace_id, timestamp, success)
		VALUES (?, ?, ?, ?)
	`, toolName, workspaceID, formatTime(at), boolToInt(success))
	if err != nil {
		return errs.Wrap(errs.Internal, err, "record tool usage")
	}
	return nil
}

// ToolStat is one tool's aggregate within a usage-stats window.
type ToolStat struct {
	ToolName    string
	Calls       int
	SuccessRate float64
}

// DayStat is one calendar day's call count within a usage-stats window.
type DayStat struct {
	Date  string // YYYY-MM-DD, UTC
	Calls int
}

// UsageStats is the result of get_usage_stats (spec §4.7).
type UsageStats struct {
	TotalCalls int
	ByTool     []ToolStat
	Timeline   []DayStat
}

// GetUsageStats aggregates tool_usage over the trailing `days` window,
// optionally filtered to one tool, entirely in SQL (spec §4.7: "all computed
// in SQL").
func (r *Registry) GetUsageStats(ctx context.Context, days int, toolName string) (*UsageStats, error) {
	if days <= 0 {
		days = 30
	}
	since := formatTime(time.Now().UTC().AddDate(0, 0, -days))

	args := []any{since}
	toolFilter := ""
	if toolName != "" {
		toolFilter = " AND tool_name = ?"
		args = append(args, toolName)
	}

	var total int
	totalRow := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tool_usage WHERE timestamp >= ?`+toolFilter, args...)
	if err := totalRow.Scan(&total); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "aggregate total tool usage")
	}

	byToolRows, err := r.db.QueryContext(ctx, `
		SELECT tool_name, COUNT(*) AS calls,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS success_rate
		FROM tool_usage
		WHERE timestamp >= ?`+toolFilter+`
		GROUP BY tool_name
		ORDER BY calls DESC, tool_name ASC
	`, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "aggregate per-tool usage")
	}
	defer func() { _ = byToolRows.Close() }()

	var byTool []ToolStat
	for byToolRows.Next() {
		var s ToolStat
		if err := byToolRows.Scan(&s.ToolName, &s.Calls, &s.SuccessRate); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan per-tool usage row")
		}
		byTool = append(byTool, s)
	}
	if err := byToolRows.Err(); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "iterate per-tool usage")
	}

	timelineRows, err := r.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, COUNT(*) AS calls
		FROM tool_usage
		WHERE timestamp >= ?`+toolFilter+`
		GROUP BY day
		ORDER BY day ASC
	`, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "aggregate usage timeline")
	}
	defer func() { _ = timelineRows.Close() }()

	var timeline []DayStat
	for timelineRows.Next() {
		var d DayStat
		if err := timelineRows.Scan(&d.Date, &d.Calls); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan usage timeline row")
		}
		timeline = append(timeline, d)
	}
	if err := timelineRows.Err(); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "iterate usage timeline")
	}

	return &UsageStats{TotalCalls: total, ByTool: byTool, Timeline: timeline}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
