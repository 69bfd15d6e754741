// Package core is the single in-process entry point (spec §2): it wires the
// path/workspace resolver, the master registry, the per-workspace store
// pool, the domain engine, the query/projection layer, and the audit
// heuristics into one flat call surface. Every exported method takes plain
// argument values and returns either a result value or a structured
// *errs.Error — there is no MCP or transport concern in this package.
package core

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/kodelink/task-mcp/internal/audit"
	"github.com/kodelink/task-mcp/internal/config"
	"github.com/kodelink/task-mcp/internal/corepool"
	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/obslog"
	"github.com/kodelink/task-mcp/internal/query"
	"github.com/kodelink/task-mcp/internal/registry"
	"github.com/kodelink/task-mcp/internal/workspace"
)

// Core is the wired façade. One Core serves every workspace a process
// touches; per-workspace isolation happens inside, via the resolver and
// pool (spec §4.1, §4.2).
type Core struct {
	cfg      config.Config
	resolver *workspace.Resolver
	reg      *registry.Registry
	pool     *corepool.Pool
}

// Open builds a Core rooted at cfg.DataRoot, opening (and, if absent,
// creating) the master registry database eagerly so a misconfigured data
// root fails at startup rather than on first use.
func Open(ctx context.Context, cfg config.Config) (*Core, error) {
	resolver := workspace.New(cfg.DataRoot)
	masterDBPath := filepath.Join(cfg.DataRoot, "master.db")

	if err := os.MkdirAll(filepath.Dir(masterDBPath), 0o755); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "prepare data root %s", cfg.DataRoot)
	}

	reg, err := registry.Open(ctx, masterDBPath)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "open master registry")
	}

	return &Core{
		cfg:      cfg,
		resolver: resolver,
		reg:      reg,
		pool:     corepool.New(),
	}, nil
}

// Close releases the master registry and every pooled workspace store.
func (c *Core) Close() error {
	poolErr := c.pool.CloseAll()
	regErr := c.reg.Close()
	if poolErr != nil {
		return poolErr
	}
	return regErr
}

// workspaceHandle bundles everything one call needs after resolution: the
// resolved locations, a domain engine, an auditor, and the workspace id to
// tag telemetry with.
type workspaceHandle struct {
	resolved workspace.Resolved
	engine   *engine.Engine
	auditor  *audit.Auditor
}

// open resolves workspacePath, registers it with the master registry (spec
// §4.3: every touch bumps last_accessed), and returns ready-to-use
// engine/audit handles backed by the pooled store (spec §4.2).
func (c *Core) open(ctx context.Context, workspacePath string) (*workspaceHandle, error) {
	resolved, err := c.resolver.Resolve(workspacePath)
	if err != nil {
		return nil, err
	}
	if err := workspace.EnsureDirs(resolved); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "prepare workspace directories")
	}
	if err := c.reg.Register(ctx, resolved.ID, resolved.AbsPath, time.Now().UTC()); err != nil {
		obslog.From(ctx).Warn().Err(err).Str("workspace_id", resolved.ID).Msg("failed to register workspace in master registry")
	}

	store, err := c.pool.Get(ctx, resolved.WorkspaceDBPath)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "open workspace database")
	}

	return &workspaceHandle{
		resolved: resolved,
		engine:   engine.New(store),
		auditor:  audit.New(store, c.reg),
	}, nil
}

// recordUsage appends a telemetry row for toolName, swallowing any failure
// (spec §4.3: "Recording failure must never propagate to the caller").
func (c *Core) recordUsage(ctx context.Context, workspaceID, toolName string, success bool) {
	if err := c.reg.RecordUsage(ctx, toolName, workspaceID, time.Now().UTC(), success); err != nil {
		obslog.From(ctx).Warn().Err(err).Str("tool", toolName).Msg("failed to record tool usage")
	}
}

// responseBudget builds the configured response-size budget for query-layer
// checks (spec §4.6).
func (c *Core) responseBudget() query.Budget {
	return query.Budget{MaxTokens: c.cfg.MaxResponseTokens, WarnTokens: c.cfg.WarnResponseTokens}
}

// parsePagination validates rawLimit/rawOffset and fails with PaginationInvalid on
// out-of-range values (spec §4.6).
func parsePagination(rawLimit, rawOffset int) (query.Pagination, error) {
	return query.ParsePagination(rawLimit, rawOffset)
}

// parseMode validates a caller-supplied mode string (spec §4.6).
func parseMode(mode string) (query.Mode, error) {
	return query.ParseMode(mode)
}
