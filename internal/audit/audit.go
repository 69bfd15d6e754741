// Package audit implements spec §4.7: cross-workspace contamination
// detection over a workspace's existing rows, and the telemetry surface
// (append-only tool-usage recording, usage aggregation) built on top of
// internal/registry.
package audit

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/registry"
	"github.com/kodelink/task-mcp/internal/storage/sqlite"
	"github.com/kodelink/task-mcp/internal/types"
)

// Auditor runs the integrity heuristics for one workspace against its own
// store and the shared master registry (for the "other known workspaces"
// cross-check).
type Auditor struct {
	store    *sqlite.Store
	registry *registry.Registry
}

// New builds an Auditor over an already-opened workspace store and the
// master registry.
func New(store *sqlite.Store, reg *registry.Registry) *Auditor {
	return &Auditor{store: store, registry: reg}
}

// ValidateTaskWorkspaceResult is the validate_task_workspace response (spec
// §4.7).
type ValidateTaskWorkspaceResult struct {
	Valid            bool
	TaskID           int64
	CurrentWorkspace string
	TaskWorkspace    string
	WorkspaceMatch   bool
	Warnings         []string
	Metadata         *types.WorkspaceMetadata
}

// ValidateTaskWorkspace compares taskID's stored workspace_metadata against
// currentWorkspacePath (spec §4.7). A task with no captured metadata (a
// legacy row predating the field) is valid but carries a warning.
func (a *Auditor) ValidateTaskWorkspace(ctx context.Context, taskID int64, currentWorkspacePath string) (*ValidateTaskWorkspaceResult, error) {
	t, err := a.store.GetTask(ctx, taskID)
	if err != nil {
		if errIsNotFound(err) {
			return nil, errs.New(errs.NotFound, "task %d not found", taskID)
		}
		return nil, errs.Wrap(errs.Internal, err, "get task %d for workspace validation", taskID)
	}

	res := &ValidateTaskWorkspaceResult{
		TaskID:           taskID,
		CurrentWorkspace: currentWorkspacePath,
		Metadata:         t.WorkspaceMetadata,
	}
	if t.WorkspaceMetadata == nil {
		res.Valid = true
		res.WorkspaceMatch = false
		res.Warnings = append(res.Warnings, "task has no captured workspace_metadata (legacy row)")
		return res, nil
	}

	res.TaskWorkspace = t.WorkspaceMetadata.WorkspacePath
	res.WorkspaceMatch = t.WorkspaceMetadata.WorkspacePath == currentWorkspacePath
	res.Valid = res.WorkspaceMatch
	if !res.WorkspaceMatch {
		res.Warnings = append(res.Warnings, "task's recorded workspace_path does not match the current workspace")
	}
	return res, nil
}

// IntegrityIssue is one contamination hit within an audit run.
type IntegrityIssue struct {
	TaskID   *int64
	EntityID *int64
	Detail   string
}

// IntegrityReport is the audit_workspace_integrity response (spec §4.7).
type IntegrityReport struct {
	AuditID            string
	WorkspacePath      string
	AuditTimestamp     time.Time
	ContaminationFound bool

	FileReferenceMismatches  []IntegrityIssue
	SuspiciousTags           []IntegrityIssue
	GitRepoMismatches        []IntegrityIssue
	EntityIdentifierMismatches []IntegrityIssue
	DescriptionPathReferences []IntegrityIssue

	ContaminatedTasks    int
	ContaminatedEntities int
	Recommendations      []string
}

// Options configures one audit_workspace_integrity run (spec §4.7).
type Options struct {
	IncludeDeleted bool
	CheckGitRepo   bool
	CurrentGitRoot string // only consulted when CheckGitRepo is true
}

// AuditWorkspaceIntegrity runs the five heuristics spec §4.7 lists,
// concurrently against one loaded snapshot of the workspace's tasks and
// entities (golang.org/x/sync/errgroup fans them out; the heuristics only
// read the shared snapshot and each writes a different report field, so no
// locking is needed).
func (a *Auditor) AuditWorkspaceIntegrity(ctx context.Context, workspacePath string, opts Options) (*IntegrityReport, error) {
	tasks, err := a.store.ListAllTasks(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "load tasks for audit")
	}
	entities, err := a.store.ListAllEntities(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "load entities for audit")
	}
	if !opts.IncludeDeleted {
		tasks = liveTasksOnly(tasks)
		entities = liveEntitiesOnly(entities)
	}

	otherWorkspaces, err := a.registry.ListWorkspaces(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "load known workspaces for audit")
	}
	otherBasenames := otherWorkspaceBasenames(otherWorkspaces, workspacePath)

	report := &IntegrityReport{
		AuditID:        uuid.NewString(),
		WorkspacePath:  workspacePath,
		AuditTimestamp: time.Now().UTC(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.FileReferenceMismatches = fileReferenceMismatches(tasks, workspacePath)
		return nil
	})
	g.Go(func() error {
		report.SuspiciousTags = suspiciousTags(tasks, otherBasenames)
		return nil
	})
	g.Go(func() error {
		report.GitRepoMismatches = gitRepoMismatches(tasks, opts)
		return nil
	})
	g.Go(func() error {
		report.EntityIdentifierMismatches = entityIdentifierMismatches(entities, workspacePath)
		return nil
	})
	g.Go(func() error {
		report.DescriptionPathReferences = descriptionPathReferences(tasks, workspacePath)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "run audit heuristics")
	}

	contaminatedTasks := map[int64]struct{}{}
	for _, issue := range append(append(append([]IntegrityIssue{}, report.FileReferenceMismatches...), report.SuspiciousTags...), report.GitRepoMismatches...) {
		if issue.TaskID != nil {
			contaminatedTasks[*issue.TaskID] = struct{}{}
		}
	}
	for _, issue := range report.DescriptionPathReferences {
		if issue.TaskID != nil {
			contaminatedTasks[*issue.TaskID] = struct{}{}
		}
	}
	contaminatedEntities := map[int64]struct{}{}
	for _, issue := range report.EntityIdentifierMismatches {
		if issue.EntityID != nil {
			contaminatedEntities[*issue.EntityID] = struct{}{}
		}
	}
	report.ContaminatedTasks = len(contaminatedTasks)
	report.ContaminatedEntities = len(contaminatedEntities)
	report.ContaminationFound = report.ContaminatedTasks > 0 || report.ContaminatedEntities > 0

	if report.ContaminationFound {
		report.Recommendations = append(report.Recommendations,
			"review flagged tasks/entities for file paths or tags referencing a different workspace",
			"consider re-creating affected rows with create_task/create_entity scoped to the correct workspace",
		)
	}
	return report, nil
}

func liveTasksOnly(tasks []*types.Task) []*types.Task {
	var out []*types.Task
	for _, t := range tasks {
		if !t.IsDeleted() {
			out = append(out, t)
		}
	}
	return out
}

func liveEntitiesOnly(entities []*types.Entity) []*types.Entity {
	var out []*types.Entity
	for _, e := range entities {
		if !e.IsDeleted() {
			out = append(out, e)
		}
	}
	return out
}

// otherWorkspaceBasenames returns the directory basename of every known
// workspace other than workspacePath, used by the suspicious-tags heuristic
// (spec §4.7: "tag strings containing the basename of some other known
// workspace").
func otherWorkspaceBasenames(all []*types.Workspace, workspacePath string) []string {
	var out []string
	for _, w := range all {
		if w.WorkspacePath == workspacePath {
			continue
		}
		base := filepath.Base(w.WorkspacePath)
		if base != "" && base != "." && base != string(filepath.Separator) {
			out = append(out, base)
		}
	}
	return out
}

func isUnderRoot(root, path string) bool {
	if path == "" {
		return true
	}
	if !filepath.IsAbs(path) {
		// A relative reference can't be judged against an absolute root;
		// treat it as in-bounds rather than flag false positives.
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileReferenceMismatches(tasks []*types.Task, workspacePath string) []IntegrityIssue {
	var out []IntegrityIssue
	for _, t := range tasks {
		for _, ref := range t.FileReferences {
			if !isUnderRoot(workspacePath, ref) {
				id := t.ID
				out = append(out, IntegrityIssue{TaskID: &id, Detail: "file_reference outside workspace: " + ref})
			}
		}
	}
	return out
}

func suspiciousTags(tasks []*types.Task, otherBasenames []string) []IntegrityIssue {
	if len(otherBasenames) == 0 {
		return nil
	}
	var out []IntegrityIssue
	for _, t := range tasks {
		for _, tag := range t.Tags {
			for _, base := range otherBasenames {
				if base != "" && strings.Contains(tag, strings.ToLower(base)) {
					id := t.ID
					out = append(out, IntegrityIssue{TaskID: &id, Detail: "tag references another workspace: " + tag})
				}
			}
		}
	}
	return out
}

func gitRepoMismatches(tasks []*types.Task, opts Options) []IntegrityIssue {
	if !opts.CheckGitRepo || opts.CurrentGitRoot == "" {
		return nil
	}
	var out []IntegrityIssue
	for _, t := range tasks {
		if t.WorkspaceMetadata == nil || t.WorkspaceMetadata.GitRoot == "" {
			continue
		}
		if t.WorkspaceMetadata.GitRoot != opts.CurrentGitRoot {
			id := t.ID
			out = append(out, IntegrityIssue{TaskID: &id, Detail: "git_root mismatch: " + t.WorkspaceMetadata.GitRoot})
		}
	}
	return out
}

func entityIdentifierMismatches(entities []*types.Entity, workspacePath string) []IntegrityIssue {
	var out []IntegrityIssue
	for _, en := range entities {
		if en.EntityType != types.EntityTypeFile || en.Identifier == nil {
			continue
		}
		if !isUnderRoot(workspacePath, *en.Identifier) {
			id := en.ID
			out = append(out, IntegrityIssue{EntityID: &id, Detail: "identifier outside workspace: " + *en.Identifier})
		}
	}
	return out
}

func descriptionPathReferences(tasks []*types.Task, workspacePath string) []IntegrityIssue {
	var out []IntegrityIssue
	for _, t := range tasks {
		for _, token := range strings.Fields(t.Description) {
			if filepath.IsAbs(token) && !isUnderRoot(workspacePath, token) {
				id := t.ID
				out = append(out, IntegrityIssue{TaskID: &id, Detail: "description references outside path: " + token})
				break
			}
		}
	}
	return out
}
