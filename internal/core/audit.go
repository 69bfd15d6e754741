package core

import (
	"context"
	"time"

	"github.com/kodelink/task-mcp/internal/audit"
)

// ValidateTaskWorkspaceResult is the validate_task_workspace response (spec
// §4.7).
type ValidateTaskWorkspaceResult struct {
	Valid            bool   `json:"valid"`
	TaskID           int64  `json:"task_id"`
	CurrentWorkspace string `json:"current_workspace"`
	TaskWorkspace    string `json:"task_workspace,omitempty"`
	WorkspaceMatch   bool   `json:"workspace_match"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ValidateTaskWorkspace checks taskID's captured workspace metadata against
// workspacePath (spec §4.7).
func (c *Core) ValidateTaskWorkspace(ctx context.Context, workspacePath string, taskID int64) (ValidateTaskWorkspaceResult, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return ValidateTaskWorkspaceResult{}, err
	}
	res, err := h.auditor.ValidateTaskWorkspace(ctx, taskID, h.resolved.AbsPath)
	c.recordUsage(ctx, h.resolved.ID, "validate_task_workspace", err == nil)
	if err != nil {
		return ValidateTaskWorkspaceResult{}, err
	}
	return ValidateTaskWorkspaceResult{
		Valid:            res.Valid,
		TaskID:           res.TaskID,
		CurrentWorkspace: res.CurrentWorkspace,
		TaskWorkspace:    res.TaskWorkspace,
		WorkspaceMatch:   res.WorkspaceMatch,
		Warnings:         res.Warnings,
	}, nil
}

// IntegrityIssueView is one audit_workspace_integrity finding.
type IntegrityIssueView struct {
	TaskID   *int64 `json:"task_id,omitempty"`
	EntityID *int64 `json:"entity_id,omitempty"`
	Detail   string `json:"detail"`
}

// AuditWorkspaceIntegrityResult is the audit_workspace_integrity response
// (spec §4.7).
type AuditWorkspaceIntegrityResult struct {
	AuditID            string    `json:"audit_id"`
	WorkspacePath      string    `json:"workspace_path"`
	AuditTimestamp     time.Time `json:"audit_timestamp"`
	ContaminationFound bool      `json:"contamination_found"`

	Issues struct {
		FileReferenceMismatches    []IntegrityIssueView `json:"file_reference_mismatches"`
		SuspiciousTags             []IntegrityIssueView `json:"suspicious_tags"`
		GitRepoMismatches          []IntegrityIssueView `json:"git_repo_mismatches"`
		EntityIdentifierMismatches []IntegrityIssueView `json:"entity_identifier_mismatches"`
		DescriptionPathReferences  []IntegrityIssueView `json:"description_path_references"`
	} `json:"issues"`

	Statistics struct {
		ContaminatedTasks    int `json:"contaminated_tasks"`
		ContaminatedEntities int `json:"contaminated_entities"`
	} `json:"statistics"`

	Recommendations []string `json:"recommendations,omitempty"`
}

// AuditWorkspaceIntegrityArgs configures one audit_workspace_integrity run.
type AuditWorkspaceIntegrityArgs struct {
	IncludeDeleted bool
	CheckGitRepo   bool
	CurrentGitRoot string
}

// AuditWorkspaceIntegrity runs the five contamination heuristics over the
// current workspace (spec §4.7).
func (c *Core) AuditWorkspaceIntegrity(ctx context.Context, workspacePath string, args AuditWorkspaceIntegrityArgs) (AuditWorkspaceIntegrityResult, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return AuditWorkspaceIntegrityResult{}, err
	}
	report, err := h.auditor.AuditWorkspaceIntegrity(ctx, h.resolved.AbsPath, audit.Options{
		IncludeDeleted: args.IncludeDeleted,
		CheckGitRepo:   args.CheckGitRepo,
		CurrentGitRoot: args.CurrentGitRoot,
	})
	c.recordUsage(ctx, h.resolved.ID, "audit_workspace_integrity", err == nil)
	if err != nil {
		return AuditWorkspaceIntegrityResult{}, err
	}

	out := AuditWorkspaceIntegrityResult{
		AuditID:            report.AuditID,
		WorkspacePath:      report.WorkspacePath,
		AuditTimestamp:     report.AuditTimestamp,
		ContaminationFound: report.ContaminationFound,
		Recommendations:    report.Recommendations,
	}
	out.Issues.FileReferenceMismatches = viewIssues(report.FileReferenceMismatches)
	out.Issues.SuspiciousTags = viewIssues(report.SuspiciousTags)
	out.Issues.GitRepoMismatches = viewIssues(report.GitRepoMismatches)
	out.Issues.EntityIdentifierMismatches = viewIssues(report.EntityIdentifierMismatches)
	out.Issues.DescriptionPathReferences = viewIssues(report.DescriptionPathReferences)
	out.Statistics.ContaminatedTasks = report.ContaminatedTasks
	out.Statistics.ContaminatedEntities = report.ContaminatedEntities
	return out, nil
}

func viewIssues(issues []audit.IntegrityIssue) []IntegrityIssueView {
	out := make([]IntegrityIssueView, len(issues))
	for i, iss := range issues {
		out[i] = IntegrityIssueView{TaskID: iss.TaskID, EntityID: iss.EntityID, Detail: iss.Detail}
	}
	return out
}
