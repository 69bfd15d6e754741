package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kodelink/task-mcp/internal/core"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Workspace integrity and contamination checks",
}

var (
	auditIncludeDeleted bool
	auditCheckGitRoot   bool
	auditGitRoot        string
)

func init() {
	integrityCmd.Flags().BoolVar(&auditIncludeDeleted, "include-deleted", false, "include soft-deleted rows in the scan")
	integrityCmd.Flags().BoolVar(&auditCheckGitRoot, "check-git-repo", false, "also flag git_root mismatches")
	integrityCmd.Flags().StringVar(&auditGitRoot, "current-git-root", "", "this workspace's resolved git root, for --check-git-repo")

	auditCmd.AddCommand(validateCmd, integrityCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <task-id>",
	Short: "Check a task's captured workspace against the current workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		res, err := theCore.ValidateTaskWorkspace(cmd.Context(), workspacePath, id)
		if err != nil {
			printErr(err)
			return nil
		}
		if res.Valid {
			ok("task %d: workspace OK", id)
		} else {
			ok("task %d: workspace MISMATCH (%s vs %s)", id, res.TaskWorkspace, res.CurrentWorkspace)
		}
		printResult(res)
		return nil
	},
}

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Scan the current workspace for cross-workspace contamination",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := theCore.AuditWorkspaceIntegrity(cmd.Context(), workspacePath, core.AuditWorkspaceIntegrityArgs{
			IncludeDeleted: auditIncludeDeleted,
			CheckGitRepo:   auditCheckGitRoot,
			CurrentGitRoot: auditGitRoot,
		})
		if err != nil {
			printErr(err)
			return nil
		}
		if report.ContaminationFound {
			ok("contamination found: %d task(s), %d entit(y/ies)", report.Statistics.ContaminatedTasks, report.Statistics.ContaminatedEntities)
		} else {
			ok("no contamination found")
		}
		printResult(report)
		return nil
	},
}
