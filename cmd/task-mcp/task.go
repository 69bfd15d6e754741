package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodelink/task-mcp/internal/core"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, inspect, and mutate tasks",
}

var (
	taskTitle         string
	taskDescription   string
	taskStatus        string
	taskPriority      string
	taskParentID      int64
	taskDependsOn     []int64
	taskTags          []string
	taskBlockerReason string
	taskFileRefs      []string
	taskCreatedBy     string
	taskMode          string
	taskLimit         int
	taskOffset        int
	taskCascade       bool
)

func init() {
	createTaskCmd.Flags().StringVar(&taskTitle, "title", "", "task title (required)")
	createTaskCmd.Flags().StringVar(&taskDescription, "description", "", "task description")
	createTaskCmd.Flags().StringVar(&taskStatus, "status", "", "initial status (default todo)")
	createTaskCmd.Flags().StringVar(&taskPriority, "priority", "", "priority (default medium)")
	createTaskCmd.Flags().Int64Var(&taskParentID, "parent", 0, "parent task id")
	createTaskCmd.Flags().Int64SliceVar(&taskDependsOn, "depends-on", nil, "dependency task ids")
	createTaskCmd.Flags().StringSliceVar(&taskTags, "tags", nil, "tags")
	createTaskCmd.Flags().StringVar(&taskBlockerReason, "blocker-reason", "", "required when status=blocked")
	createTaskCmd.Flags().StringSliceVar(&taskFileRefs, "file", nil, "file_references entries")
	createTaskCmd.Flags().StringVar(&taskCreatedBy, "by", "", "created_by / updated_by actor")

	updateTaskCmd.Flags().StringVar(&taskStatus, "status", "", "new status")
	updateTaskCmd.Flags().StringVar(&taskPriority, "priority", "", "new priority")
	updateTaskCmd.Flags().StringVar(&taskBlockerReason, "blocker-reason", "", "required when status=blocked")

	for _, cmd := range []*cobra.Command{listTasksCmd, searchTasksCmd, blockedTasksCmd, nextTasksCmd, dependentsCmd, taskEntitiesCmd} {
		cmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
		cmd.Flags().IntVar(&taskLimit, "limit", 0, "page size (default 100)")
		cmd.Flags().IntVar(&taskOffset, "offset", 0, "page offset")
	}
	getTaskCmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
	treeCmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
	deleteTaskCmd.Flags().BoolVar(&taskCascade, "cascade", false, "also delete live descendants")

	taskCmd.AddCommand(createTaskCmd, getTaskCmd, updateTaskCmd, deleteTaskCmd, listTasksCmd,
		searchTasksCmd, blockedTasksCmd, nextTasksCmd, dependentsCmd, treeCmd, statsCmd, taskEntitiesCmd)
}

var createTaskCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		var parent *int64
		if taskParentID != 0 {
			parent = &taskParentID
		}
		t, err := theCore.CreateTask(cmd.Context(), core.CreateTaskArgs{
			WorkspacePath:  workspacePath,
			Title:          taskTitle,
			Description:    taskDescription,
			Status:         taskStatus,
			Priority:       taskPriority,
			ParentTaskID:   parent,
			DependsOn:      taskDependsOn,
			Tags:           taskTags,
			BlockerReason:  taskBlockerReason,
			FileReferences: taskFileRefs,
			CreatedBy:      taskCreatedBy,
		})
		if err != nil {
			printErr(err)
			return nil
		}
		ok("created task %d: %s", t.ID, t.Title)
		printResult(t)
		return nil
	},
}

var getTaskCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a task by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		t, err := theCore.GetTask(cmd.Context(), workspacePath, id, taskMode)
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(t)
		return nil
	},
}

var updateTaskCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Patch a task's status/priority/blocker_reason",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		var patch core.UpdateTaskArgs
		if taskStatus != "" {
			patch.Status = &taskStatus
		}
		if taskPriority != "" {
			patch.Priority = &taskPriority
		}
		if cmd.Flags().Changed("blocker-reason") {
			patch.BlockerReason = &taskBlockerReason
		}
		t, err := theCore.UpdateTask(cmd.Context(), workspacePath, id, patch)
		if err != nil {
			printErr(err)
			return nil
		}
		ok("updated task %d", t.ID)
		printResult(t)
		return nil
	},
}

var deleteTaskCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		res, err := theCore.DeleteTask(cmd.Context(), workspacePath, id, taskCascade)
		if err != nil {
			printErr(err)
			return nil
		}
		ok("deleted %d task(s): %v", len(res.DeletedTaskIDs), res.DeletedTaskIDs)
		printResult(res)
		return nil
	},
}

var listTasksCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := theCore.ListTasks(cmd.Context(), workspacePath, taskFilters(), listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		ok("%d of %d task(s)", env.ReturnedCount, env.TotalCount)
		printResult(env)
		return nil
	},
}

var searchTasksCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search tasks by title/description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := theCore.SearchTasks(cmd.Context(), workspacePath, args[0], taskFilters(), listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var blockedTasksCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List every blocked task",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := theCore.GetBlockedTasks(cmd.Context(), workspacePath, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var nextTasksCmd = &cobra.Command{
	Use:   "next",
	Short: "List every ready todo task",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := theCore.GetNextTasks(cmd.Context(), workspacePath, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <id>",
	Short: "List tasks that depend on <id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		env, err := theCore.GetDependents(cmd.Context(), workspacePath, id, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the task tree rooted at <id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		tree, err := theCore.GetTaskTree(cmd.Context(), workspacePath, id, taskMode)
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(tree)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workspace task/entity rollup stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := theCore.GetWorkspaceStats(cmd.Context(), workspacePath)
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(stats)
		return nil
	},
}

func taskFilters() core.TaskFilterArgs {
	f := core.TaskFilterArgs{Tags: taskTags}
	if taskStatus != "" {
		f.Status = &taskStatus
	}
	if taskPriority != "" {
		f.Priority = &taskPriority
	}
	return f
}

func listParams() core.ListParams {
	return core.ListParams{Mode: taskMode, Limit: taskLimit, Offset: taskOffset}
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			out = append(out, id)
		}
	}
	return out
}
