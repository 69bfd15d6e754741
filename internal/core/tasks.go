package core

import (
	"context"

	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/query"
	"github.com/kodelink/task-mcp/internal/types"
)

// ListParams is the mode/pagination pair every listing, search, and
// relationship endpoint accepts (spec §4.6).
type ListParams struct {
	Mode   string
	Limit  int
	Offset int
}

func (p ListParams) resolve() (query.Mode, query.Pagination, error) {
	mode, err := parseMode(p.Mode)
	if err != nil {
		return "", query.Pagination{}, err
	}
	page, err := parsePagination(p.Limit, p.Offset)
	if err != nil {
		return "", query.Pagination{}, err
	}
	return mode, page, nil
}

// CreateTaskArgs is the create_task call surface (spec §4.4).
type CreateTaskArgs struct {
	WorkspacePath  string
	Title          string
	Description    string
	Status         string
	Priority       string
	ParentTaskID   *int64
	DependsOn      []int64
	Tags           []string
	BlockerReason  string
	FileReferences []string
	CreatedBy      string
	GitRoot        string
	CWDAtCreation  string
	ProjectName    string
}

// CreateTask validates and inserts a new task, returning its details view.
func (c *Core) CreateTask(ctx context.Context, args CreateTaskArgs) (query.TaskView, error) {
	h, err := c.open(ctx, args.WorkspacePath)
	if err != nil {
		return query.TaskView{}, err
	}
	t, err := h.engine.CreateTask(ctx, engine.CreateTaskInput{
		Title:          args.Title,
		Description:    args.Description,
		Status:         types.Status(args.Status),
		Priority:       types.Priority(args.Priority),
		ParentTaskID:   args.ParentTaskID,
		DependsOn:      args.DependsOn,
		Tags:           args.Tags,
		BlockerReason:  args.BlockerReason,
		FileReferences: args.FileReferences,
		CreatedBy:      args.CreatedBy,
		WorkspacePath:  h.resolved.AbsPath,
		GitRoot:        args.GitRoot,
		CWDAtCreation:  args.CWDAtCreation,
		ProjectName:    args.ProjectName,
	})
	c.recordUsage(ctx, h.resolved.ID, "create_task", err == nil)
	if err != nil {
		return query.TaskView{}, err
	}
	return query.ProjectTask(t, query.ModeDetails), nil
}

// GetTask returns one task at mode (spec §4.4).
func (c *Core) GetTask(ctx context.Context, workspacePath string, taskID int64, mode string) (query.TaskView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.TaskView{}, err
	}
	m, err := parseMode(mode)
	if err != nil {
		return query.TaskView{}, err
	}
	t, err := h.engine.GetTask(ctx, taskID)
	c.recordUsage(ctx, h.resolved.ID, "get_task", err == nil)
	if err != nil {
		return query.TaskView{}, err
	}
	return query.ProjectTask(t, m), nil
}

// UpdateTaskArgs is the update_task call surface (spec §4.4); nil fields are
// left untouched.
type UpdateTaskArgs struct {
	Title          *string
	Description    *string
	Status         *string
	Priority       *string
	ParentTaskID   **int64
	DependsOn      *[]int64
	Tags           *[]string
	BlockerReason  *string
	FileReferences *[]string
}

// UpdateTask applies a partial update to taskID.
func (c *Core) UpdateTask(ctx context.Context, workspacePath string, taskID int64, args UpdateTaskArgs) (query.TaskView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.TaskView{}, err
	}
	patch := engine.TaskPatch{
		Title:          args.Title,
		Description:    args.Description,
		ParentTaskID:   args.ParentTaskID,
		DependsOn:      args.DependsOn,
		Tags:           args.Tags,
		BlockerReason:  args.BlockerReason,
		FileReferences: args.FileReferences,
	}
	if args.Status != nil {
		s := types.Status(*args.Status)
		patch.Status = &s
	}
	if args.Priority != nil {
		p := types.Priority(*args.Priority)
		patch.Priority = &p
	}
	t, err := h.engine.UpdateTask(ctx, taskID, patch)
	c.recordUsage(ctx, h.resolved.ID, "update_task", err == nil)
	if err != nil {
		return query.TaskView{}, err
	}
	return query.ProjectTask(t, query.ModeDetails), nil
}

// DeleteTaskResult is the delete_task response.
type DeleteTaskResult struct {
	DeletedTaskIDs []int64 `json:"deleted_task_ids"`
}

// DeleteTask soft-deletes taskID, optionally cascading to live descendants
// (spec §4.4).
func (c *Core) DeleteTask(ctx context.Context, workspacePath string, taskID int64, cascade bool) (DeleteTaskResult, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return DeleteTaskResult{}, err
	}
	res, err := h.engine.DeleteTask(ctx, taskID, cascade)
	c.recordUsage(ctx, h.resolved.ID, "delete_task", err == nil)
	if err != nil {
		return DeleteTaskResult{}, err
	}
	return DeleteTaskResult{DeletedTaskIDs: res.DeletedTaskIDs}, nil
}

// TaskFilterArgs is the filter set list_tasks/search_tasks accept.
type TaskFilterArgs struct {
	Status       *string
	Priority     *string
	ParentTaskID *int64
	Tags         []string
}

func (f TaskFilterArgs) toEngine() engine.TaskFilters {
	ef := engine.TaskFilters{ParentTaskID: f.ParentTaskID, Tags: f.Tags}
	if f.Status != nil {
		s := types.Status(*f.Status)
		ef.Status = &s
	}
	if f.Priority != nil {
		p := types.Priority(*f.Priority)
		ef.Priority = &p
	}
	return ef
}

// ListTasks returns a paginated, mode-projected, size-budgeted task listing
// (spec §4.4, §4.6).
func (c *Core) ListTasks(ctx context.Context, workspacePath string, filters TaskFilterArgs, list ListParams) (query.Envelope[query.TaskView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	tasks, err := h.engine.ListTasks(ctx, filters.toEngine())
	c.recordUsage(ctx, h.resolved.ID, "list_tasks", err == nil)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return c.envelopeTasks(ctx, tasks, mode, page)
}

// SearchTasks is ListTasks plus a free-text term (spec §4.4).
func (c *Core) SearchTasks(ctx context.Context, workspacePath, term string, filters TaskFilterArgs, list ListParams) (query.Envelope[query.TaskView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	tasks, err := h.engine.SearchTasks(ctx, term, filters.toEngine())
	c.recordUsage(ctx, h.resolved.ID, "search_tasks", err == nil)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return c.envelopeTasks(ctx, tasks, mode, page)
}

// GetBlockedTasks returns every blocked task (spec §4.4).
func (c *Core) GetBlockedTasks(ctx context.Context, workspacePath string, list ListParams) (query.Envelope[query.TaskView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	tasks, err := h.engine.GetBlockedTasks(ctx)
	c.recordUsage(ctx, h.resolved.ID, "get_blocked_tasks", err == nil)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return c.envelopeTasks(ctx, tasks, mode, page)
}

// GetNextTasks returns every ready todo task (spec §4.4).
func (c *Core) GetNextTasks(ctx context.Context, workspacePath string, list ListParams) (query.Envelope[query.TaskView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	tasks, err := h.engine.GetNextTasks(ctx)
	c.recordUsage(ctx, h.resolved.ID, "get_next_tasks", err == nil)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return c.envelopeTasks(ctx, tasks, mode, page)
}

// GetDependents returns every task that depends on taskID (SPEC_FULL
// supplemented feature #1).
func (c *Core) GetDependents(ctx context.Context, workspacePath string, taskID int64, list ListParams) (query.Envelope[query.TaskView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	tasks, err := h.engine.GetDependents(ctx, taskID)
	c.recordUsage(ctx, h.resolved.ID, "get_dependents", err == nil)
	if err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return c.envelopeTasks(ctx, tasks, mode, page)
}

// GetTaskTree returns the recursive, mode-projected expansion of rootID
// (spec §4.4).
func (c *Core) GetTaskTree(ctx context.Context, workspacePath string, rootID int64, mode string) (query.TaskNodeView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.TaskNodeView{}, err
	}
	m, err := parseMode(mode)
	if err != nil {
		return query.TaskNodeView{}, err
	}
	tree, err := h.engine.GetTaskTree(ctx, rootID)
	c.recordUsage(ctx, h.resolved.ID, "get_task_tree", err == nil)
	if err != nil {
		return query.TaskNodeView{}, err
	}
	view := query.ProjectTaskTree(tree, m)
	if checkErr := c.responseBudget().Check(ctx, view); checkErr != nil {
		return query.TaskNodeView{}, checkErr
	}
	return view, nil
}

// CleanupDeletedTasks purges tasks soft-deleted more than retentionDays ago
// (spec §4.4). retentionDays <= 0 falls back to the configured default.
func (c *Core) CleanupDeletedTasks(ctx context.Context, workspacePath string, retentionDays int) (int, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return 0, err
	}
	if retentionDays <= 0 {
		retentionDays = c.cfg.RetentionDays
	}
	purged, err := h.engine.CleanupDeletedTasks(ctx, retentionDays)
	c.recordUsage(ctx, h.resolved.ID, "cleanup_deleted_tasks", err == nil)
	return purged, err
}

// WorkspaceStatsView is the get_workspace_stats response (SPEC_FULL
// supplemented feature #4).
type WorkspaceStatsView struct {
	TasksByStatus       map[string]int `json:"tasks_by_status"`
	TasksByPriority      map[string]int `json:"tasks_by_priority"`
	EntitiesByType       map[string]int `json:"entities_by_type"`
	OpenDependencyEdges int            `json:"open_dependency_edges"`
	TotalLiveTasks      int            `json:"total_live_tasks"`
	TotalLiveEntities   int            `json:"total_live_entities"`
}

// GetWorkspaceStats rolls up the current workspace's live tasks/entities.
func (c *Core) GetWorkspaceStats(ctx context.Context, workspacePath string) (WorkspaceStatsView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return WorkspaceStatsView{}, err
	}
	stats, err := h.engine.GetWorkspaceStats(ctx)
	c.recordUsage(ctx, h.resolved.ID, "get_workspace_stats", err == nil)
	if err != nil {
		return WorkspaceStatsView{}, err
	}

	view := WorkspaceStatsView{
		TasksByStatus:       make(map[string]int, len(stats.TasksByStatus)),
		TasksByPriority:     make(map[string]int, len(stats.TasksByPriority)),
		EntitiesByType:      make(map[string]int, len(stats.EntitiesByType)),
		OpenDependencyEdges: stats.OpenDependencyEdges,
		TotalLiveTasks:      stats.TotalLiveTasks,
		TotalLiveEntities:   stats.TotalLiveEntities,
	}
	for k, v := range stats.TasksByStatus {
		view.TasksByStatus[string(k)] = v
	}
	for k, v := range stats.TasksByPriority {
		view.TasksByPriority[string(k)] = v
	}
	for k, v := range stats.EntitiesByType {
		view.EntitiesByType[string(k)] = v
	}
	return view, nil
}

// envelopeTasks projects, paginates, and size-checks a task slice — the
// shared tail of every task-listing endpoint.
func (c *Core) envelopeTasks(ctx context.Context, tasks []*types.Task, mode query.Mode, page query.Pagination) (query.Envelope[query.TaskView], error) {
	views := make([]query.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = query.ProjectTask(t, mode)
	}
	env := query.Paginate(views, page)
	if err := c.responseBudget().Check(ctx, env); err != nil {
		return query.Envelope[query.TaskView]{}, err
	}
	return env, nil
}
