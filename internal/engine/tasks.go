package engine

import (
	"context"
	"path/filepath"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

// CreateTask validates and inserts a new task (spec §4.4).
func (e *Engine) CreateTask(ctx context.Context, in CreateTaskInput) (*types.Task, error) {
	if in.Title == "" {
		return nil, errs.New(errs.InvalidInput, "title is required")
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = types.StatusTodo
	}
	if !status.IsValid() {
		return nil, errs.New(errs.InvalidInput, "invalid status %q", string(status))
	}
	priority := in.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, errs.New(errs.InvalidInput, "invalid priority %q", string(priority))
	}
	if status == types.StatusBlocked && in.BlockerReason == "" {
		return nil, errs.New(errs.BlockerReasonMissing, "status=blocked requires blocker_reason")
	}
	if status != types.StatusBlocked && in.BlockerReason != "" {
		return nil, errs.New(errs.Conflict, "blocker_reason must be empty unless status=blocked")
	}

	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	if in.ParentTaskID != nil {
		if _, err := idx.require(*in.ParentTaskID, "parent"); err != nil {
			return nil, err
		}
	}
	if err := validateDependsOn(idx, 0, in.DependsOn); err != nil {
		return nil, err
	}
	if err := checkDependencyGate(idx, status, in.DependsOn); err != nil {
		return nil, err
	}

	now := e.now()
	cwd := in.CWDAtCreation
	if cwd == "" {
		cwd = in.WorkspacePath
	}
	projectName := in.ProjectName
	if projectName == "" {
		projectName = filepath.Base(in.WorkspacePath)
	}

	t := &types.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         status,
		Priority:       priority,
		ParentTaskID:   in.ParentTaskID,
		DependsOn:      in.DependsOn,
		Tags:           types.NormalizeTags(in.Tags),
		BlockerReason:  in.BlockerReason,
		FileReferences: in.FileReferences,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		WorkspaceMetadata: &types.WorkspaceMetadata{
			WorkspacePath: in.WorkspacePath,
			GitRoot:       in.GitRoot,
			CWDAtCreation: cwd,
			ProjectName:   projectName,
		},
	}
	if status == types.StatusDone {
		t.CompletedAt = &now
	}

	if err := e.store.InsertTask(ctx, t); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "insert task")
	}
	return t, nil
}

// GetTask returns the live or deleted row for id, or NotFound if it doesn't
// exist at all (spec §4.4: get_task returns the row or NotFound; unlike
// list/search, a soft-deleted row is still readable by id for callers that
// already have it, e.g. validate_task_workspace).
func (e *Engine) GetTask(ctx context.Context, id int64) (*types.Task, error) {
	t, err := e.store.GetTask(ctx, id)
	if err != nil {
		if isNotFoundErr(err) {
			return nil, errs.New(errs.NotFound, "task %d not found", id)
		}
		return nil, errs.Wrap(errs.Internal, err, "get task %d", id)
	}
	return t, nil
}

// getLiveTask loads a task and fails NotFound if it's absent OR deleted,
// the stricter check most mutating operations need (spec §4.4 update_task:
// "fails NotFound if missing or soft-deleted").
func (e *Engine) getLiveTask(ctx context.Context, id int64) (*types.Task, error) {
	t, err := e.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsDeleted() {
		return nil, errs.New(errs.NotFound, "task %d not found", id)
	}
	return t, nil
}

// UpdateTask applies a partial update to task id, re-validating every
// invariant the changed fields touch (spec §4.4).
func (e *Engine) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*types.Task, error) {
	current, err := e.getLiveTask(ctx, id)
	if err != nil {
		return nil, err
	}

	working := *current // shallow copy; slices/pointers re-assigned below as needed

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, errs.New(errs.InvalidInput, "title is required")
		}
		working.Title = *patch.Title
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return nil, err
		}
		working.Description = *patch.Description
	}
	if patch.FileReferences != nil {
		working.FileReferences = *patch.FileReferences
	}
	if patch.Tags != nil {
		working.Tags = types.NormalizeTags(*patch.Tags)
	}

	statusChanged := false
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, errs.New(errs.InvalidInput, "invalid status %q", string(*patch.Status))
		}
		statusChanged = *patch.Status != current.Status
		working.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return nil, errs.New(errs.InvalidInput, "invalid priority %q", string(*patch.Priority))
		}
		working.Priority = *patch.Priority
	}
	if patch.BlockerReason != nil {
		working.BlockerReason = *patch.BlockerReason
	}

	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	// The task being updated is itself live (we just loaded it); make sure
	// self-reference checks see its current dependency/parent state even
	// though this snapshot predates the update.
	idx[current.ID] = current

	if statusChanged {
		switch working.Status {
		case types.StatusBlocked:
			if working.BlockerReason == "" {
				return nil, errs.New(errs.BlockerReasonMissing, "status=blocked requires blocker_reason")
			}
		default:
			if current.Status == types.StatusBlocked {
				working.BlockerReason = ""
			}
		}
		if working.Status == types.StatusInProgress || working.Status == types.StatusDone {
			if err := checkDependencyGate(idx, working.Status, working.DependsOn); err != nil {
				return nil, err
			}
		}
		if working.Status == types.StatusDone && current.Status != types.StatusDone {
			now := e.now()
			working.CompletedAt = &now
		}
		if working.Status != types.StatusDone && current.Status == types.StatusDone {
			working.CompletedAt = nil
		}
	} else if working.Status == types.StatusBlocked && working.BlockerReason == "" {
		return nil, errs.New(errs.BlockerReasonMissing, "status=blocked requires blocker_reason")
	}
	if working.Status != types.StatusBlocked && working.BlockerReason != "" {
		return nil, errs.New(errs.Conflict, "blocker_reason must be empty unless status=blocked")
	}

	if patch.ParentTaskID != nil {
		newParent := *patch.ParentTaskID
		if newParent == nil {
			working.ParentTaskID = nil
		} else {
			if *newParent == id {
				return nil, errs.New(errs.Cycle, "a task cannot be its own parent")
			}
			if _, err := idx.require(*newParent, "parent"); err != nil {
				return nil, err
			}
			if err := checkParentCycle(idx, id, *newParent); err != nil {
				return nil, err
			}
			working.ParentTaskID = newParent
		}
	}

	if patch.DependsOn != nil {
		newDepends := *patch.DependsOn
		if err := validateDependsOn(idx, id, newDepends); err != nil {
			return nil, err
		}
		if err := checkDependencyCycle(idx, id, newDepends); err != nil {
			return nil, err
		}
		working.DependsOn = newDepends
		if working.Status == types.StatusInProgress || working.Status == types.StatusDone {
			if err := checkDependencyGate(idx, working.Status, working.DependsOn); err != nil {
				return nil, err
			}
		}
	}

	working.UpdatedAt = e.now()
	// workspace_metadata never changes (spec §3); working already carries
	// current's pointer since it was shallow-copied.

	if err := e.store.UpdateTask(ctx, &working); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "update task %d", id)
	}
	return &working, nil
}

// DeleteTaskResult reports the ids soft-deleted by a delete_task call.
type DeleteTaskResult struct {
	DeletedTaskIDs []int64
}

// DeleteTask soft-deletes id (and, if cascade, its live descendants),
// soft-deleting owned task_entity_links along the way (spec §4.4).
func (e *Engine) DeleteTask(ctx context.Context, id int64, cascade bool) (*DeleteTaskResult, error) {
	if _, err := e.getLiveTask(ctx, id); err != nil {
		return nil, err
	}
	ids, err := e.store.SoftDeleteTaskCascade(ctx, id, cascade, e.now())
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "delete task %d", id)
	}
	return &DeleteTaskResult{DeletedTaskIDs: ids}, nil
}

// TaskFilters is the filter set list_tasks/search_tasks accept (spec §4.4;
// each listed tag must occur as a substring of the task's normalized tag
// string, conjunctively across every listed tag, SPEC_FULL supplemented
// feature #3).
type TaskFilters struct {
	Status       *types.Status
	Priority     *types.Priority
	ParentTaskID *int64
	Tags         []string
}

func (f TaskFilters) matches(t *types.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.ParentTaskID != nil {
		if t.ParentTaskID == nil || *t.ParentTaskID != *f.ParentTaskID {
			return false
		}
	}
	if len(f.Tags) > 0 {
		tagString := types.TagString(t.Tags)
		for _, want := range types.NormalizeTags(f.Tags) {
			if !containsFold(tagString, want) {
				return false
			}
		}
	}
	return true
}

// ListTasks returns every live task matching filters, ordered by priority
// descending then created_at ascending (spec §4.4).
func (e *Engine) ListTasks(ctx context.Context, filters TaskFilters) ([]*types.Task, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	var out []*types.Task
	for _, t := range idx {
		if filters.matches(t) {
			out = append(out, t)
		}
	}
	sortTasksByPriorityThenCreated(out)
	return out, nil
}

// SearchTasks is ListTasks plus a case-insensitive substring match of term
// against title or description (spec §4.4).
func (e *Engine) SearchTasks(ctx context.Context, term string, filters TaskFilters) ([]*types.Task, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	needle := lowerASCII(term)
	var out []*types.Task
	for _, t := range idx {
		if !filters.matches(t) {
			continue
		}
		if needle != "" && !containsFold(t.Title, needle) && !containsFold(t.Description, needle) {
			continue
		}
		out = append(out, t)
	}
	sortTasksByPriorityThenCreated(out)
	return out, nil
}

// GetBlockedTasks returns every status=blocked task, newest first (spec
// §4.4).
func (e *Engine) GetBlockedTasks(ctx context.Context) ([]*types.Task, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	var out []*types.Task
	for _, t := range idx {
		if t.Status == types.StatusBlocked {
			out = append(out, t)
		}
	}
	sortTasksNewestFirst(out)
	return out, nil
}

// GetNextTasks returns every status=todo task whose dependencies are all
// satisfied (empty or all done), ordered priority desc then created_at asc
// (spec §4.4).
func (e *Engine) GetNextTasks(ctx context.Context) ([]*types.Task, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	var out []*types.Task
	for _, t := range idx {
		if t.Status != types.StatusTodo {
			continue
		}
		ready := true
		for _, depID := range t.DependsOn {
			dep, ok := idx[depID]
			if !ok || dep.Status != types.StatusDone {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, t)
		}
	}
	sortTasksByPriorityThenCreated(out)
	return out, nil
}

// GetDependents returns every live task whose depends_on names taskID (the
// reverse dependency edge; SPEC_FULL supplemented feature #1).
func (e *Engine) GetDependents(ctx context.Context, taskID int64) ([]*types.Task, error) {
	idx, err := e.loadLiveTaskIndex(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := idx.require(taskID, "task"); err != nil {
		return nil, err
	}
	var out []*types.Task
	for _, depID := range dependentsOf(idx, taskID) {
		out = append(out, idx[depID])
	}
	sortTasksByPriorityThenCreated(out)
	return out, nil
}

// CleanupDeletedTasks permanently purges tasks soft-deleted more than
// retentionDays ago, along with their owned links (spec §4.4). A
// retentionDays of 0 purges every soft-deleted task; a negative value falls
// back to 30.
func (e *Engine) CleanupDeletedTasks(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 0 {
		retentionDays = 30
	}
	cutoff := e.now().AddDate(0, 0, -retentionDays)
	purged, err := e.store.PurgeDeletedTasks(ctx, cutoff)
	if err != nil {
		return 0, errs.Wrap(errs.Internal, err, "cleanup deleted tasks")
	}
	return purged, nil
}
