package engine

import "github.com/kodelink/task-mcp/internal/types"

// CreateTaskInput is the flat argument record for create_task (spec §4.4).
// workspace_metadata fields are supplied by the caller (internal/core, which
// owns the resolved workspace) rather than invented here.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         types.Status // zero value -> todo
	Priority       types.Priority // zero value -> medium
	ParentTaskID   *int64
	DependsOn      []int64
	Tags           []string
	BlockerReason  string
	FileReferences []string
	CreatedBy      string

	WorkspacePath string
	GitRoot       string
	CWDAtCreation string
	ProjectName   string
}

// TaskPatch is a partial update for update_task (spec §4.4). Every field is
// a pointer (or pointer-to-pointer, for the one field whose valid value set
// includes nil): a nil field means "leave untouched"; a non-nil field means
// "set to this value", including the zero value.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *types.Status
	Priority       *types.Priority
	ParentTaskID   **int64 // nil: untouched. *ParentTaskID == nil: clear parent. else: new parent.
	DependsOn      *[]int64
	Tags           *[]string
	BlockerReason  *string
	FileReferences *[]string
}
