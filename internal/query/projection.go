// Package query is the query & projection layer (spec §4.6): it turns the
// domain engine's full rows into the mode-projected, paginated, size-budgeted
// shapes every listing/search/tree/relationship endpoint returns. It knows
// nothing about task-state invariants — that's internal/engine's job — only
// about shaping already-valid rows for a caller.
package query

import (
	"time"

	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

const rfc3339Nano = time.RFC3339Nano

func formatTimeRFC3339(t time.Time) string { return t.Format(rfc3339Nano) }

func formatTimePtrRFC3339(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(rfc3339Nano)
	return &s
}

// Mode selects how much of a row is projected into a response (spec §4.6).
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeDetails Mode = "details"
)

// ParseMode validates a caller-supplied mode string, defaulting to summary
// when empty (spec §4.6: "default summary"; any other value -> InvalidMode).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeSummary, nil
	case ModeSummary, ModeDetails:
		return Mode(s), nil
	default:
		return "", errs.New(errs.InvalidMode, "mode must be %q or %q, got %q", ModeSummary, ModeDetails, s)
	}
}

// TaskView projects a task for response shaping (spec §4.6).
type TaskView struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	Tags         []string  `json:"tags"`
	ParentTaskID *int64    `json:"parent_task_id,omitempty"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`

	Description       *string                   `json:"description,omitempty"`
	DependsOn         []int64                   `json:"depends_on,omitempty"`
	BlockerReason     *string                   `json:"blocker_reason,omitempty"`
	FileReferences    []string                  `json:"file_references,omitempty"`
	CreatedBy         *string                   `json:"created_by,omitempty"`
	CompletedAt       *string                   `json:"completed_at,omitempty"`
	DeletedAt         *string                   `json:"deleted_at,omitempty"`
	WorkspaceMetadata *types.WorkspaceMetadata  `json:"workspace_metadata,omitempty"`
}

// ProjectTask builds the mode-appropriate view of t (spec §4.6: "Task
// summary fields: id, title, status, priority, tags, parent_task_id,
// created_at, updated_at. Task details: summary ∪ {...}").
func ProjectTask(t *types.Task, mode Mode) TaskView {
	v := TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		Tags:         t.Tags,
		ParentTaskID: t.ParentTaskID,
		CreatedAt:    formatTimeRFC3339(t.CreatedAt),
		UpdatedAt:    formatTimeRFC3339(t.UpdatedAt),
	}
	if mode != ModeDetails {
		return v
	}
	v.Description = &t.Description
	v.DependsOn = t.DependsOn
	v.BlockerReason = &t.BlockerReason
	v.FileReferences = t.FileReferences
	v.CreatedBy = &t.CreatedBy
	v.CompletedAt = formatTimePtrRFC3339(t.CompletedAt)
	v.DeletedAt = formatTimePtrRFC3339(t.DeletedAt)
	v.WorkspaceMetadata = t.WorkspaceMetadata
	return v
}

// EntityView projects an entity for response shaping (spec §4.6).
type EntityView struct {
	ID         int64    `json:"id"`
	EntityType string   `json:"entity_type"`
	Name       string   `json:"name"`
	Identifier *string  `json:"identifier,omitempty"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"created_at"`

	Description *string `json:"description,omitempty"`
	Metadata    *string `json:"metadata,omitempty"`
	CreatedBy   *string `json:"created_by,omitempty"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
	DeletedAt   *string `json:"deleted_at,omitempty"`
}

// ProjectEntity builds the mode-appropriate view of en (spec §4.6: "Entity
// summary: id, entity_type, name, identifier, tags, created_at. Entity
// details: summary ∪ {...}").
func ProjectEntity(en *types.Entity, mode Mode) EntityView {
	v := EntityView{
		ID:         en.ID,
		EntityType: string(en.EntityType),
		Name:       en.Name,
		Identifier: en.Identifier,
		Tags:       en.Tags,
		CreatedAt:  formatTimeRFC3339(en.CreatedAt),
	}
	if mode != ModeDetails {
		return v
	}
	v.Description = &en.Description
	v.Metadata = &en.Metadata
	v.CreatedBy = &en.CreatedBy
	v.UpdatedAt = formatTimePtrRFC3339(&en.UpdatedAt)
	v.DeletedAt = formatTimePtrRFC3339(en.DeletedAt)
	return v
}

// TaskEntityRelationView is a get_task_entities row: an entity view plus the
// link metadata spec §4.6 requires "regardless of mode".
type TaskEntityRelationView struct {
	EntityView
	LinkCreatedAt string `json:"link_created_at"`
	LinkCreatedBy string `json:"link_created_by"`
}

// ProjectTaskEntity builds one get_task_entities row.
func ProjectTaskEntity(v engine.TaskEntityView, mode Mode) TaskEntityRelationView {
	return TaskEntityRelationView{
		EntityView:    ProjectEntity(v.Entity, mode),
		LinkCreatedAt: v.LinkCreatedAt,
		LinkCreatedBy: v.LinkCreatedBy,
	}
}

// EntityTaskRelationView is a get_entity_tasks row.
type EntityTaskRelationView struct {
	TaskView
	LinkCreatedAt string `json:"link_created_at"`
	LinkCreatedBy string `json:"link_created_by"`
}

// ProjectEntityTask builds one get_entity_tasks row.
func ProjectEntityTask(v engine.EntityTaskView, mode Mode) EntityTaskRelationView {
	return EntityTaskRelationView{
		TaskView:      ProjectTask(v.Task, mode),
		LinkCreatedAt: v.LinkCreatedAt,
		LinkCreatedBy: v.LinkCreatedBy,
	}
}

// TaskNodeView is the projected, recursive shape of a get_task_tree result
// (spec §4.6: "Task tree inherits mode for the root and every descendant
// recursively").
type TaskNodeView struct {
	TaskView
	Children []TaskNodeView `json:"children,omitempty"`
}

// ProjectTaskTree recursively projects every node of tree at mode.
func ProjectTaskTree(tree *engine.TaskNode, mode Mode) TaskNodeView {
	v := TaskNodeView{TaskView: ProjectTask(tree.Task, mode)}
	for _, child := range tree.Children {
		v.Children = append(v.Children, ProjectTaskTree(child, mode))
	}
	return v
}
