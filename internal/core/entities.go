package core

import (
	"context"

	"github.com/kodelink/task-mcp/internal/engine"
	"github.com/kodelink/task-mcp/internal/query"
	"github.com/kodelink/task-mcp/internal/types"
)

// CreateEntityArgs is the create_entity call surface (spec §4.5).
type CreateEntityArgs struct {
	WorkspacePath string
	EntityType    string
	Name          string
	Identifier    *string
	Description   string
	Metadata      string
	Tags          []string
	CreatedBy     string
}

// CreateEntity validates and inserts a new entity.
func (c *Core) CreateEntity(ctx context.Context, args CreateEntityArgs) (query.EntityView, error) {
	h, err := c.open(ctx, args.WorkspacePath)
	if err != nil {
		return query.EntityView{}, err
	}
	en, err := h.engine.CreateEntity(ctx, engine.CreateEntityInput{
		EntityType:  types.EntityType(args.EntityType),
		Name:        args.Name,
		Identifier:  args.Identifier,
		Description: args.Description,
		Metadata:    args.Metadata,
		Tags:        args.Tags,
		CreatedBy:   args.CreatedBy,
	})
	c.recordUsage(ctx, h.resolved.ID, "create_entity", err == nil)
	if err != nil {
		return query.EntityView{}, err
	}
	return query.ProjectEntity(en, query.ModeDetails), nil
}

// GetEntity returns one entity at mode (spec §4.5).
func (c *Core) GetEntity(ctx context.Context, workspacePath string, entityID int64, mode string) (query.EntityView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.EntityView{}, err
	}
	m, err := parseMode(mode)
	if err != nil {
		return query.EntityView{}, err
	}
	en, err := h.engine.GetEntity(ctx, entityID)
	c.recordUsage(ctx, h.resolved.ID, "get_entity", err == nil)
	if err != nil {
		return query.EntityView{}, err
	}
	return query.ProjectEntity(en, m), nil
}

// UpdateEntityArgs is the update_entity call surface; nil fields are left
// untouched.
type UpdateEntityArgs struct {
	Name        *string
	Identifier  **string
	Description *string
	Metadata    *string
	Tags        *[]string
}

// UpdateEntity applies a partial update to entityID.
func (c *Core) UpdateEntity(ctx context.Context, workspacePath string, entityID int64, args UpdateEntityArgs) (query.EntityView, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.EntityView{}, err
	}
	en, err := h.engine.UpdateEntity(ctx, entityID, engine.EntityPatch{
		Name:        args.Name,
		Identifier:  args.Identifier,
		Description: args.Description,
		Metadata:    args.Metadata,
		Tags:        args.Tags,
	})
	c.recordUsage(ctx, h.resolved.ID, "update_entity", err == nil)
	if err != nil {
		return query.EntityView{}, err
	}
	return query.ProjectEntity(en, query.ModeDetails), nil
}

// DeleteEntityResult is the delete_entity response.
type DeleteEntityResult struct {
	DeletedLinks int `json:"deleted_links"`
}

// DeleteEntity soft-deletes entityID, cascading to every live link (spec
// §4.5).
func (c *Core) DeleteEntity(ctx context.Context, workspacePath string, entityID int64) (DeleteEntityResult, error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return DeleteEntityResult{}, err
	}
	res, err := h.engine.DeleteEntity(ctx, entityID)
	c.recordUsage(ctx, h.resolved.ID, "delete_entity", err == nil)
	if err != nil {
		return DeleteEntityResult{}, err
	}
	return DeleteEntityResult{DeletedLinks: res.DeletedLinks}, nil
}

// EntityFilterArgs is the filter set list_entities/search_entities accept.
type EntityFilterArgs struct {
	EntityType *string
	Tags       []string
}

func (f EntityFilterArgs) toEngine() engine.EntityFilters {
	ef := engine.EntityFilters{Tags: f.Tags}
	if f.EntityType != nil {
		t := types.EntityType(*f.EntityType)
		ef.EntityType = &t
	}
	return ef
}

// ListEntities returns a paginated, mode-projected, size-budgeted entity
// listing (spec §4.5, §4.6).
func (c *Core) ListEntities(ctx context.Context, workspacePath string, filters EntityFilterArgs, list ListParams) (query.Envelope[query.EntityView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	entities, err := h.engine.ListEntities(ctx, filters.toEngine())
	c.recordUsage(ctx, h.resolved.ID, "list_entities", err == nil)
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	return c.envelopeEntities(ctx, entities, mode, page)
}

// SearchEntities is ListEntities plus a free-text term (spec §4.5).
func (c *Core) SearchEntities(ctx context.Context, workspacePath, term string, entityType *string, list ListParams) (query.Envelope[query.EntityView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	var et *types.EntityType
	if entityType != nil {
		t := types.EntityType(*entityType)
		et = &t
	}
	entities, err := h.engine.SearchEntities(ctx, term, et)
	c.recordUsage(ctx, h.resolved.ID, "search_entities", err == nil)
	if err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	return c.envelopeEntities(ctx, entities, mode, page)
}

// LinkEntityToTask links taskID and entityID (spec §4.5).
func (c *Core) LinkEntityToTask(ctx context.Context, workspacePath string, taskID, entityID int64, createdBy string) error {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return err
	}
	_, err = h.engine.LinkEntityToTask(ctx, taskID, entityID, createdBy)
	c.recordUsage(ctx, h.resolved.ID, "link_entity_to_task", err == nil)
	return err
}

// GetTaskEntities returns every live entity linked to taskID (spec §4.5).
func (c *Core) GetTaskEntities(ctx context.Context, workspacePath string, taskID int64, list ListParams) (query.Envelope[query.TaskEntityRelationView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.TaskEntityRelationView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.TaskEntityRelationView]{}, err
	}
	rows, err := h.engine.GetTaskEntities(ctx, taskID)
	c.recordUsage(ctx, h.resolved.ID, "get_task_entities", err == nil)
	if err != nil {
		return query.Envelope[query.TaskEntityRelationView]{}, err
	}
	views := make([]query.TaskEntityRelationView, len(rows))
	for i, r := range rows {
		views[i] = query.ProjectTaskEntity(r, mode)
	}
	env := query.Paginate(views, page)
	if err := c.responseBudget().Check(ctx, env); err != nil {
		return query.Envelope[query.TaskEntityRelationView]{}, err
	}
	return env, nil
}

// GetEntityTasks returns every live task linked to entityID, optionally
// filtered by status/priority (spec §4.5).
func (c *Core) GetEntityTasks(ctx context.Context, workspacePath string, entityID int64, status, priority *string, list ListParams) (query.Envelope[query.EntityTaskRelationView], error) {
	h, err := c.open(ctx, workspacePath)
	if err != nil {
		return query.Envelope[query.EntityTaskRelationView]{}, err
	}
	mode, page, err := list.resolve()
	if err != nil {
		return query.Envelope[query.EntityTaskRelationView]{}, err
	}
	var st *types.Status
	if status != nil {
		s := types.Status(*status)
		st = &s
	}
	var pr *types.Priority
	if priority != nil {
		p := types.Priority(*priority)
		pr = &p
	}
	rows, err := h.engine.GetEntityTasks(ctx, entityID, st, pr)
	c.recordUsage(ctx, h.resolved.ID, "get_entity_tasks", err == nil)
	if err != nil {
		return query.Envelope[query.EntityTaskRelationView]{}, err
	}
	views := make([]query.EntityTaskRelationView, len(rows))
	for i, r := range rows {
		views[i] = query.ProjectEntityTask(r, mode)
	}
	env := query.Paginate(views, page)
	if err := c.responseBudget().Check(ctx, env); err != nil {
		return query.Envelope[query.EntityTaskRelationView]{}, err
	}
	return env, nil
}

func (c *Core) envelopeEntities(ctx context.Context, entities []*types.Entity, mode query.Mode, page query.Pagination) (query.Envelope[query.EntityView], error) {
	views := make([]query.EntityView, len(entities))
	for i, en := range entities {
		views[i] = query.ProjectEntity(en, mode)
	}
	env := query.Paginate(views, page)
	if err := c.responseBudget().Check(ctx, env); err != nil {
		return query.Envelope[query.EntityView]{}, err
	}
	return env, nil
}
