package engine

import (
	"context"
	"time"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/types"
)

// CreateEntity validates and inserts a new entity (spec §4.5).
func (e *Engine) CreateEntity(ctx context.Context, in CreateEntityInput) (*types.Entity, error) {
	if err := mustValidEntityType(in.EntityType); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, errs.New(errs.InvalidInput, "name is required")
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Identifier != nil {
		conflict, err := e.store.EntityConflictExists(ctx, in.EntityType, in.Identifier, 0)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "check entity conflict")
		}
		if conflict {
			return nil, errs.New(errs.Conflict, "entity (%s, %s) already exists", in.EntityType, *in.Identifier)
		}
	}

	now := e.now()
	en := &types.Entity{
		EntityType:  in.EntityType,
		Name:        in.Name,
		Identifier:  in.Identifier,
		Description: in.Description,
		Metadata:    in.Metadata,
		Tags:        types.NormalizeTags(in.Tags),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.InsertEntity(ctx, en); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "insert entity")
	}
	return en, nil
}

// GetEntity returns the row (live or soft-deleted) for id, or NotFound (spec
// §4.5).
func (e *Engine) GetEntity(ctx context.Context, id int64) (*types.Entity, error) {
	en, err := e.store.GetEntity(ctx, id)
	if err != nil {
		if isNotFoundErr(err) {
			return nil, errs.New(errs.NotFound, "entity %d not found", id)
		}
		return nil, errs.Wrap(errs.Internal, err, "get entity %d", id)
	}
	return en, nil
}

func (e *Engine) getLiveEntity(ctx context.Context, id int64) (*types.Entity, error) {
	en, err := e.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if en.IsDeleted() {
		return nil, errs.New(errs.NotFound, "entity %d not found", id)
	}
	return en, nil
}

// UpdateEntity applies a partial update (spec §4.5).
func (e *Engine) UpdateEntity(ctx context.Context, id int64, patch EntityPatch) (*types.Entity, error) {
	current, err := e.getLiveEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	working := *current

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errs.New(errs.InvalidInput, "name is required")
		}
		working.Name = *patch.Name
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return nil, err
		}
		working.Description = *patch.Description
	}
	if patch.Metadata != nil {
		working.Metadata = *patch.Metadata
	}
	if patch.Tags != nil {
		working.Tags = types.NormalizeTags(*patch.Tags)
	}
	if patch.Identifier != nil {
		newIdentifier := *patch.Identifier
		if newIdentifier != nil {
			conflict, err := e.store.EntityConflictExists(ctx, working.EntityType, newIdentifier, id)
			if err != nil {
				return nil, errs.Wrap(errs.Internal, err, "check entity conflict")
			}
			if conflict {
				return nil, errs.New(errs.Conflict, "entity (%s, %s) already exists", working.EntityType, *newIdentifier)
			}
		}
		working.Identifier = newIdentifier
	}

	working.UpdatedAt = e.now()
	if err := e.store.UpdateEntity(ctx, &working); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "update entity %d", id)
	}
	return &working, nil
}

// DeleteEntityResult reports the link count an entity delete cascaded over.
type DeleteEntityResult struct {
	DeletedLinks int
}

// DeleteEntity soft-deletes id, always cascading soft-delete to every live
// link referencing it; there is no cascade flag (spec §4.5).
func (e *Engine) DeleteEntity(ctx context.Context, id int64) (*DeleteEntityResult, error) {
	if _, err := e.getLiveEntity(ctx, id); err != nil {
		return nil, err
	}
	n, err := e.store.SoftDeleteEntityCascade(ctx, id, e.now())
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "delete entity %d", id)
	}
	return &DeleteEntityResult{DeletedLinks: n}, nil
}

// EntityFilters is the filter set list_entities accepts (spec §4.5).
type EntityFilters struct {
	EntityType *types.EntityType
	Tags       []string
}

func (f EntityFilters) matches(en *types.Entity) bool {
	if f.EntityType != nil && en.EntityType != *f.EntityType {
		return false
	}
	if len(f.Tags) > 0 {
		have := make(map[string]struct{}, len(en.Tags))
		for _, tag := range en.Tags {
			have[tag] = struct{}{}
		}
		for _, want := range types.NormalizeTags(f.Tags) {
			if _, ok := have[want]; !ok {
				return false
			}
		}
	}
	return true
}

// ListEntities returns every live entity matching filters, created_at desc
// (spec §4.5).
func (e *Engine) ListEntities(ctx context.Context, filters EntityFilters) ([]*types.Entity, error) {
	all, err := e.store.ListAllEntities(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list entities")
	}
	var out []*types.Entity
	for _, en := range all {
		if en.IsDeleted() || !filters.matches(en) {
			continue
		}
		out = append(out, en)
	}
	sortEntitiesNewestFirst(out)
	return out, nil
}

// SearchEntities is ListEntities plus a case-insensitive substring match of
// term against name or identifier (spec §4.5).
func (e *Engine) SearchEntities(ctx context.Context, term string, entityType *types.EntityType) ([]*types.Entity, error) {
	all, err := e.store.ListAllEntities(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "search entities")
	}
	needle := lowerASCII(term)
	filters := EntityFilters{EntityType: entityType}
	var out []*types.Entity
	for _, en := range all {
		if en.IsDeleted() || !filters.matches(en) {
			continue
		}
		identMatch := en.Identifier != nil && containsFold(*en.Identifier, needle)
		if needle != "" && !containsFold(en.Name, needle) && !identMatch {
			continue
		}
		out = append(out, en)
	}
	sortEntitiesNewestFirst(out)
	return out, nil
}

// LinkEntityToTask links task and entity (spec §4.5). Both sides must exist
// and be live; re-linking an already-linked, non-deleted pair is a Conflict.
func (e *Engine) LinkEntityToTask(ctx context.Context, taskID, entityID int64, createdBy string) (*types.TaskEntityLink, error) {
	if _, err := e.getLiveTask(ctx, taskID); err != nil {
		return nil, err
	}
	if _, err := e.getLiveEntity(ctx, entityID); err != nil {
		return nil, err
	}
	exists, err := e.store.LinkExists(ctx, taskID, entityID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "check existing link")
	}
	if exists {
		return nil, errs.New(errs.Conflict, "task %d is already linked to entity %d", taskID, entityID)
	}
	l := &types.TaskEntityLink{TaskID: taskID, EntityID: entityID, CreatedBy: createdBy, CreatedAt: e.now()}
	if err := e.store.InsertLink(ctx, l); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "insert link")
	}
	return l, nil
}

// TaskEntityView pairs an entity with the link metadata spec §4.6 requires
// on every relationship row regardless of mode.
type TaskEntityView struct {
	Entity          *types.Entity
	LinkCreatedAt   string
	LinkCreatedBy   string
}

// EntityTaskView is the reverse of TaskEntityView.
type EntityTaskView struct {
	Task          *types.Task
	LinkCreatedAt string
	LinkCreatedBy string
}

// GetTaskEntities returns every live entity linked to taskID, newest link
// first, with link metadata attached (spec §4.5).
func (e *Engine) GetTaskEntities(ctx context.Context, taskID int64) ([]TaskEntityView, error) {
	if _, err := e.getLiveTask(ctx, taskID); err != nil {
		return nil, err
	}
	links, err := e.store.ListLinksForTask(ctx, taskID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list links for task %d", taskID)
	}
	var out []TaskEntityView
	for _, l := range links {
		en, err := e.store.GetEntity(ctx, l.EntityID)
		if err != nil {
			if isNotFoundErr(err) {
				continue
			}
			return nil, errs.Wrap(errs.Internal, err, "get linked entity %d", l.EntityID)
		}
		if en.IsDeleted() {
			continue
		}
		out = append(out, TaskEntityView{
			Entity:        en,
			LinkCreatedAt: l.CreatedAt.Format(time.RFC3339Nano),
			LinkCreatedBy: l.CreatedBy,
		})
	}
	return out, nil
}

// GetEntityTasks returns every live task linked to entityID, optionally
// filtered by status/priority, newest link first, with link metadata
// attached (spec §4.5).
func (e *Engine) GetEntityTasks(ctx context.Context, entityID int64, status *types.Status, priority *types.Priority) ([]EntityTaskView, error) {
	if _, err := e.getLiveEntity(ctx, entityID); err != nil {
		return nil, err
	}
	links, err := e.store.ListLinksForEntity(ctx, entityID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list links for entity %d", entityID)
	}
	var out []EntityTaskView
	for _, l := range links {
		t, err := e.store.GetTask(ctx, l.TaskID)
		if err != nil {
			if isNotFoundErr(err) {
				continue
			}
			return nil, errs.Wrap(errs.Internal, err, "get linked task %d", l.TaskID)
		}
		if t.IsDeleted() {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		if priority != nil && t.Priority != *priority {
			continue
		}
		out = append(out, EntityTaskView{
			Task:          t,
			LinkCreatedAt: l.CreatedAt.Format(time.RFC3339Nano),
			LinkCreatedBy: l.CreatedBy,
		})
	}
	return out, nil
}
