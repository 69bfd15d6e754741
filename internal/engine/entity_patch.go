package engine

import "github.com/kodelink/task-mcp/internal/types"

// CreateEntityInput is the flat argument record for create_entity (spec
// §4.5).
type CreateEntityInput struct {
	EntityType  types.EntityType
	Name        string
	Identifier  *string
	Description string
	Metadata    string // already canonicalized to its stored string form
	Tags        []string
	CreatedBy   string
}

// EntityPatch is a partial update for update_entity (spec §4.5), following
// the same nil-means-untouched convention as TaskPatch.
type EntityPatch struct {
	Name        *string
	Identifier  **string
	Description *string
	Metadata    *string
	Tags        *[]string
}
