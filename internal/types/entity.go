package types

import "time"

// EntityType distinguishes file entities (paths) from generic ones (vendors,
// other domain objects) — spec §3.
type EntityType string

const (
	EntityTypeFile  EntityType = "file"
	EntityTypeOther EntityType = "other"
)

// IsValid reports whether t is a recognized entity type.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeFile, EntityTypeOther:
		return true
	default:
		return false
	}
}

// Entity is a typed, linkable domain object (spec §3).
type Entity struct {
	ID         int64
	EntityType EntityType
	Name       string
	Identifier *string // nil never collides with another nil under the uniqueness invariant
	Description string
	Metadata   string // opaque, byte-exact JSON string (spec §3, §6)
	Tags       []string
	CreatedBy  string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the entity is soft-deleted.
func (e *Entity) IsDeleted() bool { return e.DeletedAt != nil }

// TaskEntityLink is the many-to-many association row between tasks and
// entities (spec §3).
type TaskEntityLink struct {
	ID        int64
	TaskID    int64
	EntityID  int64
	CreatedBy string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the link is soft-deleted.
func (l *TaskEntityLink) IsDeleted() bool { return l.DeletedAt != nil }
