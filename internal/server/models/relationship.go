package models

import "time"

// RelationshipType enumerates the edge kinds of the relationship graph.
type RelationshipType string

const (
	RelationshipTypeRelated   RelationshipType = "related"
	RelationshipTypeParent    RelationshipType = "parent"
	RelationshipTypeChild     RelationshipType = "child"
	RelationshipTypeAllies    RelationshipType = "allies"
	RelationshipTypeEnemies   RelationshipType = "enemies"
	RelationshipTypeLocatedIn RelationshipType = "located_in"
	RelationshipTypeBelongsTo RelationshipType = "belongs_to"
	RelationshipTypeOwns      RelationshipType = "owns"
	RelationshipTypeCreated   RelationshipType = "created"
	RelationshipTypeMemberOf  RelationshipType = "member_of"
)

// RelationshipTypes lists every valid relationship type.
var RelationshipTypes = []RelationshipType{
	RelationshipTypeRelated,
	RelationshipTypeParent,
	RelationshipTypeChild,
	RelationshipTypeAllies,
	RelationshipTypeEnemies,
	RelationshipTypeLocatedIn,
	RelationshipTypeBelongsTo,
	RelationshipTypeOwns,
	RelationshipTypeCreated,
	RelationshipTypeMemberOf,
}

// ValidRelationshipType reports whether t is one of the fixed enumeration.
func ValidRelationshipType(t RelationshipType) bool {
	for _, v := range RelationshipTypes {
		if v == t {
			return true
		}
	}
	return false
}

// EntryRelationship is a directed, typed edge between two entries of the
// same world. The ordered pair (SourceID, TargetID) is unique; the world id
// is denormalized onto the edge for per-world queries. Edges are hard
// deleted, there is no trash for them.
type EntryRelationship struct {
	ID        string           `json:"id"`
	WorldID   string           `json:"worldId"`
	SourceID  string           `json:"sourceId"`
	TargetID  string           `json:"targetId"`
	Type      RelationshipType `json:"type"`
	Label     string           `json:"label"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// Source and Target are endpoint projections attached by read queries.
	Source *EntryRef `json:"source,omitempty"`
	Target *EntryRef `json:"target,omitempty"`
}
