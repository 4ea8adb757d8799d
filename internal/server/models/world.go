package models

import (
	"encoding/json"
	"time"
)

// World is the top-level owned container. Every entry, relationship, lore
// article and timeline event belongs to exactly one world and is reachable
// only through an alive world owned by the requester.
type World struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Content       string          `json:"content"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CoverImageURL string          `json:"coverImageUrl"`
	IsPublic      bool            `json:"isPublic"`
	DeletedAt     *time.Time      `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// EntryCount is the number of alive entries; populated on list
	// queries, zero elsewhere.
	EntryCount int `json:"entryCount"`
}
