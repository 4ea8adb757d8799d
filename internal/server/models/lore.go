package models

import "time"

// LoreCategories is the suggested category set for lore articles. The field
// itself is free-form; clients offer these as defaults.
var LoreCategories = []string{"History", "Religion", "Magic", "Culture", "Politics", "Other"}

// LoreArticle is a wiki-style article scoped to a world,
// ordered by (category, sort order, title).
type LoreArticle struct {
	ID        string     `json:"id"`
	WorldID   string     `json:"worldId"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  string     `json:"category"`
	SortOrder int        `json:"sortOrder"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
