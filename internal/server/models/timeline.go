package models

import "time"

// Importance grades timeline events.
type Importance string

const (
	ImportanceMinor  Importance = "minor"
	ImportanceNormal Importance = "normal"
	ImportanceMajor  Importance = "major"
)

// ValidImportance reports whether i is one of the fixed enumeration.
func ValidImportance(i Importance) bool {
	return i == ImportanceMinor || i == ImportanceNormal || i == ImportanceMajor
}

// TimelineEvent is a chronological entry scoped to a world. Date is a
// free-form string so fictional calendars work; ordering uses
// (sort order, created at) instead.
type TimelineEvent struct {
	ID          string     `json:"id"`
	WorldID     string     `json:"worldId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Date        string     `json:"date"`
	SortOrder   int        `json:"sortOrder"`
	Importance  Importance `json:"importance"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
