package entries

import (
	"context"
	"time"

	"github.com/moduleforge/moduleforge/internal/server/models"
)

// ListFilter narrows and pages an entry listing within a world. Type is
// applied only when non-empty; Search matches title or description
// case-insensitively.
type ListFilter struct {
	Type   models.EntryType
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, worldID, entryID string) (*models.Entry, error)
	GetAliveRef(ctx context.Context, worldID, entryID string) (*models.EntryRef, error)
	List(ctx context.Context, worldID string, f ListFilter) ([]*models.EntrySummary, error)
	Count(ctx context.Context, worldID string, f ListFilter) (int, error)
	SearchByTitle(ctx context.Context, worldID, query string, limit int) ([]*models.EntryRef, error)
	Update(ctx context.Context, entry *models.Entry) error
	SoftDelete(ctx context.Context, worldID, entryID string, at time.Time) error
	SoftDeleteByWorld(ctx context.Context, worldID string, at time.Time) error
}
