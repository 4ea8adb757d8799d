package worlds

import (
	"context"
	"time"

	"github.com/moduleforge/moduleforge/internal/server/models"
)

// ListFilter narrows and pages the owner's world listing. Search matches
// title or description case-insensitively; zero value means no search.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, world *models.World) (*models.World, error)
	GetByID(ctx context.Context, id string) (*models.World, error)
	List(ctx context.Context, ownerID string, f ListFilter) ([]*models.World, error)
	Count(ctx context.Context, ownerID string, search string) (int, error)
	CountEntriesByType(ctx context.Context, worldID string) (map[models.EntryType]int, error)
	Update(ctx context.Context, world *models.World) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
