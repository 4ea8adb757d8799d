package timeline

import (
	"context"
	"time"

	"github.com/moduleforge/moduleforge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.TimelineEvent) (*models.TimelineEvent, error)
	GetByID(ctx context.Context, worldID, id string) (*models.TimelineEvent, error)
	ListByWorld(ctx context.Context, worldID string) ([]*models.TimelineEvent, error)
	Update(ctx context.Context, event *models.TimelineEvent) error
	SoftDelete(ctx context.Context, worldID, id string, at time.Time) error
}
