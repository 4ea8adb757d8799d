package lore

import (
	"context"
	"time"

	"github.com/moduleforge/moduleforge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, article *models.LoreArticle) (*models.LoreArticle, error)
	GetByID(ctx context.Context, worldID, id string) (*models.LoreArticle, error)
	ListByWorld(ctx context.Context, worldID string) ([]*models.LoreArticle, error)
	Update(ctx context.Context, article *models.LoreArticle) error
	SoftDelete(ctx context.Context, worldID, id string, at time.Time) error
}
