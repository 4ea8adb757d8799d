package relationships

import (
	"context"

	"github.com/moduleforge/moduleforge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error)
	GetByID(ctx context.Context, worldID, id string) (*models.EntryRelationship, error)
	GetByPair(ctx context.Context, worldID, sourceID, targetID string) (*models.EntryRelationship, error)
	ListByWorld(ctx context.Context, worldID string) ([]*models.EntryRelationship, error)
	Update(ctx context.Context, worldID, id string, label string, relType models.RelationshipType) error
	Delete(ctx context.Context, worldID, id string) error
	DeleteByIDs(ctx context.Context, worldID string, ids []string) (int, error)
	Upsert(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error)
}
