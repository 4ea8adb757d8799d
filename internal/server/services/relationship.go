package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/logging"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
)

// RelationshipService implements CRUD for the typed edges between entries
// and the bulk reconciliation behind the interactive graph editor.
type RelationshipService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	guard  *Guard
	logger logging.Logger
}

// NewRelationshipService constructs a RelationshipService.
func NewRelationshipService(db *sql.DB, repos repomanager.RepositoryManager, guard *Guard, logger logging.Logger) *RelationshipService {
	return &RelationshipService{db: db, repos: repos, guard: guard, logger: logger}
}

// RelationshipInput carries the fields of a create or bulk descriptor. An
// empty ID means "create or upsert by ordered pair"; a set ID means "update
// that edge's label and type".
type RelationshipInput struct {
	ID       string                  `json:"id"`
	SourceID string                  `json:"sourceId"`
	TargetID string                  `json:"targetId"`
	Type     models.RelationshipType `json:"type"`
	Label    string                  `json:"label"`
}

// RelationshipUpdate carries the optional fields of a partial update.
type RelationshipUpdate struct {
	Label *string
	Type  *models.RelationshipType
}

// BulkResult reports the partial outcome of a bulk save.
type BulkResult struct {
	Saved   int `json:"saved"`
	Deleted int `json:"deleted"`
}

// Create adds a directed edge between two alive entries of the world. The
// ordered pair must be unused; the reverse direction is a separate edge.
func (s *RelationshipService) Create(ctx context.Context, worldID, userID string, in RelationshipInput) (*models.EntryRelationship, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	rel, err := s.buildEdge(ctx, worldID, in)
	if err != nil {
		return nil, err
	}
	created, err := s.repos.Relationships(s.db).Create(ctx, rel)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: relationship already exists", common.ErrValidation)
		}
		return nil, err
	}
	created.Source = rel.Source
	created.Target = rel.Target
	return created, nil
}

// List returns every edge of the world with projected endpoints, newest
// first. Edges with a soft-deleted endpoint are excluded.
func (s *RelationshipService) List(ctx context.Context, worldID, userID string) ([]*models.EntryRelationship, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	rels, err := s.repos.Relationships(s.db).ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if rels == nil {
		rels = []*models.EntryRelationship{}
	}
	return rels, nil
}

// Update changes the label and/or type of an existing edge.
func (s *RelationshipService) Update(ctx context.Context, worldID, userID, id string, upd RelationshipUpdate) (*models.EntryRelationship, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	repo := s.repos.Relationships(s.db)
	rel, err := repo.GetByID(ctx, worldID, id)
	if err != nil {
		return nil, err
	}
	if upd.Label != nil {
		rel.Label = *upd.Label
	}
	if upd.Type != nil {
		if !models.ValidRelationshipType(*upd.Type) {
			return nil, fmt.Errorf("%w: invalid relationship type %q", common.ErrValidation, *upd.Type)
		}
		rel.Type = *upd.Type
	}
	if err := repo.Update(ctx, worldID, id, rel.Label, rel.Type); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, worldID, id)
}

// Delete removes an edge permanently; edges have no trash semantics.
func (s *RelationshipService) Delete(ctx context.Context, worldID, userID, id string) error {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return err
	}
	return s.repos.Relationships(s.db).Delete(ctx, worldID, id)
}

// BulkSave reconciles a client-held edge set against server truth in one
// call: edges in deletedIDs are removed (ids outside the world are ignored
// by the delete's where-clause), then each descriptor is applied — update
// by id when one is given, otherwise an upsert keyed on the (source,
// target) unique pair so a freshly drawn connection over an existing edge
// updates it instead of failing on the duplicate key.
//
// The upserts run independently; a descriptor that fails validation or
// persistence is skipped and simply not counted. The result reports how
// many edges were saved and deleted.
func (s *RelationshipService) BulkSave(ctx context.Context, worldID, userID string, inputs []RelationshipInput, deletedIDs []string) (*BulkResult, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	repo := s.repos.Relationships(s.db)

	deleted, err := repo.DeleteByIDs(ctx, worldID, deletedIDs)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Deleted: deleted}
	for _, in := range inputs {
		if in.ID != "" {
			relType := in.Type
			if relType == "" {
				relType = models.RelationshipTypeRelated
			}
			if !models.ValidRelationshipType(relType) {
				s.logger.Warn(ctx, "bulk save: skipping edge with invalid type", "id", in.ID, "type", in.Type)
				continue
			}
			if err := repo.Update(ctx, worldID, in.ID, in.Label, relType); err != nil {
				s.logger.Warn(ctx, "bulk save: update failed", "id", in.ID, "error", err)
				continue
			}
			result.Saved++
			continue
		}

		rel, err := s.buildEdge(ctx, worldID, in)
		if err != nil {
			s.logger.Warn(ctx, "bulk save: skipping invalid edge",
				"source", in.SourceID, "target", in.TargetID, "error", err)
			continue
		}
		if _, err := repo.Upsert(ctx, rel); err != nil {
			s.logger.Warn(ctx, "bulk save: upsert failed",
				"source", in.SourceID, "target", in.TargetID, "error", err)
			continue
		}
		result.Saved++
	}
	return result, nil
}

// buildEdge validates a descriptor without an id: both endpoints must be
// given, exist, be alive and belong to the world; the type must be in the
// enumeration (defaulting to "related" when absent). Returns the edge with
// endpoint projections attached.
func (s *RelationshipService) buildEdge(ctx context.Context, worldID string, in RelationshipInput) (*models.EntryRelationship, error) {
	if in.SourceID == "" || in.TargetID == "" {
		return nil, fmt.Errorf("%w: sourceId and targetId are required", common.ErrValidation)
	}
	relType := in.Type
	if relType == "" {
		relType = models.RelationshipTypeRelated
	}
	if !models.ValidRelationshipType(relType) {
		return nil, fmt.Errorf("%w: invalid relationship type %q", common.ErrValidation, in.Type)
	}

	entryRepo := s.repos.Entries(s.db)
	source, err := entryRepo.GetAliveRef(ctx, worldID, in.SourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: source entry not found in this world", common.ErrValidation)
	}
	target, err := entryRepo.GetAliveRef(ctx, worldID, in.TargetID)
	if err != nil {
		return nil, fmt.Errorf("%w: target entry not found in this world", common.ErrValidation)
	}

	return &models.EntryRelationship{
		WorldID:  worldID,
		SourceID: in.SourceID,
		TargetID: in.TargetID,
		Type:     relType,
		Label:    in.Label,
		Source:   source,
		Target:   target,
	}, nil
}
