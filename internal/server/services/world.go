package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/sanitize"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
	"github.com/moduleforge/moduleforge/internal/server/repositories/worlds"
)

// WorldService implements world CRUD, search and the cascading soft delete.
type WorldService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	guard *Guard
}

// NewWorldService constructs a WorldService.
func NewWorldService(db *sql.DB, repos repomanager.RepositoryManager, guard *Guard) *WorldService {
	return &WorldService{db: db, repos: repos, guard: guard}
}

// WorldPage is the listing envelope.
type WorldPage struct {
	Worlds     []*models.World `json:"worlds"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// WorldUpdate carries the optional fields of a partial update. A nil field
// means "leave unchanged"; metadata presence is signalled by a non-nil
// RawMessage.
type WorldUpdate struct {
	Title         *string
	Description   *string
	Content       *string
	Metadata      json.RawMessage
	CoverImageURL *string
}

// Create makes a new private world owned by the caller.
func (s *WorldService) Create(ctx context.Context, ownerID, title, description string) (*models.World, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return nil, err
	}
	world := &models.World{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
	}
	return s.repos.Worlds(s.db).Create(ctx, world)
}

// List returns the caller's alive worlds, optionally filtered by a
// case-insensitive substring match on title or description, newest update
// first, with per-world alive entry counts.
func (s *WorldService) List(ctx context.Context, ownerID, search string, page, limit int) (*WorldPage, error) {
	page, limit = normalizePage(page, limit)

	repo := s.repos.Worlds(s.db)
	total, err := repo.Count(ctx, ownerID, search)
	if err != nil {
		return nil, err
	}
	items, err := repo.List(ctx, ownerID, worlds.ListFilter{
		Search: search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.World{}
	}
	return &WorldPage{
		Worlds:     items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Get resolves the world through the ownership guard and attaches the
// per-type alive entry counts.
func (s *WorldService) Get(ctx context.Context, worldID, userID string) (*models.World, map[models.EntryType]int, error) {
	world, err := s.guard.ResolveWorld(ctx, worldID, userID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.repos.Worlds(s.db).CountEntriesByType(ctx, worldID)
	if err != nil {
		return nil, nil, err
	}
	return world, counts, nil
}

// Update applies the present fields of upd to the world. Each field is
// validated independently; rich-text content is sanitized before
// persistence.
func (s *WorldService) Update(ctx context.Context, worldID, userID string, upd WorldUpdate) (*models.World, error) {
	world, err := s.guard.ResolveWorld(ctx, worldID, userID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title, err := validateTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		world.Title = title
	}
	if upd.Description != nil {
		description, err := validateDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		world.Description = description
	}
	if upd.Content != nil {
		world.Content = sanitize.HTML(*upd.Content)
	}
	if upd.Metadata != nil {
		world.Metadata = upd.Metadata
	}
	if upd.CoverImageURL != nil {
		world.CoverImageURL = *upd.CoverImageURL
	}

	repo := s.repos.Worlds(s.db)
	if err := repo.Update(ctx, world); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, worldID)
}

// Delete soft-deletes the world and all its alive entries with the same
// timestamp inside a single transaction, so they transition together or not
// at all.
func (s *WorldService) Delete(ctx context.Context, worldID, userID string) error {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return err
	}
	now := time.Now().UTC()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Entries(tx).SoftDeleteByWorld(ctx, worldID, now); err != nil {
			return err
		}
		return s.repos.Worlds(tx).SoftDelete(ctx, worldID, now)
	})
}
