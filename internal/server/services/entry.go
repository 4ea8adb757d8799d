package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/sanitize"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/entries"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
)

// linkSearchLimit caps the autocomplete result set.
const linkSearchLimit = 10

// EntryService implements entry CRUD, filtered listing and the lightweight
// title search behind link autocomplete.
type EntryService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	guard *Guard
}

// NewEntryService constructs an EntryService.
func NewEntryService(db *sql.DB, repos repomanager.RepositoryManager, guard *Guard) *EntryService {
	return &EntryService{db: db, repos: repos, guard: guard}
}

// EntryPage is the listing envelope; items are summary projections.
type EntryPage struct {
	Entries    []*models.EntrySummary `json:"entries"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
}

// EntryUpdate carries the optional fields of a partial update. Type is
// absent on purpose: an entry's type is immutable.
type EntryUpdate struct {
	Title         *string
	Description   *string
	Content       *string
	Metadata      []models.MetadataField
	CoverImageURL *string
}

// Create makes a new entry under the world, seeding metadata from the
// type's default field table.
func (s *EntryService) Create(ctx context.Context, worldID, userID string, entryType models.EntryType, title, description string) (*models.Entry, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	if !models.ValidEntryType(entryType) {
		return nil, fmt.Errorf("%w: invalid entry type %q", common.ErrValidation, entryType)
	}
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return nil, err
	}
	entry := &models.Entry{
		WorldID:     worldID,
		Type:        entryType,
		Title:       title,
		Description: description,
		Metadata:    models.DefaultMetadataFields(entryType, uuid.NewString),
	}
	return s.repos.Entries(s.db).Create(ctx, entry)
}

// List returns summary projections of the world's alive entries, newest
// update first. An invalid type filter is silently dropped rather than
// rejected, so stale clients degrade to an unfiltered listing.
func (s *EntryService) List(ctx context.Context, worldID, userID string, entryType, search string, page, limit int) (*EntryPage, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)

	filter := entries.ListFilter{
		Search: search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if models.ValidEntryType(models.EntryType(entryType)) {
		filter.Type = models.EntryType(entryType)
	}

	repo := s.repos.Entries(s.db)
	total, err := repo.Count(ctx, worldID, filter)
	if err != nil {
		return nil, err
	}
	items, err := repo.List(ctx, worldID, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.EntrySummary{}
	}
	return &EntryPage{
		Entries:    items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Get returns the full entry, including content and metadata.
func (s *EntryService) Get(ctx context.Context, worldID, userID, entryID string) (*models.Entry, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	return s.repos.Entries(s.db).GetByID(ctx, worldID, entryID)
}

// SearchForLinking returns up to ten alive entries whose title contains
// query, alphabetically, projected to {id, title, type} for autocomplete.
// An empty query yields an empty result rather than the whole world.
func (s *EntryService) SearchForLinking(ctx context.Context, worldID, userID, query string) ([]*models.EntryRef, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.EntryRef{}, nil
	}
	refs, err := s.repos.Entries(s.db).SearchByTitle(ctx, worldID, query, linkSearchLimit)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []*models.EntryRef{}
	}
	return refs, nil
}

// Update applies the present fields of upd to the entry. Content is
// sanitized; default metadata fields survive a metadata replacement.
func (s *EntryService) Update(ctx context.Context, worldID, userID, entryID string, upd EntryUpdate) (*models.Entry, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	repo := s.repos.Entries(s.db)
	entry, err := repo.GetByID(ctx, worldID, entryID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title, err := validateTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		entry.Title = title
	}
	if upd.Description != nil {
		description, err := validateDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		entry.Description = description
	}
	if upd.Content != nil {
		entry.Content = sanitize.HTML(*upd.Content)
	}
	if upd.Metadata != nil {
		entry.Metadata = mergeMetadata(entry.Metadata, upd.Metadata)
	}
	if upd.CoverImageURL != nil {
		entry.CoverImageURL = *upd.CoverImageURL
	}

	if err := repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, worldID, entryID)
}

// Delete soft-deletes a single entry. Relationships touching it are left in
// place and filtered out of reads while the endpoint is dead.
func (s *EntryService) Delete(ctx context.Context, worldID, userID, entryID string) error {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return err
	}
	return s.repos.Entries(s.db).SoftDelete(ctx, worldID, entryID, time.Now().UTC())
}

// mergeMetadata replaces the entry's metadata with the submitted list while
// re-adding any default field the client dropped: default fields are not
// user-deletable.
func mergeMetadata(current, submitted []models.MetadataField) []models.MetadataField {
	seen := make(map[string]bool, len(submitted))
	for _, f := range submitted {
		seen[f.ID] = true
	}
	merged := make([]models.MetadataField, 0, len(submitted))
	for _, f := range current {
		if f.IsDefault && !seen[f.ID] {
			merged = append(merged, f)
		}
	}
	return append(merged, submitted...)
}
