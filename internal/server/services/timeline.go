package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/sanitize"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
)

// TimelineService implements guarded CRUD for chronological events.
type TimelineService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	guard *Guard
}

// NewTimelineService constructs a TimelineService.
func NewTimelineService(db *sql.DB, repos repomanager.RepositoryManager, guard *Guard) *TimelineService {
	return &TimelineService{db: db, repos: repos, guard: guard}
}

// TimelineCreate carries the fields of a new event.
type TimelineCreate struct {
	Title       string
	Description string
	Content     string
	Date        string
	SortOrder   int
	Importance  models.Importance
}

// TimelineUpdate carries the optional fields of a partial update.
type TimelineUpdate struct {
	Title       *string
	Description *string
	Content     *string
	Date        *string
	SortOrder   *int
	Importance  *models.Importance
}

// Create adds an event to the world. Date is required but free-form;
// importance defaults to normal.
func (s *TimelineService) Create(ctx context.Context, worldID, userID string, in TimelineCreate) (*models.TimelineEvent, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", common.ErrValidation)
	}
	importance := in.Importance
	if importance == "" {
		importance = models.ImportanceNormal
	}
	if !models.ValidImportance(importance) {
		return nil, fmt.Errorf("%w: invalid importance %q", common.ErrValidation, in.Importance)
	}
	event := &models.TimelineEvent{
		WorldID:     worldID,
		Title:       title,
		Description: description,
		Content:     sanitize.HTML(in.Content),
		Date:        date,
		SortOrder:   in.SortOrder,
		Importance:  importance,
	}
	return s.repos.Timeline(s.db).Create(ctx, event)
}

// List returns the world's alive events in chronological order.
func (s *TimelineService) List(ctx context.Context, worldID, userID string) ([]*models.TimelineEvent, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	events, err := s.repos.Timeline(s.db).ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.TimelineEvent{}
	}
	return events, nil
}

// Get returns a single alive event.
func (s *TimelineService) Get(ctx context.Context, worldID, userID, id string) (*models.TimelineEvent, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	return s.repos.Timeline(s.db).GetByID(ctx, worldID, id)
}

// Update applies the present fields of upd to the event.
func (s *TimelineService) Update(ctx context.Context, worldID, userID, id string, upd TimelineUpdate) (*models.TimelineEvent, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	repo := s.repos.Timeline(s.db)
	event, err := repo.GetByID(ctx, worldID, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title, err := validateTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		event.Title = title
	}
	if upd.Description != nil {
		description, err := validateDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		event.Description = description
	}
	if upd.Content != nil {
		event.Content = sanitize.HTML(*upd.Content)
	}
	if upd.Date != nil {
		date := strings.TrimSpace(*upd.Date)
		if date == "" {
			return nil, fmt.Errorf("%w: date is required", common.ErrValidation)
		}
		event.Date = date
	}
	if upd.SortOrder != nil {
		event.SortOrder = *upd.SortOrder
	}
	if upd.Importance != nil {
		if !models.ValidImportance(*upd.Importance) {
			return nil, fmt.Errorf("%w: invalid importance %q", common.ErrValidation, *upd.Importance)
		}
		event.Importance = *upd.Importance
	}
	if err := repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, worldID, id)
}

// Delete soft-deletes an event.
func (s *TimelineService) Delete(ctx context.Context, worldID, userID, id string) error {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return err
	}
	return s.repos.Timeline(s.db).SoftDelete(ctx, worldID, id, time.Now().UTC())
}
