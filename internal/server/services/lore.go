package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/moduleforge/moduleforge/internal/sanitize"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
)

// LoreService implements guarded CRUD for wiki-style articles.
type LoreService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	guard *Guard
}

// NewLoreService constructs a LoreService.
func NewLoreService(db *sql.DB, repos repomanager.RepositoryManager, guard *Guard) *LoreService {
	return &LoreService{db: db, repos: repos, guard: guard}
}

// LoreUpdate carries the optional fields of a partial update.
type LoreUpdate struct {
	Title     *string
	Content   *string
	Category  *string
	SortOrder *int
}

// Create adds an article to the world.
func (s *LoreService) Create(ctx context.Context, worldID, userID, title, content, category string, sortOrder int) (*models.LoreArticle, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	article := &models.LoreArticle{
		WorldID:   worldID,
		Title:     title,
		Content:   sanitize.HTML(content),
		Category:  category,
		SortOrder: sortOrder,
	}
	return s.repos.Lore(s.db).Create(ctx, article)
}

// List returns the world's alive articles ordered by
// (category, sort order, title).
func (s *LoreService) List(ctx context.Context, worldID, userID string) ([]*models.LoreArticle, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	articles, err := s.repos.Lore(s.db).ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []*models.LoreArticle{}
	}
	return articles, nil
}

// Get returns a single alive article.
func (s *LoreService) Get(ctx context.Context, worldID, userID, id string) (*models.LoreArticle, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	return s.repos.Lore(s.db).GetByID(ctx, worldID, id)
}

// Update applies the present fields of upd to the article.
func (s *LoreService) Update(ctx context.Context, worldID, userID, id string, upd LoreUpdate) (*models.LoreArticle, error) {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return nil, err
	}
	repo := s.repos.Lore(s.db)
	article, err := repo.GetByID(ctx, worldID, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title, err := validateTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		article.Title = title
	}
	if upd.Content != nil {
		article.Content = sanitize.HTML(*upd.Content)
	}
	if upd.Category != nil {
		article.Category = *upd.Category
	}
	if upd.SortOrder != nil {
		article.SortOrder = *upd.SortOrder
	}
	if err := repo.Update(ctx, article); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, worldID, id)
}

// Delete soft-deletes an article.
func (s *LoreService) Delete(ctx context.Context, worldID, userID, id string) error {
	if _, err := s.guard.ResolveWorld(ctx, worldID, userID); err != nil {
		return err
	}
	return s.repos.Lore(s.db).SoftDelete(ctx, worldID, id, time.Now().UTC())
}
