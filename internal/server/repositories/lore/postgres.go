// Package lore provides the PostgreSQL-backed repository for lore articles.
package lore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/models"
)

// PostgresRepository implements lore storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const loreColumns = `id, world_id, title, content, category, sort_order, created_at, updated_at`

// Create inserts a new article and returns it with generated fields populated.
func (r *PostgresRepository) Create(ctx context.Context, article *models.LoreArticle) (*models.LoreArticle, error) {
	query := `
		INSERT INTO lore_articles (world_id, title, content, category, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	a := *article
	err := r.db.QueryRowContext(ctx, query, a.WorldID, a.Title, a.Content, a.Category, a.SortOrder).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

// GetByID returns the alive article or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, worldID, id string) (*models.LoreArticle, error) {
	query := `SELECT ` + loreColumns + ` FROM lore_articles WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
	var a models.LoreArticle
	err := r.db.QueryRowContext(ctx, query, id, worldID).Scan(
		&a.ID, &a.WorldID, &a.Title, &a.Content, &a.Category, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

// ListByWorld returns the world's alive articles ordered by
// (category, sort order, title).
func (r *PostgresRepository) ListByWorld(ctx context.Context, worldID string) ([]*models.LoreArticle, error) {
	query := `
		SELECT ` + loreColumns + ` FROM lore_articles
		WHERE world_id = $1 AND deleted_at IS NULL
		ORDER BY category ASC, sort_order ASC, title ASC
	`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LoreArticle
	for rows.Next() {
		var a models.LoreArticle
		if err := rows.Scan(
			&a.ID, &a.WorldID, &a.Title, &a.Content, &a.Category, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update persists the mutable fields of an alive article.
func (r *PostgresRepository) Update(ctx context.Context, article *models.LoreArticle) error {
	query := `
		UPDATE lore_articles
		SET title = $3, content = $4, category = $5, sort_order = $6, updated_at = now()
		WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		article.ID, article.WorldID, article.Title, article.Content, article.Category, article.SortOrder)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// SoftDelete stamps the deletion time on an alive article.
func (r *PostgresRepository) SoftDelete(ctx context.Context, worldID, id string, at time.Time) error {
	query := `UPDATE lore_articles SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, worldID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
