// Package worlds provides the PostgreSQL-backed repository for worlds.
// All read queries exclude soft-deleted rows; a soft-deleted world is
// indistinguishable from an absent one at this layer.
package worlds

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

// PostgresRepository implements world storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const worldColumns = `id, owner_id, title, description, content, metadata, cover_image_url, is_public, created_at, updated_at`

// Create inserts a new world and returns it with generated fields populated.
func (r *PostgresRepository) Create(ctx context.Context, world *models.World) (*models.World, error) {
	query := `
		INSERT INTO worlds (owner_id, title, description, content, metadata, cover_image_url, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	w := *world
	err := r.db.QueryRowContext(ctx, query,
		w.OwnerID, w.Title, w.Description, w.Content, nullableJSON(w.Metadata), w.CoverImageURL, w.IsPublic).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &w, nil
}

// GetByID returns the alive world with the given id or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.World, error) {
	query := `SELECT ` + worldColumns + ` FROM worlds WHERE id = $1 AND deleted_at IS NULL`
	var w models.World
	var metadata []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.OwnerID, &w.Title, &w.Description, &w.Content, &metadata,
		&w.CoverImageURL, &w.IsPublic, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	w.Metadata = metadata
	return &w, nil
}

// List returns the owner's alive worlds ordered by last update, newest
// first, each carrying its alive entry count.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, f ListFilter) ([]*models.World, error) {
	query := `
		SELECT ` + worldColumns + `,
			(SELECT COUNT(*) FROM entries e WHERE e.world_id = worlds.id AND e.deleted_at IS NULL) AS entry_count
		FROM worlds
		WHERE owner_id = $1 AND deleted_at IS NULL
			AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.World
	for rows.Next() {
		var w models.World
		var metadata []byte
		if err := rows.Scan(
			&w.ID, &w.OwnerID, &w.Title, &w.Description, &w.Content, &metadata,
			&w.CoverImageURL, &w.IsPublic, &w.CreatedAt, &w.UpdatedAt, &w.EntryCount,
		); err != nil {
			return nil, err
		}
		w.Metadata = metadata
		result = append(result, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of alive worlds the listing would match without
// pagination.
func (r *PostgresRepository) Count(ctx context.Context, ownerID string, search string) (int, error) {
	query := `
		SELECT COUNT(*) FROM worlds
		WHERE owner_id = $1 AND deleted_at IS NULL
			AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, ownerID, search).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountEntriesByType returns the alive entry count per entry type for a world.
// Types with no entries are absent from the map.
func (r *PostgresRepository) CountEntriesByType(ctx context.Context, worldID string) (map[models.EntryType]int, error) {
	query := `
		SELECT type, COUNT(*) FROM entries
		WHERE world_id = $1 AND deleted_at IS NULL
		GROUP BY type
	`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EntryType]int)
	for rows.Next() {
		var t models.EntryType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Update persists the mutable fields of an alive world.
func (r *PostgresRepository) Update(ctx context.Context, world *models.World) error {
	query := `
		UPDATE worlds
		SET title = $2, description = $3, content = $4, metadata = $5, cover_image_url = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		world.ID, world.Title, world.Description, world.Content, nullableJSON(world.Metadata), world.CoverImageURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// SoftDelete stamps the deletion time on an alive world. The caller is
// responsible for cascading to entries inside the same transaction.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE worlds SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, at)
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

// nullableJSON keeps absent metadata as SQL NULL instead of an empty string.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
