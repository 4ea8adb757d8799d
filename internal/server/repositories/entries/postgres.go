// Package entries provides the PostgreSQL-backed repository for world
// entries. Metadata fields are serialized as a JSONB array on the row.
package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry and returns it with generated fields populated.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata marshal error: %w", err)
	}
	query := `
		INSERT INTO entries (world_id, type, title, description, content, metadata, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	e := *entry
	err = r.db.QueryRowContext(ctx, query,
		e.WorldID, e.Type, e.Title, e.Description, e.Content, metadata, e.CoverImageURL).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

// GetByID returns the full alive entry, including content and metadata, or
// common.ErrNotFound if it is absent, soft-deleted or in another world.
func (r *PostgresRepository) GetByID(ctx context.Context, worldID, entryID string) (*models.Entry, error) {
	query := `
		SELECT id, world_id, type, title, description, content, metadata, cover_image_url, created_at, updated_at
		FROM entries
		WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL
	`
	var e models.Entry
	var metadata []byte
	err := r.db.QueryRowContext(ctx, query, entryID, worldID).Scan(
		&e.ID, &e.WorldID, &e.Type, &e.Title, &e.Description, &e.Content,
		&metadata, &e.CoverImageURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
		return nil, fmt.Errorf("metadata unmarshal error: %w", err)
	}
	return &e, nil
}

// GetAliveRef returns the {id, title, type} projection of an alive entry in
// the given world, or common.ErrNotFound. Relationship endpoint checks use
// this to reject dead or foreign endpoints.
func (r *PostgresRepository) GetAliveRef(ctx context.Context, worldID, entryID string) (*models.EntryRef, error) {
	query := `SELECT id, title, type FROM entries WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
	var ref models.EntryRef
	err := r.db.QueryRowContext(ctx, query, entryID, worldID).Scan(&ref.ID, &ref.Title, &ref.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &ref, nil
}

const listWhere = `
		WHERE world_id = $1 AND deleted_at IS NULL
			AND ($2 = '' OR type = $2)
			AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
`

// List returns summary projections of alive entries, newest update first.
// Content and metadata are intentionally omitted.
func (r *PostgresRepository) List(ctx context.Context, worldID string, f ListFilter) ([]*models.EntrySummary, error) {
	query := `
		SELECT id, world_id, type, title, description, cover_image_url, created_at, updated_at
		FROM entries` + listWhere + `
		ORDER BY updated_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, query, worldID, string(f.Type), f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EntrySummary
	for rows.Next() {
		var e models.EntrySummary
		if err := rows.Scan(
			&e.ID, &e.WorldID, &e.Type, &e.Title, &e.Description,
			&e.CoverImageURL, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of alive entries the listing would match without
// pagination.
func (r *PostgresRepository) Count(ctx context.Context, worldID string, f ListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM entries` + listWhere
	var n int
	if err := r.db.QueryRowContext(ctx, query, worldID, string(f.Type), f.Search).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SearchByTitle returns up to limit alive entries whose title contains the
// query, alphabetically, projected for link autocomplete.
func (r *PostgresRepository) SearchByTitle(ctx context.Context, worldID, query string, limit int) ([]*models.EntryRef, error) {
	q := `
		SELECT id, title, type FROM entries
		WHERE world_id = $1 AND deleted_at IS NULL AND title ILIKE '%' || $2 || '%'
		ORDER BY title ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, worldID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EntryRef
	for rows.Next() {
		var ref models.EntryRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.Type); err != nil {
			return nil, err
		}
		result = append(result, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update persists the mutable fields of an alive entry. The type column is
// never written after creation.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("metadata marshal error: %w", err)
	}
	query := `
		UPDATE entries
		SET title = $3, description = $4, content = $5, metadata = $6, cover_image_url = $7, updated_at = now()
		WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.WorldID, entry.Title, entry.Description, entry.Content, metadata, entry.CoverImageURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// SoftDelete stamps the deletion time on a single alive entry.
func (r *PostgresRepository) SoftDelete(ctx context.Context, worldID, entryID string, at time.Time) error {
	query := `UPDATE entries SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, entryID, worldID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// SoftDeleteByWorld stamps the deletion time on every alive entry of a
// world. Zero matched rows is fine (empty world); runs inside the world
// deletion transaction.
func (r *PostgresRepository) SoftDeleteByWorld(ctx context.Context, worldID string, at time.Time) error {
	query := `UPDATE entries SET deleted_at = $2, updated_at = $2 WHERE world_id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, worldID, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
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
