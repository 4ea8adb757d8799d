// Package relationships provides the PostgreSQL-backed repository for the
// typed edges between entries. Edges are hard-deleted; the ordered pair
// (source_id, target_id) is unique. Read queries drop edges whose endpoints
// are soft-deleted, so trashing an entry hides its edges without touching
// them.
package relationships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/models"
)

// PostgresRepository implements relationship storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// Create inserts a new edge. Returns common.ErrAlreadyExists if an edge for
// the same ordered pair exists; the reverse direction is a different pair.
func (r *PostgresRepository) Create(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error) {
	query := `
		INSERT INTO entry_relationships (world_id, source_id, target_id, type, label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	e := *rel
	err := r.db.QueryRowContext(ctx, query, e.WorldID, e.SourceID, e.TargetID, e.Type, e.Label).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

// Upsert inserts an edge or, if the ordered pair already exists, updates its
// label and type in place. The graph editor relies on this to reconnect
// nodes without duplicate-key failures.
func (r *PostgresRepository) Upsert(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error) {
	query := `
		INSERT INTO entry_relationships (world_id, source_id, target_id, type, label)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id, target_id)
		DO UPDATE SET
			type = EXCLUDED.type,
			label = EXCLUDED.label,
			updated_at = now()
			WHERE entry_relationships.world_id = EXCLUDED.world_id
		RETURNING id, created_at, updated_at
	`
	e := *rel
	err := r.db.QueryRowContext(ctx, query, e.WorldID, e.SourceID, e.TargetID, e.Type, e.Label).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// conflict row belongs to another world; the where-clause blocked it
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

const relationshipSelect = `
		SELECT r.id, r.world_id, r.source_id, r.target_id, r.type, r.label, r.created_at, r.updated_at,
			s.title, s.type, t.title, t.type
		FROM entry_relationships r
		JOIN entries s ON s.id = r.source_id AND s.deleted_at IS NULL
		JOIN entries t ON t.id = r.target_id AND t.deleted_at IS NULL
`

// GetByID returns the edge with projected endpoints or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, worldID, id string) (*models.EntryRelationship, error) {
	query := relationshipSelect + ` WHERE r.id = $1 AND r.world_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, worldID))
}

// GetByPair returns the edge for the exact ordered pair or common.ErrNotFound.
func (r *PostgresRepository) GetByPair(ctx context.Context, worldID, sourceID, targetID string) (*models.EntryRelationship, error) {
	query := relationshipSelect + ` WHERE r.world_id = $1 AND r.source_id = $2 AND r.target_id = $3`
	return r.scanOne(r.db.QueryRowContext(ctx, query, worldID, sourceID, targetID))
}

// ListByWorld returns every edge of the world whose endpoints are both
// alive, newest first. Graphs are assumed small; there is no pagination.
func (r *PostgresRepository) ListByWorld(ctx context.Context, worldID string) ([]*models.EntryRelationship, error) {
	query := relationshipSelect + ` WHERE r.world_id = $1 ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EntryRelationship
	for rows.Next() {
		rel, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes the label and type of an existing edge.
func (r *PostgresRepository) Update(ctx context.Context, worldID, id string, label string, relType models.RelationshipType) error {
	query := `
		UPDATE entry_relationships SET label = $3, type = $4, updated_at = now()
		WHERE id = $1 AND world_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, worldID, label, relType)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes a single edge permanently.
func (r *PostgresRepository) Delete(ctx context.Context, worldID, id string) error {
	query := `DELETE FROM entry_relationships WHERE id = $1 AND world_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, worldID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the listed edges, returning how many were deleted.
// Ids outside the world are ignored by the where-clause rather than
// reported as errors.
func (r *PostgresRepository) DeleteByIDs(ctx context.Context, worldID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, worldID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := `DELETE FROM entry_relationships WHERE world_id = $1 AND id IN (` + strings.Join(placeholders, ", ") + `)`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.EntryRelationship, error) {
	rel, err := scanRelationship(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func scanRelationship(scan func(dest ...any) error) (*models.EntryRelationship, error) {
	var rel models.EntryRelationship
	var source, target models.EntryRef
	if err := scan(
		&rel.ID, &rel.WorldID, &rel.SourceID, &rel.TargetID, &rel.Type, &rel.Label,
		&rel.CreatedAt, &rel.UpdatedAt,
		&source.Title, &source.Type, &target.Title, &target.Type,
	); err != nil {
		return nil, err
	}
	source.ID = rel.SourceID
	target.ID = rel.TargetID
	rel.Source = &source
	rel.Target = &target
	return &rel, nil
}
