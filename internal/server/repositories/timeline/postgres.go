// Package timeline provides the PostgreSQL-backed repository for timeline
// events. The event date is free-form text so fictional calendars work;
// chronology comes from (sort_order, created_at).
package timeline

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

// PostgresRepository implements event storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, world_id, title, description, content, event_date, sort_order, importance, created_at, updated_at`

// Create inserts a new event and returns it with generated fields populated.
func (r *PostgresRepository) Create(ctx context.Context, event *models.TimelineEvent) (*models.TimelineEvent, error) {
	query := `
		INSERT INTO timeline_events (world_id, title, description, content, event_date, sort_order, importance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	e := *event
	err := r.db.QueryRowContext(ctx, query,
		e.WorldID, e.Title, e.Description, e.Content, e.Date, e.SortOrder, e.Importance).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

// GetByID returns the alive event or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, worldID, id string) (*models.TimelineEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM timeline_events WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
	var e models.TimelineEvent
	err := r.db.QueryRowContext(ctx, query, id, worldID).Scan(
		&e.ID, &e.WorldID, &e.Title, &e.Description, &e.Content,
		&e.Date, &e.SortOrder, &e.Importance, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

// ListByWorld returns the world's alive events in chronological order.
func (r *PostgresRepository) ListByWorld(ctx context.Context, worldID string) ([]*models.TimelineEvent, error) {
	query := `
		SELECT ` + eventColumns + ` FROM timeline_events
		WHERE world_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TimelineEvent
	for rows.Next() {
		var e models.TimelineEvent
		if err := rows.Scan(
			&e.ID, &e.WorldID, &e.Title, &e.Description, &e.Content,
			&e.Date, &e.SortOrder, &e.Importance, &e.CreatedAt, &e.UpdatedAt,
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

// Update persists the mutable fields of an alive event.
func (r *PostgresRepository) Update(ctx context.Context, event *models.TimelineEvent) error {
	query := `
		UPDATE timeline_events
		SET title = $3, description = $4, content = $5, event_date = $6, sort_order = $7, importance = $8, updated_at = now()
		WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		event.ID, event.WorldID, event.Title, event.Description, event.Content,
		event.Date, event.SortOrder, event.Importance)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// SoftDelete stamps the deletion time on an alive event.
func (r *PostgresRepository) SoftDelete(ctx context.Context, worldID, id string, at time.Time) error {
	query := `UPDATE timeline_events SET deleted_at = $3, updated_at = $3 WHERE id = $1 AND world_id = $2 AND deleted_at IS NULL`
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
