// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/migrations"
	"github.com/moduleforge/moduleforge/internal/server/repositories/entries"
	"github.com/moduleforge/moduleforge/internal/server/repositories/lore"
	"github.com/moduleforge/moduleforge/internal/server/repositories/relationships"
	"github.com/moduleforge/moduleforge/internal/server/repositories/timeline"
	"github.com/moduleforge/moduleforge/internal/server/repositories/users"
	"github.com/moduleforge/moduleforge/internal/server/repositories/worlds"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Worlds returns a worlds.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Worlds(db dbx.DBTX) worlds.Repository {
	return worlds.NewPostgresRepository(db)
}

// Entries returns an entries.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

// Relationships returns a relationships.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Relationships(db dbx.DBTX) relationships.Repository {
	return relationships.NewPostgresRepository(db)
}

// Lore returns a lore.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Lore(db dbx.DBTX) lore.Repository {
	return lore.NewPostgresRepository(db)
}

// Timeline returns a timeline.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Timeline(db dbx.DBTX) timeline.Repository {
	return timeline.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
