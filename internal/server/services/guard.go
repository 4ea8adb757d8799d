// Package services implements the business rules of ModuleForge: the
// ownership guard, world/entry/relationship/lore/timeline operations and
// account handling. Services validate and authorize before mutating; the
// first failing check short-circuits with a sentinel error from
// internal/common and no partial write occurs. The one exception is
// relationship bulk save, which reports partial outcomes by design.
package services

import (
	"database/sql"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"

	"context"
)

// Guard is the single authorization boundary of the system. Every
// world-scoped operation resolves the world through it before touching
// child rows; there are no row-level permissions below the world.
type Guard struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

// NewGuard constructs the shared ownership guard.
func NewGuard(db *sql.DB, repos repomanager.RepositoryManager) *Guard {
	return &Guard{db: db, repos: repos}
}

// ResolveWorld returns the world if it is alive and owned by userID.
// A missing or soft-deleted world yields common.ErrNotFound; an alive world
// owned by someone else yields common.ErrForbidden.
func (g *Guard) ResolveWorld(ctx context.Context, worldID, userID string) (*models.World, error) {
	world, err := g.repos.Worlds(g.db).GetByID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if world.OwnerID != userID {
		return nil, common.ErrForbidden
	}
	return world, nil
}
