package repomanager

import (
	"context"
	"database/sql"

	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/repositories/entries"
	"github.com/moduleforge/moduleforge/internal/server/repositories/lore"
	"github.com/moduleforge/moduleforge/internal/server/repositories/relationships"
	"github.com/moduleforge/moduleforge/internal/server/repositories/timeline"
	"github.com/moduleforge/moduleforge/internal/server/repositories/users"
	"github.com/moduleforge/moduleforge/internal/server/repositories/worlds"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several repositories inside one transaction by handing each the same tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Worlds(db dbx.DBTX) worlds.Repository
	Entries(db dbx.DBTX) entries.Repository
	Relationships(db dbx.DBTX) relationships.Repository
	Lore(db dbx.DBTX) lore.Repository
	Timeline(db dbx.DBTX) timeline.Repository
}
