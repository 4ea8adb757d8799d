package relationships

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_DuplicatePair(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+entry_relationships`).
		WithArgs("w-1", "a", "b", "allies", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.EntryRelationship{
		WorldID: "w-1", SourceID: "a", TargetID: "b", Type: models.RelationshipTypeAllies,
	})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpsert_OnConflictUpdates(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`ON\s+CONFLICT\s+\(source_id,\s*target_id\)`).
		WithArgs("w-1", "a", "b", "enemies", "turned").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("r-1", now, now))

	got, err := repo.Upsert(context.Background(), &models.EntryRelationship{
		WorldID: "w-1", SourceID: "a", TargetID: "b",
		Type: models.RelationshipTypeEnemies, Label: "turned",
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if got.ID != "r-1" {
		t.Fatalf("unexpected relationship: %+v", got)
	}
}

func TestUpsert_ConflictInOtherWorld(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// the conditional DO UPDATE refuses the cross-world conflict row,
	// so nothing comes back
	mock.ExpectQuery(`ON\s+CONFLICT\s+\(source_id,\s*target_id\)`).
		WithArgs("w-2", "a", "b", "related", "").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Upsert(context.Background(), &models.EntryRelationship{
		WorldID: "w-2", SourceID: "a", TargetID: "b", Type: models.RelationshipTypeRelated,
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByWorld_ProjectsEndpoints(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "world_id", "source_id", "target_id", "type", "label", "created_at", "updated_at",
		"s_title", "s_type", "t_title", "t_type",
	}).AddRow("r-1", "w-1", "a", "b", "allies", "sworn", now, now, "Alpha", "character", "Beta", "character")

	mock.ExpectQuery(`JOIN\s+entries\s+s\s+ON\s+s\.id\s*=\s*r\.source_id\s+AND\s+s\.deleted_at\s+IS\s+NULL`).
		WithArgs("w-1").
		WillReturnRows(rows)

	got, err := repo.ListByWorld(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("ListByWorld error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected relationships: %+v", got)
	}
	rel := got[0]
	if rel.Source == nil || rel.Source.ID != "a" || rel.Source.Title != "Alpha" {
		t.Fatalf("unexpected source projection: %+v", rel.Source)
	}
	if rel.Target == nil || rel.Target.ID != "b" || rel.Target.Title != "Beta" {
		t.Fatalf("unexpected target projection: %+v", rel.Target)
	}
}

func TestDeleteByIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t.Run("builds placeholders and reports count", func(t *testing.T) {
		mock.ExpectExec(`DELETE\s+FROM\s+entry_relationships\s+WHERE\s+world_id\s*=\s*\$1\s+AND\s+id\s+IN\s+\(\$2,\s*\$3\)`).
			WithArgs("w-1", "r-1", "r-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := repo.DeleteByIDs(context.Background(), "w-1", []string{"r-1", "r-2"})
		if err != nil {
			t.Fatalf("DeleteByIDs error: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 deleted, got %d", n)
		}
	})

	t.Run("empty id list skips the query", func(t *testing.T) {
		n, err := repo.DeleteByIDs(context.Background(), "w-1", nil)
		if err != nil || n != 0 {
			t.Fatalf("expected no-op, got n=%d err=%v", n, err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+entry_relationships\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("r-404", "w-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "w-1", "r-404")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
