package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldServiceCreate(t *testing.T) {
	repos := newFakeRepoManager()
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))
	ctx := context.Background()

	t.Run("success trims title", func(t *testing.T) {
		world, err := svc.Create(ctx, "alice", "  Aether  ", "a floating realm")
		require.NoError(t, err)
		assert.Equal(t, "Aether", world.Title)
		assert.Equal(t, "alice", world.OwnerID)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "   ", "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("overlong title rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", strings.Repeat("x", 101), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("overlong description rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "ok", strings.Repeat("d", 501))
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestWorldServiceListPagination(t *testing.T) {
	repos := newFakeRepoManager()
	for i := 0; i < 45; i++ {
		repos.worlds.add(&models.World{OwnerID: "alice", Title: "World"})
	}
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))

	page, err := svc.List(context.Background(), "alice", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Worlds, 20)

	page, err = svc.List(context.Background(), "alice", "", 3, 20)
	require.NoError(t, err)
	assert.Len(t, page.Worlds, 5)

	t.Run("out-of-range limit falls back to default", func(t *testing.T) {
		page, err := svc.List(context.Background(), "alice", "", 0, 500)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Worlds, 20)
	})
}

func TestWorldServiceGetAttachesCounts(t *testing.T) {
	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether"})
	repos.worlds.counts = map[models.EntryType]int{
		models.EntryTypeCharacter: 3,
		models.EntryTypeLocation:  1,
	}
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))

	world, counts, err := svc.Get(context.Background(), "w1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Aether", world.Title)
	assert.Equal(t, 3, counts[models.EntryTypeCharacter])

	_, _, err = svc.Get(context.Background(), "w1", "mallory")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestWorldServiceUpdatePartial(t *testing.T) {
	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether", Description: "old"})
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))

	title := "Aether Reborn"
	world, err := svc.Update(context.Background(), "w1", "alice", WorldUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Aether Reborn", world.Title)
	assert.Equal(t, "old", world.Description, "absent fields stay unchanged")
}

func TestWorldServiceUpdateSanitizesContent(t *testing.T) {
	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether"})
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))

	content := `<p>fine</p><script>alert("x")</script>`
	world, err := svc.Update(context.Background(), "w1", "alice", WorldUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "<p>fine</p>", world.Content)
}

func TestWorldServiceDeleteCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether"})
	repos.entries.add(&models.Entry{ID: "e1", WorldID: "w1", Title: "Hero", Type: models.EntryTypeCharacter})
	repos.entries.add(&models.Entry{ID: "e2", WorldID: "w1", Title: "Keep", Type: models.EntryTypeLocation})
	repos.entries.add(&models.Entry{ID: "e3", WorldID: "other", Title: "Bystander", Type: models.EntryTypeCharacter})

	svc := NewWorldService(db, repos, NewGuard(db, repos))

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "w1", "alice"))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"w1"}, repos.entries.cascaded)
	assert.Equal(t, []string{"w1"}, repos.worlds.softDeleted)
	assert.NotNil(t, repos.entries.byID["e1"].DeletedAt)
	assert.NotNil(t, repos.entries.byID["e2"].DeletedAt)
	assert.Nil(t, repos.entries.byID["e3"].DeletedAt, "other worlds untouched")
	assert.Equal(t, *repos.entries.byID["e1"].DeletedAt, *repos.worlds.byID["w1"].DeletedAt,
		"world and entries share one deletion timestamp")

	_, _, err = svc.Get(context.Background(), "w1", "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWorldServiceDeleteRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether"})
	repos.entries.add(&models.Entry{ID: "e1", WorldID: "w1", Title: "Hero", Type: models.EntryTypeCharacter})
	repos.worlds.softDeleteErr = common.ErrInternal

	svc := NewWorldService(db, repos, NewGuard(db, repos))

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = svc.Delete(context.Background(), "w1", "alice")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorldServiceDeleteForeignWorld(t *testing.T) {
	repos := newFakeRepoManager()
	repos.worlds.add(&models.World{ID: "w1", OwnerID: "alice", Title: "Aether"})
	svc := NewWorldService(nil, repos, NewGuard(nil, repos))

	err := svc.Delete(context.Background(), "w1", "mallory")
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Empty(t, repos.worlds.softDeleted)
}
