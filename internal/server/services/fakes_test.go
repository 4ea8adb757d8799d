package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/moduleforge/moduleforge/internal/common"
	"github.com/moduleforge/moduleforge/internal/dbx"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/repositories/entries"
	"github.com/moduleforge/moduleforge/internal/server/repositories/lore"
	"github.com/moduleforge/moduleforge/internal/server/repositories/relationships"
	"github.com/moduleforge/moduleforge/internal/server/repositories/timeline"
	"github.com/moduleforge/moduleforge/internal/server/repositories/users"
	"github.com/moduleforge/moduleforge/internal/server/repositories/worlds"
)

// fakeRepoManager vends in-memory fakes regardless of the DBTX handed in,
// so services can be exercised without SQL.
type fakeRepoManager struct {
	users         *fakeUsersRepo
	worlds        *fakeWorldsRepo
	entries       *fakeEntriesRepo
	relationships *fakeRelationshipsRepo
	lore          *fakeLoreRepo
	timeline      *fakeTimelineRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:         &fakeUsersRepo{byID: map[string]*models.User{}},
		worlds:        &fakeWorldsRepo{byID: map[string]*models.World{}},
		entries:       &fakeEntriesRepo{byID: map[string]*models.Entry{}},
		relationships: newFakeRelationshipsRepo(),
		lore:          &fakeLoreRepo{byID: map[string]*models.LoreArticle{}},
		timeline:      &fakeTimelineRepo{byID: map[string]*models.TimelineEvent{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Worlds(dbx.DBTX) worlds.Repository           { return m.worlds }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository         { return m.entries }
func (m *fakeRepoManager) Relationships(dbx.DBTX) relationships.Repository {
	return m.relationships
}
func (m *fakeRepoManager) Lore(dbx.DBTX) lore.Repository         { return m.lore }
func (m *fakeRepoManager) Timeline(dbx.DBTX) timeline.Repository { return m.timeline }

// --- users ---

type fakeUsersRepo struct {
	byID      map[string]*models.User
	createErr error
	nextID    int
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	created := *u
	created.ID = fmt.Sprintf("u-%d", f.nextID)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

// --- worlds ---

type fakeWorldsRepo struct {
	byID   map[string]*models.World
	counts map[models.EntryType]int
	nextID int

	softDeleted   []string
	softDeleteErr error
}

func (f *fakeWorldsRepo) add(w *models.World) *models.World {
	f.nextID++
	if w.ID == "" {
		w.ID = fmt.Sprintf("w-%d", f.nextID)
	}
	f.byID[w.ID] = w
	return w
}

func (f *fakeWorldsRepo) Create(ctx context.Context, w *models.World) (*models.World, error) {
	created := *w
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return f.add(&created), nil
}

func (f *fakeWorldsRepo) GetByID(ctx context.Context, id string) (*models.World, error) {
	w, ok := f.byID[id]
	if !ok || w.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (f *fakeWorldsRepo) List(ctx context.Context, ownerID string, filter worlds.ListFilter) ([]*models.World, error) {
	var all []*models.World
	for _, w := range f.byID {
		if w.OwnerID == ownerID && w.DeletedAt == nil {
			all = append(all, w)
		}
	}
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (f *fakeWorldsRepo) Count(ctx context.Context, ownerID string, search string) (int, error) {
	n := 0
	for _, w := range f.byID {
		if w.OwnerID == ownerID && w.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeWorldsRepo) CountEntriesByType(ctx context.Context, worldID string) (map[models.EntryType]int, error) {
	return f.counts, nil
}

func (f *fakeWorldsRepo) Update(ctx context.Context, w *models.World) error {
	existing, ok := f.byID[w.ID]
	if !ok || existing.DeletedAt != nil {
		return common.ErrNotFound
	}
	copied := *w
	f.byID[w.ID] = &copied
	return nil
}

func (f *fakeWorldsRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}
	w, ok := f.byID[id]
	if !ok || w.DeletedAt != nil {
		return common.ErrNotFound
	}
	w.DeletedAt = &at
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

// --- entries ---

type fakeEntriesRepo struct {
	byID   map[string]*models.Entry
	nextID int

	listOut  []*models.EntrySummary
	countOut int

	lastFilter entries.ListFilter

	cascaded []string
}

func (f *fakeEntriesRepo) add(e *models.Entry) *models.Entry {
	f.nextID++
	if e.ID == "" {
		e.ID = fmt.Sprintf("e-%d", f.nextID)
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	created := *e
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return f.add(&created), nil
}

func (f *fakeEntriesRepo) GetByID(ctx context.Context, worldID, entryID string) (*models.Entry, error) {
	e, ok := f.byID[entryID]
	if !ok || e.WorldID != worldID || e.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEntriesRepo) GetAliveRef(ctx context.Context, worldID, entryID string) (*models.EntryRef, error) {
	e, err := f.GetByID(ctx, worldID, entryID)
	if err != nil {
		return nil, err
	}
	return &models.EntryRef{ID: e.ID, Title: e.Title, Type: e.Type}, nil
}

func (f *fakeEntriesRepo) List(ctx context.Context, worldID string, filter entries.ListFilter) ([]*models.EntrySummary, error) {
	f.lastFilter = filter
	return f.listOut, nil
}

func (f *fakeEntriesRepo) Count(ctx context.Context, worldID string, filter entries.ListFilter) (int, error) {
	return f.countOut, nil
}

func (f *fakeEntriesRepo) SearchByTitle(ctx context.Context, worldID, query string, limit int) ([]*models.EntryRef, error) {
	var refs []*models.EntryRef
	for _, e := range f.byID {
		if e.WorldID == worldID && e.DeletedAt == nil {
			refs = append(refs, &models.EntryRef{ID: e.ID, Title: e.Title, Type: e.Type})
		}
		if len(refs) == limit {
			break
		}
	}
	return refs, nil
}

func (f *fakeEntriesRepo) Update(ctx context.Context, e *models.Entry) error {
	existing, ok := f.byID[e.ID]
	if !ok || existing.DeletedAt != nil {
		return common.ErrNotFound
	}
	copied := *e
	f.byID[e.ID] = &copied
	return nil
}

func (f *fakeEntriesRepo) SoftDelete(ctx context.Context, worldID, entryID string, at time.Time) error {
	e, ok := f.byID[entryID]
	if !ok || e.WorldID != worldID || e.DeletedAt != nil {
		return common.ErrNotFound
	}
	e.DeletedAt = &at
	return nil
}

func (f *fakeEntriesRepo) SoftDeleteByWorld(ctx context.Context, worldID string, at time.Time) error {
	f.cascaded = append(f.cascaded, worldID)
	for _, e := range f.byID {
		if e.WorldID == worldID && e.DeletedAt == nil {
			e.DeletedAt = &at
		}
	}
	return nil
}

// --- relationships ---

type fakeRelationshipsRepo struct {
	byID   map[string]*models.EntryRelationship
	byPair map[string]*models.EntryRelationship
	nextID int
}

func newFakeRelationshipsRepo() *fakeRelationshipsRepo {
	return &fakeRelationshipsRepo{
		byID:   map[string]*models.EntryRelationship{},
		byPair: map[string]*models.EntryRelationship{},
	}
}

func pairKey(sourceID, targetID string) string {
	return sourceID + "→" + targetID
}

func (f *fakeRelationshipsRepo) insert(rel *models.EntryRelationship) *models.EntryRelationship {
	f.nextID++
	copied := *rel
	copied.ID = fmt.Sprintf("r-%d", f.nextID)
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	f.byID[copied.ID] = &copied
	f.byPair[pairKey(copied.SourceID, copied.TargetID)] = &copied
	return &copied
}

func (f *fakeRelationshipsRepo) Create(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error) {
	if _, exists := f.byPair[pairKey(rel.SourceID, rel.TargetID)]; exists {
		return nil, common.ErrAlreadyExists
	}
	return f.insert(rel), nil
}

func (f *fakeRelationshipsRepo) Upsert(ctx context.Context, rel *models.EntryRelationship) (*models.EntryRelationship, error) {
	if existing, ok := f.byPair[pairKey(rel.SourceID, rel.TargetID)]; ok {
		existing.Label = rel.Label
		existing.Type = rel.Type
		existing.UpdatedAt = time.Now()
		return existing, nil
	}
	return f.insert(rel), nil
}

func (f *fakeRelationshipsRepo) GetByID(ctx context.Context, worldID, id string) (*models.EntryRelationship, error) {
	rel, ok := f.byID[id]
	if !ok || rel.WorldID != worldID {
		return nil, common.ErrNotFound
	}
	copied := *rel
	return &copied, nil
}

func (f *fakeRelationshipsRepo) GetByPair(ctx context.Context, worldID, sourceID, targetID string) (*models.EntryRelationship, error) {
	rel, ok := f.byPair[pairKey(sourceID, targetID)]
	if !ok || rel.WorldID != worldID {
		return nil, common.ErrNotFound
	}
	copied := *rel
	return &copied, nil
}

func (f *fakeRelationshipsRepo) ListByWorld(ctx context.Context, worldID string) ([]*models.EntryRelationship, error) {
	var rels []*models.EntryRelationship
	for _, rel := range f.byID {
		if rel.WorldID == worldID {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}

func (f *fakeRelationshipsRepo) Update(ctx context.Context, worldID, id string, label string, relType models.RelationshipType) error {
	rel, ok := f.byID[id]
	if !ok || rel.WorldID != worldID {
		return common.ErrNotFound
	}
	rel.Label = label
	rel.Type = relType
	return nil
}

func (f *fakeRelationshipsRepo) Delete(ctx context.Context, worldID, id string) error {
	rel, ok := f.byID[id]
	if !ok || rel.WorldID != worldID {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byPair, pairKey(rel.SourceID, rel.TargetID))
	return nil
}

func (f *fakeRelationshipsRepo) DeleteByIDs(ctx context.Context, worldID string, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		if err := f.Delete(ctx, worldID, id); err == nil {
			n++
		}
	}
	return n, nil
}

// --- lore ---

type fakeLoreRepo struct {
	byID   map[string]*models.LoreArticle
	nextID int
}

func (f *fakeLoreRepo) Create(ctx context.Context, a *models.LoreArticle) (*models.LoreArticle, error) {
	f.nextID++
	created := *a
	created.ID = fmt.Sprintf("l-%d", f.nextID)
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeLoreRepo) GetByID(ctx context.Context, worldID, id string) (*models.LoreArticle, error) {
	a, ok := f.byID[id]
	if !ok || a.WorldID != worldID || a.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeLoreRepo) ListByWorld(ctx context.Context, worldID string) ([]*models.LoreArticle, error) {
	var articles []*models.LoreArticle
	for _, a := range f.byID {
		if a.WorldID == worldID && a.DeletedAt == nil {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func (f *fakeLoreRepo) Update(ctx context.Context, a *models.LoreArticle) error {
	existing, ok := f.byID[a.ID]
	if !ok || existing.DeletedAt != nil {
		return common.ErrNotFound
	}
	copied := *a
	f.byID[a.ID] = &copied
	return nil
}

func (f *fakeLoreRepo) SoftDelete(ctx context.Context, worldID, id string, at time.Time) error {
	a, ok := f.byID[id]
	if !ok || a.WorldID != worldID || a.DeletedAt != nil {
		return common.ErrNotFound
	}
	a.DeletedAt = &at
	return nil
}

// --- timeline ---

type fakeTimelineRepo struct {
	byID   map[string]*models.TimelineEvent
	nextID int
}

func (f *fakeTimelineRepo) Create(ctx context.Context, e *models.TimelineEvent) (*models.TimelineEvent, error) {
	f.nextID++
	created := *e
	created.ID = fmt.Sprintf("t-%d", f.nextID)
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeTimelineRepo) GetByID(ctx context.Context, worldID, id string) (*models.TimelineEvent, error) {
	e, ok := f.byID[id]
	if !ok || e.WorldID != worldID || e.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeTimelineRepo) ListByWorld(ctx context.Context, worldID string) ([]*models.TimelineEvent, error) {
	var events []*models.TimelineEvent
	for _, e := range f.byID {
		if e.WorldID == worldID && e.DeletedAt == nil {
			events = append(events, e)
		}
	}
	return events, nil
}

func (f *fakeTimelineRepo) Update(ctx context.Context, e *models.TimelineEvent) error {
	existing, ok := f.byID[e.ID]
	if !ok || existing.DeletedAt != nil {
		return common.ErrNotFound
	}
	copied := *e
	f.byID[e.ID] = &copied
	return nil
}

func (f *fakeTimelineRepo) SoftDelete(ctx context.Context, worldID, id string, at time.Time) error {
	e, ok := f.byID[id]
	if !ok || e.WorldID != worldID || e.DeletedAt != nil {
		return common.ErrNotFound
	}
	e.DeletedAt = &at
	return nil
}
