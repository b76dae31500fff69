// Package servicetest provides in-memory collaborators for exercising the
// service layer without Postgres, object storage or the model API.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"memorybook/internal/models"
	"memorybook/internal/repository"
)

// DB backs the fake stores. All stores created from one DB share state and
// a single lock, so conditional writes behave atomically like the SQL ones.
type DB struct {
	mu       sync.Mutex
	photos   map[string]models.Photo
	clusters map[string]models.Cluster
	drafts   map[string]models.Draft
	settings map[string]models.OwnerSettings
	deletes  map[string]int
	// failInsertAt makes CreateBatch fail on that 1-based batch entry.
	failInsertAt int
}

func NewDB() *DB {
	return &DB{
		photos:   make(map[string]models.Photo),
		clusters: make(map[string]models.Cluster),
		drafts:   make(map[string]models.Draft),
		settings: make(map[string]models.OwnerSettings),
		deletes:  make(map[string]int),
	}
}

func (db *DB) Photos() *PhotoStore     { return &PhotoStore{db: db} }
func (db *DB) Clusters() *ClusterStore { return &ClusterStore{db: db} }
func (db *DB) Drafts() *DraftStore     { return &DraftStore{db: db} }
func (db *DB) Settings() *SettingsStore {
	return &SettingsStore{db: db}
}

func (db *DB) AddPhoto(p models.Photo) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.photos[p.ID] = p
}

func (db *DB) HasPhoto(id string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.photos[id]
	return ok
}

// PhotoDeletes counts successful hard deletes of id.
func (db *DB) PhotoDeletes(id string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.deletes[id]
}

func (db *DB) Draft(id string) (models.Draft, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.drafts[id]
	return copyDraft(d), ok
}

func (db *DB) Cluster(id string) (models.Cluster, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.clusters[id]
	c.PhotoIDs = append([]string(nil), c.PhotoIDs...)
	return c, ok
}

// FailClusterInsert makes the next CreateBatch fail when it reaches the nth
// entry of the batch. Nothing of that batch is stored.
func (db *DB) FailClusterInsert(n int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failInsertAt = n
}

// ClustersWithPhoto counts the clusters listing photoID as a member.
func (db *DB) ClustersWithPhoto(photoID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, c := range db.clusters {
		for _, id := range c.PhotoIDs {
			if id == photoID {
				n++
			}
		}
	}
	return n
}

// SetDraft overwrites a stored draft, for arranging edge cases.
func (db *DB) SetDraft(d models.Draft) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.drafts[d.ID] = copyDraft(d)
}

func copyDraft(d models.Draft) models.Draft {
	d.PhotoIDs = append([]string(nil), d.PhotoIDs...)
	return d
}

type PhotoStore struct{ db *DB }

func (s *PhotoStore) Create(_ context.Context, photo models.Photo) error {
	s.db.AddPhoto(photo)
	return nil
}

func (s *PhotoStore) GetByIDs(_ context.Context, ownerID string, ids []string) ([]models.Photo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Photo
	seen := make(map[string]bool)
	for _, id := range ids {
		p, ok := s.db.photos[id]
		if !ok || p.OwnerID != ownerID || p.DeletedAt != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out, nil
}

func (s *PhotoStore) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]models.Photo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Photo
	for _, p := range s.db.photos {
		if p.OwnerID == ownerID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *PhotoStore) ClusteredIDs(_ context.Context, ownerID string, ids []string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	members := make(map[string]bool)
	for _, c := range s.db.clusters {
		if c.OwnerID != ownerID {
			continue
		}
		for _, id := range c.PhotoIDs {
			members[id] = true
		}
	}
	var out []string
	for _, id := range ids {
		if members[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *PhotoStore) SoftDelete(_ context.Context, ownerID, id string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.photos[id]
	if !ok || p.OwnerID != ownerID || p.DeletedAt != nil {
		return repository.ErrPhotoNotFound
	}
	for _, d := range s.db.drafts {
		if d.Status != models.DraftStatusDraft {
			continue
		}
		for _, member := range s.db.clusters[d.ClusterID].PhotoIDs {
			if member == id {
				return repository.ErrPhotoInDraft
			}
		}
	}
	p.DeletedAt = &at
	s.db.photos[id] = p
	return nil
}

func (s *PhotoStore) HardDelete(_ context.Context, ownerID, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.photos[id]
	if !ok || p.OwnerID != ownerID {
		return repository.ErrPhotoNotFound
	}
	delete(s.db.photos, id)
	s.db.deletes[id]++
	return nil
}

type ClusterStore struct{ db *DB }

// CreateBatch stores the whole batch or nothing, rejecting photos that are
// deleted or already in a cluster.
func (s *ClusterStore) CreateBatch(_ context.Context, batch []models.ClusterDraft) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	members := make(map[string]bool)
	for _, c := range s.db.clusters {
		for _, id := range c.PhotoIDs {
			members[id] = true
		}
	}
	for i, item := range batch {
		if s.db.failInsertAt == i+1 {
			s.db.failInsertAt = 0
			return ErrInjected
		}
		for _, id := range item.Cluster.PhotoIDs {
			p, ok := s.db.photos[id]
			if !ok || p.OwnerID != item.Cluster.OwnerID || p.DeletedAt != nil {
				return repository.ErrPhotoNotFound
			}
			if members[id] {
				return repository.ErrPhotoAlreadyClustered
			}
			members[id] = true
		}
	}

	for _, item := range batch {
		cluster := item.Cluster
		cluster.PhotoIDs = append([]string(nil), cluster.PhotoIDs...)
		s.db.clusters[cluster.ID] = cluster
		s.db.drafts[item.Draft.ID] = copyDraft(item.Draft)
	}
	return nil
}

func (s *ClusterStore) GetByID(_ context.Context, ownerID, id string) (models.Cluster, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.clusters[id]
	if !ok || c.OwnerID != ownerID {
		return models.Cluster{}, repository.ErrClusterNotFound
	}
	c.PhotoIDs = append([]string(nil), c.PhotoIDs...)
	return c, nil
}

type DraftStore struct{ db *DB }

func (s *DraftStore) GetByID(_ context.Context, ownerID, id string) (models.Draft, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.drafts[id]
	if !ok || d.OwnerID != ownerID {
		return models.Draft{}, repository.ErrDraftNotFound
	}
	return copyDraft(d), nil
}

func (s *DraftStore) ListByStatus(_ context.Context, ownerID string, status models.DraftStatus) ([]models.Draft, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Draft{}
	for _, d := range s.db.drafts {
		if d.OwnerID == ownerID && d.Status == status {
			out = append(out, copyDraft(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// editable returns the stored draft if it exists for ownerID and is still in
// draft status. Callers hold the lock.
func (s *DraftStore) editable(ownerID, id string) (models.Draft, bool) {
	d, ok := s.db.drafts[id]
	if !ok || d.OwnerID != ownerID || d.Status != models.DraftStatusDraft {
		return models.Draft{}, false
	}
	return d, true
}

func (s *DraftStore) UpdateFields(_ context.Context, draft models.Draft) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.editable(draft.OwnerID, draft.ID)
	if !ok {
		return repository.ErrDraftStateChanged
	}
	d.Title = draft.Title
	d.Description = draft.Description
	d.Theme = draft.Theme
	d.UpdatedAt = draft.UpdatedAt
	s.db.drafts[d.ID] = d
	return nil
}

func (s *DraftStore) ReplacePhotos(_ context.Context, ownerID, id string, photoIDs []string, updatedAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.editable(ownerID, id)
	if !ok {
		return repository.ErrDraftStateChanged
	}
	d.PhotoIDs = append([]string(nil), photoIDs...)
	d.UpdatedAt = updatedAt
	s.db.drafts[id] = d
	return nil
}

func (s *DraftStore) Approve(_ context.Context, draft models.Draft, kept []string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.editable(draft.OwnerID, draft.ID)
	if !ok {
		return repository.ErrDraftStateChanged
	}
	d.Title = draft.Title
	d.Description = draft.Description
	d.Theme = draft.Theme
	d.UpdatedAt = draft.UpdatedAt
	d.Status = models.DraftStatusApproved
	d.PhotoIDs = append([]string(nil), kept...)
	s.db.drafts[d.ID] = d
	return nil
}

func (s *DraftStore) Discard(_ context.Context, ownerID, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.drafts[id]
	if !ok || d.OwnerID != ownerID {
		return repository.ErrDraftNotFound
	}
	if d.Status != models.DraftStatusDraft {
		return repository.ErrDraftStateChanged
	}
	delete(s.db.drafts, id)
	delete(s.db.clusters, d.ClusterID)
	return nil
}

func (s *DraftStore) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var removed int64
	for id, d := range s.db.drafts {
		if d.Status == models.DraftStatusDraft && d.UpdatedAt.Before(before) {
			delete(s.db.drafts, id)
			delete(s.db.clusters, d.ClusterID)
			removed++
		}
	}
	return removed, nil
}

type SettingsStore struct{ db *DB }

func (s *SettingsStore) Ensure(_ context.Context, ownerID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.settings[ownerID]; !ok {
		s.db.settings[ownerID] = models.OwnerSettings{OwnerID: ownerID}
	}
	return nil
}

func (s *SettingsStore) GetSettings(_ context.Context, ownerID string) (models.OwnerSettings, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if settings, ok := s.db.settings[ownerID]; ok {
		return settings, nil
	}
	return models.OwnerSettings{OwnerID: ownerID}, nil
}

func (s *SettingsStore) UpsertSettings(_ context.Context, settings models.OwnerSettings) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.settings[settings.OwnerID] = settings
	return nil
}
