package service

import (
	"context"
	"time"

	"memorybook/internal/ai"
	"memorybook/internal/models"
	"memorybook/internal/queue"
)

// PhotoStore is implemented by repository.PhotoRepository.
type PhotoStore interface {
	Create(ctx context.Context, photo models.Photo) error
	GetByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Photo, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Photo, error)
	ClusteredIDs(ctx context.Context, ownerID string, ids []string) ([]string, error)
	SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error
	HardDelete(ctx context.Context, ownerID, id string) error
}

type ClusterStore interface {
	CreateBatch(ctx context.Context, batch []models.ClusterDraft) error
	GetByID(ctx context.Context, ownerID, id string) (models.Cluster, error)
}

type DraftStore interface {
	GetByID(ctx context.Context, ownerID, id string) (models.Draft, error)
	ListByStatus(ctx context.Context, ownerID string, status models.DraftStatus) ([]models.Draft, error)
	UpdateFields(ctx context.Context, draft models.Draft) error
	ReplacePhotos(ctx context.Context, ownerID, id string, photoIDs []string, updatedAt time.Time) error
	Approve(ctx context.Context, draft models.Draft, kept []string) error
	Discard(ctx context.Context, ownerID, id string) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

type SettingsStore interface {
	Ensure(ctx context.Context, ownerID string) error
	GetSettings(ctx context.Context, ownerID string) (models.OwnerSettings, error)
	UpsertSettings(ctx context.Context, settings models.OwnerSettings) error
}

// ObjectStorage is implemented by storage.ObjectStore.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, images []ai.Image) ([]ai.Group, error)
}

type BackgroundGenerator interface {
	GenerateBackground(ctx context.Context, theme models.Theme, title, description string) ([]byte, string, error)
}

// CleanupQueue is implemented by queue.Producer.
type CleanupQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}
