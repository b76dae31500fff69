package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/config"
	"memorybook/internal/models"
	"memorybook/internal/service"
	"memorybook/internal/service/servicetest"
)

const owner = "owner-1"

type harness struct {
	db        *servicetest.DB
	objects   *servicetest.Objects
	queue     *servicetest.Queue
	clusters  *service.ClusterService
	drafts    *service.DraftService
	approvals *service.ApprovalService
	aiCfg     config.AIConfig
	seq       int
}

func newHarness(t *testing.T, classifier service.Classifier) *harness {
	t.Helper()
	return newHarnessWith(t, classifier, nil, config.AIConfig{ClassifyTimeout: time.Second, BackgroundTimeout: time.Second})
}

func newHarnessWith(t *testing.T, classifier service.Classifier, backgrounds service.BackgroundGenerator, aiCfg config.AIConfig) *harness {
	t.Helper()
	db := servicetest.NewDB()
	objects := servicetest.NewObjects()
	q := &servicetest.Queue{}
	log := zerolog.Nop()
	ttl := 15 * time.Minute

	return &harness{
		db:        db,
		objects:   objects,
		queue:     q,
		clusters:  service.NewClusterService(db.Photos(), db.Clusters(), db.Settings(), objects, classifier, backgrounds, aiCfg, log),
		drafts:    service.NewDraftService(db.Drafts(), db.Photos(), objects, ttl, log),
		approvals: service.NewApprovalService(db.Drafts(), db.Clusters(), db.Photos(), objects, q, ttl, log),
		aiCfg:     aiCfg,
	}
}

// addPhoto stores a photo for ownerID with bytes in the object store.
func (h *harness) addPhoto(ownerID string, takenAt *time.Time) models.Photo {
	h.seq++
	id := fmt.Sprintf("photo-%02d", h.seq)
	photo := models.Photo{
		ID:          id,
		OwnerID:     ownerID,
		ObjectKey:   fmt.Sprintf("photos/%s/%s.jpg", ownerID, id),
		Filename:    id + ".jpg",
		SizeBytes:   4,
		ContentType: "image/jpeg",
		TakenAt:     takenAt,
		CreatedAt:   time.Date(2024, 6, 1, 0, 0, h.seq, 0, time.UTC),
	}
	h.db.AddPhoto(photo)
	_ = h.objects.Put(context.Background(), photo.ObjectKey, []byte{0xff, 0xd8, 0xff, 0xe0}, photo.ContentType)
	return photo
}

func (h *harness) addPhotos(ownerID string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = h.addPhoto(ownerID, nil).ID
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}
