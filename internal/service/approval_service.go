package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/models"
	"memorybook/internal/queue"
	"memorybook/internal/repository"
)

type ApprovalInput struct {
	Fields       models.DraftFields
	KeptPhotoIDs []string
}

type ApprovalService struct {
	drafts   DraftStore
	clusters ClusterStore
	photos   PhotoStore
	objects  ObjectStorage
	cleanup  CleanupQueue
	links    linker
	log      zerolog.Logger
}

func NewApprovalService(
	drafts DraftStore,
	clusters ClusterStore,
	photos PhotoStore,
	objects ObjectStorage,
	cleanup CleanupQueue,
	urlTTL time.Duration,
	log zerolog.Logger,
) *ApprovalService {
	log = log.With().Str("component", "approval").Logger()
	return &ApprovalService{
		drafts:   drafts,
		clusters: clusters,
		photos:   photos,
		objects:  objects,
		cleanup:  cleanup,
		links:    linker{photos: photos, objects: objects, ttl: urlTTL, log: log},
		log:      log,
	}
}

// Approve publishes a draft as a page. The status flip is committed before
// any photo is deleted; only the caller whose flip succeeds deletes the
// photos the user discarded.
func (s *ApprovalService) Approve(ctx context.Context, ownerID, draftID string, input ApprovalInput) (models.Page, error) {
	draft, err := s.drafts.GetByID(ctx, ownerID, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return models.Page{}, notFoundError("draft %s", draftID)
		}
		return models.Page{}, fmt.Errorf("load draft: %w", err)
	}
	if draft.Status != models.DraftStatusDraft {
		return models.Page{}, conflictError("draft %s is %s", draftID, draft.Status)
	}

	cluster, err := s.clusters.GetByID(ctx, ownerID, draft.ClusterID)
	if err != nil {
		if errors.Is(err, repository.ErrClusterNotFound) {
			return models.Page{}, notFoundError("cluster of draft %s", draftID)
		}
		return models.Page{}, fmt.Errorf("load cluster: %w", err)
	}

	plan, err := PlanApproval(draft, cluster.PhotoIDs, input.KeptPhotoIDs)
	if err != nil {
		return models.Page{}, err
	}

	final := input.Fields.Apply(draft)
	final.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Approve(ctx, final, plan.Kept); err != nil {
		if errors.Is(err, repository.ErrDraftStateChanged) {
			return models.Page{}, conflictError("draft %s was already approved or discarded", draftID)
		}
		return models.Page{}, fmt.Errorf("approve draft: %w", err)
	}
	final.Status = models.DraftStatusApproved
	final.PhotoIDs = plan.Kept

	logger := s.log.With().Str("owner_id", ownerID).Str("draft_id", draftID).Logger()
	logger.Info().Int("kept", len(plan.Kept)).Int("discarded", len(plan.Discarded)).Msg("draft approved")

	// The transition is committed; cleanup must not stop because the caller
	// went away.
	s.purge(context.WithoutCancel(ctx), ownerID, plan.Discarded, logger)

	// Approval stands from here on, so a failed lookup only costs the links.
	page, err := s.links.page(ctx, final)
	if err != nil {
		logger.Warn().Err(err).Msg("link approved page failed")
		return unlinkedPage(final), nil
	}
	return page, nil
}

// purge deletes each discarded photo independently: storage objects first,
// then the row. Failures are logged and never undo the approval.
func (s *ApprovalService) purge(ctx context.Context, ownerID string, discarded []string, logger zerolog.Logger) {
	if len(discarded) == 0 {
		return
	}

	photos, err := s.photos.GetByIDs(ctx, ownerID, discarded)
	if err != nil {
		logger.Error().Err(err).Strs("photo_ids", discarded).Msg("load discarded photos failed")
		return
	}
	byID := make(map[string]models.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	for _, id := range discarded {
		photo, ok := byID[id]
		if !ok {
			logger.Debug().Str("photo_id", id).Msg("discarded photo already gone")
			continue
		}

		for _, key := range photo.ObjectKeys() {
			if err := s.objects.Delete(ctx, key); err != nil {
				logger.Warn().Err(err).Str("photo_id", id).Str("object_key", key).Msg("delete object failed, scheduling retry")
				s.schedulePurge(ctx, ownerID, id, key, logger)
			}
		}

		if err := s.photos.HardDelete(ctx, ownerID, id); err != nil {
			if errors.Is(err, repository.ErrPhotoNotFound) {
				continue
			}
			logger.Error().Err(err).Str("photo_id", id).Msg("delete photo row failed")
		}
	}
}

func (s *ApprovalService) schedulePurge(ctx context.Context, ownerID, photoID, key string, logger zerolog.Logger) {
	if s.cleanup == nil {
		return
	}
	task := queue.Task{
		Type:      queue.TaskPurgeObject,
		OwnerID:   ownerID,
		PhotoID:   photoID,
		ObjectKey: key,
	}
	if err := s.cleanup.Enqueue(ctx, task); err != nil {
		logger.Error().Err(err).Str("object_key", key).Msg("enqueue purge failed")
	}
}
