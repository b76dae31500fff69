package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/ai"
	"memorybook/internal/config"
	"memorybook/internal/ids"
	"memorybook/internal/media/sniffer"
	"memorybook/internal/models"
	"memorybook/internal/repository"
	"memorybook/internal/timeline"
)

type ClusterService struct {
	photos      PhotoStore
	clusters    ClusterStore
	settings    SettingsStore
	objects     ObjectStorage
	classifier  Classifier
	backgrounds BackgroundGenerator
	cfg         config.AIConfig
	log         zerolog.Logger
}

func NewClusterService(
	photos PhotoStore,
	clusters ClusterStore,
	settings SettingsStore,
	objects ObjectStorage,
	classifier Classifier,
	backgrounds BackgroundGenerator,
	cfg config.AIConfig,
	log zerolog.Logger,
) *ClusterService {
	return &ClusterService{
		photos:      photos,
		clusters:    clusters,
		settings:    settings,
		objects:     objects,
		classifier:  classifier,
		backgrounds: backgrounds,
		cfg:         cfg,
		log:         log.With().Str("component", "cluster_builder").Logger(),
	}
}

// Analyze groups a batch of the owner's photos into clusters, each with an
// editable draft. Every photo of the batch ends up in exactly one cluster.
func (s *ClusterService) Analyze(ctx context.Context, ownerID string, photoIDs []string) ([]models.ClusterDraft, error) {
	batch := dedupe(photoIDs)
	if len(batch) == 0 {
		return nil, validationError("photoIds must not be empty")
	}

	photos, err := s.loadBatch(ctx, ownerID, batch)
	if err != nil {
		return nil, err
	}

	clustered, err := s.photos.ClusteredIDs(ctx, ownerID, batch)
	if err != nil {
		return nil, fmt.Errorf("check clustered photos: %w", err)
	}
	if len(clustered) > 0 {
		return nil, validationError("photo %s already belongs to a cluster", clustered[0])
	}

	sent, images := s.readImages(ctx, batch, photos)
	groups, classifyErr := s.classify(ctx, images)
	if classifyErr != nil {
		s.log.Warn().Err(classifyErr).Str("owner_id", ownerID).Int("photos", len(batch)).Msg("classifier failed, using fallback cluster")
	}
	planned := PlanClusters(batch, sent, groups, classifyErr)

	settings, err := s.settings.GetSettings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load owner settings: %w", err)
	}

	results := make([]models.ClusterDraft, 0, len(planned))
	for _, p := range planned {
		results = append(results, s.build(ctx, ownerID, p, photos, settings.ChildBirthday))
	}

	// The whole batch commits or nothing does.
	if err := s.clusters.CreateBatch(ctx, results); err != nil {
		s.dropBackgrounds(ctx, results)
		switch {
		case errors.Is(err, repository.ErrPhotoAlreadyClustered):
			return nil, conflictError("photos of this batch were clustered by a concurrent request")
		case errors.Is(err, repository.ErrPhotoNotFound):
			return nil, conflictError("photos of this batch were deleted during analysis")
		}
		return nil, fmt.Errorf("save clusters: %w", err)
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Int("photos", len(batch)).
		Int("clusters", len(results)).
		Bool("fallback", classifyErr != nil).
		Msg("batch analyzed")
	return results, nil
}

func (s *ClusterService) loadBatch(ctx context.Context, ownerID string, batch []string) (map[string]models.Photo, error) {
	found, err := s.photos.GetByIDs(ctx, ownerID, batch)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	photos := make(map[string]models.Photo, len(found))
	for _, p := range found {
		photos[p.ID] = p
	}
	for _, id := range batch {
		if _, ok := photos[id]; !ok {
			return nil, notFoundError("photo %s", id)
		}
	}
	return photos, nil
}

// readImages fetches photo bytes in batch order. Photos that cannot be read
// are left out; sent reports which ids the returned images belong to.
func (s *ClusterService) readImages(ctx context.Context, batch []string, photos map[string]models.Photo) ([]string, []ai.Image) {
	sent := make([]string, 0, len(batch))
	images := make([]ai.Image, 0, len(batch))
	for _, id := range batch {
		photo := photos[id]
		data, err := s.objects.Get(ctx, photo.ObjectKey)
		if err != nil {
			s.log.Warn().Err(err).Str("photo_id", id).Msg("photo bytes unavailable, skipping classifier input")
			continue
		}
		sent = append(sent, id)
		images = append(images, ai.Image{Data: data, MIME: photo.ContentType})
	}
	return sent, images
}

func (s *ClusterService) classify(ctx context.Context, images []ai.Image) ([]ai.Group, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no readable photos", ai.ErrUpstreamUnavailable)
	}
	if s.classifier == nil {
		return nil, ai.ErrUpstreamUnavailable
	}

	callCtx := ctx
	if s.cfg.ClassifyTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.ClassifyTimeout)
		defer cancel()
	}

	groups, err := s.classifier.Classify(callCtx, images)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	return groups, err
}

// build assembles a cluster and its draft, generating the background. Nothing
// is persisted here.
func (s *ClusterService) build(ctx context.Context, ownerID string, p PlannedCluster, photos map[string]models.Photo, birthday *time.Time) models.ClusterDraft {
	now := time.Now().UTC()

	takenAt := make([]*time.Time, 0, len(p.PhotoIDs))
	for _, id := range p.PhotoIDs {
		takenAt = append(takenAt, photos[id].TakenAt)
	}
	summary := timeline.Summarize(takenAt, birthday)

	cluster := models.Cluster{
		ID:          ids.New(),
		OwnerID:     ownerID,
		PhotoIDs:    p.PhotoIDs,
		Title:       p.Title,
		Description: p.Description,
		Theme:       p.Theme,
		CreatedAt:   now,
	}
	draft := models.Draft{
		ID:          ids.New(),
		OwnerID:     ownerID,
		ClusterID:   cluster.ID,
		PhotoIDs:    append([]string(nil), p.PhotoIDs...),
		Title:       p.Title,
		Description: p.Description,
		Theme:       p.Theme,
		Status:      models.DraftStatusDraft,
		DateRange:   summary.DateRange,
		AgeString:   summary.AgeString,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	draft.BackgroundKey = s.background(ctx, ownerID, draft)
	return models.ClusterDraft{Cluster: cluster, Draft: draft}
}

func (s *ClusterService) dropBackgrounds(ctx context.Context, built []models.ClusterDraft) {
	for _, b := range built {
		key := b.Draft.BackgroundKey
		if key == nil {
			continue
		}
		if err := s.objects.Delete(ctx, *key); err != nil {
			s.log.Warn().Err(err).Str("object_key", *key).Msg("remove unsaved background failed")
		}
	}
}

// background generates and stores a page background. Any failure leaves the
// draft without one.
func (s *ClusterService) background(ctx context.Context, ownerID string, draft models.Draft) *string {
	if s.backgrounds == nil || s.cfg.DisableBackgrounds {
		return nil
	}

	callCtx := ctx
	if s.cfg.BackgroundTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.BackgroundTimeout)
		defer cancel()
	}

	logger := s.log.With().Str("draft_id", draft.ID).Logger()
	data, mime, err := s.backgrounds.GenerateBackground(callCtx, draft.Theme, draft.Title, draft.Description)
	if err != nil {
		if errors.Is(err, ai.ErrUpstreamUnavailable) {
			logger.Debug().Err(err).Msg("background skipped")
		} else {
			logger.Warn().Err(err).Msg("background generation failed")
		}
		return nil
	}

	ext := "png"
	if detected, err := sniffer.DetectHead(data); err == nil {
		ext = detected.Extension()
		mime = detected.MIME
	} else if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}

	key := fmt.Sprintf("backgrounds/%s/%s.%s", ownerID, draft.ID, ext)
	if err := s.objects.Put(ctx, key, data, mime); err != nil {
		logger.Warn().Err(err).Msg("store background failed")
		return nil
	}
	return &key
}
