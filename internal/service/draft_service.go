package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/models"
	"memorybook/internal/repository"
)

type DraftService struct {
	drafts DraftStore
	links  linker
	log    zerolog.Logger
}

func NewDraftService(drafts DraftStore, photos PhotoStore, objects ObjectStorage, urlTTL time.Duration, log zerolog.Logger) *DraftService {
	log = log.With().Str("component", "draft_manager").Logger()
	return &DraftService{
		drafts: drafts,
		links:  linker{photos: photos, objects: objects, ttl: urlTTL, log: log},
		log:    log,
	}
}

func (s *DraftService) Get(ctx context.Context, ownerID, draftID string) (DraftView, error) {
	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return DraftView{}, err
	}
	return s.links.draftView(ctx, draft)
}

// List returns the owner's drafts still awaiting approval, newest first.
func (s *DraftService) List(ctx context.Context, ownerID string) ([]DraftView, error) {
	drafts, err := s.drafts.ListByStatus(ctx, ownerID, models.DraftStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	views := make([]DraftView, 0, len(drafts))
	for _, d := range drafts {
		view, err := s.links.draftView(ctx, d)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ListPages returns the owner's published pages.
func (s *DraftService) ListPages(ctx context.Context, ownerID string) ([]models.Page, error) {
	drafts, err := s.drafts.ListByStatus(ctx, ownerID, models.DraftStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make([]models.Page, 0, len(drafts))
	for _, d := range drafts {
		page, err := s.links.page(ctx, d)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Edit applies a partial update of title, description and theme.
func (s *DraftService) Edit(ctx context.Context, ownerID, draftID string, fields models.DraftFields) (DraftView, error) {
	draft, err := s.loadEditable(ctx, ownerID, draftID)
	if err != nil {
		return DraftView{}, err
	}

	draft = fields.Apply(draft)
	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.UpdateFields(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDraftStateChanged) {
			return DraftView{}, validationError("draft %s is no longer editable", draftID)
		}
		return DraftView{}, fmt.Errorf("update draft: %w", err)
	}
	return s.links.draftView(ctx, draft)
}

// Curate replaces the draft's working photo set. Membership against the
// cluster is checked at approval, not here.
func (s *DraftService) Curate(ctx context.Context, ownerID, draftID string, keep []string) (DraftView, error) {
	draft, err := s.loadEditable(ctx, ownerID, draftID)
	if err != nil {
		return DraftView{}, err
	}

	draft.PhotoIDs = dedupe(keep)
	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.ReplacePhotos(ctx, ownerID, draftID, draft.PhotoIDs, draft.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrDraftStateChanged) {
			return DraftView{}, validationError("draft %s is no longer editable", draftID)
		}
		return DraftView{}, fmt.Errorf("curate draft: %w", err)
	}
	return s.links.draftView(ctx, draft)
}

// Discard rejects a draft, removing it and its cluster. Photos stay.
func (s *DraftService) Discard(ctx context.Context, ownerID, draftID string) error {
	if err := s.drafts.Discard(ctx, ownerID, draftID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDraftNotFound):
			return notFoundError("draft %s", draftID)
		case errors.Is(err, repository.ErrDraftStateChanged):
			return conflictError("draft %s is already approved", draftID)
		}
		return fmt.Errorf("discard draft: %w", err)
	}
	s.log.Info().Str("owner_id", ownerID).Str("draft_id", draftID).Msg("draft discarded")
	return nil
}

// SweepExpired removes drafts untouched since before, together with their
// clusters. Photos are never deleted here.
func (s *DraftService) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	removed, err := s.drafts.DeleteStale(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("sweep drafts: %w", err)
	}
	s.log.Info().Time("before", before).Int64("removed", removed).Msg("stale drafts swept")
	return removed, nil
}

func (s *DraftService) load(ctx context.Context, ownerID, draftID string) (models.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, ownerID, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return models.Draft{}, notFoundError("draft %s", draftID)
		}
		return models.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	return draft, nil
}

func (s *DraftService) loadEditable(ctx context.Context, ownerID, draftID string) (models.Draft, error) {
	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return models.Draft{}, err
	}
	if !draft.Editable() {
		return models.Draft{}, validationError("draft %s is %s", draftID, draft.Status)
	}
	return draft, nil
}
