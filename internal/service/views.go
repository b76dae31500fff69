package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/models"
)

// DraftView is a draft with signed links for its photos and background.
type DraftView struct {
	Draft         models.Draft
	Photos        []models.PagePhoto
	BackgroundURL string
}

// PhotoView is a stored photo with a signed link.
type PhotoView struct {
	Photo models.Photo
	URL   string
}

// linker signs storage keys for the owner's photos. A key that cannot be
// signed gets an empty URL; the error is only logged.
type linker struct {
	photos  PhotoStore
	objects ObjectStorage
	ttl     time.Duration
	log     zerolog.Logger
}

func (l linker) sign(ctx context.Context, key string) string {
	url, err := l.objects.SignedURL(ctx, key, l.ttl)
	if err != nil {
		l.log.Warn().Err(err).Str("object_key", key).Msg("sign url failed")
		return ""
	}
	return url
}

// photoLinks returns signed links in the order of photoIDs. Ids without a
// live photo row are skipped.
func (l linker) photoLinks(ctx context.Context, ownerID string, photoIDs []string) ([]models.PagePhoto, error) {
	links := make([]models.PagePhoto, 0, len(photoIDs))
	if len(photoIDs) == 0 {
		return links, nil
	}

	found, err := l.photos.GetByIDs(ctx, ownerID, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	byID := make(map[string]models.Photo, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	for _, id := range photoIDs {
		photo, ok := byID[id]
		if !ok {
			continue
		}
		links = append(links, models.PagePhoto{ID: id, URL: l.sign(ctx, photo.ObjectKey)})
	}
	return links, nil
}

func (l linker) backgroundLink(ctx context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	return l.sign(ctx, *key)
}

func (l linker) draftView(ctx context.Context, draft models.Draft) (DraftView, error) {
	photos, err := l.photoLinks(ctx, draft.OwnerID, draft.PhotoIDs)
	if err != nil {
		return DraftView{}, err
	}
	return DraftView{Draft: draft, Photos: photos, BackgroundURL: l.backgroundLink(ctx, draft.BackgroundKey)}, nil
}

func (l linker) page(ctx context.Context, draft models.Draft) (models.Page, error) {
	view, err := l.draftView(ctx, draft)
	if err != nil {
		return models.Page{}, err
	}
	return pageOf(view), nil
}

// unlinkedPage lists the draft's photo ids without URLs.
func unlinkedPage(draft models.Draft) models.Page {
	photos := make([]models.PagePhoto, 0, len(draft.PhotoIDs))
	for _, id := range draft.PhotoIDs {
		photos = append(photos, models.PagePhoto{ID: id})
	}
	return pageOf(DraftView{Draft: draft, Photos: photos})
}

func pageOf(view DraftView) models.Page {
	draft := view.Draft
	return models.Page{
		ID:            draft.ID,
		Title:         draft.Title,
		Description:   draft.Description,
		Theme:         models.NormalizeTheme(string(draft.Theme)),
		BackgroundURL: view.BackgroundURL,
		DateRange:     draft.DateRange,
		AgeString:     draft.AgeString,
		Photos:        view.Photos,
		Status:        models.DraftStatusApproved,
	}
}
