package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/config"
	"memorybook/internal/ids"
	"memorybook/internal/media/exifdate"
	"memorybook/internal/media/sniffer"
	"memorybook/internal/models"
	"memorybook/internal/repository"
)

// IngestFailure reports a file that was skipped during ingest.
type IngestFailure struct {
	Filename string
	Reason   string
}

type IngestResult struct {
	Photos []PhotoView
	Failed []IngestFailure
}

type PhotoService struct {
	photos  PhotoStore
	objects ObjectStorage
	links   linker
	cfg     config.IngestConfig
	log     zerolog.Logger
}

func NewPhotoService(photos PhotoStore, objects ObjectStorage, cfg config.IngestConfig, urlTTL time.Duration, log zerolog.Logger) *PhotoService {
	log = log.With().Str("component", "photos").Logger()
	return &PhotoService{
		photos:  photos,
		objects: objects,
		links:   linker{photos: photos, objects: objects, ttl: urlTTL, log: log},
		cfg:     cfg,
		log:     log,
	}
}

// Ingest stores every acceptable file of the upload. A bad file is reported
// in Failed and does not stop the others.
func (s *PhotoService) Ingest(ctx context.Context, ownerID string, files []*multipart.FileHeader) (IngestResult, error) {
	if len(files) == 0 {
		return IngestResult{}, validationError("no photos uploaded")
	}
	if s.cfg.MaxPhotos > 0 && len(files) > s.cfg.MaxPhotos {
		return IngestResult{}, validationError("at most %d photos per upload", s.cfg.MaxPhotos)
	}

	result := IngestResult{Photos: []PhotoView{}, Failed: []IngestFailure{}}
	for _, fh := range files {
		view, err := s.ingestOne(ctx, ownerID, fh)
		if err != nil {
			s.log.Warn().Err(err).Str("owner_id", ownerID).Str("filename", fh.Filename).Msg("photo rejected")
			result.Failed = append(result.Failed, IngestFailure{Filename: fh.Filename, Reason: err.Error()})
			continue
		}
		result.Photos = append(result.Photos, view)
	}

	s.log.Info().Str("owner_id", ownerID).Int("stored", len(result.Photos)).Int("failed", len(result.Failed)).Msg("photos ingested")
	return result, nil
}

func (s *PhotoService) ingestOne(ctx context.Context, ownerID string, fh *multipart.FileHeader) (PhotoView, error) {
	if s.cfg.MaxFileBytes > 0 && fh.Size > s.cfg.MaxFileBytes {
		return PhotoView{}, fmt.Errorf("file exceeds %d bytes", s.cfg.MaxFileBytes)
	}

	file, err := fh.Open()
	if err != nil {
		return PhotoView{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	data, err := s.readLimited(file)
	if err != nil {
		return PhotoView{}, err
	}

	detected, err := sniffer.DetectHead(data)
	if err != nil {
		return PhotoView{}, err
	}

	now := time.Now().UTC()
	photoID := ids.New()
	photo := models.Photo{
		ID:          photoID,
		OwnerID:     ownerID,
		ObjectKey:   objectKey(ownerID, photoID, detected.Extension(), now),
		Filename:    fh.Filename,
		SizeBytes:   int64(len(data)),
		ContentType: detected.MIME,
		TakenAt:     exifdate.TakenAt(data),
		CreatedAt:   now,
	}

	if err := s.objects.Put(ctx, photo.ObjectKey, data, photo.ContentType); err != nil {
		return PhotoView{}, fmt.Errorf("store photo: %w", err)
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		if delErr := s.objects.Delete(ctx, photo.ObjectKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("object_key", photo.ObjectKey).Msg("remove orphaned object failed")
		}
		return PhotoView{}, fmt.Errorf("save photo: %w", err)
	}

	// Stored from here on; a missing link must not report the file as failed.
	return PhotoView{Photo: photo, URL: s.links.sign(ctx, photo.ObjectKey)}, nil
}

func (s *PhotoService) readLimited(r io.Reader) ([]byte, error) {
	if s.cfg.MaxFileBytes > 0 {
		r = io.LimitReader(r, s.cfg.MaxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if s.cfg.MaxFileBytes > 0 && int64(len(data)) > s.cfg.MaxFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", s.cfg.MaxFileBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return data, nil
}

func (s *PhotoService) List(ctx context.Context, ownerID string, limit, offset int) ([]PhotoView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	photos, err := s.photos.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		views = append(views, PhotoView{Photo: p, URL: s.links.sign(ctx, p.ObjectKey)})
	}
	return views, nil
}

// URL signs a fresh link to one photo, or to its thumbnail when thumb is set
// and the photo has one.
func (s *PhotoService) URL(ctx context.Context, ownerID, photoID string, thumb bool) (string, error) {
	found, err := s.photos.GetByIDs(ctx, ownerID, []string{photoID})
	if err != nil {
		return "", fmt.Errorf("load photo: %w", err)
	}
	if len(found) == 0 {
		return "", notFoundError("photo %s", photoID)
	}

	photo := found[0]
	key := photo.ObjectKey
	if thumb && photo.ThumbKey != nil && *photo.ThumbKey != "" {
		key = *photo.ThumbKey
	}
	url, err := s.objects.SignedURL(ctx, key, s.links.ttl)
	if err != nil {
		return "", fmt.Errorf("sign photo url: %w", err)
	}
	return url, nil
}

// Delete soft-deletes a photo. Its objects stay in storage. A photo of an
// open draft is refused until it is curated out or the draft is discarded.
func (s *PhotoService) Delete(ctx context.Context, ownerID, photoID string) error {
	err := s.photos.SoftDelete(ctx, ownerID, photoID, time.Now().UTC())
	switch {
	case errors.Is(err, repository.ErrPhotoNotFound):
		return notFoundError("photo %s", photoID)
	case errors.Is(err, repository.ErrPhotoInDraft):
		return conflictError("photo %s belongs to an open draft", photoID)
	case err != nil:
		return fmt.Errorf("delete photo: %w", err)
	}
	s.log.Info().Str("owner_id", ownerID).Str("photo_id", photoID).Msg("photo deleted")
	return nil
}

func objectKey(ownerID, photoID, ext string, at time.Time) string {
	return path.Join("photos", ownerID, at.Format("2006/01/02"), fmt.Sprintf("%s.%s", photoID, ext))
}
