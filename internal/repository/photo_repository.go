package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorybook/internal/models"
)

type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

const photoColumns = `id, owner_id, object_key, thumb_key, filename, size_bytes, content_type, taken_at, deleted_at, created_at`

func (r *PhotoRepository) Create(ctx context.Context, photo models.Photo) error {
	const query = `
		INSERT INTO photos (
			id, owner_id, object_key, thumb_key, filename, size_bytes, content_type, taken_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		photo.ID,
		photo.OwnerID,
		photo.ObjectKey,
		photo.ThumbKey,
		photo.Filename,
		photo.SizeBytes,
		photo.ContentType,
		photo.TakenAt,
		photo.CreatedAt,
	)
	return err
}

// GetByIDs returns the live photos among ids that belong to ownerID. Missing
// ids are silently absent from the result.
func (r *PhotoRepository) GetByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE owner_id = $1 AND id = ANY($2) AND deleted_at IS NULL
	`
	rows, err := r.pool.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func (r *PhotoRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPhotos(rows)
}

// ClusteredIDs reports which of ids already belong to one of the owner's clusters.
func (r *PhotoRepository) ClusteredIDs(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	const query = `
		SELECT DISTINCT cp.photo_id
		FROM cluster_photos cp
		JOIN clusters c ON c.id = cp.cluster_id
		WHERE c.owner_id = $1 AND cp.photo_id = ANY($2)
	`
	rows, err := r.pool.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SoftDelete hides a photo by stamping deleted_at. Its storage objects are
// kept. A photo in a cluster whose draft is still open cannot be deleted.
func (r *PhotoRepository) SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const lock = `
			SELECT id FROM photos
			WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
			FOR UPDATE
		`
		var locked string
		if err := tx.QueryRow(ctx, lock, id, ownerID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPhotoNotFound
			}
			return err
		}

		const inDraft = `
			SELECT EXISTS (
				SELECT 1
				FROM cluster_photos cp
				JOIN drafts d ON d.cluster_id = cp.cluster_id
				WHERE cp.photo_id = $1 AND d.status = 'draft'
			)
		`
		var open bool
		if err := tx.QueryRow(ctx, inDraft, id).Scan(&open); err != nil {
			return err
		}
		if open {
			return ErrPhotoInDraft
		}

		const query = `UPDATE photos SET deleted_at = $3 WHERE id = $1 AND owner_id = $2`
		_, err := tx.Exec(ctx, query, id, ownerID, at)
		return err
	})
}

// HardDelete permanently removes the photo row.
func (r *PhotoRepository) HardDelete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM photos WHERE id = $1 AND owner_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func scanPhoto(row pgx.Row) (models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID,
		&photo.OwnerID,
		&photo.ObjectKey,
		&photo.ThumbKey,
		&photo.Filename,
		&photo.SizeBytes,
		&photo.ContentType,
		&photo.TakenAt,
		&photo.DeletedAt,
		&photo.CreatedAt,
	)
	return photo, err
}

func collectPhotos(rows pgx.Rows) ([]models.Photo, error) {
	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}
