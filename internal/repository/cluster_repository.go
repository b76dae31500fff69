package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorybook/internal/models"
)

type ClusterRepository struct {
	pool *pgxpool.Pool
}

func NewClusterRepository(pool *pgxpool.Pool) *ClusterRepository {
	return &ClusterRepository{pool: pool}
}

// CreateBatch persists every cluster of an analyzed batch with its membership
// and draft in one transaction. The batch's photos are locked against a
// concurrent soft delete, and a photo that already sits in another cluster
// fails the whole batch with ErrPhotoAlreadyClustered.
func (r *ClusterRepository) CreateBatch(ctx context.Context, batch []models.ClusterDraft) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockLivePhotos(ctx, tx, batch); err != nil {
			return err
		}
		for _, item := range batch {
			if err := createWithDraft(ctx, tx, item.Cluster, item.Draft); err != nil {
				if isUniqueViolation(err, clusterPhotoUniqueIndex) {
					return ErrPhotoAlreadyClustered
				}
				return err
			}
		}
		return nil
	})
}

func lockLivePhotos(ctx context.Context, tx pgx.Tx, batch []models.ClusterDraft) error {
	if len(batch) == 0 {
		return nil
	}
	var photoIDs []string
	for _, item := range batch {
		photoIDs = append(photoIDs, item.Cluster.PhotoIDs...)
	}

	const query = `
		SELECT id FROM photos
		WHERE owner_id = $1 AND id = ANY($2) AND deleted_at IS NULL
		FOR SHARE
	`
	rows, err := tx.Query(ctx, query, batch[0].Cluster.OwnerID, photoIDs)
	if err != nil {
		return fmt.Errorf("lock photos: %w", err)
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("lock photos: %w", err)
	}
	if len(locked) != len(photoIDs) {
		return ErrPhotoNotFound
	}
	return nil
}

func createWithDraft(ctx context.Context, tx pgx.Tx, cluster models.Cluster, draft models.Draft) error {
	const insertCluster = `
		INSERT INTO clusters (id, owner_id, title, description, theme, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, insertCluster,
		cluster.ID,
		cluster.OwnerID,
		cluster.Title,
		cluster.Description,
		cluster.Theme,
		cluster.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert cluster: %w", err)
	}

	const insertClusterPhoto = `INSERT INTO cluster_photos (cluster_id, photo_id, position) VALUES ($1, $2, $3)`
	if err := insertMembers(ctx, tx, insertClusterPhoto, cluster.ID, cluster.PhotoIDs); err != nil {
		return fmt.Errorf("insert cluster photos: %w", err)
	}

	const insertDraft = `
		INSERT INTO drafts (
			id, owner_id, cluster_id, title, description, theme, background_key,
			status, date_range, age_string, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`
	if _, err := tx.Exec(ctx, insertDraft,
		draft.ID,
		draft.OwnerID,
		draft.ClusterID,
		draft.Title,
		draft.Description,
		draft.Theme,
		draft.BackgroundKey,
		draft.Status,
		draft.DateRange,
		draft.AgeString,
		draft.CreatedAt,
		draft.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}

	if err := insertMembers(ctx, tx, insertDraftPhoto, draft.ID, draft.PhotoIDs); err != nil {
		return fmt.Errorf("insert draft photos: %w", err)
	}
	return nil
}

func (r *ClusterRepository) GetByID(ctx context.Context, ownerID, id string) (models.Cluster, error) {
	const query = `
		SELECT id, owner_id, title, description, theme, created_at
		FROM clusters WHERE id = $1 AND owner_id = $2
	`

	var cluster models.Cluster
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&cluster.ID,
		&cluster.OwnerID,
		&cluster.Title,
		&cluster.Description,
		&cluster.Theme,
		&cluster.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Cluster{}, ErrClusterNotFound
		}
		return models.Cluster{}, err
	}

	const members = `SELECT photo_id FROM cluster_photos WHERE cluster_id = $1 ORDER BY position`
	photoIDs, err := selectMembers(ctx, r.pool, members, cluster.ID)
	if err != nil {
		return models.Cluster{}, fmt.Errorf("cluster photos: %w", err)
	}
	cluster.PhotoIDs = photoIDs
	return cluster, nil
}
