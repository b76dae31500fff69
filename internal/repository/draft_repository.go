package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorybook/internal/models"
)

const (
	draftColumns     = `id, owner_id, cluster_id, title, description, theme, background_key, status, date_range, age_string, created_at, updated_at`
	insertDraftPhoto = `INSERT INTO draft_photos (draft_id, photo_id, position) VALUES ($1, $2, $3)`
)

type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

func (r *DraftRepository) GetByID(ctx context.Context, ownerID, id string) (models.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1 AND owner_id = $2`

	draft, err := scanDraft(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Draft{}, ErrDraftNotFound
		}
		return models.Draft{}, err
	}

	const members = `SELECT photo_id FROM draft_photos WHERE draft_id = $1 ORDER BY position`
	photoIDs, err := selectMembers(ctx, r.pool, members, draft.ID)
	if err != nil {
		return models.Draft{}, fmt.Errorf("draft photos: %w", err)
	}
	draft.PhotoIDs = photoIDs
	return draft, nil
}

// ListByStatus returns the owner's drafts in the given status, newest first,
// with their working photo lists.
func (r *DraftRepository) ListByStatus(ctx context.Context, ownerID string, status models.DraftStatus) ([]models.Draft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM drafts
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID, status)
	if err != nil {
		return nil, err
	}
	drafts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Draft, error) {
		return scanDraft(row)
	})
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return []models.Draft{}, nil
	}

	ids := make([]string, len(drafts))
	index := make(map[string]int, len(drafts))
	for i, d := range drafts {
		ids[i] = d.ID
		index[d.ID] = i
		drafts[i].PhotoIDs = []string{}
	}

	const members = `
		SELECT draft_id, photo_id
		FROM draft_photos
		WHERE draft_id = ANY($1)
		ORDER BY draft_id, position
	`
	memberRows, err := r.pool.Query(ctx, members, ids)
	if err != nil {
		return nil, fmt.Errorf("draft photos: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var draftID, photoID string
		if err := memberRows.Scan(&draftID, &photoID); err != nil {
			return nil, err
		}
		if i, ok := index[draftID]; ok {
			drafts[i].PhotoIDs = append(drafts[i].PhotoIDs, photoID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// UpdateFields writes title, description and theme while the draft is still
// in draft status.
func (r *DraftRepository) UpdateFields(ctx context.Context, draft models.Draft) error {
	const query = `
		UPDATE drafts
		SET title = $3, description = $4, theme = $5, updated_at = $6
		WHERE id = $1 AND owner_id = $2 AND status = 'draft'
	`

	tag, err := r.pool.Exec(ctx, query,
		draft.ID,
		draft.OwnerID,
		draft.Title,
		draft.Description,
		draft.Theme,
		draft.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftStateChanged
	}
	return nil
}

// ReplacePhotos swaps the working photo list of a draft still in draft status.
func (r *DraftRepository) ReplacePhotos(ctx context.Context, ownerID, id string, photoIDs []string, updatedAt time.Time) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const touch = `
			UPDATE drafts SET updated_at = $3
			WHERE id = $1 AND owner_id = $2 AND status = 'draft'
		`
		tag, err := tx.Exec(ctx, touch, id, ownerID, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrDraftStateChanged
		}
		return replaceDraftPhotos(ctx, tx, id, photoIDs)
	})
}

// Approve writes the final fields, flips the draft to approved and stores
// the kept photo list. The status check and the flip happen in one
// statement, so among concurrent callers exactly one sees a row affected.
func (r *DraftRepository) Approve(ctx context.Context, draft models.Draft, kept []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			UPDATE drafts
			SET status = 'approved', title = $3, description = $4, theme = $5, updated_at = $6
			WHERE id = $1 AND owner_id = $2 AND status = 'draft'
		`
		tag, err := tx.Exec(ctx, query,
			draft.ID,
			draft.OwnerID,
			draft.Title,
			draft.Description,
			draft.Theme,
			draft.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrDraftStateChanged
		}
		return replaceDraftPhotos(ctx, tx, draft.ID, kept)
	})
}

// Discard removes a draft and its cluster. Only drafts still in draft status
// can be discarded; photos are left untouched.
func (r *DraftRepository) Discard(ctx context.Context, ownerID, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const lock = `SELECT cluster_id, status FROM drafts WHERE id = $1 AND owner_id = $2 FOR UPDATE`

		var clusterID string
		var status models.DraftStatus
		if err := tx.QueryRow(ctx, lock, id, ownerID).Scan(&clusterID, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrDraftNotFound
			}
			return err
		}
		if status != models.DraftStatusDraft {
			return ErrDraftStateChanged
		}

		// drafts and both join tables cascade from clusters.
		const remove = `DELETE FROM clusters WHERE id = $1 AND owner_id = $2`
		_, err := tx.Exec(ctx, remove, clusterID, ownerID)
		return err
	})
}

// DeleteStale removes drafts still in draft status that were last touched
// before the cutoff, along with their clusters.
func (r *DraftRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	const query = `
		DELETE FROM clusters
		WHERE id IN (
			SELECT cluster_id FROM drafts
			WHERE status = 'draft' AND updated_at < $1
		)
	`

	tag, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func replaceDraftPhotos(ctx context.Context, tx pgx.Tx, draftID string, photoIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM draft_photos WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("clear draft photos: %w", err)
	}
	if err := insertMembers(ctx, tx, insertDraftPhoto, draftID, photoIDs); err != nil {
		return fmt.Errorf("insert draft photos: %w", err)
	}
	return nil
}

func scanDraft(row pgx.Row) (models.Draft, error) {
	var draft models.Draft
	err := row.Scan(
		&draft.ID,
		&draft.OwnerID,
		&draft.ClusterID,
		&draft.Title,
		&draft.Description,
		&draft.Theme,
		&draft.BackgroundKey,
		&draft.Status,
		&draft.DateRange,
		&draft.AgeString,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	return draft, err
}
