package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrClusterNotFound = errors.New("cluster not found")
	ErrDraftNotFound   = errors.New("draft not found")
	// ErrDraftStateChanged means a conditional write found no row still in
	// status 'draft'.
	ErrDraftStateChanged = errors.New("draft is no longer in draft status")
	// ErrPhotoAlreadyClustered means a photo is already a member of another
	// cluster.
	ErrPhotoAlreadyClustered = errors.New("photo already belongs to a cluster")
	// ErrPhotoInDraft means the photo is part of a cluster whose draft is
	// still open.
	ErrPhotoInDraft = errors.New("photo belongs to an open draft")
)

const (
	uniqueViolation         = "23505"
	clusterPhotoUniqueIndex = "idx_cluster_photos_photo_id"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// insertMembers writes an ordered photo list into a (parent, photo, position)
// join table.
func insertMembers(ctx context.Context, q querier, query string, parentID string, photoIDs []string) error {
	if len(photoIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, photoID := range photoIDs {
		batch.Queue(query, parentID, photoID, i)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range photoIDs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return br.Close()
}

func selectMembers(ctx context.Context, q querier, query string, parentID string) ([]string, error) {
	rows, err := q.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
