package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorybook/internal/models"
)

type OwnerRepository struct {
	pool *pgxpool.Pool
}

func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

// Ensure creates the owner row on first sight of an authenticated id.
func (r *OwnerRepository) Ensure(ctx context.Context, ownerID string) error {
	const query = `INSERT INTO owners (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, ownerID)
	return err
}

// GetSettings returns the owner's child profile. An unknown owner yields
// empty settings.
func (r *OwnerRepository) GetSettings(ctx context.Context, ownerID string) (models.OwnerSettings, error) {
	const query = `SELECT id, child_name, child_birthday, updated_at FROM owners WHERE id = $1`

	settings := models.OwnerSettings{OwnerID: ownerID}
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&settings.OwnerID,
		&settings.ChildName,
		&settings.ChildBirthday,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OwnerSettings{OwnerID: ownerID}, nil
		}
		return models.OwnerSettings{}, err
	}
	return settings, nil
}

func (r *OwnerRepository) UpsertSettings(ctx context.Context, settings models.OwnerSettings) error {
	const query = `
		INSERT INTO owners (id, child_name, child_birthday, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET child_name = EXCLUDED.child_name,
			child_birthday = EXCLUDED.child_birthday,
			updated_at = EXCLUDED.updated_at
	`

	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, query,
		settings.OwnerID,
		settings.ChildName,
		settings.ChildBirthday,
		settings.UpdatedAt,
	)
	return err
}
