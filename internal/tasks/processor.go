package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"memorybook/internal/queue"
)

// ObjectRemover deletes storage objects. A missing object is not an error.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// DraftSweeper removes drafts untouched since a cutoff.
type DraftSweeper interface {
	SweepExpired(ctx context.Context, before time.Time) (int64, error)
}

// Processor runs tasks read from the stream. Returning an error leaves the
// entry pending so it is claimed and retried later.
type Processor struct {
	objects     ObjectRemover
	drafts      DraftSweeper
	expireAfter time.Duration
	logger      zerolog.Logger
}

func NewProcessor(objects ObjectRemover, drafts DraftSweeper, expireAfter time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		objects:     objects,
		drafts:      drafts,
		expireAfter: expireAfter,
		logger:      logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskPurgeObject:
		return p.handlePurge(ctx, task)
	case queue.TaskSweepDrafts:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handlePurge(ctx context.Context, task queue.Task) error {
	if task.ObjectKey == "" {
		p.logger.Warn().Str("photo_id", task.PhotoID).Msg("purge task without object key")
		return nil
	}
	if err := p.objects.Delete(ctx, task.ObjectKey); err != nil {
		return fmt.Errorf("purge %s: %w", task.ObjectKey, err)
	}
	p.logger.Info().
		Str("owner_id", task.OwnerID).
		Str("photo_id", task.PhotoID).
		Str("object_key", task.ObjectKey).
		Msg("object purged")
	return nil
}

func (p *Processor) handleSweep(ctx context.Context) error {
	if p.expireAfter <= 0 {
		p.logger.Debug().Msg("draft expiry disabled, skipping sweep")
		return nil
	}
	_, err := p.drafts.SweepExpired(ctx, time.Now().UTC().Add(-p.expireAfter))
	return err
}
