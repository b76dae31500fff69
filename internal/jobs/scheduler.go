package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"memorybook/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler enqueues periodic maintenance tasks for the worker.
type Scheduler struct {
	cron     *cron.Cron
	queue    Enqueuer
	schedule string
	log      zerolog.Logger
}

// NewScheduler takes a six-field cron expression (seconds first). An empty
// schedule disables the draft sweep.
func NewScheduler(q Enqueuer, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		queue:    q,
		schedule: schedule,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.schedule == "" {
		s.log.Info().Msg("draft sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return fmt.Errorf("schedule draft sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("scheduler started")
	return nil
}

// Stop halts the cron and waits briefly for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.queue.Enqueue(ctx, queue.Task{Type: queue.TaskSweepDrafts}); err != nil {
		s.log.Error().Err(err).Msg("enqueue draft sweep failed")
	}
}
