package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/queue"
)

type recorder struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (r *recorder) Enqueue(_ context.Context, task queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func TestSchedulerEnqueuesSweep(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec, "0 30 3 * * *", zerolog.Nop())

	s.enqueueSweep()
	require.Len(t, rec.tasks, 1)
	assert.Equal(t, queue.TaskSweepDrafts, rec.tasks[0].Type)
}

func TestSchedulerStart(t *testing.T) {
	require.NoError(t, NewScheduler(&recorder{}, "", zerolog.Nop()).Start())

	bad := NewScheduler(&recorder{}, "every day", zerolog.Nop())
	assert.Error(t, bad.Start())

	good := NewScheduler(&recorder{}, "0 30 3 * * *", zerolog.Nop())
	require.NoError(t, good.Start())
	assert.Len(t, good.cron.Entries(), 1)
	good.Stop()
}
