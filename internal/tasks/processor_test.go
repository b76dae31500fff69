package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/queue"
)

type objects struct {
	deleted []string
	err     error
}

func (o *objects) Delete(_ context.Context, key string) error {
	if o.err != nil {
		return o.err
	}
	o.deleted = append(o.deleted, key)
	return nil
}

type sweeper struct {
	before []time.Time
}

func (s *sweeper) SweepExpired(_ context.Context, before time.Time) (int64, error) {
	s.before = append(s.before, before)
	return 3, nil
}

func TestProcessorPurgesObject(t *testing.T) {
	objs := &objects{}
	p := NewProcessor(objs, &sweeper{}, time.Hour, zerolog.Nop())

	err := p.Handle(context.Background(), queue.Task{Type: queue.TaskPurgeObject, PhotoID: "p1", ObjectKey: "photos/o/p1.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/o/p1.jpg"}, objs.deleted)

	require.NoError(t, p.Handle(context.Background(), queue.Task{Type: queue.TaskPurgeObject}))
}

func TestProcessorPurgeFailureIsRetried(t *testing.T) {
	p := NewProcessor(&objects{err: errors.New("storage down")}, &sweeper{}, time.Hour, zerolog.Nop())

	err := p.Handle(context.Background(), queue.Task{Type: queue.TaskPurgeObject, ObjectKey: "k"})
	assert.Error(t, err)
}

func TestProcessorSweepsDrafts(t *testing.T) {
	sw := &sweeper{}
	p := NewProcessor(&objects{}, sw, 24*time.Hour, zerolog.Nop())

	require.NoError(t, p.Handle(context.Background(), queue.Task{Type: queue.TaskSweepDrafts}))
	require.Len(t, sw.before, 1)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), sw.before[0], time.Minute)

	disabled := NewProcessor(&objects{}, sw, 0, zerolog.Nop())
	require.NoError(t, disabled.Handle(context.Background(), queue.Task{Type: queue.TaskSweepDrafts}))
	assert.Len(t, sw.before, 1)
}

func TestProcessorIgnoresUnknownTasks(t *testing.T) {
	p := NewProcessor(&objects{}, &sweeper{}, time.Hour, zerolog.Nop())
	assert.NoError(t, p.Handle(context.Background(), queue.Task{Type: "thumbnail"}))
}
