package servicetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"memorybook/internal/ai"
	"memorybook/internal/models"
	"memorybook/internal/queue"
	"memorybook/internal/storage"
)

var ErrInjected = errors.New("injected failure")

// Objects is an in-memory object store.
type Objects struct {
	mu         sync.Mutex
	data       map[string][]byte
	deletes    map[string]int
	FailGet    map[string]bool
	FailDelete map[string]bool
	FailSign   bool
}

func NewObjects() *Objects {
	return &Objects{
		data:       make(map[string][]byte),
		deletes:    make(map[string]int),
		FailGet:    make(map[string]bool),
		FailDelete: make(map[string]bool),
	}
}

func (o *Objects) Put(_ context.Context, key string, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[key] = append([]byte(nil), data...)
	return nil
}

func (o *Objects) Get(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FailGet[key] {
		return nil, ErrInjected
	}
	data, ok := o.data[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (o *Objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FailDelete[key] {
		return ErrInjected
	}
	delete(o.data, key)
	o.deletes[key]++
	return nil
}

func (o *Objects) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FailSign {
		return "", ErrInjected
	}
	return "https://objects.test/" + key + "?sig=1", nil
}

func (o *Objects) Has(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.data[key]
	return ok
}

// Deletes counts successful deletes of key.
func (o *Objects) Deletes(key string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deletes[key]
}

// ClassifierFunc adapts a function to the classifier interface and counts
// calls.
type ClassifierFunc func(ctx context.Context, images []ai.Image) ([]ai.Group, error)

func (f ClassifierFunc) Classify(ctx context.Context, images []ai.Image) ([]ai.Group, error) {
	return f(ctx, images)
}

// Groups returns a classifier that always answers with groups.
func Groups(groups ...ai.Group) ClassifierFunc {
	return func(context.Context, []ai.Image) ([]ai.Group, error) {
		return groups, nil
	}
}

// Failing returns a classifier that always fails with err.
func Failing(err error) ClassifierFunc {
	return func(context.Context, []ai.Image) ([]ai.Group, error) {
		return nil, err
	}
}

// Hanging returns a classifier that blocks until its context ends.
func Hanging() ClassifierFunc {
	return func(ctx context.Context, _ []ai.Image) ([]ai.Group, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

type BackgroundFunc func(ctx context.Context, theme models.Theme, title, description string) ([]byte, string, error)

func (f BackgroundFunc) GenerateBackground(ctx context.Context, theme models.Theme, title, description string) ([]byte, string, error) {
	return f(ctx, theme, title, description)
}

// Queue records enqueued tasks.
type Queue struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (q *Queue) Enqueue(_ context.Context, task queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *Queue) Tasks() []queue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]queue.Task(nil), q.tasks...)
}
