package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/ai"
	"memorybook/internal/config"
	"memorybook/internal/models"
	"memorybook/internal/service"
	"memorybook/internal/service/servicetest"
)

func TestAnalyzeRejectsBadBatches(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, servicetest.Groups())
	mine := h.addPhotos(owner, 2)
	theirs := h.addPhoto("owner-2", nil)

	_, err := h.clusters.Analyze(ctx, owner, nil)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = h.clusters.Analyze(ctx, owner, []string{mine[0], "missing"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = h.clusters.Analyze(ctx, owner, []string{mine[0], theirs.ID})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAnalyzeRejectsAlreadyClusteredPhotos(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, servicetest.Failing(ai.ErrUpstreamUnavailable))
	ids := h.addPhotos(owner, 2)

	_, err := h.clusters.Analyze(ctx, owner, ids[:1])
	require.NoError(t, err)

	_, err = h.clusters.Analyze(ctx, owner, ids)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAnalyzeBuildsClusterAndDraftPerGroup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, servicetest.Groups(
		ai.Group{PhotoIndexes: []int{0, 1}, Title: "Bath Time", Description: "Splash.", Theme: "playful"},
		ai.Group{PhotoIndexes: []int{2}, Title: "Nap", Description: "Zzz.", Theme: "COZY"},
	))
	ids := h.addPhotos(owner, 3)

	results, err := h.clusters.Analyze(ctx, owner, append(ids, ids[0]))
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, []string{ids[0], ids[1]}, first.Cluster.PhotoIDs)
	assert.Equal(t, first.Cluster.PhotoIDs, first.Draft.PhotoIDs)
	assert.Equal(t, first.Cluster.ID, first.Draft.ClusterID)
	assert.Equal(t, models.DraftStatusDraft, first.Draft.Status)
	assert.Equal(t, "Bath Time", first.Draft.Title)
	assert.Equal(t, models.ThemePlayful, first.Draft.Theme)
	assert.Equal(t, models.ThemeCozy, results[1].Draft.Theme)

	stored, ok := h.db.Draft(first.Draft.ID)
	require.True(t, ok)
	assert.Equal(t, owner, stored.OwnerID)
	_, ok = h.db.Cluster(first.Cluster.ID)
	assert.True(t, ok)
}

func TestAnalyzeFallsBackOnClassifierFailure(t *testing.T) {
	cases := map[string]service.Classifier{
		"error":        servicetest.Failing(errors.New("503 from upstream")),
		"empty output": servicetest.Groups(),
		"timeout":      servicetest.Hanging(),
	}

	for name, classifier := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarnessWith(t, classifier, nil, config.AIConfig{ClassifyTimeout: 20 * time.Millisecond})
			ids := h.addPhotos(owner, 4)

			results, err := h.clusters.Analyze(context.Background(), owner, ids)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, ids, results[0].Cluster.PhotoIDs)
			assert.Equal(t, service.FallbackTitle, results[0].Draft.Title)
			assert.Equal(t, models.ThemeLove, results[0].Draft.Theme)
		})
	}
}

func TestAnalyzeCallsClassifierOnce(t *testing.T) {
	var calls atomic.Int32
	classifier := servicetest.ClassifierFunc(func(context.Context, []ai.Image) ([]ai.Group, error) {
		calls.Add(1)
		return nil, errors.New("flaky")
	})
	h := newHarness(t, classifier)
	ids := h.addPhotos(owner, 3)

	_, err := h.clusters.Analyze(context.Background(), owner, ids)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnalyzeSkipsUnreadablePhotos(t *testing.T) {
	var sent int
	classifier := servicetest.ClassifierFunc(func(_ context.Context, images []ai.Image) ([]ai.Group, error) {
		sent = len(images)
		return []ai.Group{{PhotoIndexes: []int{0, 1}, Title: "Walk", Theme: "nature"}}, nil
	})
	h := newHarness(t, classifier)
	a := h.addPhoto(owner, nil)
	b := h.addPhoto(owner, nil)
	c := h.addPhoto(owner, nil)
	h.objects.FailGet[b.ObjectKey] = true

	results, err := h.clusters.Analyze(context.Background(), owner, []string{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, results, 2)
	assert.Equal(t, []string{a.ID, c.ID}, results[0].Cluster.PhotoIDs)
	assert.Equal(t, []string{b.ID}, results[1].Cluster.PhotoIDs)
	assert.Equal(t, service.FallbackTitle, results[1].Draft.Title)
}

func TestAnalyzeDerivesDateAndAge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, servicetest.Groups(ai.Group{PhotoIndexes: []int{0, 1, 2}, Title: "Spring"}))
	require.NoError(t, h.db.Settings().UpsertSettings(ctx, models.OwnerSettings{
		OwnerID:       owner,
		ChildBirthday: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}))

	ids := []string{
		h.addPhoto(owner, ptr(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))).ID,
		h.addPhoto(owner, nil).ID,
		h.addPhoto(owner, ptr(time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC))).ID,
	}

	results, err := h.clusters.Analyze(ctx, owner, ids)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "March 15, 2024", results[0].Draft.DateRange)
	assert.Equal(t, "2 months old", results[0].Draft.AgeString)
}

func TestAnalyzeStoresBackground(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	backgrounds := servicetest.BackgroundFunc(func(_ context.Context, theme models.Theme, title, _ string) ([]byte, string, error) {
		assert.Equal(t, models.ThemeMilestone, theme)
		assert.Equal(t, "First Steps", title)
		return png, "image/png", nil
	})
	h := newHarnessWith(t,
		servicetest.Groups(ai.Group{PhotoIndexes: []int{0}, Title: "First Steps", Theme: "milestone"}),
		backgrounds,
		config.AIConfig{ClassifyTimeout: time.Second, BackgroundTimeout: time.Second},
	)
	ids := h.addPhotos(owner, 1)

	results, err := h.clusters.Analyze(context.Background(), owner, ids)
	require.NoError(t, err)
	require.Len(t, results, 1)

	key := results[0].Draft.BackgroundKey
	require.NotNil(t, key)
	assert.True(t, strings.HasPrefix(*key, "backgrounds/"+owner+"/"))
	assert.True(t, strings.HasSuffix(*key, ".png"))
	assert.True(t, h.objects.Has(*key))

	view, err := h.drafts.Get(context.Background(), owner, results[0].Draft.ID)
	require.NoError(t, err)
	assert.Contains(t, view.BackgroundURL, *key)
}

func TestAnalyzeToleratesBackgroundFailure(t *testing.T) {
	backgrounds := servicetest.BackgroundFunc(func(context.Context, models.Theme, string, string) ([]byte, string, error) {
		return nil, "", ai.ErrUpstreamUnavailable
	})
	h := newHarnessWith(t, servicetest.Groups(), backgrounds, config.AIConfig{ClassifyTimeout: time.Second})
	ids := h.addPhotos(owner, 2)

	results, err := h.clusters.Analyze(context.Background(), owner, ids)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Draft.BackgroundKey)
}

func TestAnalyzeConcurrentBatchesClaimPhotosOnce(t *testing.T) {
	ctx := context.Background()
	slow := servicetest.ClassifierFunc(func(context.Context, []ai.Image) ([]ai.Group, error) {
		time.Sleep(50 * time.Millisecond)
		return []ai.Group{{PhotoIndexes: []int{0, 1, 2}, Title: "Park", Theme: "nature"}}, nil
	})
	h := newHarness(t, slow)
	ids := h.addPhotos(owner, 3)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.clusters.Analyze(ctx, owner, ids)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	for _, id := range ids {
		assert.Equal(t, 1, h.db.ClustersWithPhoto(id), "photo %s", id)
	}
}

func TestAnalyzeSavesBatchAtomically(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, servicetest.Groups(
		ai.Group{PhotoIndexes: []int{0}, Title: "One", Theme: "family"},
		ai.Group{PhotoIndexes: []int{1}, Title: "Two", Theme: "family"},
	))
	ids := h.addPhotos(owner, 2)

	h.db.FailClusterInsert(2)
	_, err := h.clusters.Analyze(ctx, owner, ids)
	require.Error(t, err)
	for _, id := range ids {
		assert.Zero(t, h.db.ClustersWithPhoto(id))
	}

	results, err := h.clusters.Analyze(ctx, owner, ids)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
