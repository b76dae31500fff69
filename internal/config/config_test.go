package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 60*time.Second, cfg.AI.ClassifyTimeout)
	assert.Equal(t, 720*time.Hour, cfg.Drafts.ExpireAfter)
	assert.Equal(t, 10, cfg.Ingest.MaxPhotos)
	assert.Equal(t, int64(5<<20), cfg.Ingest.MaxFileBytes)
	assert.Equal(t, "memorybook:tasks", cfg.Redis.Stream)
	assert.Equal(t, "memorybook", cfg.Postgres.ApplicationName)
	assert.Equal(t, 10*time.Second, cfg.Postgres.ConnectTimeout)
	assert.Equal(t, 5, cfg.Worker.MaxAttempts)
}

func TestDecodeOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("allowcorsorigins", "http://localhost:5173,https://book.example.com")
	v.Set("drafts.expireafter", "0s")
	v.Set("ai.classifytimeout", "5s")

	cfg, err := decode(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:5173", "https://book.example.com"}, cfg.AllowCORSOrigins)
	assert.Zero(t, cfg.Drafts.ExpireAfter)
	assert.Equal(t, 5*time.Second, cfg.AI.ClassifyTimeout)
}

func TestIngestMaxRequestBytes(t *testing.T) {
	assert.Equal(t, int64(10*(5<<20)+(1<<20)), IngestConfig{MaxPhotos: 10, MaxFileBytes: 5 << 20}.MaxRequestBytes())
	assert.Zero(t, IngestConfig{MaxPhotos: 10}.MaxRequestBytes())
	assert.Zero(t, IngestConfig{MaxFileBytes: 1 << 20}.MaxRequestBytes())
}
