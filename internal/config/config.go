package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	Region       string
	SignedURLTTL time.Duration
}

type SecurityConfig struct {
	JWTSecret string
}

type AIConfig struct {
	APIKey             string
	ClassifyModel      string
	BackgroundModel    string
	ClassifyTimeout    time.Duration
	BackgroundTimeout  time.Duration
	DisableBackgrounds bool
}

type DraftsConfig struct {
	ExpireAfter   time.Duration
	SweepSchedule string
}

type IngestConfig struct {
	MaxPhotos    int
	MaxFileBytes int64
}

// multipartOverhead leaves room for form boundaries and part headers.
const multipartOverhead = 1 << 20

// MaxRequestBytes bounds a whole upload request: every allowed file at full
// size plus multipart framing. Zero means unbounded.
func (c IngestConfig) MaxRequestBytes() int64 {
	if c.MaxPhotos <= 0 || c.MaxFileBytes <= 0 {
		return 0
	}
	return int64(c.MaxPhotos)*c.MaxFileBytes + multipartOverhead
}

type WorkerConfig struct {
	ClaimInterval time.Duration
	// MaxAttempts is how many deliveries a task gets before it is dropped.
	MaxAttempts int
	LogLevel    string
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	AI               AIConfig
	Drafts           DraftsConfig
	Ingest           IngestConfig
	Worker           WorkerConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("MEMORYBOOK")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "info")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "120s") // analyze waits on the classifier
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.applicationname", "memorybook")
	v.SetDefault("postgres.connecttimeout", "10s")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "memorybook:tasks")
	v.SetDefault("redis.group", "memorybook-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucket", "memorybook-photos")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.signedurlttl", "15m")

	v.SetDefault("ai.classifymodel", "gemini-2.5-flash")
	v.SetDefault("ai.backgroundmodel", "gemini-2.0-flash-exp")
	v.SetDefault("ai.classifytimeout", "60s")
	v.SetDefault("ai.backgroundtimeout", "45s")
	v.SetDefault("ai.disablebackgrounds", false)

	v.SetDefault("drafts.expireafter", "720h") // 30 days
	v.SetDefault("drafts.sweepschedule", "0 30 3 * * *")

	v.SetDefault("ingest.maxphotos", 10)
	v.SetDefault("ingest.maxfilebytes", 5<<20)

	v.SetDefault("worker.claiminterval", "30s")
	v.SetDefault("worker.maxattempts", 5)
	v.SetDefault("worker.loglevel", "info")
}
