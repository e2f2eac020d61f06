package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// postgres
	PostgresHost string `toml:"postgres_host"`
	PostgresPort string `toml:"postgres_port"`
	PostgresDB   string `toml:"postgres_db"`
	PostgresUser string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prom_metrics_host"`
	PrometheusMetricsPort string `toml:"prom_metrics_port"`
	// tracing
	OtelEnabled bool   `toml:"otel_enabled"`
	ServiceName string `toml:"service_name"`
	// http
	AllowedOrigins    []string `toml:"allowed_origins"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	// ai
	GeminiBaseURL      string        `toml:"gemini_base_url"`
	GeminiTextModel    string        `toml:"gemini_text_model"`
	GeminiImageModel   string        `toml:"gemini_image_model"`
	GeminiTimeout      time.Duration `toml:"gemini_timeout"`
	FoodImageCacheSize int           `toml:"food_image_cache_size"`
	// storage
	MealImagesPath       string        `toml:"meal_images_path"`
	PersistWorkers       int           `toml:"persist_workers"`
	PersistJobTimeout    time.Duration `toml:"persist_job_timeout"`
	AuthSessionTTL       time.Duration `toml:"auth_session_ttl"`
	SessionsCleanupEvery time.Duration `toml:"sessions_cleanup_every"`
}

// Secrets are never kept in the config file, they come from the environment.
type Secrets struct {
	DBPassword   string
	GeminiAPIKey string
	JWTSecret    string
	RedisPass    string
	SentryDSN    string
	HoneycombKey string
}

func SecretsFromEnv() Secrets {
	return Secrets{
		DBPassword:   os.Getenv("ZENITH_DB_PASSWORD"),
		GeminiAPIKey: os.Getenv("ZENITH_GEMINI_API_KEY"),
		JWTSecret:    os.Getenv("ZENITH_JWT_SECRET"),
		RedisPass:    os.Getenv("ZENITH_REDIS_PASS"),
		SentryDSN:    os.Getenv("ZENITH_SENTRY_DSN"),
		HoneycombKey: os.Getenv("HONEYCOMB_API_KEY"),
	}
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.ServiceName == "" {
		c.ServiceName = "zenith"
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 120
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.GeminiTextModel == "" {
		c.GeminiTextModel = "gemini-2.0-flash"
	}
	if c.GeminiImageModel == "" {
		c.GeminiImageModel = "gemini-2.0-flash-preview-image-generation"
	}
	if c.GeminiTimeout <= 0 {
		c.GeminiTimeout = 60 * time.Second
	}
	if c.FoodImageCacheSize <= 0 {
		c.FoodImageCacheSize = 50 * 1024 * 1024
	}
	if c.MealImagesPath == "" {
		c.MealImagesPath = "./meal_images"
	}
	if c.PersistWorkers <= 0 {
		c.PersistWorkers = 4
	}
	if c.PersistJobTimeout <= 0 {
		c.PersistJobTimeout = 10 * time.Second
	}
	if c.AuthSessionTTL <= 0 {
		c.AuthSessionTTL = 7 * 24 * time.Hour
	}
	if c.SessionsCleanupEvery <= 0 {
		c.SessionsCleanupEvery = time.Hour
	}
}
