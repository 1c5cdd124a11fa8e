package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	dbpkg "github.com/yungbote/atlas-backend/internal/data/db"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	Environment string `env:"APP_ENV" envDefault:"local"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`
	SeedOnStart bool   `env:"SEED_ON_START" envDefault:"true"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"atlas.db"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"atlas"`

	LLMBaseURL        string `env:"LLM_BASE_URL"`
	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMModel          string `env:"LLM_MODEL"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"20"`

	MentorContextTurns  int `env:"MENTOR_CONTEXT_TURNS" envDefault:"10"`
	MentorHistoryCap    int `env:"MENTOR_HISTORY_CAP" envDefault:"40"`
	MentorMinReplyChars int `env:"MENTOR_MIN_REPLY_CHARS" envDefault:"10"`

	RedisAddr                string `env:"REDIS_ADDR"`
	RedisPassword            string `env:"REDIS_PASSWORD"`
	RedisDB                  int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix           string `env:"REDIS_KEY_PREFIX" envDefault:"atlas"`
	RedisCatalogueTTLSeconds int    `env:"REDIS_CATALOGUE_TTL_SECONDS" envDefault:"3600"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`

	MetricsEnabled               bool `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsScrapeIntervalSeconds int  `env:"METRICS_SCRAPE_INTERVAL_SECONDS" envDefault:"10"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
}

// LoadConfig reads an optional .env file and then the process environment.
// Values already set in the environment win over the file.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case dbpkg.DriverSQLite, dbpkg.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", dbpkg.DriverSQLite, dbpkg.DriverPostgres, c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.LLMTimeoutSeconds <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) DB() dbpkg.Config {
	return dbpkg.Config{
		Driver:     c.DBDriver,
		SQLitePath: c.SQLitePath,
		Postgres: dbpkg.PostgresConfig{
			Host:     c.PostgresHost,
			Port:     c.PostgresPort,
			User:     c.PostgresUser,
			Password: c.PostgresPassword,
			Name:     c.PostgresName,
		},
	}
}

func (c Config) Mentor() services.MentorConfig {
	return services.MentorConfig{
		ContextTurns:  c.MentorContextTurns,
		HistoryCap:    c.MentorHistoryCap,
		MinReplyChars: c.MentorMinReplyChars,
	}
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// Log writes the effective settings. Secret-named keys are redacted by the
// logger.
func (c Config) Log(log *logger.Logger) {
	log.Info("Configuration loaded",
		"port", c.Port,
		"env", c.Environment,
		"db_driver", c.DBDriver,
		"sqlite_path", c.SQLitePath,
		"postgres_host", c.PostgresHost,
		"postgres_password", c.PostgresPassword,
		"llm_base_url", c.LLMBaseURL,
		"llm_api_key", c.LLMAPIKey,
		"llm_model", c.LLMModel,
		"llm_timeout_seconds", c.LLMTimeoutSeconds,
		"mentor_context_turns", c.MentorContextTurns,
		"mentor_history_cap", c.MentorHistoryCap,
		"redis_addr", c.RedisAddr,
		"otel_enabled", c.OtelEnabled,
		"metrics_enabled", c.MetricsEnabled,
		"seed_on_start", c.SeedOnStart,
	)
}
