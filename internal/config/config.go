package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process configuration, read once at startup.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// HTTP server
	ServerHost            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort            int           `env:"SERVER_PORT" envDefault:"8080"`
	ServerReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	ServerWriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins           []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Storage
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Event bus
	NATSURL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Upstream news sources
	NewsAPIKey     string        `env:"NEWS_API_KEY"`
	GuardianAPIKey string        `env:"GUARDIAN_API_KEY"`
	SourcesPath    string        `env:"SOURCES_PATH"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	FetchRPS       float64       `env:"FETCH_RPS" envDefault:"2"`

	// Classification
	LLMAPIKey           string  `env:"LLM_API_KEY"`
	LLMBaseURL          string  `env:"LLM_BASE_URL"`
	LLMModel            string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.6"`

	// Scheduler
	FetchInterval    time.Duration `env:"NEWS_FETCH_INTERVAL" envDefault:"1h"`
	TrendInterval    time.Duration `env:"TREND_CALCULATION_INTERVAL" envDefault:"6h"`
	RetentionHourUTC int           `env:"RETENTION_HOUR_UTC" envDefault:"2"`

	// Retention
	ArticleRetentionDays int `env:"ARTICLE_RETENTION_DAYS" envDefault:"30"`
	TrendRetentionDays   int `env:"TREND_RETENTION_DAYS" envDefault:"90"`

	// Trend engine
	TrendWindowDays int `env:"TREND_WINDOW_DAYS" envDefault:"30"`
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
