package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"news-analysis/apperrors"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Search   SearchConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"news-analysis"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port    int    `envconfig:"PORT" default:"8000"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DatabaseConfig lists every destination summaries are written to.
type DatabaseConfig struct {
	URLs []string `envconfig:"DB_URL" required:"true"`
}

type OpenAIConfig struct {
	APIKey            string        `envconfig:"OPENAI_API_KEY" required:"true"`
	Model             string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	DatesModel        string        `envconfig:"OPENAI_MODEL_DATES"`
	BaseURL           string        `envconfig:"OPENAI_BASE_URL"`
	Timeout           time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	RequestsPerMinute float64       `envconfig:"OPENAI_REQUESTS_PER_MINUTE" default:"500"`
	Burst             int           `envconfig:"OPENAI_BURST" default:"10"`
}

// DateModel returns the model used for published date extraction.
func (c OpenAIConfig) DateModel() string {
	if c.DatesModel == "" {
		return c.Model
	}
	return c.DatesModel
}

type SearchConfig struct {
	APIKey                string        `envconfig:"GOOGLE_SEARCH_API_KEY" required:"true"`
	EngineID              string        `envconfig:"GOOGLE_SEARCH_ENGINE_ID" required:"true"`
	EngineURL             string        `envconfig:"GOOGLE_SEARCH_ENGINE_URL" default:"https://customsearch.googleapis.com/"`
	Attempts              int           `envconfig:"GOOGLE_SEARCH_NUMBER_OF_RETRIES" default:"1"`
	Timeout               time.Duration `envconfig:"GOOGLE_SEARCH_TIMEOUT" default:"30s"`
	RequestsBeforeCooloff int           `envconfig:"SEARCH_REQUESTS_BEFORE_COOLDOWN" default:"90"`
	Cooldown              time.Duration `envconfig:"SEARCH_COOLDOWN" default:"60s"`
	SitesFile             string        `envconfig:"SEARCH_SITES_FILE"`
}

type PipelineConfig struct {
	DayWindow            int           `envconfig:"NEWS_RANGE_IN_DAYS" default:"7"`
	FallbackThreshold    int           `envconfig:"CLASSIFICATION_SCORE_THRESHOLD" default:"6"`
	FetchConcurrency     int           `envconfig:"FETCH_CONCURRENCY" default:"20"`
	FetchTimeout         time.Duration `envconfig:"FETCH_TIMEOUT" default:"20s"`
	UserAgent            string        `envconfig:"FETCH_USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"`
	SynthesisMaxAttempts int           `envconfig:"SYNTHESIS_MAX_ATTEMPTS" default:"5"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, apperrors.Wrap(err, "failed to process env config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Database.URLs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "DB_URL must list at least one destination")
	}
	if c.Pipeline.DayWindow <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "NEWS_RANGE_IN_DAYS must be positive, got %d", c.Pipeline.DayWindow)
	}
	if c.Pipeline.FetchConcurrency <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "FETCH_CONCURRENCY must be positive, got %d", c.Pipeline.FetchConcurrency)
	}
	if c.Pipeline.SynthesisMaxAttempts <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "SYNTHESIS_MAX_ATTEMPTS must be positive, got %d", c.Pipeline.SynthesisMaxAttempts)
	}
	if c.Search.Attempts <= 0 {
		c.Search.Attempts = 1
	}
	return nil
}
