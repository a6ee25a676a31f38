package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds configuration for the comparison tool.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8501"`
	SecretsFile string `env:"SECRETS_FILE" envDefault:".secrets.yaml"`

	Credentials Credentials
	Provider    ProviderConfig
	Session     SessionConfig
	Redis       RedisConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
}

// Credentials are the backend secrets. Any of them may be empty; the provider
// needing a missing value reports itself as not configured.
type Credentials struct {
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	FinetunedModelID string `env:"FINETUNED_MODEL_ID"`
}

// ProviderConfig holds provider-related settings
type ProviderConfig struct {
	AnthropicBaseURL     string  `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	AnthropicModel       string  `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	AnthropicTemperature float64 `env:"ANTHROPIC_TEMPERATURE" envDefault:"0.9"`
	OpenAIBaseURL        string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel          string  `env:"OPENAI_MODEL" envDefault:"gpt-4-turbo"`

	// Zero means no client-side timeout.
	RequestTimeout time.Duration `env:"PROVIDER_REQUEST_TIMEOUT" envDefault:"0s"`

	// Concurrent runs the three backends in parallel instead of one after another.
	Concurrent bool `env:"COMPARE_CONCURRENT" envDefault:"false"`
}

// SessionConfig holds browser session settings
type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET" envDefault:"change-me-session-secret"`
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"llm_compare_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Store      string        `env:"SESSION_STORE" envDefault:"memory"`
	CacheSize  int           `env:"SESSION_CACHE_SIZE" envDefault:"10000"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address      string        `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	KeyPrefix    string        `env:"REDIS_SESSION_PREFIX" envDefault:"llm_compare:session:"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadEnvFiles applies local override files (".env" style) on top of the
// process environment. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
// Credentials are never validated here.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.Session.Store)
	}

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if cfg.Session.CacheSize <= 0 {
		return nil, fmt.Errorf("SESSION_CACHE_SIZE must be positive")
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	return cfg, nil
}
