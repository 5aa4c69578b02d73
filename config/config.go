// Package config lê a configuração do gateway do ambiente (e de um .env opcional).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config é a configuração completa do gateway. Zero value não é útil: use Load.
type Config struct {
	Port       string `env:"PORT" envDefault:"3000"`
	ListenAddr string `env:"LISTEN_ADDR"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogFormat  string `env:"LOG_FORMAT"`
	LogLevel   string `env:"LOG_LEVEL"`

	DeepLAPIKey     string        `env:"DEEPL_API_KEY"`
	DeepLAPIURL     string        `env:"DEEPL_API_URL" envDefault:"https://api-free.deepl.com/v2/translate"`
	SourceLang      string        `env:"SOURCE_LANG" envDefault:"JA"`
	MaxTextLength   int           `env:"MAX_TEXT_LENGTH" envDefault:"5000"`
	ProviderRPS     float64       `env:"PROVIDER_RPS" envDefault:"0"`
	ProviderBurst   int           `env:"PROVIDER_BURST" envDefault:"1"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8000,https://shioyam.github.io"`
	BodyLimit      int64    `env:"BODY_LIMIT" envDefault:"10485760"`

	RateLimit           int           `env:"RATE_LIMIT" envDefault:"10"`
	RateWindow          time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
	RateKeyHeader       string        `env:"RATE_KEY_HEADER"`
	TrustXFF            bool          `env:"TRUST_XFF" envDefault:"false"`
	RateMaxKeys         int           `env:"RATE_MAX_KEYS" envDefault:"100000"`
	RateCleanupEvery    time.Duration `env:"RATE_CLEANUP_EVERY" envDefault:"2m"`
	AddRateLimitHeaders bool          `env:"ADD_RATELIMIT_HEADERS" envDefault:"true"`

	StaticDir       string `env:"STATIC_DIR"`
	StaticRateLimit int    `env:"STATIC_RATE_LIMIT" envDefault:"300"`
	LocalesEnabled  bool   `env:"LOCALES_ENABLED" envDefault:"true"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	RedisURL            string        `env:"REDIS_URL"`
	RedisRetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RedisRetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	RedisConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`

	RateStatsEnabled   bool          `env:"RATE_STATS_ENABLED" envDefault:"false"`
	RateStatsPrefix    string        `env:"RATE_STATS_PREFIX" envDefault:"translate:stats"`
	RateStatsTTL       time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	RateStatsPerMinute bool          `env:"RATE_STATS_PER_MINUTE" envDefault:"true"`
	RateStatsTrackKeys bool          `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load lê o .env do diretório corrente (se existir) e o ambiente do processo.
// Variáveis já definidas no processo têm precedência sobre o .env.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom lê só de environ, sem olhar o processo nem o .env.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}
	check(c.RateLimit > 0, "RATE_LIMIT must be > 0")
	check(c.RateWindow > 0, "RATE_WINDOW must be > 0")
	check(c.RateMaxKeys >= 0, "RATE_MAX_KEYS must be >= 0")
	check(c.MaxTextLength > 0, "MAX_TEXT_LENGTH must be > 0")
	check(c.BodyLimit > 0, "BODY_LIMIT must be > 0")
	check(c.ConcurrencyMax >= 0, "CONCURRENCY_MAX must be >= 0")
	check(c.ProviderRPS >= 0, "PROVIDER_RPS must be >= 0")
	check(c.StaticRateLimit > 0, "STATIC_RATE_LIMIT must be > 0")
	check(!c.RateStatsEnabled || c.RedisURL != "", "REDIS_URL is required when RATE_STATS_ENABLED=true")
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Addr é LISTEN_ADDR ou, sem ele, ":"+PORT.
func (c Config) Addr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// ProviderConfigured diz se há credencial do provedor (o valor nunca é logado).
func (c Config) ProviderConfigured() bool {
	return strings.TrimSpace(c.DeepLAPIKey) != ""
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}
