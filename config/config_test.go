package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 5000, cfg.MaxTextLength)
	assert.Equal(t, "JA", cfg.SourceLang)
	assert.Equal(t, []string{"http://localhost:8000", "https://shioyam.github.io"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.BodyLimit)
	assert.False(t, cfg.ProviderConfigured())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"LISTEN_ADDR":     "127.0.0.1:9000",
		"DEEPL_API_KEY":   "secret:fx",
		"ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"RATE_WINDOW":     "30s",
		"APP_ENV":         "production",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.True(t, cfg.ProviderConfigured())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":        {"RATE_WINDOW": "soon"},
		"zero limit":          {"RATE_LIMIT": "0"},
		"stats without redis": {"RATE_STATS_ENABLED": "true"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(environ)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
