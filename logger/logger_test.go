package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestNew_JSONWithContextExtractor(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(
		WithOutput(buf),
		WithAttr(slog.String("service", "gateway")),
		WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return slog.String("request_id", v), true
			}
			return slog.Attr{}, false
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("component", "test").InfoContext(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "gateway", entry["service"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestWithEnvironment(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(WithOutput(buf), WithEnvironment("development", "gateway"))
	log.Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "env=development")

	buf.Reset()
	log = New(WithOutput(buf), WithEnvironment("production", "gateway"))
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
