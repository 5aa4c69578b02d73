package infra

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePreferenceStore(t *testing.T) {
	ctx := context.Background()
	s := FilePreferenceStore{Path: filepath.Join(t.TempDir(), "nested", "lang.json")}

	lang, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lang, "missing file means no preference")

	require.NoError(t, s.Save(ctx, "en"))
	require.NoError(t, s.Save(ctx, "zh"))

	lang, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zh", lang)
}

func TestRedisPreferenceStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedisPreferenceStore(db, "sess-1", WithPreferenceTTL(24*time.Hour))

	mock.ExpectGet("translate:lang:sess-1").RedisNil()
	lang, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lang)

	mock.ExpectSet("translate:lang:sess-1", "en", 24*time.Hour).SetVal("OK")
	require.NoError(t, s.Save(ctx, "en"))

	mock.ExpectGet("translate:lang:sess-1").SetVal("en")
	lang, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	mock.ExpectGet("translate:lang:sess-1").SetErr(errors.New("connection refused"))
	_, err = s.Load(ctx)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, redis.Nil))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPreferenceStore_Prefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisPreferenceStore(db, "abc", WithPreferencePrefix("app:pref"))

	mock.ExpectSet("app:pref:abc", "ja", 0).SetVal("OK")
	require.NoError(t, s.Save(context.Background(), "ja"))
	require.NoError(t, mock.ExpectationsWereMet())
}
