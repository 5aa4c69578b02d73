package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"translate-gateway/catalog/domain"

	"github.com/redis/go-redis/v9"
)

// FilePreferenceStore guarda o idioma num arquivo JSON ({"lang":"en"}).
type FilePreferenceStore struct {
	Path string
}

var _ domain.PreferenceStore = FilePreferenceStore{}

type preferenceFile struct {
	Lang      string    `json:"lang"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s FilePreferenceStore) Load(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: read preference: %w", err)
	}
	var pf preferenceFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return "", fmt.Errorf("catalog: decode preference %s: %w", s.Path, err)
	}
	return pf.Lang, nil
}

// Save escreve num arquivo temporário e renomeia, para nunca deixar um JSON pela metade.
func (s FilePreferenceStore) Save(_ context.Context, lang string) error {
	data, err := json.Marshal(preferenceFile{Lang: lang, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("catalog: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".lang-*")
	if err != nil {
		return fmt.Errorf("catalog: save preference: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("catalog: save preference: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("catalog: save preference: %w", err)
	}
	return os.Rename(tmp.Name(), s.Path)
}

const defaultPreferencePrefix = "translate:lang"

// RedisPreferenceStore guarda o idioma de uma sessão em <prefix>:<session>.
type RedisPreferenceStore struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

var _ domain.PreferenceStore = (*RedisPreferenceStore)(nil)

type PreferenceOption func(*RedisPreferenceStore)

func WithPreferencePrefix(prefix string) PreferenceOption {
	return func(s *RedisPreferenceStore) {
		if prefix != "" {
			s.key = prefix
		}
	}
}

// WithPreferenceTTL: 0 (padrão) não expira.
func WithPreferenceTTL(ttl time.Duration) PreferenceOption {
	return func(s *RedisPreferenceStore) { s.ttl = ttl }
}

func NewRedisPreferenceStore(rdb redis.Cmdable, session string, opts ...PreferenceOption) *RedisPreferenceStore {
	s := &RedisPreferenceStore{rdb: rdb, key: defaultPreferencePrefix}
	for _, opt := range opts {
		opt(s)
	}
	s.key = s.key + ":" + session
	return s
}

func (s *RedisPreferenceStore) Load(ctx context.Context) (string, error) {
	lang, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: redis get %s: %w", s.key, err)
	}
	return lang, nil
}

func (s *RedisPreferenceStore) Save(ctx context.Context, lang string) error {
	if err := s.rdb.Set(ctx, s.key, lang, s.ttl).Err(); err != nil {
		return fmt.Errorf("catalog: redis set %s: %w", s.key, err)
	}
	return nil
}
