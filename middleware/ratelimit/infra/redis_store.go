package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"translate-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// admitScript aplica a janela fixa em uma única execução atômica no Redis.
// Retorna {allowed, count, pttl}. Rejeição não incrementa o contador.
var admitScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[2])
if count >= limit then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl > 0 then
    return {0, count, ttl}
  end
  redis.call('DEL', KEYS[1])
  count = 0
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {1, count, ttl}
`)

// RedisStore compartilha a janela de cada cliente entre réplicas do gateway.
// O Redis expira a chave sozinho, então não há janitor.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
}

var _ domain.WindowStore = (*RedisStore)(nil)

type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func NewRedisStore(rdb redis.Scripter, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: "ratelimit:window"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) redisKey(key domain.Key) string {
	return s.prefix + ":" + string(key)
}

// Admit implementa domain.WindowStore.
func (s *RedisStore) Admit(ctx context.Context, key domain.Key, limit int, window time.Duration, now time.Time) (domain.RateRecord, bool, error) {
	if key == "" {
		return domain.RateRecord{}, false, domain.ErrKeyRequired
	}

	res, err := admitScript.Run(ctx, s.rdb, []string{s.redisKey(key)}, window.Milliseconds(), limit).Int64Slice()
	if err != nil {
		return domain.RateRecord{}, false, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 3 {
		return domain.RateRecord{}, false, fmt.Errorf("ratelimit: redis admit: unexpected reply %v", res)
	}

	rec := domain.RateRecord{
		Key:     key,
		Count:   int(res[1]),
		ResetAt: now.Add(time.Duration(res[2]) * time.Millisecond),
	}
	return rec, res[0] == 1, nil
}
