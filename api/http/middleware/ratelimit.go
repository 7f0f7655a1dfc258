package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/metrics"
)

// RateLimit allows max requests per client IP in each period. With a nil
// storage counters live in process memory.
func RateLimit(max int, period time.Duration, storage fiber.Storage, m *metrics.Metrics) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: period,
		Storage:    storage,
		Next: func(c *fiber.Ctx) bool {
			return max <= 0
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.RateLimited(c.Route().Path)
			return presenter.Error(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

const redisOpTimeout = 500 * time.Millisecond

// RedisStorage implements fiber.Storage on go-redis. Redis failures are
// logged and treated as a miss so that an outage never blocks requests.
type RedisStorage struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

func NewRedisStorage(client *redis.Client, prefix string, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}
	return &RedisStorage{client: client, prefix: prefix, log: log}
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

func (s *RedisStorage) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.log.Warn("rate limit storage get failed", "error", err)
		return nil, nil
	}
	return val, nil
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key(key), val, exp).Err(); err != nil {
		s.log.Warn("rate limit storage set failed", "error", err)
	}
	return nil
}

func (s *RedisStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.log.Warn("rate limit storage delete failed", "error", err)
	}
	return nil
}

// Reset removes every key under the prefix.
func (s *RedisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStorage) Close() error { return nil }
