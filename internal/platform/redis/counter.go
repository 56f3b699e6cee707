package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

// Counter is a keyed integer store with an expiry set on first write.
type Counter interface {
	// IncrWithTTL atomically increments key and, only when the new value
	// is 1, sets its expiry to ttl in the same round trip.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value; an absent key reads as 0.
	Get(ctx context.Context, key string) (int64, error)
	// Decr decrements a positive key and keeps its expiry. Absent or
	// non-positive keys are left alone and read as 0.
	Decr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

var incrWithTTL = goredis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return v
`)

var decrPositive = goredis.NewScript(`
local v = tonumber(redis.call('GET', KEYS[1]) or '0')
if v <= 0 then
  return 0
end
return redis.call('DECR', KEYS[1])
`)

type counter struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewCounter(log *logger.Logger, cfg Config) (Counter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &counter{
		log: log.With("service", "RedisCounter"),
		rdb: rdb,
	}, nil
}

func (c *counter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		secs = 1
	}
	v, err := incrWithTTL.Run(ctx, c.rdb, []string{key}, secs).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return v, nil
}

func (c *counter) Get(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (c *counter) Decr(ctx context.Context, key string) (int64, error) {
	v, err := decrPositive.Run(ctx, c.rdb, []string{key}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis decr %s: %w", key, err)
	}
	return v, nil
}

func (c *counter) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *counter) Close() error {
	return c.rdb.Close()
}
