package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the client settings for the login-throttle store.
// Zero durations and sizes fall back to defaults.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	PoolSize    int
	DialTimeout time.Duration
	// IOTimeout bounds each command read and write.
	IOTimeout   time.Duration
	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.PoolSize <= 0 {
		out.PoolSize = 10
	}
	if out.DialTimeout <= 0 {
		out.DialTimeout = 2 * time.Second
	}
	if out.IOTimeout <= 0 {
		out.IOTimeout = 500 * time.Millisecond
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// OpenRedis builds a client and fails unless PING answers within PingTimeout.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis db must be >= 0, got %d", cfg.DB)
	}
	cfg = cfg.withDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.IOTimeout,
		WriteTimeout: cfg.IOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

var (
	errNilRedis = errors.New("redis client is nil")
	errEmptyKey = errors.New("key is required")
)

var fixedWindowScript = redis.NewScript(`
-- KEYS[1] = window counter key
-- ARGV[1] = limit (int)
-- ARGV[2] = window_ms (int)
--
-- Returns {allowed, count, ttl_ms}
local current = redis.call('INCR', KEYS[1])
if current == 1 or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
local ttl = redis.call('PTTL', KEYS[1])
if current > tonumber(ARGV[1]) then
  return {0, current, ttl}
end
return {1, current, ttl}
`)

// WindowResult reports the state of a fixed window after one hit.
type WindowResult struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// HitFixedWindow counts one hit against key and reports whether it fits under limit.
// The window starts on the first hit and the key expires with it.
func HitFixedWindow(ctx context.Context, rdb redis.Scripter, key string, limit int, window time.Duration) (WindowResult, error) {
	if err := checkWindowArgs(rdb, key, limit, window); err != nil {
		return WindowResult{}, err
	}

	vals, err := fixedWindowScript.Run(ctx, rdb, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return WindowResult{}, err
	}
	if len(vals) != 3 {
		return WindowResult{}, fmt.Errorf("unexpected script reply: %v", vals)
	}
	res := WindowResult{Allowed: vals[0] == 1, Count: vals[1]}
	if !res.Allowed && vals[2] > 0 {
		res.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}
	return res, nil
}

// ResetWindow clears the counter for key, e.g. after a successful login.
func ResetWindow(ctx context.Context, rdb redis.Cmdable, key string) error {
	if rdb == nil {
		return errNilRedis
	}
	if key == "" {
		return errEmptyKey
	}
	return rdb.Del(ctx, key).Err()
}

func checkWindowArgs(rdb redis.Scripter, key string, limit int, window time.Duration) error {
	if rdb == nil {
		return errNilRedis
	}
	if key == "" {
		return errEmptyKey
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be > 0")
	}
	if window <= 0 {
		return fmt.Errorf("window must be > 0")
	}
	return nil
}
