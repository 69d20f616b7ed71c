package auth

import (
	"context"
	"strings"
	"time"

	"dailyon/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles password attempts per login id.
type LoginLimiter interface {
	Allow(ctx context.Context, loginID string) (bool, time.Duration, error)
	Reset(ctx context.Context, loginID string) error
}

// RedisLoginLimiter keeps one fixed window per login id in Redis, so the
// budget is shared by every API replica.
type RedisLoginLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLoginLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, loginID string) (bool, time.Duration, error) {
	res, err := utils.HitFixedWindow(ctx, l.rdb, loginAttemptsKey(loginID), l.limit, l.window)
	if err != nil {
		return false, 0, err
	}
	return res.Allowed, res.RetryAfter, nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, loginID string) error {
	return utils.ResetWindow(ctx, l.rdb, loginAttemptsKey(loginID))
}

func loginAttemptsKey(loginID string) string {
	return "auth:login_attempts:" + strings.ToLower(strings.TrimSpace(loginID))
}
