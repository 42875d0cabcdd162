package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per identifier in Redis.
// Key format: login:failures:<lowercased identifier>
// The counter expires window after the first failure.
type LoginLimiter struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter wraps client. maxAttempts <= 0 defaults to 5 and
// window <= 0 to 15 minutes.
func NewLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Blocked reports whether identifier has reached the failure limit.
func (l *LoginLimiter) Blocked(ctx context.Context, identifier string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("limiter get: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// RecordFailure increments the counter, starting the window on the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := l.key(identifier)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("limiter expire: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	return l.client.Del(ctx, l.key(identifier)).Err()
}

func (l *LoginLimiter) key(identifier string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(identifier))
}
