package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters. MaxPerWindow <= 0 disables the limiter.
type Config struct {
	Namespace    string
	MaxPerWindow int
	Window       time.Duration
}

// Limiter enforces a per-phone fixed window on resend requests.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Enabled reports whether the limiter counts anything.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.MaxPerWindow > 0 && l.config.Window > 0
}

// CheckResend counts one resend for phone and fails once the budget is spent.
func (l *Limiter) CheckResend(ctx context.Context, phone string) error {
	if !l.Enabled() {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, l.resendKey(phone), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxPerWindow) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) resendKey(phone string) string {
	if l.config.Namespace == "" {
		return "rs:" + phone
	}
	return l.config.Namespace + ":rs:" + phone
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
