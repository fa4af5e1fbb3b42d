package limiter

import (
	"context"
	"errors"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is the toolkit sentinel, so httpx.RestAbort answers 429 for it.
var ErrRateLimited = limiter.ErrRateLimited

// LimiterRedis mirrors the toolkit limiter over any redis.UniversalClient.
type LimiterRedis struct {
	instance *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*LimiterRedis, error) {
	if client == nil {
		return nil, errors.New("limiter requires a redis client")
	}
	return &LimiterRedis{redis_rate.NewLimiter(client)}, nil
}

func (l *LimiterRedis) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.instance.Allow(ctx, key, limit)
	if err != nil {
		return err
	}

	if res.Allowed <= 0 {
		return ErrRateLimited
	}

	return nil
}

// Noop never limits. It stands in when no redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string, redis_rate.Limit) error {
	return nil
}
