package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gemchat:ratelimit:"

// RedisRateLimiter shares attempt counters between server instances.
type RedisRateLimiter struct {
	client *redis.Client
	config *Config
}

// NewRedisRateLimiter connects to redisURL (redis://...) and checks the
// connection.
func NewRedisRateLimiter(ctx context.Context, redisURL string, config *Config) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRateLimiter{client: client, config: config}, nil
}

func countKey(identifier string) string { return redisKeyPrefix + "count:" + identifier }
func banKey(identifier string) string   { return redisKeyPrefix + "ban:" + identifier }

func (rl *RedisRateLimiter) Allow(ctx context.Context, identifier string) (*RateLimitInfo, error) {
	now := time.Now()

	banTTL, err := rl.client.PTTL(ctx, banKey(identifier)).Result()
	if err != nil {
		return nil, fmt.Errorf("read ban: %w", err)
	}
	if banTTL > 0 {
		return &RateLimitInfo{
			Limit:      rl.config.MaxAttempts,
			ResetTime:  now.Add(banTTL),
			RetryAfter: banTTL,
			Banned:     true,
		}, nil
	}

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err = rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, countKey(identifier))
		pipe.ExpireNX(ctx, countKey(identifier), rl.config.WindowSize)
		ttl = pipe.PTTL(ctx, countKey(identifier))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count attempt: %w", err)
	}
	count := int(incr.Val())

	if count > rl.config.MaxAttempts {
		_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, banKey(identifier), now.Unix(), rl.config.BanDuration)
			pipe.Del(ctx, countKey(identifier))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("set ban: %w", err)
		}
		return &RateLimitInfo{
			Limit:      rl.config.MaxAttempts,
			ResetTime:  now.Add(rl.config.BanDuration),
			RetryAfter: rl.config.BanDuration,
			Banned:     true,
		}, nil
	}

	window := ttl.Val()
	if window <= 0 {
		window = rl.config.WindowSize
	}
	return &RateLimitInfo{
		Allowed:   true,
		Limit:     rl.config.MaxAttempts,
		Remaining: rl.config.MaxAttempts - count,
		ResetTime: now.Add(window),
	}, nil
}

func (rl *RedisRateLimiter) RecordSuccess(ctx context.Context, identifier string) error {
	if err := rl.client.Del(ctx, countKey(identifier), banKey(identifier)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

func (rl *RedisRateLimiter) Close() error {
	return rl.client.Close()
}
