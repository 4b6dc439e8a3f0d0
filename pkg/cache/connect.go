package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrConnectExhausted is returned when Redis did not answer a ping within
// the configured attempts.
var ErrConnectExhausted = errors.New("redis connect attempts exhausted")

// RedisConnectRetries counts failed startup pings that were retried.
var RedisConnectRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "foodapp_redis_connect_retries_total",
		Help: "Failed Redis startup pings that were retried",
	},
)

// ConnectConfig controls the startup ping of the Redis backend.
type ConnectConfig struct {
	// MaxAttempts includes the first ping.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConnectConfig returns the default startup ping policy.
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// ConnectRedis pings client until it answers, backing off exponentially
// with ±20% jitter between attempts.
func ConnectRedis(ctx context.Context, client *redis.Client, cfg ConnectConfig, logger zerolog.Logger) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	backoff := cfg.InitialBackoff
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("Redis reachable after retry")
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		RedisConnectRetries.Inc()
		wait := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		logger.Warn().Err(lastErr).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Redis ping failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("redis connect: %w", ctx.Err())
		case <-time.After(wait):
		}

		backoff *= 2
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrConnectExhausted, cfg.MaxAttempts, lastErr)
}
