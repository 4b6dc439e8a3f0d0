package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestConnectRedis_FirstAttempt(t *testing.T) {
	client, _ := setupTestRedis(t)
	before := testutil.ToFloat64(RedisConnectRetries)

	if err := ConnectRedis(context.Background(), client, DefaultConnectConfig(), zerolog.Nop()); err != nil {
		t.Fatalf("ConnectRedis() = %v", err)
	}
	if got := testutil.ToFloat64(RedisConnectRetries) - before; got != 0 {
		t.Errorf("retries = %v, want 0", got)
	}
}

func TestConnectRedis_Exhausted(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()
	before := testutil.ToFloat64(RedisConnectRetries)

	cfg := ConnectConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	err := ConnectRedis(context.Background(), client, cfg, zerolog.Nop())
	if !errors.Is(err, ErrConnectExhausted) {
		t.Fatalf("ConnectRedis() = %v, want ErrConnectExhausted", err)
	}
	if got := testutil.ToFloat64(RedisConnectRetries) - before; got != 2 {
		t.Errorf("retries = %v, want 2", got)
	}
}

func TestConnectRedis_RecoversAfterRestart(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = mr.Restart()
	}()

	cfg := ConnectConfig{MaxAttempts: 20, InitialBackoff: 10 * time.Millisecond, MaxBackoff: 20 * time.Millisecond}
	if err := ConnectRedis(context.Background(), client, cfg, zerolog.Nop()); err != nil {
		t.Fatalf("ConnectRedis() = %v", err)
	}
}

func TestConnectRedis_ContextCancelled(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := ConnectConfig{MaxAttempts: 5, InitialBackoff: time.Second}
	err := ConnectRedis(ctx, client, cfg, zerolog.Nop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ConnectRedis() = %v, want context.Canceled", err)
	}
}
