//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestRedisBackend_Integration_RegionLifecycle(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	manager := NewManager(NewRedisBackend(client, "itest"), zerolog.Nop())
	ctx := context.Background()

	got, err := LoadOrPopulate(ctx, manager, RegionFood, IDKey(1), func(ctx context.Context) (food, error) {
		return food{ID: 1, Price: 10}, nil
	})
	if err != nil {
		t.Fatalf("LoadOrPopulate failed: %v", err)
	}
	if got.Price != 10 {
		t.Errorf("Price = %v, want 10", got.Price)
	}

	fields, err := client.HKeys(ctx, "itest:food").Result()
	if err != nil {
		t.Fatalf("HKeys failed: %v", err)
	}
	if len(fields) != 1 || fields[0] != "1" {
		t.Errorf("region fields = %v, want [1]", fields)
	}

	manager.Apply(ctx, Refresh(RegionFood, IDKey(1), food{ID: 1, Price: 12}), ClearRegion(RegionFoodPage))

	got, err = LoadOrPopulate(ctx, manager, RegionFood, IDKey(1), func(ctx context.Context) (food, error) {
		t.Error("loader called for a refreshed key")
		return food{}, nil
	})
	if err != nil {
		t.Fatalf("LoadOrPopulate failed: %v", err)
	}
	if got.Price != 12 {
		t.Errorf("Price after refresh = %v, want 12", got.Price)
	}

	manager.ClearAll(ctx)
	if n := manager.Len(ctx, RegionFood); n != 0 {
		t.Errorf("Len after ClearAll = %d, want 0", n)
	}
}
