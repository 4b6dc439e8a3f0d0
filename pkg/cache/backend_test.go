package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis starts an in-memory Redis server for unit tests.
// Integration tests against a real Redis live behind the integration tag.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
	})
	return client, mr
}

// backendFactories lists every Backend implementation under test.
func backendFactories() map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemoryBackend(0)
		},
		"redis": func(t *testing.T) Backend {
			client, _ := setupTestRedis(t)
			return NewRedisBackend(client, "")
		},
	}
}

func TestBackend_Contract(t *testing.T) {
	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBackend(t)
			entry := Entry{Data: []byte(`{"id":1}`), InsertedAt: time.Now().UTC().Truncate(time.Millisecond)}

			// Unknown region is a miss, not an error
			if _, ok, err := b.Get(ctx, RegionFood, "1"); ok || err != nil {
				t.Fatalf("Get(unknown region) = ok %v, err %v; want miss", ok, err)
			}

			if err := b.Set(ctx, RegionFood, "1", entry); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, ok, err := b.Get(ctx, RegionFood, "1")
			if err != nil || !ok {
				t.Fatalf("Get after Set = ok %v, err %v", ok, err)
			}
			if string(got.Data) != string(entry.Data) {
				t.Errorf("Data = %s, want %s", got.Data, entry.Data)
			}
			if !got.InsertedAt.Equal(entry.InsertedAt) {
				t.Errorf("InsertedAt = %v, want %v", got.InsertedAt, entry.InsertedAt)
			}

			// Regions are independent namespaces
			if _, ok, _ := b.Get(ctx, RegionUser, "1"); ok {
				t.Error("key leaked into another region")
			}

			if err := b.Set(ctx, RegionFood, "2", entry); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if n, _ := b.Len(ctx, RegionFood); n != 2 {
				t.Errorf("Len = %d, want 2", n)
			}

			if err := b.Delete(ctx, RegionFood, "1"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, ok, _ := b.Get(ctx, RegionFood, "1"); ok {
				t.Error("key still present after Delete")
			}
			if err := b.Delete(ctx, RegionFood, "missing"); err != nil {
				t.Errorf("Delete(missing) = %v, want nil", err)
			}

			// Clearing twice is safe and leaves the region empty both times
			for i := 0; i < 2; i++ {
				if err := b.Clear(ctx, RegionFood); err != nil {
					t.Fatalf("Clear #%d failed: %v", i+1, err)
				}
				if n, _ := b.Len(ctx, RegionFood); n != 0 {
					t.Errorf("Len after Clear #%d = %d, want 0", i+1, n)
				}
			}

			if err := b.Set(ctx, RegionUser, "1", entry); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := b.Set(ctx, RegionBill, "3-abc", entry); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := b.ClearAll(ctx); err != nil {
				t.Fatalf("ClearAll failed: %v", err)
			}
			for _, r := range []Region{RegionUser, RegionBill} {
				if n, _ := b.Len(ctx, r); n != 0 {
					t.Errorf("Len(%s) after ClearAll = %d, want 0", r, n)
				}
			}
		})
	}
}

func TestBackend_ConcurrentWrites(t *testing.T) {
	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBackend(t)

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = b.Set(ctx, RegionOrder, "7", Entry{Data: []byte(`{"id":7}`), InsertedAt: time.Now()})
					_, _, _ = b.Get(ctx, RegionOrder, "7")
					if i%5 == 0 {
						_ = b.Clear(ctx, RegionOrder)
					}
				}(i)
			}
			wg.Wait()

			if n, _ := b.Len(ctx, RegionOrder); n > 1 {
				t.Errorf("Len = %d, want at most 1 entry for a single key", n)
			}
		})
	}
}

func TestMemoryBackend_Capacity(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(2)

	for _, key := range []string{"1", "2", "3"} {
		if err := b.Set(ctx, RegionFood, key, Entry{Data: []byte(key)}); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	if n, _ := b.Len(ctx, RegionFood); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	// Least recently used entry is gone; capacity eviction is a plain miss
	if _, ok, err := b.Get(ctx, RegionFood, "1"); ok || err != nil {
		t.Errorf("Get(oldest) = ok %v, err %v; want miss", ok, err)
	}
}

func TestMemoryBackend_Preload(t *testing.T) {
	b := NewMemoryBackend(0, Regions()...)

	if got := len(b.regions); got != len(Regions()) {
		t.Errorf("preloaded %d regions, want %d", got, len(Regions()))
	}
}

func TestRedisBackend_KeyLayout(t *testing.T) {
	client, mr := setupTestRedis(t)
	b := NewRedisBackend(client, "test")
	ctx := context.Background()

	if err := b.Set(ctx, RegionRestaurant, "PAGE_0_10_name", Entry{Data: []byte(`[]`)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("test:restaurant") {
		t.Error("expected region hash test:restaurant to exist")
	}

	// ClearAll only touches keys under the prefix
	mr.Set("unrelated", "keep")
	if err := b.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if mr.Exists("test:restaurant") {
		t.Error("region hash survived ClearAll")
	}
	if !mr.Exists("unrelated") {
		t.Error("ClearAll removed a key outside the prefix")
	}
}

func TestRedisBackend_InvalidEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	b := NewRedisBackend(client, "")

	mr.HSet(DefaultKeyPrefix+":food", "1", "not json")

	_, ok, err := b.Get(context.Background(), RegionFood, "1")
	if ok {
		t.Error("Get should not report a hit for a corrupted entry")
	}
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Get error = %v, want ErrInvalidEntry", err)
	}
}

func TestRedisBackend_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	b := NewRedisBackend(client, "")
	mr.Close()

	if _, _, err := b.Get(context.Background(), RegionFood, "1"); err == nil {
		t.Error("Get should fail when Redis is unreachable")
	}
	if err := b.Clear(context.Background(), RegionFood); err == nil {
		t.Error("Clear should fail when Redis is unreachable")
	}
}

func TestNewRedisBackend_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisBackend should panic with nil redis client")
		}
	}()
	NewRedisBackend(nil, "")
}
