package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every region hash in Redis.
const DefaultKeyPrefix = "foodapp:cache"

// RedisBackend stores each region as one Redis hash named
// <prefix>:<region>, with one field per cache key. Clearing a region is a
// single DEL, so it is atomic with respect to other Redis clients.
type RedisBackend struct {
	redis  *redis.Client
	prefix string
}

// NewRedisBackend creates a Redis backend. An empty prefix selects
// DefaultKeyPrefix.
func NewRedisBackend(redisClient *redis.Client, prefix string) *RedisBackend {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisBackend{
		redis:  redisClient,
		prefix: prefix,
	}
}

// regionKey returns the Redis key of the region hash.
//
// Example:
//
//	foodapp:cache:restaurant
func (b *RedisBackend) regionKey(region Region) string {
	return b.prefix + ":" + string(region)
}

// Get retrieves and decodes the entry stored under key.
func (b *RedisBackend) Get(ctx context.Context, region Region, key string) (Entry, bool, error) {
	data, err := b.redis.HGet(ctx, b.regionKey(region), key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis hget: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return entry, true, nil
}

// Set encodes and stores entry under key.
func (b *RedisBackend) Set(ctx context.Context, region Region, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := b.redis.HSet(ctx, b.regionKey(region), key, data).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Delete removes key from the region hash.
func (b *RedisBackend) Delete(ctx context.Context, region Region, key string) error {
	if err := b.redis.HDel(ctx, b.regionKey(region), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

// Clear deletes the region hash.
func (b *RedisBackend) Clear(ctx context.Context, region Region) error {
	if err := b.redis.Del(ctx, b.regionKey(region)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// ClearAll deletes every region hash under the prefix, including regions
// this process never wrote.
func (b *RedisBackend) ClearAll(ctx context.Context) error {
	var keys []string
	iter := b.redis.Scan(ctx, 0, b.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := b.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Len returns the number of fields in the region hash.
func (b *RedisBackend) Len(ctx context.Context, region Region) (int, error) {
	n, err := b.redis.HLen(ctx, b.regionKey(region)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hlen: %w", err)
	}
	return int(n), nil
}
