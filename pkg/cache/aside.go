package cache

import (
	"context"
	"encoding/json"
)

// Loader fetches the authoritative value on a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// LoadOrPopulate is the cache-aside read path. On a hit it returns the
// cached snapshot without calling load. On a miss it calls load; a
// successful result is put under key before it is returned, a failure is
// returned unchanged and nothing is cached.
//
// Concurrent misses for the same key may each call load and put; the last
// put wins.
func LoadOrPopulate[T any](ctx context.Context, m *Manager, region Region, key string, load Loader[T]) (T, error) {
	if entry, ok := m.Get(ctx, region, key); ok {
		var v T
		err := json.Unmarshal(entry.Data, &v)
		if err == nil {
			return v, nil
		}
		CacheErrors.WithLabelValues("decode").Inc()
		m.logger.Warn().Err(err).
			Str("region", string(region)).
			Str("key", key).
			Msg("Undecodable cache entry, reloading")
		m.Evict(ctx, region, key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	m.putValue(ctx, region, key, v)
	return v, nil
}

// putValue encodes v and puts it under key. A value that cannot be encoded
// evicts the key instead.
func (m *Manager) putValue(ctx context.Context, region Region, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		m.logger.Warn().Err(err).
			Str("region", string(region)).
			Str("key", key).
			Msg("Cannot encode cache value, evicting key")
		m.Evict(ctx, region, key)
		return
	}
	m.Put(ctx, region, key, data)
}
