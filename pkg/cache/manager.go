package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Manager is the process-wide handle to all cache regions. It is created
// once at startup and injected into every use case.
//
// Every Manager operation is total. Backend failures are logged and
// counted in CacheErrors; a failed read is a miss and a failed write is a
// no-op. Writes detach from the caller's cancellation so an invalidation
// is never abandoned halfway because a request went away.
type Manager struct {
	backend Backend
	logger  zerolog.Logger
	now     func() time.Time
}

// NewManager creates a cache manager over backend.
func NewManager(backend Backend, logger zerolog.Logger) *Manager {
	if backend == nil {
		panic("cache backend cannot be nil")
	}
	return &Manager{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Get retrieves the entry stored under key in region. An empty key, an
// unknown region and a backend error all report a miss.
func (m *Manager) Get(ctx context.Context, region Region, key string) (Entry, bool) {
	if key == "" {
		CacheMisses.WithLabelValues(string(region)).Inc()
		return Entry{}, false
	}

	entry, ok, err := m.backend.Get(ctx, region, key)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		m.logger.Warn().Err(err).
			Str("region", string(region)).
			Str("key", key).
			Msg("Cache get failed, treating as miss")
		ok = false
	}

	if !ok {
		CacheMisses.WithLabelValues(string(region)).Inc()
		m.logger.Debug().Str("region", string(region)).Str("key", key).Msg("Cache miss")
		return Entry{}, false
	}

	CacheHits.WithLabelValues(string(region)).Inc()
	m.logger.Debug().
		Str("region", string(region)).
		Str("key", key).
		Dur("age", entry.Age(m.now())).
		Msg("Cache hit")
	return entry, true
}

// Put stores data under key in region, stamped with the current time.
// If the write fails the key is evicted, so a failed refresh never leaves
// the previous snapshot readable.
func (m *Manager) Put(ctx context.Context, region Region, key string, data []byte) {
	if key == "" {
		m.logger.Debug().Str("region", string(region)).Msg("Skipping cache put with empty key")
		return
	}
	ctx = context.WithoutCancel(ctx)

	entry := Entry{Data: data, InsertedAt: m.now()}
	if err := m.backend.Set(ctx, region, key, entry); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).
			Str("region", string(region)).
			Str("key", key).
			Msg("Cache put failed, evicting key")
		m.Evict(ctx, region, key)
		return
	}

	CachePuts.WithLabelValues(string(region)).Inc()
}

// Evict removes key from region.
func (m *Manager) Evict(ctx context.Context, region Region, key string) {
	if key == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if err := m.backend.Delete(ctx, region, key); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		m.logger.Error().Err(err).
			Str("region", string(region)).
			Str("key", key).
			Msg("Cache evict failed, entry may be stale until the next sweep")
		return
	}

	CacheEvictions.WithLabelValues(string(region)).Inc()
	m.logger.Debug().Str("region", string(region)).Str("key", key).Msg("Cache key evicted")
}

// Clear removes every entry of region. Clearing an empty or unknown region
// is a no-op.
func (m *Manager) Clear(ctx context.Context, region Region) {
	ctx = context.WithoutCancel(ctx)

	if err := m.backend.Clear(ctx, region); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		m.logger.Error().Err(err).
			Str("region", string(region)).
			Msg("Cache clear failed, region may be stale until the next sweep")
		return
	}

	CacheClears.WithLabelValues(string(region)).Inc()
	m.logger.Debug().Str("region", string(region)).Msg("Cache region cleared")
}

// ClearAll removes every entry of every region.
func (m *Manager) ClearAll(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if err := m.backend.ClearAll(ctx); err != nil {
		CacheErrors.WithLabelValues("clear_all").Inc()
		m.logger.Error().Err(err).Msg("Cache clear all failed")
		return
	}

	m.logger.Info().Msg("All cache regions cleared")
}

// Len returns the number of entries in region, or 0 when the backend
// cannot tell.
func (m *Manager) Len(ctx context.Context, region Region) int {
	n, err := m.backend.Len(ctx, region)
	if err != nil {
		CacheErrors.WithLabelValues("len").Inc()
		m.logger.Warn().Err(err).Str("region", string(region)).Msg("Cache len failed")
		return 0
	}
	return n
}
