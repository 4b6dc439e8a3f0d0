package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by region
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"region"},
	)

	// CacheMisses tracks cache misses by region, including degraded reads
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"region"},
	)

	// CachePuts tracks successful populations and refreshes by region
	CachePuts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_puts_total",
			Help: "Total number of cache entries written",
		},
		[]string{"region"},
	)

	// CacheEvictions tracks key-level evictions by region
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_evictions_total",
			Help: "Total number of key-level cache evictions",
		},
		[]string{"region"},
	)

	// CacheClears tracks region-level clears by region
	CacheClears = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_clears_total",
			Help: "Total number of region-level cache clears",
		},
		[]string{"region"},
	)

	// CacheErrors tracks backend and codec errors that were degraded
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear", "clear_all", "len", "encode", "decode"
	)
)
