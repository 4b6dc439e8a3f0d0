// Package metrics exposes the Prometheus registry of foodapp.
// Metrics are defined next to the code that updates them (pkg/cache,
// pkg/sweeper) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every foodapp metric is registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer serves the metrics in Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - foodapp_cache_hits_total{region} (Counter): reads served from the cache
//   - foodapp_cache_misses_total{region} (Counter): reads that went to the store
//   - foodapp_cache_puts_total{region} (Counter): entries written
//   - foodapp_cache_evictions_total{region} (Counter): single-key evictions
//   - foodapp_cache_clears_total{region} (Counter): whole-region clears
//   - foodapp_cache_errors_total{operation} (Counter): backend and codec failures
//
// Sweep Metrics (pkg/sweeper):
//   - foodapp_cache_sweeps_total{job} (Counter): completed sweeps
//   - foodapp_cache_last_sweep_timestamp_seconds{job} (Gauge): time of the last sweep
//
// Example Prometheus Queries:
//
//   # Hit rate per region
//   sum by (region) (rate(foodapp_cache_hits_total[5m])) /
//   (sum by (region) (rate(foodapp_cache_hits_total[5m])) + sum by (region) (rate(foodapp_cache_misses_total[5m])))
//
//   # Backend failures
//   rate(foodapp_cache_errors_total[5m]) > 0
//
//   # Sweeper stalled
//   time() - foodapp_cache_last_sweep_timestamp_seconds{job="users"} > 600
