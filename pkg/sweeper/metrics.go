package sweeper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepsTotal tracks completed sweeps by job
	SweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodapp_cache_sweeps_total",
			Help: "Total number of scheduled cache region sweeps",
		},
		[]string{"job"},
	)

	// LastSweep records when each job last completed, as a unix timestamp
	LastSweep = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodapp_cache_last_sweep_timestamp_seconds",
			Help: "Unix time of the last completed sweep by job",
		},
		[]string{"job"},
	)
)
