package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache lookup results.
const (
	CacheResultHit  = "hit"
	CacheResultMiss = "miss"
)

var (
	// ModerationTransitions counts committed business status changes.
	ModerationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_transitions_total",
			Help:      "Committed business moderation transitions",
		},
		[]string{"action"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Business search pipeline duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache hits and misses",
		},
		[]string{"result"},
	)
)
