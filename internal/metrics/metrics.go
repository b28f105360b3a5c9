package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Translation metrics
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formshift_translations_total",
			Help: "Total number of translation requests",
		},
		[]string{"status"},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formshift_completion_duration_seconds",
			Help:    "Duration of completion API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Record store metrics
	SheetRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formshift_sheet_requests_total",
			Help: "Total number of spreadsheet API requests",
		},
		[]string{"op", "status"},
	)

	// Catalog cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formshift_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formshift_cache_misses_total",
			Help: "Total number of catalog cache misses",
		},
	)

	// Star and interest counters
	StarUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formshift_star_updates_total",
			Help: "Total number of star increments and decrements",
		},
		[]string{"direction"},
	)

	InterestHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formshift_interest_hits_total",
			Help: "Total number of interest counter increments",
		},
		[]string{"kind"},
	)
)
