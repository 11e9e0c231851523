package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tour_matching", Name: "dispatches_total", Help: "Driver dispatch attempts by outcome"},
		[]string{"outcome"},
	)
	DispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "tour_matching", Name: "dispatch_latency_seconds", Help: "Dispatch latency seconds"})

	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tour_matching", Name: "match_runs_total", Help: "Interest match computations by outcome"},
		[]string{"outcome"},
	)
	MatchLatency     = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "tour_matching", Name: "match_latency_seconds", Help: "Match computation latency seconds"})
	MatchesReturned  = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "tour_matching", Name: "matches_returned", Help: "Matches returned per run", Buckets: prometheus.LinearBuckets(0, 1, 11)})
	EmbeddingsBuilt  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tour_matching", Name: "embeddings_built_total", Help: "Embedding vectors generated"})
	DriversAvailable = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "tour_matching", Name: "drivers_available", Help: "Available drivers seen by the last dispatch"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tour_matching", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tour_matching",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
