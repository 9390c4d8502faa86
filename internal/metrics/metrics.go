package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts redemption lookups by source chain and outcome
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_lookups_total",
			Help: "Total number of redemption lookups",
		},
		[]string{"chain", "outcome"},
	)

	// LookupDuration tracks end-to-end lookup time
	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locator_lookup_duration_seconds",
			Help:    "Redemption lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	// CacheRequestsTotal counts memo reads by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_cache_requests_total",
			Help: "Total number of result cache reads",
		},
		[]string{"result"},
	)

	// CandidatesExamined counts destination transactions inspected per scan
	CandidatesExamined = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locator_candidates_examined",
			Help:    "Number of candidate transactions examined per scan",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"chain"},
	)

	// RPCCallsTotal counts upstream RPC calls by chain, method and status
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_rpc_calls_total",
			Help: "Total number of upstream RPC calls",
		},
		[]string{"chain", "method", "status"},
	)

	// RPCRateLimitWaits counts calls delayed by the client-side rate limiter
	RPCRateLimitWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_rpc_rate_limit_waits_total",
			Help: "Total number of RPC calls delayed by rate limiting",
		},
		[]string{"chain"},
	)

	// TokenResolutionsTotal counts wrapped-asset metadata resolutions by source
	TokenResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_token_resolutions_total",
			Help: "Total number of token metadata resolutions",
		},
		[]string{"chain", "source"},
	)
)
