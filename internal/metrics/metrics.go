package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenAIAttemptsTotal tracks individual HTTP attempts against the model endpoint
	GenAIAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridgechef_genai_attempts_total",
			Help: "Total number of generative API attempts",
		},
		[]string{"model", "outcome"}, // outcome: success, transient, permanent
	)

	// GenAIRetriesTotal tracks backoff sleeps scheduled by the executor
	GenAIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridgechef_genai_retries_total",
			Help: "Total number of retries scheduled after transient failures",
		},
		[]string{"model"},
	)

	// GenAICallsTotal tracks completed executor calls
	GenAICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridgechef_genai_calls_total",
			Help: "Total number of executor calls by result",
		},
		[]string{"model", "result"}, // result: ok, failed, exhausted, canceled
	)

	// GenAILatency tracks latency of single attempts
	GenAILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fridgechef_genai_attempt_latency_seconds",
			Help:    "Generative API attempt latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"model"},
	)

	// HTTPRequestsTotal tracks API requests served
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridgechef_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"route", "code"},
	)

	// CacheLookupsTotal tracks recipe cache hits and misses
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridgechef_cache_lookups_total",
			Help: "Total number of recipe cache lookups",
		},
		[]string{"result"},
	)

	// QuotaRejectionsTotal tracks calls refused by the daily quota
	QuotaRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fridgechef_quota_rejections_total",
			Help: "Total number of model calls rejected by the daily quota",
		},
	)

	// DBConnectionPoolUsage tracks the percentage of used DB connections
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fridgechef_db_connection_pool_usage_percent",
			Help: "Percentage of used database connections",
		},
	)
)
