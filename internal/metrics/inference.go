package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "takenote"

// Inference and analysis Prometheus metrics.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_requests_total",
			Help:      "Total number of inference provider calls",
		},
		[]string{"provider", "model", "task", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_request_duration_seconds",
			Help:      "Inference provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model", "task"},
	)

	InferenceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_errors_total",
			Help:      "Total inference provider failures by kind",
		},
		[]string{"provider", "model", "kind"},
	)

	AnalysisResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_results_total",
			Help:      "Analysis results by stage and the tier that produced them",
		},
		[]string{"stage", "tier"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

var inferenceMetricsRegistered bool

// RegisterInferenceMetrics registers inference and analysis metrics. Must be called once from main.
func RegisterInferenceMetrics() {
	if inferenceMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		InferenceRequestsTotal,
		InferenceRequestDuration,
		InferenceErrorsTotal,
		AnalysisResultsTotal,
		EmbeddingCacheTotal,
		RateLimitedTotal,
	)
	inferenceMetricsRegistered = true
}
