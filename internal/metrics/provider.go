package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider and pipeline Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "provider_requests_total",
			Help:      "Total number of geodata provider requests",
		},
		[]string{"provider", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geopulse",
			Name:      "provider_request_duration_seconds",
			Help:      "Geodata provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	ProviderRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "provider_retries_total",
			Help:      "Total number of rate-limit retries against providers",
		},
		[]string{"provider"},
	)

	PipelineStagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "pipeline_stages_total",
			Help:      "Map-guarantee stage attempts by outcome",
		},
		[]string{"stage", "result"}, // result: "success" / "miss"
	)

	AgentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "agent_requests_total",
			Help:      "Total number of generation agent requests",
		},
		[]string{"agent", "status"},
	)

	AgentTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "agent_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"agent", "type"}, // type: "prompt" / "completion" / "total"
	)

	PlaceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geopulse",
			Name:      "place_cache_total",
			Help:      "Place-details cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderRetriesTotal)
	prometheus.MustRegister(PipelineStagesTotal)
	prometheus.MustRegister(AgentRequestsTotal)
	prometheus.MustRegister(AgentTokensTotal)
	prometheus.MustRegister(PlaceCacheTotal)
	providerMetricsRegistered = true
}
