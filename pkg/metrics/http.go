package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the scan completion HTTP handler
	ScanCompleteLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_complete_latency_seconds",
		Help:    "Latency of the scan completion handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of scan completion requests served
	ScanCompleteRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_complete_requests_total",
		Help: "Total number of scan completion requests",
	})

	// Total number of recommendation state change requests
	RecommendationStateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_state_requests_total",
		Help: "Total number of recommendation complete/skip requests",
	}, []string{"action"})
)

func Init() {
	prometheus.MustRegister(
		ScanCompleteLatency,
		ScanCompleteRequests,
		RecommendationStateRequests,
	)
}
