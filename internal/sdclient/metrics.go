package sdclient

import "github.com/prometheus/client_golang/prometheus"

var (
	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artbot",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total txt2img calls by outcome",
		},
		[]string{"outcome"},
	)

	backendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "artbot",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Wall-clock duration of txt2img calls, including timeouts",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		},
	)
)

func init() {
	prometheus.MustRegister(backendRequests, backendDuration)
}
