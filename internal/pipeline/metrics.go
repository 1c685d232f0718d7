package pipeline

import "github.com/prometheus/client_golang/prometheus"

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "artbot",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed art commands by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(runsTotal)
}
