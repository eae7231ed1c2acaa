package probe

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess     = "success"
	outcomeMismatch    = "mismatch"
	outcomeTimeout     = "timeout"
	outcomeUnreachable = "unreachable"
)

var (
	probeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipcheck_probe_runs_total",
			Help: "Total number of probes by outcome",
		},
		[]string{"outcome"},
	)

	probeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ipcheck_probe_latency_seconds",
			Help:    "Latency of successful probes in seconds",
			Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 2, 4, 8},
		},
	)
)

// Collectors returns the probe metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{probeRuns, probeLatency}
}

func observe(outcome string, elapsedMs int64) {
	probeRuns.WithLabelValues(outcome).Inc()
	if outcome == outcomeSuccess {
		probeLatency.Observe(float64(elapsedMs) / 1000)
	}
}
