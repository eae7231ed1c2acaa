package scan

import "github.com/prometheus/client_golang/prometheus"

var (
	scanProbes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcheck_scan_probes_total",
		Help: "Total number of probes dispatched by range scans",
	})

	scanCandidates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcheck_scan_candidates_total",
		Help: "Total number of distinct candidates found by range scans",
	})

	rankedAddresses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcheck_rank_addresses_total",
		Help: "Total number of addresses that received a latency entry",
	})

	rankExcluded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcheck_rank_excluded_total",
		Help: "Total number of candidates excluded because every attempt failed",
	})

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ipcheck_phase_duration_seconds",
			Help:    "Duration of scan and rank phases",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"phase"},
	)
)

// Collectors returns the scan and rank metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{scanProbes, scanCandidates, rankedAddresses, rankExcluded, phaseDuration}
}
