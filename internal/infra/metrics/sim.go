package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(simLookupsTotal, simUpstreamLatency) }

var (
	simLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_lookups_total",
			Help: "SIM lookups by result (invalid, unavailable, eligible, error).",
		},
		[]string{"result"},
	)

	simUpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sim_upstream_latency_ms",
			Help:    "SIM inventory call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"success"},
	)
)

func IncSimLookup(result string) {
	simLookupsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveSimUpstream(latencyMs int64, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	simUpstreamLatency.WithLabelValues(label).Observe(float64(latencyMs))
}
