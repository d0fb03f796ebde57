package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, dbAcquireWait) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the Postgres connection pool.",
		},
		[]string{"state"}, // total, idle, in_use, max
	)

	dbAcquireWait = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_empty_acquire_total",
			Help: "Cumulative acquires that had to wait for a free connection.",
		},
	)
)

// SetDBPoolStats publishes a pool snapshot.
func SetDBPoolStats(total, idle, inUse, max int32, emptyAcquires int64) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
	dbPoolStats.WithLabelValues("max").Set(float64(max))
	dbAcquireWait.Set(float64(emptyAcquires))
}
