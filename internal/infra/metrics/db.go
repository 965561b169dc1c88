package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dbPoolConns, dbPoolAcquireWait, dbQueryDuration) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_conns",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use', 'max'
	)

	dbPoolAcquireWait = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_acquire_wait_seconds",
			Help: "Cumulative time spent waiting for a pooled connection.",
		},
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Site repository call latency by operation.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend", "op"},
	)
)

// PoolStats is the subset of pool statistics exported as gauges.
type PoolStats struct {
	Total, Idle, InUse, Max int32
	AcquireWait             time.Duration
}

func SetDBPoolStats(s PoolStats) {
	dbPoolConns.WithLabelValues("total").Set(float64(s.Total))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(s.InUse))
	dbPoolConns.WithLabelValues("max").Set(float64(s.Max))
	dbPoolAcquireWait.Set(s.AcquireWait.Seconds())
}

// ObserveQuery records the latency of one repository operation since start.
func ObserveQuery(backend, op string, start time.Time) {
	dbQueryDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
