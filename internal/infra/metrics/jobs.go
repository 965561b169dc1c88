package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(siteJobsProcessedTotal, siteJobsSubmittedTotal, workerQueueOverflowTotal, workerQueueDepth)
}

var (
	siteJobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_jobs_processed_total",
			Help: "Total number of site generation jobs processed, labeled by terminal status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	siteJobsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_jobs_submitted_total",
			Help: "Total number of site generation jobs accepted.",
		},
	)

	workerQueueOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_queue_overflow_total",
			Help: "Tasks run detached because the worker queue was full.",
		},
	)

	workerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Tasks waiting in the worker queue.",
		},
	)
)

func IncSiteJob(status string) {
	siteJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncSiteSubmitted() {
	siteJobsSubmittedTotal.Inc()
}

func IncQueueOverflow() {
	workerQueueOverflowTotal.Inc()
}

func SetQueueDepth(n int) {
	workerQueueDepth.Set(float64(n))
}
