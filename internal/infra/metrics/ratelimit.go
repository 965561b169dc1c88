package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(rateLimitDecisionsTotal) }

var rateLimitDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_decisions_total",
		Help: "Submission rate limiter decisions.",
	},
	[]string{"result"}, // 'allowed', 'limited', 'error'
)

func IncRateLimit(result string) {
	rateLimitDecisionsTotal.WithLabelValues(norm(result)).Inc()
}
