package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/infra/metrics"
)

// StatsReporter periodically publishes connection-pool and queue gauges.
type StatsReporter struct {
	interval time.Duration
	pool     func() metrics.PoolStats
	queue    func() int
	log      *zerolog.Logger
}

// NewStatsReporter takes optional sources; a nil source is skipped.
func NewStatsReporter(interval time.Duration, pool func() metrics.PoolStats, queue func() int, logger *zerolog.Logger) *StatsReporter {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	compLog := logger.With().Str("component", "StatsReporter").Logger()
	return &StatsReporter{
		interval: interval,
		pool:     pool,
		queue:    queue,
		log:      &compLog,
	}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats reporter")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.report()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats reporter")
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *StatsReporter) report() {
	if w.pool != nil {
		metrics.SetDBPoolStats(w.pool())
	}
	if w.queue != nil {
		metrics.SetQueueDepth(w.queue())
	}
}
