package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"ai-storefront-builder/internal/infra/metrics"
)

func TestStatsReporter_ReportsUntilCancelled(t *testing.T) {
	var poolCalls, queueCalls atomic.Int32
	log := zerolog.Nop()
	r := NewStatsReporter(5*time.Millisecond,
		func() metrics.PoolStats {
			poolCalls.Add(1)
			return metrics.PoolStats{Total: 2, Idle: 1, InUse: 1, Max: 10}
		},
		func() int { queueCalls.Add(1); return 3 },
		&log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, poolCalls.Load(), int32(2))
	assert.Equal(t, poolCalls.Load(), queueCalls.Load())
}

func TestStatsReporter_NilSources(t *testing.T) {
	log := zerolog.Nop()
	r := NewStatsReporter(0, nil, nil, &log)
	assert.Equal(t, 15*time.Second, r.interval)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
}
