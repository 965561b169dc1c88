package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/infra/metrics"
)

// NewPgxPool opens a pool against dsn and waits until the server answers a ping.
// It retries a few times so the app can start alongside a freshly booted database.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32, log *zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	const maxRetries = 5
	var pool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err = pgxpool.ConnectConfig(connectCtx, cfg)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err != nil {
				pool.Close()
			}
		}
		cancel()
		if err == nil {
			return pool, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("waiting for database")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return nil, fmt.Errorf("connect postgres after %d attempts: %w", maxRetries, err)
}

// PoolStats adapts pgxpool statistics to the exported gauges.
func PoolStats(pool *pgxpool.Pool) metrics.PoolStats {
	st := pool.Stat()
	return metrics.PoolStats{
		Total:       st.TotalConns(),
		Idle:        st.IdleConns(),
		InUse:       st.AcquiredConns(),
		Max:         st.MaxConns(),
		AcquireWait: st.AcquireDuration(),
	}
}
