package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-storefront-builder/internal/domain"
)

// TxManager begins a transaction, invokes the callback, and commits/rolls back.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx opens a DB transaction and passes it to fn.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, txOpt)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err // rollback in defer
	}
	return tx.Commit(ctx)
}

type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// getExecutor returns tx when one is in flight, otherwise the pool.
func getExecutor(pool *pgxpool.Pool, tx pgx.Tx) (executor, error) {
	if tx != nil {
		return tx, nil
	}
	if pool != nil {
		return pool, nil
	}
	return nil, domain.ErrInvalidExecContext
}

// Postgres error codes the site store translates.
const (
	pgNumericOutOfRange = "22003"
	pgCheckViolation    = "23514"
)

// translateError maps driver errors onto domain errors. Unknown errors pass through.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgNumericOutOfRange:
			// no row can carry an id the column type cannot hold
			return domain.ErrNotFound
		case pgCheckViolation:
			return domain.NewValidationError("Prompt is required")
		}
	}
	return err
}
