package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/repository"
	"ai-storefront-builder/internal/infra/metrics"
)

var _ repository.SiteRepository = (*siteRepo)(nil)

const siteColumns = `id, prompt, code, status, created_at`

type siteRepo struct {
	pool *pgxpool.Pool
	tm   *TxManager
}

// NewSiteRepo returns a SiteRepository backed by pool. Close closes the pool.
func NewSiteRepo(pool *pgxpool.Pool) *siteRepo {
	return &siteRepo{
		pool: pool,
		tm:   NewTxManager(pool),
	}
}

func (r *siteRepo) Create(ctx context.Context, site *model.Site) (*model.Site, error) {
	defer metrics.ObserveQuery("postgres", "create", time.Now())

	const q = `
INSERT INTO sites (prompt, status)
VALUES ($1, $2)
RETURNING ` + siteColumns + `;`

	return scanSite(r.pool.QueryRow(ctx, q, site.Prompt, string(model.SiteStatusPending)))
}

func (r *siteRepo) Get(ctx context.Context, id int64) (*model.Site, error) {
	defer metrics.ObserveQuery("postgres", "get", time.Now())
	return r.get(ctx, nil, id, false)
}

// Update locks the row, validates the patch against the current status and writes it back
// in one transaction, so two writers can never both move a pending site.
func (r *siteRepo) Update(ctx context.Context, id int64, patch model.SitePatch) (*model.Site, error) {
	defer metrics.ObserveQuery("postgres", "update", time.Now())

	var updated *model.Site
	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		current, err := r.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if !patch.Apply(current) {
			return domain.ErrAlreadyFinalized
		}

		const q = `
UPDATE sites SET code = $2, status = $3
WHERE id = $1
RETURNING ` + siteColumns + `;`

		updated, err = scanSite(tx.QueryRow(ctx, q, id, current.Code, string(current.Status)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *siteRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *siteRepo) get(ctx context.Context, tx pgx.Tx, id int64, forUpdate bool) (*model.Site, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	return scanSite(ex.QueryRow(ctx, q, id))
}

func scanSite(row pgx.Row) (*model.Site, error) {
	var (
		s      model.Site
		status string
	)
	if err := row.Scan(&s.ID, &s.Prompt, &s.Code, &status, &s.CreatedAt); err != nil {
		return nil, translateError(err)
	}
	s.Status = model.SiteStatus(status)
	if !s.Status.Valid() {
		return nil, domain.ErrReadDatabaseRow
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
