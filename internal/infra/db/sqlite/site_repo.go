package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/repository"
	"ai-storefront-builder/internal/infra/metrics"
)

var _ repository.SiteRepository = (*SiteRepo)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sites (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  prompt TEXT NOT NULL CHECK (prompt <> ''),
  code TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at INTEGER NOT NULL
);
`

// SiteRepo is a single-file store for running without a Postgres server.
type SiteRepo struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*SiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes writes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SiteRepo{db: db}, nil
}

func (s *SiteRepo) Close() error { return s.db.Close() }

func (s *SiteRepo) Create(ctx context.Context, site *model.Site) (*model.Site, error) {
	defer metrics.ObserveQuery("sqlite", "create", time.Now())

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (prompt, status, created_at) VALUES (?, ?, ?)`,
		site.Prompt, string(model.SiteStatusPending), now.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Site{
		ID:        id,
		Prompt:    site.Prompt,
		Status:    model.SiteStatusPending,
		CreatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}, nil
}

func (s *SiteRepo) Get(ctx context.Context, id int64) (*model.Site, error) {
	defer metrics.ObserveQuery("sqlite", "get", time.Now())
	return getSite(ctx, s.db, id)
}

func (s *SiteRepo) Update(ctx context.Context, id int64, patch model.SitePatch) (*model.Site, error) {
	defer metrics.ObserveQuery("sqlite", "update", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getSite(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !patch.Apply(current) {
		return nil, domain.ErrAlreadyFinalized
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sites SET code = ?, status = ? WHERE id = ?`,
		nullableString(current.Code), string(current.Status), id,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return current, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSite(ctx context.Context, q queryer, id int64) (*model.Site, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, prompt, code, status, created_at FROM sites WHERE id = ?`, id,
	)
	var (
		site      model.Site
		code      sql.NullString
		status    string
		createdMs int64
	)
	if err := row.Scan(&site.ID, &site.Prompt, &code, &status, &createdMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	site.Status = model.SiteStatus(status)
	site.CreatedAt = time.UnixMilli(createdMs).UTC()
	if code.Valid {
		site.Code = &code.String
	}
	return &site, nil
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
