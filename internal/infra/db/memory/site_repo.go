package memory

import (
	"context"
	"sync"
	"time"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/repository"
)

var _ repository.SiteRepository = (*SiteRepo)(nil)

// SiteRepo keeps sites in a map. IDs are assigned from a monotonic counter.
type SiteRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Site
	now    func() time.Time
}

func NewSiteRepo() *SiteRepo {
	return &SiteRepo{byID: map[int64]*model.Site{}, now: time.Now}
}

func (r *SiteRepo) Create(ctx context.Context, site *model.Site) (*model.Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := &model.Site{
		ID:        r.nextID,
		Prompt:    site.Prompt,
		Status:    model.SiteStatusPending,
		CreatedAt: r.now().UTC(),
	}
	r.byID[stored.ID] = stored
	return clone(stored), nil
}

func (r *SiteRepo) Update(ctx context.Context, id int64, patch model.SitePatch) (*model.Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := clone(s)
	if !patch.Apply(next) {
		return nil, domain.ErrAlreadyFinalized
	}
	r.byID[id] = next
	return clone(next), nil
}

func (r *SiteRepo) Get(ctx context.Context, id int64) (*model.Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(s), nil
}

// Len returns the number of stored sites.
func (r *SiteRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *SiteRepo) Close() error { return nil }

func clone(s *model.Site) *model.Site {
	cp := *s
	if s.Code != nil {
		code := *s.Code
		cp.Code = &code
	}
	return &cp
}
