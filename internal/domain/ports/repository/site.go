package repository

import (
	"context"

	"ai-storefront-builder/internal/domain/model"
)

// SiteRepository persists Site records. Every call is atomic for the row it touches.
type SiteRepository interface {
	// Create inserts a pending site and fills in its ID and CreatedAt.
	Create(ctx context.Context, site *model.Site) (*model.Site, error)
	// Update applies patch to the site and returns the stored result.
	// It fails with domain.ErrNotFound for an unknown id and with
	// domain.ErrAlreadyFinalized when the patch would move a terminal site.
	Update(ctx context.Context, id int64, patch model.SitePatch) (*model.Site, error)
	// Get returns domain.ErrNotFound when no site matches.
	Get(ctx context.Context, id int64) (*model.Site, error)
	Close() error
}
