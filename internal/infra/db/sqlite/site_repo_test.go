package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SiteRepo {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "sites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSiteRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	site, err := repo.Create(ctx, model.NewSite("Vintage Denim Shop"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), site.ID)
	assert.Equal(t, model.SiteStatusPending, site.Status)
	assert.Nil(t, site.Code)

	got, err := repo.Get(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, site, got)

	done, err := repo.Update(ctx, site.ID, model.Completed("<html>ok</html>"))
	require.NoError(t, err)
	assert.Equal(t, model.SiteStatusCompleted, done.Status)

	got, err = repo.Get(ctx, site.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Code)
	assert.Equal(t, "<html>ok</html>", *got.Code)
	assert.Equal(t, model.SiteStatusCompleted, got.Status)

	_, err = repo.Update(ctx, site.ID, model.Failed())
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestSiteRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	_, err := repo.Get(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Update(ctx, 5, model.Failed())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSiteRepo_FailedKeepsCodeNull(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	site, err := repo.Create(ctx, model.NewSite("p"))
	require.NoError(t, err)
	_, err = repo.Update(ctx, site.ID, model.Failed())
	require.NoError(t, err)

	got, err := repo.Get(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SiteStatusFailed, got.Status)
	assert.Nil(t, got.Code)
}

func TestSiteRepo_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sites.db")

	repo, err := Open(path)
	require.NoError(t, err)
	site, err := repo.Create(ctx, model.NewSite("p"))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()
	got, err := repo.Get(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Prompt)
}
