package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/adapter"
	"ai-storefront-builder/internal/infra/db/memory"
)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	delay time.Duration
	reqs  []adapter.GenerateRequest
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return adapter.GenerateResult{}, ctx.Err()
		}
	}
	if f.err != nil {
		return adapter.GenerateResult{}, f.err
	}
	return adapter.GenerateResult{Text: f.text, Provider: "fake", Model: "fake-1"}, nil
}

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newPending(t *testing.T, repo *memory.SiteRepo, prompt string) *model.Site {
	t.Helper()
	s, err := repo.Create(context.Background(), model.NewSite(prompt))
	require.NoError(t, err)
	return s
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"```html\n<html></html>\n```": "\n<html></html>\n",
		"<html></html>":               "<html></html>",
		"```<p>x</p>```":              "<p>x</p>",
		"a ```html b ``` c ```html":   "a  b  c ",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFences(in), in)
	}
}

func TestGenerate_Completes(t *testing.T) {
	repo := memory.NewSiteRepo()
	site := newPending(t, repo, "Vintage Denim Shop")
	gen := &fakeGenerator{text: "```html\n<html><body>Denim</body></html>\n```"}
	g := NewSiteGenerator(repo, gen, NewPool(1, 1, nil), GeneratorOptions{MaxTokens: 2000, Temperature: 0.7}, nopLogger())

	require.NoError(t, g.Generate(context.Background(), site.ID, site.Prompt))

	got, err := repo.Get(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SiteStatusCompleted, got.Status)
	require.NotNil(t, got.Code)
	assert.Equal(t, "\n<html><body>Denim</body></html>\n", *got.Code)

	require.Len(t, gen.reqs, 1)
	assert.Equal(t, SystemInstruction, gen.reqs[0].System)
	assert.Equal(t, "Vintage Denim Shop", gen.reqs[0].Prompt)
	assert.Equal(t, 2000, gen.reqs[0].MaxTokens)
}

func TestGenerate_FailureMarksFailed(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"external error": {err: errors.Join(domain.ErrExternalService, errors.New("429"))},
		"missing key":    {err: domain.ErrMissingCredential},
		"empty output":   {text: "```html\n```"},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			repo := memory.NewSiteRepo()
			site := newPending(t, repo, "Tea House")
			g := NewSiteGenerator(repo, gen, NewPool(1, 1, nil), GeneratorOptions{}, nopLogger())

			require.NoError(t, g.Generate(context.Background(), site.ID, site.Prompt))
			got, err := repo.Get(context.Background(), site.ID)
			require.NoError(t, err)
			assert.Equal(t, model.SiteStatusFailed, got.Status)
			assert.Nil(t, got.Code)
		})
	}
}

func TestGenerate_TimeoutMarksFailed(t *testing.T) {
	repo := memory.NewSiteRepo()
	site := newPending(t, repo, "Slow Shop")
	gen := &fakeGenerator{text: "<html></html>", delay: time.Second}
	g := NewSiteGenerator(repo, gen, NewPool(1, 1, nil), GeneratorOptions{Timeout: 20 * time.Millisecond}, nopLogger())

	require.NoError(t, g.Generate(context.Background(), site.ID, site.Prompt))
	got, _ := repo.Get(context.Background(), site.ID)
	assert.Equal(t, model.SiteStatusFailed, got.Status)
}

func TestGenerate_SecondResultIsDropped(t *testing.T) {
	repo := memory.NewSiteRepo()
	site := newPending(t, repo, "Shop")
	g := NewSiteGenerator(repo, &fakeGenerator{text: "<html>first</html>"}, NewPool(1, 1, nil), GeneratorOptions{}, nopLogger())
	require.NoError(t, g.Generate(context.Background(), site.ID, site.Prompt))

	g2 := NewSiteGenerator(repo, &fakeGenerator{err: errors.New("late failure")}, NewPool(1, 1, nil), GeneratorOptions{}, nopLogger())
	require.NoError(t, g2.Generate(context.Background(), site.ID, site.Prompt))

	got, _ := repo.Get(context.Background(), site.ID)
	assert.Equal(t, model.SiteStatusCompleted, got.Status)
	assert.Equal(t, "<html>first</html>", *got.Code)
}

func TestDispatch_ThroughPool(t *testing.T) {
	repo := memory.NewSiteRepo()
	pool := NewPool(2, 8, nopLogger())
	pool.Start(context.Background())
	g := NewSiteGenerator(repo, &fakeGenerator{text: "<html></html>"}, pool, GeneratorOptions{}, nopLogger())

	var ids []int64
	for i := 0; i < 4; i++ {
		s := newPending(t, repo, "shop")
		g.Dispatch(s)
		ids = append(ids, s.ID)
	}
	require.NoError(t, pool.Stop(context.Background()))

	for _, id := range ids {
		got, err := repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.SiteStatusCompleted, got.Status)
	}
}

func TestDispatch_OverflowRunsDetached(t *testing.T) {
	repo := memory.NewSiteRepo()
	pool := NewPool(1, 1, nopLogger())
	require.NoError(t, pool.Stop(context.Background())) // closed pool rejects everything
	g := NewSiteGenerator(repo, &fakeGenerator{text: "<html></html>"}, pool, GeneratorOptions{}, nopLogger())

	s := newPending(t, repo, "shop")
	g.Dispatch(s)
	require.NoError(t, g.Wait(context.Background()))

	got, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SiteStatusCompleted, got.Status)
}
