package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/adapter"
	"ai-storefront-builder/internal/domain/ports/repository"
	"ai-storefront-builder/internal/domain/ports/usecase"
	"ai-storefront-builder/internal/infra/logging"
	"ai-storefront-builder/internal/infra/metrics"
)

// SystemInstruction is sent with every generation request.
const SystemInstruction = "You are an expert web designer and front-end developer. " +
	"Produce a single self-contained HTML document implementing the requested e-commerce storefront. " +
	"Use Tailwind CSS from the CDN for styling and include a header, product grid, and footer. " +
	"Return only the markup, no prose, no code-fence delimiters."

var _ usecase.GenerationDispatcher = (*SiteGenerator)(nil)

type GeneratorOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds one generation call; zero means no bound beyond the provider's own.
	Timeout time.Duration
}

// SiteGenerator moves a pending site to completed or failed exactly once.
type SiteGenerator struct {
	sites    repository.SiteRepository
	gen      adapter.TextGenerator
	pool     *Pool
	opts     GeneratorOptions
	log      *zerolog.Logger
	detached sync.WaitGroup
}

func NewSiteGenerator(
	sites repository.SiteRepository,
	gen adapter.TextGenerator,
	pool *Pool,
	opts GeneratorOptions,
	log *zerolog.Logger,
) *SiteGenerator {
	return &SiteGenerator{sites: sites, gen: gen, pool: pool, opts: opts, log: log}
}

// Dispatch queues generation for site. If the queue is full or closed the task
// runs on its own goroutine so the site never stays pending for lack of a slot.
func (g *SiteGenerator) Dispatch(site *model.Site) {
	id, prompt := site.ID, site.Prompt
	task := func(ctx context.Context) error {
		return g.Generate(ctx, id, prompt)
	}

	err := g.pool.Submit(task)
	if err == nil {
		return
	}
	metrics.IncQueueOverflow()
	g.log.Warn().Err(err).Int64("site_id", id).Msg("generation queue unavailable; running detached")

	g.detached.Add(1)
	go func() {
		defer g.detached.Done()
		defer func() {
			if r := recover(); r != nil {
				g.log.Error().Int64("site_id", id).Interface("panic", r).Msg("detached generation panicked")
			}
		}()
		_ = task(context.Background())
	}()
}

// Wait blocks until detached generations finish or ctx ends.
func (g *SiteGenerator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.detached.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generate calls the model and writes the terminal state. Failures end in
// status=failed and are not returned, so the pool does not log them twice.
func (g *SiteGenerator) Generate(ctx context.Context, id int64, prompt string) error {
	ctx = logging.WithSiteID(ctx, id)
	log := logging.With(ctx, g.log)

	callCtx := ctx
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := g.gen.Generate(callCtx, adapter.GenerateRequest{
		Model:       g.opts.Model,
		System:      SystemInstruction,
		Prompt:      prompt,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	latency := time.Since(start)

	provider := res.Provider
	if provider == "" {
		provider = g.gen.Name()
	}

	var patch model.SitePatch
	if err == nil {
		code := StripCodeFences(res.Text)
		if strings.TrimSpace(code) == "" {
			err = domain.ErrEmptyCompletion
		} else {
			patch = model.Completed(code)
		}
	}
	if err != nil {
		patch = model.Failed()
		log.Error().Err(err).Str("provider", provider).Dur("latency", latency).Msg("site generation failed")
	}
	metrics.ObserveGeneration(provider, res.Model, res.Usage.PromptTokens, res.Usage.CompletionTokens, latency, err == nil)

	// The terminal write must survive a cancelled or timed-out call context.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	site, uerr := g.sites.Update(writeCtx, id, patch)
	switch {
	case errors.Is(uerr, domain.ErrAlreadyFinalized):
		log.Warn().Msg("site already finalized; dropping duplicate result")
		return nil
	case uerr != nil:
		log.Error().Err(uerr).Msg("could not persist site result")
		return uerr
	}

	metrics.IncSiteJob(string(site.Status))
	log.Info().
		Str("status", string(site.Status)).
		Str("provider", provider).
		Int("tokens", res.Usage.TotalTokens).
		Dur("latency", latency).
		Msg("site generation finished")
	return nil
}

// StripCodeFences removes every "```html" and "```" marker. Nothing else is trimmed.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```html", "")
	return strings.ReplaceAll(s, "```", "")
}
