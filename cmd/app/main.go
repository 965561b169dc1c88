// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ai-storefront-builder/internal/config"
	"ai-storefront-builder/internal/domain/ports/repository"
	aiAdapters "ai-storefront-builder/internal/infra/adapters/ai"
	"ai-storefront-builder/internal/infra/db/memory"
	pg "ai-storefront-builder/internal/infra/db/postgres"
	"ai-storefront-builder/internal/infra/db/sqlite"
	httpserver "ai-storefront-builder/internal/infra/http"
	"ai-storefront-builder/internal/infra/logging"
	"ai-storefront-builder/internal/infra/metrics"
	red "ai-storefront-builder/internal/infra/redis"
	"ai-storefront-builder/internal/infra/sched"
	"ai-storefront-builder/internal/infra/tokens"
	"ai-storefront-builder/internal/infra/web"
	"ai-storefront-builder/internal/infra/worker"
	"ai-storefront-builder/internal/usecase"
)

// set via -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, debug level)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	sites, poolStats, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage")
	}
	defer func() {
		if err := sites.Close(); err != nil {
			logger.Error().Err(err).Msg("close storage")
		}
	}()

	// ---- Redis (optional) ----
	var limiter web.Limiter
	if cfg.Redis.URL != "" && cfg.RateLimit.Submissions > 0 {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Error().Err(err).Msg("redis unavailable; submission rate limiting disabled")
		} else {
			defer redisClient.Close()
			limiter = red.NewRateLimiter(redisClient)
			logger.Info().Int("limit", cfg.RateLimit.Submissions).Dur("window", cfg.RateLimit.Window).Msg("submission rate limiting enabled")
		}
	}

	// ---- AI adapters ----
	providers, err := aiAdapters.Build(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapters")
	}

	// ---- Generation pipeline ----
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	pool := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueSize, logger)
	pool.Start(workCtx)
	generator := worker.NewSiteGenerator(sites, providers.Generator, pool, worker.GeneratorOptions{
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.GenerationTimeout,
	}, logger)

	// ---- Use cases ----
	counter := tokens.NewCounter("", logger)
	counter.Load()
	siteUC := usecase.NewSiteUseCase(sites, generator, counter, cfg.AI.MaxPromptTokens, logger)
	siteUC.SetDevMode(cfg.Runtime.Dev)
	transcriptionUC := usecase.NewTranscriptionUseCase(providers.Transcriber, logger)

	// ---- HTTP ----
	static := web.NewSPAHandler(cfg.Static.Dir)
	if static == nil {
		logger.Info().Str("dir", cfg.Static.Dir).Msg("no client bundle found; static serving disabled")
	}
	api := web.NewServer(siteUC, transcriptionUC, limiter, cfg.HTTP, cfg.RateLimit, static, logger)
	server := httpserver.NewServer(cfg.HTTP, api.Router(), logger)

	reporter := sched.NewStatsReporter(15*time.Second, poolStats, pool.Len, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		if err := reporter.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		// queued generations finish so no site is left pending
		if err := pool.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := generator.Wait(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		cancelWork()
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("bye")
}

// openStore picks the backend from the DATABASE_URL scheme. The stats source is nil
// for backends without a connection pool.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.SiteRepository, func() metrics.PoolStats, error) {
	driver, err := cfg.Database.Driver()
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.ApplyMigrations(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Msg("storage: postgres")
		return pg.NewSiteRepo(pool), func() metrics.PoolStats { return pg.PoolStats(pool) }, nil
	case "sqlite":
		repo, err := sqlite.Open(cfg.Database.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.Database.SQLitePath()).Msg("storage: sqlite")
		return repo, nil, nil
	default:
		logger.Warn().Msg("storage: in-memory; sites are lost on restart")
		return memory.NewSiteRepo(), nil, nil
	}
}
