package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/config"
	"ai-storefront-builder/internal/infra/metrics"
	"ai-storefront-builder/internal/usecase"
)

type Server struct {
	sites   usecase.SiteUseCase
	stt     usecase.TranscriptionUseCase
	limiter Limiter
	cfg     config.HTTPConfig
	limits  config.RateLimitConfig
	static  http.Handler
	log     *zerolog.Logger
}

// NewServer builds the HTTP surface. limiter and static may be nil.
func NewServer(
	sites usecase.SiteUseCase,
	stt usecase.TranscriptionUseCase,
	limiter Limiter,
	cfg config.HTTPConfig,
	limits config.RateLimitConfig,
	static http.Handler,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		sites:   sites,
		stt:     stt,
		limiter: limiter,
		cfg:     cfg,
		limits:  limits,
		static:  static,
		log:     logger,
	}
}

// Router wires routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		}).Handler)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.cfg.RequestTimeout))
			r.With(RateLimit(s.limiter, s.limits.Submissions, s.limits.Window, s.log)).
				Post("/sites", s.handleCreateSite)
			r.Get("/sites/{id}", s.handleGetSite)
		})
		r.With(Timeout(s.cfg.TranscribeTimeout)).Post("/transcribe", s.handleTranscribe)
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, messageBody{Message: "Not found"})
		})
	})

	r.Get("/sites/{id}/preview", s.handlePreview)

	if s.static != nil {
		r.NotFound(s.static.ServeHTTP)
	}
	return r
}
