package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	HarvestHandler     *handlers.HarvestHandler
	JudiciaryHandler   *handlers.JudiciaryHandler
	AdvisoryHandler    *handlers.AdvisoryHandler
	MaintenanceHandler *handlers.MaintenanceHandler
	HealthHandler      *handlers.HealthHandler

	// Middleware
	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	// UpstreamLimiter throttles the routes that reach DataJud or the
	// text-generation provider. Nil disables it.
	UpstreamLimiter middleware.RateLimiter

	// LLMRouteTimeout is the deadline of the dossier and opinion routes,
	// which may outlast the server's WriteTimeout. Zero keeps the default.
	LLMRouteTimeout time.Duration

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
// Probes and the Prometheus scrape endpoint live at the root; the product API
// lives under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.NewNopMetrics()
	}

	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(cfg.Logger))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, cfg.Logging))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	upstream := func(next http.Handler) http.Handler { return next }
	if cfg.UpstreamLimiter != nil {
		upstream = middleware.RateLimit(cfg.UpstreamLimiter)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerHarvestRoutes(api, cfg.HarvestHandler, upstream)
		registerJudiciaryRoutes(api, cfg.JudiciaryHandler)
		registerAdvisoryRoutes(api, cfg.AdvisoryHandler, upstream, middleware.Deadline(cfg.LLMRouteTimeout))
		registerMaintenanceRoutes(api, cfg.MaintenanceHandler)
	})

	return r
}

// registerHarvestRoutes mounts the harvest trigger and the court router.
func registerHarvestRoutes(r chi.Router, h *handlers.HarvestHandler, upstream func(http.Handler) http.Handler) {
	if h == nil {
		return
	}
	r.With(upstream).Post("/harvests", h.Create)
	r.Get("/route", h.Route)
}

// registerJudiciaryRoutes mounts the read side.
func registerJudiciaryRoutes(r chi.Router, h *handlers.JudiciaryHandler) {
	if h == nil {
		return
	}
	r.Get("/adjudicators", h.ListAdjudicators)
	r.Get("/adjudicators/{adjudicatorID}/dashboard", h.Dashboard)
	r.Get("/cases", h.SearchCases)
	r.Get("/metrics", h.Overview)
}

// registerAdvisoryRoutes mounts scoring and, when a provider is configured,
// the dossier and opinion endpoints.
func registerAdvisoryRoutes(r chi.Router, h *handlers.AdvisoryHandler, upstream, deadline func(http.Handler) http.Handler) {
	if h == nil {
		return
	}
	r.Post("/adjudicators/{adjudicatorID}/score", h.Score)
	if !h.HasAdvisor() {
		return
	}
	r.With(deadline, upstream).Post("/adjudicators/{adjudicatorID}/dossier", h.Dossier)
	r.With(deadline, upstream).Post("/adjudicators/{adjudicatorID}/opinion", h.Opinion)
	r.Get("/llm/models", h.Models)
}

// registerMaintenanceRoutes mounts operator endpoints under /maintenance.
func registerMaintenanceRoutes(r chi.Router, h *handlers.MaintenanceHandler) {
	if h == nil {
		return
	}
	r.Route("/maintenance", func(mr chi.Router) {
		mr.Post("/purge-duplicates", h.PurgeDuplicates)
		mr.Post("/classify", h.Classify)
	})
}

//Personal.AI order the ending
