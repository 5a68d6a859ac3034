package main

import (
	"github.com/turtacn/Prologos-Jurimetrics/internal/bootstrap"
	httpserver "github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/middleware"
)

// healthCheckers probes every adapter the platform actually opened.
func healthCheckers(p *bootstrap.Platform) []handlers.HealthChecker {
	checkers := []handlers.HealthChecker{
		handlers.NewChecker("database", p.Conn.HealthCheck),
	}
	if p.Redis != nil {
		checkers = append(checkers, handlers.NewChecker("redis", p.Redis.Ping))
	}
	if p.MinIO != nil {
		checkers = append(checkers, handlers.NewChecker("object_storage", p.MinIO.Ping))
	}
	return checkers
}

func routerConfig(p *bootstrap.Platform, version string) httpserver.RouterConfig {
	cfg := httpserver.RouterConfig{
		HarvestHandler:     handlers.NewHarvestHandler(p.Harvests, p.Classification, p.Logger),
		JudiciaryHandler:   handlers.NewJudiciaryHandler(p.Queries, p.Logger),
		MaintenanceHandler: handlers.NewMaintenanceHandler(p.Maintenance, p.Classification, p.Logger),
		HealthHandler:      handlers.NewHealthHandler(version, p.Metrics, healthCheckers(p)...),
		Logging:            middleware.DefaultLoggingConfig(),
		Logger:             p.Logger,
		Metrics:            p.Metrics,
		MetricsCollector:   p.Collector,
	}

	// Advisory routes need the embedder; the advisor itself is optional.
	if p.Adherence != nil {
		var advisor handlers.AdvisoryService
		if p.Advisory != nil {
			advisor = p.Advisory
		}
		cfg.AdvisoryHandler = handlers.NewAdvisoryHandler(p.Adherence, advisor, p.Config.Server.MaxBodySize, p.Logger)
	}

	if origins := p.Config.Server.AllowedOrigins; len(origins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = origins
		cfg.CORS = &cors
	}
	cfg.LLMRouteTimeout = p.Config.LLM.RouteTimeout
	if p.Config.Server.UpstreamRate > 0 {
		cfg.UpstreamLimiter = middleware.NewTokenBucketLimiter(p.Config.Server.UpstreamRate, p.Config.Server.UpstreamBurst)
	}
	return cfg
}

//Personal.AI order the ending
