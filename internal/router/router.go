package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/kamaldev10/judi-guard-app/internal/handler"
	"github.com/kamaldev10/judi-guard-app/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Analysis    *handler.AnalysisHandler
	Remediation *handler.RemediationHandler
	Stats       *handler.StatsHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (before API group, no rate limiting)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	analysisLimit := middleware.NewAnalysisRateLimiter()
	remediationLimit := middleware.NewRemediationRateLimiter()
	readLimit := middleware.NewReadRateLimiter()
	statsLimit := middleware.NewStatsRateLimiter()

	// API routes
	api := app.Group("/api")

	// Analysis routes
	api.Post("/analyses", h.Analysis.Start, analysisLimit.Handler())
	api.Get("/analyses/:jobId", h.Analysis.GetJob, readLimit.Handler())
	api.Get("/analyses/:jobId/comments", h.Analysis.ListComments, readLimit.Handler())

	// Remediation routes
	api.Post("/analyses/:jobId/remediate", h.Remediation.RemediateBatch, remediationLimit.Handler())
	api.Post("/comments/:commentId/remediate", h.Remediation.RemediateOne, remediationLimit.Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, statsLimit.Handler())
}
