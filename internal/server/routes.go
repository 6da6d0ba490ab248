package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/config"
	"github.com/brandguard/domainrisk/internal/observability"
	"github.com/brandguard/domainrisk/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Post("/check-domain", handlers.NewCheckDomainHandler(s.checker).ServeHTTP)

	if s.cfg.Health.Enabled {
		s.router.Get("/health", handlers.HealthHandler)
		s.router.Get("/health/live", handlers.LivenessHandler)
		s.router.Get("/health/ready", handlers.ReadinessHandler)
		s.router.Get("/health/startup", handlers.StartupHandler)
	}

	s.router.Get("/version", handlers.VersionHandler)

	if s.cfg.Metrics.Enabled {
		s.router.Get("/metrics", MetricsHandler)
	}

	// Admin signal endpoint (optional, requires DOMAINRISK_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts POST /admin/signal when an admin token is configured.
func (s *Server) registerAdminEndpoint() {
	tokenVar := config.EnvPrefix + "ADMIN_TOKEN"
	adminToken := os.Getenv(tokenVar)
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + tokenVar + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
