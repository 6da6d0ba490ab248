package cmd

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/config"
	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/core/engine"
	errwrap "github.com/brandguard/domainrisk/internal/errors"
	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
	"github.com/brandguard/domainrisk/internal/server"
	"github.com/brandguard/domainrisk/internal/server/handlers"
)

// reloadableChecker lets SIGHUP swap lookup settings without restarting the listener.
type reloadableChecker struct {
	current atomic.Pointer[engine.Checker]
}

func newReloadableChecker(c *engine.Checker) *reloadableChecker {
	r := &reloadableChecker{}
	r.current.Store(c)
	return r
}

func (r *reloadableChecker) Check(ctx context.Context, domain string) (*core.DomainCheckResponse, error) {
	return r.current.Load().Check(ctx, domain)
}

func (r *reloadableChecker) Swap(c *engine.Checker) {
	r.current.Store(c)
}

// CheckHealth reports unhealthy when either lookup is missing.
func (r *reloadableChecker) CheckHealth(ctx context.Context) error {
	c := r.current.Load()
	if c == nil || c.Whois == nil || c.Trademarks == nil {
		return errwrap.NewInternalError("domain checker not configured")
	}
	return nil
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct {
	enabled bool
}

func (t telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if !t.enabled {
		return nil
	}
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing POST /check-domain, with graceful shutdown support.

The port comes from --port, DOMAINRISK_PORT, PORT, or the config file (default 4000).

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload configuration and rebuild the lookups`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "server host (default 0.0.0.0)")
	serveCmd.Flags().IntP("port", "p", 0, "server port (default $PORT or 4000)")
}

// serveOverrides maps explicitly set serve flags onto config keys.
func serveOverrides(cmd *cobra.Command) map[string]any {
	serverOverrides := map[string]any{}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		serverOverrides["host"] = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		serverOverrides["port"] = port
	}
	if len(serverOverrides) == 0 {
		return nil
	}
	return map[string]any{"server": serverOverrides}
}

func runServe(cmd *cobra.Command, args []string) error {
	overrides := serveOverrides(cmd)
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load server configuration", err)
		return err
	}

	observability.InitServerLogger(config.AppName, cfg.Logging.Level, "")
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
	}

	logger.Info("Initializing server",
		zap.String("service", config.AppName),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()),
		zap.String("whois_source", cfg.Whois.Source),
		zap.String("trademark_base_url", cfg.Trademark.BaseURL),
		zap.Bool("flag_lookup_failure", cfg.Risk.FlagLookupFailure))

	checker := newReloadableChecker(newDomainChecker(cfg))

	handlers.SetAppName(config.AppName)
	handlers.SetWhoisSource(cfg.Whois.Source)
	handlers.InitHealthManager(versionInfo.Version)
	hm := handlers.GetHealthManager()
	hm.RegisterChecker("domain_checker", checker)
	hm.RegisterChecker("telemetry", telemetryHealthChecker{enabled: cfg.Metrics.Enabled})

	srv := server.New(*cfg, checker)
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Shutdown handlers run LIFO: the HTTP server stops first, then logs flush.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := observability.StopMetrics(); err != nil {
			logger.Warn("Failed to stop metrics exporter", zap.Error(err))
		}
		observability.Sync()
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: reloading configuration")

		reloaded, err := config.Load(ctx, cfgFile, overrides)
		if err != nil {
			logger.Error("Config reload failed; keeping current settings", zap.Error(err))
			return errwrap.WrapInternal(ctx, err, "config reload failed")
		}

		checker.Swap(newDomainChecker(reloaded))
		handlers.SetWhoisSource(reloaded.Whois.Source)

		if reloaded.Server.Port != cfg.Server.Port || reloaded.Server.Host != cfg.Server.Host {
			logger.Warn("Listen address changes require a restart",
				zap.String("current", srv.Addr()))
		}

		logger.Info("Configuration reloaded",
			zap.String("whois_source", reloaded.Whois.Source),
			zap.String("trademark_base_url", reloaded.Trademark.BaseURL),
			zap.Bool("flag_lookup_failure", reloaded.Risk.FlagLookupFailure))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "server error")
	}

	return nil
}
