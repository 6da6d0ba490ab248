package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/brandguard/domainrisk/internal/errors"
	"github.com/brandguard/domainrisk/internal/httpclient"
	"github.com/brandguard/domainrisk/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the configuration loads and the lookups can be built.

With --url, also check a running server's /health endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		if observability.CLILogger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewConfigInvalidError("Logger not initialized"))
			return
		}
		logger := observability.CLILogger
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Debug("Version check passed", zap.String("version", versionInfo.Version))

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		logger.Info("✅ Configuration loaded", zap.String("whois_source", cfg.Whois.Source))

		checker := newDomainChecker(cfg)
		if checker.Whois == nil || checker.Trademarks == nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Lookups not configured", errwrap.NewConfigInvalidError("Lookups not configured"))
			return
		}
		logger.Info("✅ Lookups configured")

		url, _ := cmd.Flags().GetString("url")
		if strings.TrimSpace(url) != "" {
			if err := checkServerHealth(cmd.Context(), httpclient.NewRestyClient(5*time.Second), url); err != nil {
				ExitWithCode(logger, ExitCodeFor(err), "Server health check failed", err)
				return
			}
			logger.Info("✅ Server healthy", zap.String("url", url))
		}

		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().String("url", "", "base URL of a running server to check, e.g. http://localhost:4000")
}

// checkServerHealth expects 200 from GET <baseURL>/health.
func checkServerHealth(ctx context.Context, client httpclient.Client, baseURL string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target := strings.TrimRight(baseURL, "/") + "/health"

	resp, err := client.Get(ctx, target, nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		return errwrap.WrapExternalService(ctx, err, "health endpoint unreachable")
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
