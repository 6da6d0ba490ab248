package cmd

import (
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/config"
	errwrap "github.com/brandguard/domainrisk/internal/errors"
	"github.com/brandguard/domainrisk/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Domain name trademark risk checker",
	Long: `domainrisk looks up a domain's registration record and searches USPTO
trademark publications for its leading label, then labels the domain's trademark risk.

Run "domainrisk serve" for the HTTP API or "domainrisk check <domain>" for a one-off check.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so CLI runs never emit metrics to stdout.
	// Server mode initializes the Prometheus-backed system later.
	disabledConfig := &telemetry.Config{Enabled: false}
	if sys, err := telemetry.NewSystem(disabledConfig); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/domainrisk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig prepares the CLI logger; configuration itself is loaded per command.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)
}

// loadConfig loads layered configuration, applying overrides from command flags.
func loadConfig(cmd *cobra.Command, overrides map[string]any) (*config.Config, error) {
	if verbose {
		if overrides == nil {
			overrides = map[string]any{}
		}
		overrides["logging"] = map[string]any{"level": "debug"}
	}

	cfg, err := config.Load(cmd.Context(), cfgFile, overrides)
	if err != nil {
		return nil, errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration load failed")
	}

	if observability.CLILogger != nil {
		observability.CLILogger.Debug("Configuration loaded",
			zap.String("whois_source", cfg.Whois.Source),
			zap.String("trademark_base_url", cfg.Trademark.BaseURL),
			zap.Bool("flag_lookup_failure", cfg.Risk.FlagLookupFailure))
	}
	return cfg, nil
}
