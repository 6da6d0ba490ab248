// Package config provides centralized configuration management for domainrisk.
// It layers configuration in this order (later wins):
// Layer 1: built-in defaults
// Layer 2: YAML config file (--config, ./config/config.yaml, $XDG_CONFIG_HOME/domainrisk/config.yaml)
// Layer 3: .env file and environment variables (DOMAINRISK_* plus bare PORT)
// Layer 4: runtime overrides (CLI flags)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is used for config directories and the env prefix.
	AppName = "domainrisk"

	// EnvPrefix prefixes every environment variable the loader reads.
	EnvPrefix = "DOMAINRISK_"

	// DefaultPort is used when no port is configured anywhere.
	DefaultPort = 4000
)

// Supported registration data sources.
const (
	WhoisSourceWhois = "whois"
	WhoisSourceRDAP  = "rdap"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// EnvVarSpec maps one config path to the environment variables that can set it.
// When several names are set, the first in the list wins.
type EnvVarSpec struct {
	Path  string
	Names []string
}

// Load reads configuration from all layers and stores it for GetConfig.
// configFile may be empty, in which case the standard locations are searched
// and a missing file is not an error.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(ctx context.Context, configFile string, runtimeOverrides ...map[string]any) (*Config, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	for _, spec := range getEnvSpecs() {
		args := append([]string{spec.Path}, spec.Names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", spec.Path, err)
		}
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	for _, overrides := range runtimeOverrides {
		for key, value := range flatten("", overrides) {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)

	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// Validate rejects configurations the server cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	switch cfg.Whois.Source {
	case WhoisSourceWhois, WhoisSourceRDAP:
	default:
		return fmt.Errorf("unsupported whois source %q (expected %s or %s)", cfg.Whois.Source, WhoisSourceWhois, WhoisSourceRDAP)
	}
	if cfg.Whois.Timeout < 0 || cfg.Trademark.Timeout < 0 {
		return errors.New("lookup timeouts must not be negative")
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.Whois.Source = strings.ToLower(strings.TrimSpace(cfg.Whois.Source))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Trademark.BaseURL = strings.TrimSpace(cfg.Trademark.BaseURL)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Lookup defaults
	v.SetDefault("whois.source", WhoisSourceWhois)
	v.SetDefault("whois.server", "")
	v.SetDefault("whois.rdap_server", "")
	v.SetDefault("whois.timeout", "10s")
	v.SetDefault("trademark.base_url", "https://developer.uspto.gov")
	v.SetDefault("trademark.timeout", "10s")

	// Risk defaults
	v.SetDefault("risk.flag_lookup_failure", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)
}

// getEnvSpecs returns environment variable specifications for config mapping
func getEnvSpecs() []EnvVarSpec {
	prefix := EnvPrefix
	return []EnvVarSpec{
		// Server
		{Path: "server.host", Names: []string{prefix + "HOST"}},
		{Path: "server.port", Names: []string{prefix + "PORT", "PORT"}},
		{Path: "server.read_timeout", Names: []string{prefix + "READ_TIMEOUT"}},
		{Path: "server.write_timeout", Names: []string{prefix + "WRITE_TIMEOUT"}},
		{Path: "server.idle_timeout", Names: []string{prefix + "IDLE_TIMEOUT"}},
		{Path: "server.shutdown_timeout", Names: []string{prefix + "SHUTDOWN_TIMEOUT"}},

		// Lookups
		{Path: "whois.source", Names: []string{prefix + "WHOIS_SOURCE"}},
		{Path: "whois.server", Names: []string{prefix + "WHOIS_SERVER"}},
		{Path: "whois.rdap_server", Names: []string{prefix + "WHOIS_RDAP_SERVER"}},
		{Path: "whois.timeout", Names: []string{prefix + "WHOIS_TIMEOUT"}},
		{Path: "trademark.base_url", Names: []string{prefix + "TRADEMARK_BASE_URL"}},
		{Path: "trademark.timeout", Names: []string{prefix + "TRADEMARK_TIMEOUT"}},

		// Risk
		{Path: "risk.flag_lookup_failure", Names: []string{prefix + "RISK_FLAG_LOOKUP_FAILURE"}},

		// Logging
		{Path: "logging.level", Names: []string{prefix + "LOG_LEVEL"}},

		// Metrics
		{Path: "metrics.enabled", Names: []string{prefix + "METRICS_ENABLED"}},
		{Path: "metrics.port", Names: []string{prefix + "METRICS_PORT"}},

		// Health
		{Path: "health.enabled", Names: []string{prefix + "HEALTH_ENABLED"}},
	}
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := DefaultConfigDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// DefaultConfigDir returns the per-user config directory, or "" when it cannot be resolved.
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, AppName)
}

// flatten turns nested override maps into dotted viper keys.
func flatten(prefix string, values map[string]any) map[string]any {
	out := make(map[string]any)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := values[key].(map[string]any); ok {
			for k, v := range flatten(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = values[key]
	}
	return out
}
