package config

import "time"

// Config represents the complete application configuration.
// Values are layered: built-in defaults, then an optional YAML config file,
// then .env and environment variables, then runtime overrides (CLI flags).
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Whois     WhoisConfig     `mapstructure:"whois"`
	Trademark TrademarkConfig `mapstructure:"trademark"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// WhoisConfig selects and tunes the registration data source.
type WhoisConfig struct {
	// Source is "whois" (port 43) or "rdap".
	Source     string        `mapstructure:"source"`
	Server     string        `mapstructure:"server"`
	RDAPServer string        `mapstructure:"rdap_server"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TrademarkConfig configures the trademark publication search.
type TrademarkConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RiskConfig tunes risk classification.
type RiskConfig struct {
	// FlagLookupFailure reports an unknown risk when the trademark search fails
	// instead of treating the failure as no conflict.
	FlagLookupFailure bool `mapstructure:"flag_lookup_failure"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}
