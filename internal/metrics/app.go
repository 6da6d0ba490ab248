package metrics

import (
	"time"

	"github.com/brandguard/domainrisk/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Upstream lookup metrics
	LookupsTotal   = "lookup_total"
	LookupDuration = "lookup_duration_ms"

	// Domain check metrics
	ChecksTotal = "domain_checks_total"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// Lookup outcomes. A lookup abandoned because the caller went away is
// LookupCancelled, never LookupFailure.
const (
	LookupSuccess   = "success"
	LookupFailure   = "failure"
	LookupCancelled = "cancelled"
)

// RecordLookup records one upstream lookup (whois, rdap, uspto) and its latency
func RecordLookup(source, outcome string, duration time.Duration) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}
	_ = sys.Counter(LookupsTotal, 1, map[string]string{
		"source":  source,
		"outcome": outcome,
	})
	_ = sys.Histogram(LookupDuration, duration, map[string]string{
		"source": source,
	})
}

// RecordCheck records a completed domain check by its risk classification
func RecordCheck(risk string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ChecksTotal,
			1,
			map[string]string{
				"risk": risk,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
