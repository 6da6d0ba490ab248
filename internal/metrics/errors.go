package metrics

import (
	"strconv"

	"github.com/brandguard/domainrisk/internal/observability"
)

const (
	ErrorsTotalName      = "errors_total"
	ErrorsByEndpointName = "errors_by_endpoint"
	PanicsTotalName      = "panics_total"
	CheckRejectedName    = "check_rejections_total"
)

// Reasons a /check-domain request is turned away before any lookup runs.
const (
	RejectDomainRequired = "domain_required"
	RejectInvalidBody    = "invalid_body"
)

// RecordHTTPError counts an error response by code and status, and by the
// endpoint label that produced it.
func RecordHTTPError(endpoint, errorCode string, status int) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}
	_ = sys.Counter(ErrorsTotalName, 1, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(status),
	})
	_ = sys.Counter(ErrorsByEndpointName, 1, map[string]string{
		"endpoint":   endpoint,
		"error_code": errorCode,
	})
}

// RecordPanic counts a recovered handler panic.
func RecordPanic(endpoint string) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(PanicsTotalName, 1, map[string]string{"endpoint": endpoint})
	}
}

// RecordCheckRejected counts a check request refused for reason.
func RecordCheckRejected(reason string) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(CheckRejectedName, 1, map[string]string{"reason": reason})
	}
}
