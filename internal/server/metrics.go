package server

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/brandguard/domainrisk/internal/errors"
	"github.com/brandguard/domainrisk/internal/httpclient"
	"github.com/brandguard/domainrisk/internal/observability"
)

var metricsProxyClient httpclient.Client = httpclient.NewRestyClient(5 * time.Second)

// hop-by-hop headers are not forwarded from the exporter.
var hopHeaders = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"upgrade":             {},
	"content-length":      {},
}

// MetricsHandler proxies Prometheus metrics from the internal exporter so callers
// can scrape /metrics on the main HTTP server.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	if observability.PrometheusExporter == nil {
		apperrors.RespondWithEnvelope(w, r, apperrors.NewServiceUnavailableError("Metrics exporter not initialized"))
		return
	}

	metricsURL := observability.MetricsURL()

	// Preserve caller hint for content negotiation
	headers := map[string]string{}
	if accept := r.Header.Get("Accept"); accept != "" {
		headers["Accept"] = accept
	}

	resp, err := metricsProxyClient.Get(r.Context(), metricsURL, nil, headers)
	if err != nil {
		wrappedErr := apperrors.WrapExternalService(r.Context(), err, "Prometheus exporter unavailable")
		wrappedErr, _ = wrappedErr.WithContext(map[string]interface{}{
			"metrics_url":    metricsURL,
			"original_error": err.Error(),
		})
		apperrors.RespondWithEnvelope(w, r, wrappedErr)
		return
	}

	for key, values := range resp.Header() {
		if _, hop := hopHeaders[strings.ToLower(key)]; hop {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	// Ensure we always advertise Prometheus content type
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	}

	w.WriteHeader(resp.StatusCode())
	if _, err := w.Write(resp.Body()); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to write metrics response",
			zap.Error(err))
	}
}
