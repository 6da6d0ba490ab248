package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandguard/domainrisk/internal/httpclient"
	"github.com/brandguard/domainrisk/internal/observability"
)

type cannedResponse struct {
	status int
	body   string
	header http.Header
}

func (c cannedResponse) Body() []byte        { return []byte(c.body) }
func (c cannedResponse) StatusCode() int     { return c.status }
func (c cannedResponse) Header() http.Header { return c.header }

type fakeMetricsClient struct {
	resp    httpclient.Response
	err     error
	url     string
	headers map[string]string
}

func (f *fakeMetricsClient) Get(ctx context.Context, url string, query map[string]string, headers map[string]string) (httpclient.Response, error) {
	f.url = url
	f.headers = headers
	return f.resp, f.err
}

func useMetricsClient(t *testing.T, client httpclient.Client) {
	t.Helper()
	original := metricsProxyClient
	metricsProxyClient = client
	t.Cleanup(func() { metricsProxyClient = original })

	observability.PrometheusExporter = exporters.NewPrometheusExporter("test", ":9090")
	t.Cleanup(func() { observability.PrometheusExporter = nil })
}

func TestMetricsHandlerProxiesPrometheusOutput(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; version=0.0.4")
	header.Set("Connection", "keep-alive")
	client := &fakeMetricsClient{resp: cannedResponse{
		status: http.StatusOK,
		body:   "# HELP lookup_total Upstream lookups\nlookup_total{source=\"whois\",outcome=\"success\"} 1\n",
		header: header,
	}}
	useMetricsClient(t, client)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()

	MetricsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Empty(t, rec.Header().Get("Connection"))
	assert.Contains(t, rec.Body.String(), "lookup_total")
	assert.Contains(t, client.url, "/metrics")
	assert.Equal(t, "text/plain", client.headers["Accept"])
}

func TestMetricsHandlerDefaultsContentType(t *testing.T) {
	useMetricsClient(t, &fakeMetricsClient{resp: cannedResponse{status: http.StatusOK, body: "x 1\n", header: http.Header{}}})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, "text/plain; version=0.0.4", rec.Header().Get("Content-Type"))
}

func TestMetricsHandlerExporterUnavailable(t *testing.T) {
	useMetricsClient(t, &fakeMetricsClient{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetricsHandlerReturnsServiceUnavailableWithoutExporter(t *testing.T) {
	observability.PrometheusExporter = nil

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	MetricsHandler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}
