package lookup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/require"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
)

const exampleWhois = `   Domain Name: EXAMPLE.COM
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.example-registrar.com
   Registrar URL: http://www.example-registrar.com
   Updated Date: 2024-08-14T07:01:34Z
   Creation Date: 1995-08-14T04:00:00Z
   Registry Expiry Date: 2025-08-13T04:00:00Z
   Registrar: Example Registrar, Inc.
   Registrar IANA ID: 376
   Registrar Abuse Contact Email: abuse@example-registrar.com
   Registrar Abuse Contact Phone: +1.5555555555
   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
   Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
   Name Server: A.IANA-SERVERS.NET
   Name Server: B.IANA-SERVERS.NET
   DNSSEC: signedDelegation
>>> Last update of whois database: 2024-09-01T00:00:00Z <<<
`

type stubWhoisQuerier struct {
	raw   string
	err   error
	calls int
}

func (s *stubWhoisQuerier) Query(ctx context.Context, domain string) (string, error) {
	s.calls++
	return s.raw, s.err
}

func TestWhoisAdapterParsesRegistration(t *testing.T) {
	querier := &stubWhoisQuerier{raw: exampleWhois}
	adapter := &WhoisAdapter{Querier: querier}

	result := adapter.Lookup(context.Background(), "example.com")
	data, ok := result.Data()
	require.True(t, ok)
	require.Equal(t, 1, querier.calls)
	require.Equal(t, "Example Registrar, Inc.", data.Registrar)
	require.Contains(t, data.CreationDate, "1995-08-14")
	require.NotEqual(t, core.UnknownValue, data.Status)
	normalized := strings.ReplaceAll(strings.ToLower(data.Status), "_", "")
	require.Contains(t, normalized, "deleteprohibited")
}

func TestWhoisAdapterFillsMissingFieldsWithUnknown(t *testing.T) {
	raw := "   Domain Name: BARE-EXAMPLE.COM\n   Name Server: NS1.BARE-EXAMPLE.COM\n   Name Server: NS2.BARE-EXAMPLE.COM\n"
	adapter := &WhoisAdapter{Querier: &stubWhoisQuerier{raw: raw}}

	result := adapter.Lookup(context.Background(), "bare-example.com")
	data, ok := result.Data()
	require.True(t, ok)
	require.Equal(t, core.UnknownValue, data.Registrar)
	require.Equal(t, core.UnknownValue, data.CreationDate)
	require.Equal(t, core.UnknownValue, data.Status)
}

func TestWhoisAdapterQueryFailure(t *testing.T) {
	adapter := &WhoisAdapter{Querier: &stubWhoisQuerier{err: errors.New("i/o timeout")}}

	result := adapter.Lookup(context.Background(), "example.com")
	require.False(t, result.OK())
	require.Equal(t, core.WhoisFailedMessage, result.Err())
}

func TestWhoisAdapterParseFailure(t *testing.T) {
	adapter := &WhoisAdapter{Querier: &stubWhoisQuerier{raw: "No match for \"NOPE-EXAMPLE.COM\".\n"}}

	result := adapter.Lookup(context.Background(), "nope-example.com")
	require.False(t, result.OK())
	require.Equal(t, core.WhoisFailedMessage, result.Err())
}

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: collector,
	})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})

	return collector
}

func TestWhoisAdapterOutcomeTags(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		querier *stubWhoisQuerier
		outcome string
	}{
		{"success", context.Background(), &stubWhoisQuerier{raw: exampleWhois}, metrics.LookupSuccess},
		{"failure", context.Background(), &stubWhoisQuerier{err: errors.New("connection refused")}, metrics.LookupFailure},
		{"caller gone", cancelled, &stubWhoisQuerier{err: context.Canceled}, metrics.LookupCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := setupTelemetry(t)

			(&WhoisAdapter{Querier: tt.querier}).Lookup(tt.ctx, "example.com")

			lookups := collector.GetMetricsByName(metrics.LookupsTotal)
			require.Len(t, lookups, 1)
			require.Equal(t, tt.outcome, lookups[0].Tags["outcome"])
		})
	}
}

func TestDefaultWhoisQuerierHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	querier := &DefaultWhoisQuerier{Server: "192.0.2.1", Timeout: 50 * time.Millisecond}
	_, err := querier.Query(ctx, "example.com")
	require.Error(t, err)
}

func TestDefaultWhoisQuerierRequiresDomain(t *testing.T) {
	_, err := (&DefaultWhoisQuerier{}).Query(context.Background(), " ")
	require.Error(t, err)
}

func TestJoinStatus(t *testing.T) {
	require.Equal(t, "ok, active", joinStatus([]string{" ok ", "", "active"}))
	require.Equal(t, "", joinStatus(nil))
}
