package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandguard/domainrisk/internal/core"
)

type stubWhois struct {
	result core.WhoisResult
	seen   []string
	calls  atomic.Int32
}

func (s *stubWhois) Lookup(ctx context.Context, domain string) core.WhoisResult {
	s.calls.Add(1)
	s.seen = append(s.seen, domain)
	return s.result
}

type stubTrademarks struct {
	result core.TrademarkResult
	seen   []string
	calls  atomic.Int32
}

func (s *stubTrademarks) Search(ctx context.Context, keyword string) core.TrademarkResult {
	s.calls.Add(1)
	s.seen = append(s.seen, keyword)
	return s.result
}

func TestCheckerCombinesResults(t *testing.T) {
	whois := &stubWhois{result: core.WhoisOK(core.NewWhoisData("Example Registrar", "1995-08-14", "active"))}
	trademarks := &stubTrademarks{result: core.TrademarksOK([]core.TrademarkEntry{
		{SerialNumber: "123", Mark: "EXAMPLE", Status: "Live"},
	})}
	checker := &Checker{Whois: whois, Trademarks: trademarks}

	resp, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", resp.Domain)
	require.Equal(t, "example", resp.Keyword)
	require.Equal(t, core.RiskHigh, resp.Risk)
	require.Equal(t, []string{"example.com"}, whois.seen)
	require.Equal(t, []string{"example"}, trademarks.seen)
}

func TestCheckerTrademarkFailureDefaultsLowRisk(t *testing.T) {
	checker := &Checker{
		Whois:      &stubWhois{result: core.WhoisErr(core.WhoisFailedMessage)},
		Trademarks: &stubTrademarks{result: core.TrademarksErr(core.TrademarkFailedMessage)},
	}

	resp, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.RiskLow, resp.Risk)
	require.False(t, resp.Whois.OK())
	require.False(t, resp.Trademarks.OK())
}

func TestCheckerFlagLookupFailure(t *testing.T) {
	checker := &Checker{
		Whois:             &stubWhois{result: core.WhoisOK(core.NewWhoisData("", "", ""))},
		Trademarks:        &stubTrademarks{result: core.TrademarksErr(core.TrademarkFailedMessage)},
		FlagLookupFailure: true,
	}

	resp, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.RiskUnknown, resp.Risk)
}

func TestCheckerRequiresDomain(t *testing.T) {
	whois := &stubWhois{}
	trademarks := &stubTrademarks{}
	checker := &Checker{Whois: whois, Trademarks: trademarks}

	_, err := checker.Check(context.Background(), "")
	require.ErrorIs(t, err, ErrDomainRequired)
	require.Zero(t, whois.calls.Load())
	require.Zero(t, trademarks.calls.Load())
}

func TestCheckerNotConfigured(t *testing.T) {
	_, err := (&Checker{}).Check(context.Background(), "example.com")
	require.Error(t, err)
}

type barrierWhois struct {
	started chan struct{}
	release chan struct{}
}

func (b *barrierWhois) Lookup(ctx context.Context, domain string) core.WhoisResult {
	close(b.started)
	<-b.release
	return core.WhoisOK(core.NewWhoisData("r", "d", "s"))
}

type barrierTrademarks struct {
	whoisStarted chan struct{}
	release      chan struct{}
}

func (b *barrierTrademarks) Search(ctx context.Context, keyword string) core.TrademarkResult {
	select {
	case <-b.whoisStarted:
		close(b.release)
		return core.TrademarksOK(nil)
	case <-time.After(2 * time.Second):
		close(b.release)
		return core.TrademarksErr("whois lookup never ran concurrently")
	}
}

func TestCheckerRunsLookupsConcurrently(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	checker := &Checker{
		Whois:      &barrierWhois{started: started, release: release},
		Trademarks: &barrierTrademarks{whoisStarted: started, release: release},
	}

	resp, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.True(t, resp.Trademarks.OK(), resp.Trademarks.Err())
	require.Equal(t, core.RiskLow, resp.Risk)
}

type blockingWhois struct{}

func (blockingWhois) Lookup(ctx context.Context, domain string) core.WhoisResult {
	<-ctx.Done()
	return core.WhoisErr(core.WhoisFailedMessage)
}

func TestCheckerReturnsContextErrorWhenCallerLeaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trademarks := &stubTrademarks{result: core.TrademarksOK(nil)}
	checker := &Checker{Whois: blockingWhois{}, Trademarks: trademarks}

	resp, err := checker.Check(ctx, "example.com")
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, resp)
	require.EqualValues(t, 1, trademarks.calls.Load())
}
