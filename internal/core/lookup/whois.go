package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
)

const (
	whoisSource = "whois"
	rdapSource  = "rdap"

	defaultLookupTimeout = 10 * time.Second
)

// WhoisQuerier returns the raw WHOIS text for a domain.
type WhoisQuerier interface {
	Query(ctx context.Context, domain string) (string, error)
}

// DefaultWhoisQuerier queries port-43 WHOIS servers, following registrar referrals.
type DefaultWhoisQuerier struct {
	// Server pins every query to one WHOIS server; empty follows IANA referral.
	Server  string
	Timeout time.Duration
}

// Query runs the WHOIS query in the background so ctx cancellation is honored.
func (q *DefaultWhoisQuerier) Query(ctx context.Context, domain string) (string, error) {
	if strings.TrimSpace(domain) == "" {
		return "", errors.New("whois domain is required")
	}

	client := whois.NewClient()
	timeout := defaultLookupTimeout
	if q != nil && q.Timeout > 0 {
		timeout = q.Timeout
	}
	client.SetTimeout(timeout)

	var servers []string
	if q != nil && strings.TrimSpace(q.Server) != "" {
		servers = append(servers, strings.TrimSpace(q.Server))
	}

	type result struct {
		raw string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := client.Whois(domain, servers...)
		ch <- result{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.raw, res.err
	}
}

// WhoisAdapter looks up registration data over the WHOIS protocol.
type WhoisAdapter struct {
	Querier WhoisQuerier
	Clock   func() time.Time
}

// Lookup queries WHOIS and normalizes the reply. Failures never escape as errors.
func (a *WhoisAdapter) Lookup(ctx context.Context, domain string) core.WhoisResult {
	if ctx == nil {
		ctx = context.Background()
	}
	start := now(a.Clock)

	data, err := a.lookup(ctx, domain)
	finishLookup(ctx, whoisSource, domain, now(a.Clock).Sub(start), err)
	if err != nil {
		return core.WhoisErr(core.WhoisFailedMessage)
	}
	return core.WhoisOK(data)
}

func (a *WhoisAdapter) lookup(ctx context.Context, domain string) (core.WhoisData, error) {
	querier := a.Querier
	if querier == nil {
		querier = &DefaultWhoisQuerier{}
	}

	raw, err := querier.Query(ctx, domain)
	if err != nil {
		return core.WhoisData{}, fmt.Errorf("whois query failed: %w", err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return core.WhoisData{}, fmt.Errorf("whois parse failed: %w", err)
	}

	return whoisInfoData(info), nil
}

func whoisInfoData(info whoisparser.WhoisInfo) core.WhoisData {
	var registrar, created, status string
	if info.Registrar != nil {
		registrar = info.Registrar.Name
	}
	if info.Domain != nil {
		created = info.Domain.CreatedDate
		status = joinStatus(info.Domain.Status)
	}
	return core.NewWhoisData(registrar, created, status)
}

func joinStatus(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ", ")
}

// finishLookup records the lookup outcome and logs real upstream failures with
// the id of the request that triggered them. A lookup cut short because the
// caller's context ended is counted as cancelled and only logged at debug.
func finishLookup(ctx context.Context, source, subject string, elapsed time.Duration, err error) {
	outcome := metrics.LookupSuccess
	switch {
	case err == nil:
	case ctx.Err() != nil:
		outcome = metrics.LookupCancelled
	default:
		outcome = metrics.LookupFailure
	}
	metrics.RecordLookup(source, outcome, elapsed)

	logger := observability.ServerLogger
	if err == nil || logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("source", source),
		zap.String("subject", subject),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Error(err),
	}
	if outcome == metrics.LookupCancelled {
		logger.Debug("Upstream lookup cancelled", fields...)
		return
	}
	logger.Warn("Upstream lookup failed", fields...)
}

func now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now().UTC()
}
