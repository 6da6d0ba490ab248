package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
)

// WhoisLookup resolves registration data for a domain.
type WhoisLookup interface {
	Lookup(ctx context.Context, domain string) core.WhoisResult
}

// TrademarkSearch finds trademark publications matching a keyword.
type TrademarkSearch interface {
	Search(ctx context.Context, keyword string) core.TrademarkResult
}

// ErrDomainRequired is returned when Check is called without a domain.
var ErrDomainRequired = errors.New("domain is required")

// Checker combines a WHOIS lookup and a trademark search into one risk verdict.
type Checker struct {
	Whois      WhoisLookup
	Trademarks TrademarkSearch

	// FlagLookupFailure reports core.RiskUnknown instead of core.RiskLow when the
	// trademark search fails.
	FlagLookupFailure bool

	Clock func() time.Time
}

// Check runs both lookups concurrently and waits for both before classifying.
// It returns ctx.Err() when ctx ends before the lookups finish.
func (c *Checker) Check(ctx context.Context, domain string) (*core.DomainCheckResponse, error) {
	if c == nil || c.Whois == nil || c.Trademarks == nil {
		return nil, errors.New("domain checker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if domain == "" {
		return nil, ErrDomainRequired
	}

	start := c.now()
	keyword := core.Keyword(domain)

	var (
		whoisResult     core.WhoisResult
		trademarkResult core.TrademarkResult
	)

	// Lookups absorb their own failures, so neither goroutine cancels the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		whoisResult = c.Whois.Lookup(gctx, domain)
		return nil
	})
	g.Go(func() error {
		trademarkResult = c.Trademarks.Search(gctx, keyword)
		return nil
	})
	_ = g.Wait()

	// The failure variants above are meaningless once the caller has gone.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risk := core.ClassifyRisk(trademarkResult)
	if c.FlagLookupFailure {
		risk = core.ClassifyRiskStrict(trademarkResult)
	}
	metrics.RecordCheck(string(risk))

	if observability.ServerLogger != nil {
		observability.ServerLogger.Debug("Domain check completed",
			zap.String("domain", domain),
			zap.String("keyword", keyword),
			zap.Bool("whois_ok", whoisResult.OK()),
			zap.Bool("trademarks_ok", trademarkResult.OK()),
			zap.String("risk", string(risk)),
			zap.Duration("duration", c.now().Sub(start)))
	}

	return &core.DomainCheckResponse{
		Domain:     domain,
		Keyword:    keyword,
		Whois:      whoisResult,
		Trademarks: trademarkResult,
		Risk:       risk,
	}, nil
}

func (c *Checker) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
