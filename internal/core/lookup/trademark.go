package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/httpclient"
)

const (
	trademarkSource = "uspto"

	// DefaultTrademarkBaseURL is the USPTO developer API host.
	DefaultTrademarkBaseURL = "https://developer.uspto.gov"

	trademarkSearchPath = "/ibd-api/v1/application/publications"
)

// TrademarkAdapter searches the USPTO trademark publication API.
type TrademarkAdapter struct {
	Client  httpclient.Client
	BaseURL string
	Timeout time.Duration
	Clock   func() time.Time
}

type publicationsResponse struct {
	Results []publicationRecord `json:"results"`
}

type publicationRecord struct {
	SerialNumber string `json:"serialNumber"`
	Mark         string `json:"markIdentification"`
	Status       string `json:"markCurrentStatusExternalDescription"`
}

// Search queries the first page of publications. Failures never escape as errors.
func (a *TrademarkAdapter) Search(ctx context.Context, keyword string) core.TrademarkResult {
	if ctx == nil {
		ctx = context.Background()
	}
	start := now(a.Clock)

	entries, err := a.search(ctx, keyword)
	finishLookup(ctx, trademarkSource, keyword, now(a.Clock).Sub(start), err)
	if err != nil {
		return core.TrademarksErr(core.TrademarkFailedMessage)
	}
	return core.TrademarksOK(entries)
}

func (a *TrademarkAdapter) search(ctx context.Context, keyword string) ([]core.TrademarkEntry, error) {
	client := a.Client
	if client == nil {
		timeout := defaultLookupTimeout
		if a.Timeout > 0 {
			timeout = a.Timeout
		}
		client = httpclient.NewRestyClient(timeout)
	}

	query := map[string]string{
		"searchText": keyword,
		"rows":       strconv.Itoa(core.MaxTrademarkResults),
		"start":      "0",
	}
	headers := map[string]string{"Accept": "application/json"}

	resp, err := client.Get(ctx, a.searchURL(), query, headers)
	if err != nil {
		return nil, fmt.Errorf("trademark request failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("unexpected trademark response status %d", resp.StatusCode())
	}

	var payload publicationsResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("trademark response decode failed: %w", err)
	}

	entries := make([]core.TrademarkEntry, 0, len(payload.Results))
	for _, record := range payload.Results {
		if len(entries) == core.MaxTrademarkResults {
			break
		}
		entries = append(entries, core.TrademarkEntry{
			SerialNumber: record.SerialNumber,
			Mark:         record.Mark,
			Status:       record.Status,
		})
	}
	return entries, nil
}

func (a *TrademarkAdapter) searchURL() string {
	base := DefaultTrademarkBaseURL
	if a != nil && strings.TrimSpace(a.BaseURL) != "" {
		base = strings.TrimSpace(a.BaseURL)
	}
	return strings.TrimSuffix(base, "/") + trademarkSearchPath
}
