package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/openrdap/rdap"

	"github.com/brandguard/domainrisk/internal/core"
)

// RDAPAdapter looks up registration data over RDAP, resolving the server via IANA bootstrap
// unless ServerURL is set.
type RDAPAdapter struct {
	Client    *rdap.Client
	ServerURL string
	Timeout   time.Duration
	Clock     func() time.Time
}

// Lookup queries RDAP and normalizes the reply. Failures never escape as errors.
func (a *RDAPAdapter) Lookup(ctx context.Context, domain string) core.WhoisResult {
	if ctx == nil {
		ctx = context.Background()
	}
	start := now(a.Clock)

	data, err := a.lookup(ctx, domain)
	finishLookup(ctx, rdapSource, domain, now(a.Clock).Sub(start), err)
	if err != nil {
		return core.WhoisErr(core.WhoisFailedMessage)
	}
	return core.WhoisOK(data)
}

func (a *RDAPAdapter) lookup(ctx context.Context, domain string) (core.WhoisData, error) {
	if strings.TrimSpace(domain) == "" {
		return core.WhoisData{}, errors.New("rdap domain is required")
	}

	req := rdap.NewDomainRequest(domain)
	if strings.TrimSpace(a.ServerURL) != "" {
		serverURL, err := url.Parse(a.ServerURL)
		if err != nil {
			return core.WhoisData{}, fmt.Errorf("invalid rdap server url: %w", err)
		}
		req = req.WithServer(serverURL)
	}
	timeout := defaultLookupTimeout
	if a.Timeout > 0 {
		timeout = a.Timeout
	}
	req.Timeout = timeout
	req = req.WithContext(ctx)

	client := a.Client
	if client == nil {
		client = &rdap.Client{}
	}

	resp, err := client.Do(req)
	if err != nil {
		return core.WhoisData{}, fmt.Errorf("rdap query failed: %w", err)
	}

	domainObj, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return core.WhoisData{}, errors.New("unexpected rdap response")
	}

	return core.NewWhoisData(
		findRegistrar(domainObj),
		findEventDate(domainObj.Events, "registration"),
		joinStatus(domainObj.Status),
	), nil
}

func findRegistrar(domain *rdap.Domain) string {
	if domain == nil {
		return ""
	}

	for _, entity := range domain.Entities {
		for _, role := range entity.Roles {
			if role == "registrar" && entity.VCard != nil {
				return entity.VCard.Name()
			}
		}
	}

	return ""
}

func findEventDate(events []rdap.Event, action string) string {
	for _, event := range events {
		if event.Action == action {
			return event.Date
		}
	}
	return ""
}
