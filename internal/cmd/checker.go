package cmd

import (
	"github.com/openrdap/rdap"

	"github.com/brandguard/domainrisk/internal/config"
	"github.com/brandguard/domainrisk/internal/core/engine"
	"github.com/brandguard/domainrisk/internal/core/lookup"
	"github.com/brandguard/domainrisk/internal/httpclient"
)

// newDomainChecker wires the configured registration source and the trademark search.
func newDomainChecker(cfg *config.Config) *engine.Checker {
	var whois engine.WhoisLookup
	switch cfg.Whois.Source {
	case config.WhoisSourceRDAP:
		whois = &lookup.RDAPAdapter{
			Client:    &rdap.Client{},
			ServerURL: cfg.Whois.RDAPServer,
			Timeout:   cfg.Whois.Timeout,
		}
	default:
		whois = &lookup.WhoisAdapter{
			Querier: &lookup.DefaultWhoisQuerier{
				Server:  cfg.Whois.Server,
				Timeout: cfg.Whois.Timeout,
			},
		}
	}

	return &engine.Checker{
		Whois: whois,
		Trademarks: &lookup.TrademarkAdapter{
			Client:  httpclient.NewRestyClient(cfg.Trademark.Timeout),
			BaseURL: cfg.Trademark.BaseURL,
			Timeout: cfg.Trademark.Timeout,
		},
		FlagLookupFailure: cfg.Risk.FlagLookupFailure,
	}
}
