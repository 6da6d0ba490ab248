package core

// ClassifyRisk maps any trademark hit to RiskHigh. A failed search counts as no hits.
func ClassifyRisk(trademarks TrademarkResult) RiskLevel {
	if entries, ok := trademarks.Entries(); ok && len(entries) > 0 {
		return RiskHigh
	}
	return RiskLow
}

// ClassifyRiskStrict behaves like ClassifyRisk but reports RiskUnknown when the search failed.
func ClassifyRiskStrict(trademarks TrademarkResult) RiskLevel {
	if !trademarks.OK() {
		return RiskUnknown
	}
	return ClassifyRisk(trademarks)
}
