package core

import (
	"encoding/json"
	"strings"
)

// UnknownValue substitutes for WHOIS fields the upstream did not report.
const UnknownValue = "Unknown"

// Failure messages surfaced inside a successful response.
const (
	WhoisFailedMessage     = "WHOIS lookup failed"
	TrademarkFailedMessage = "Trademark API failed"
)

// MaxTrademarkResults caps the trademark entries requested and returned.
const MaxTrademarkResults = 5

// RiskLevel is the coarse classification returned to callers.
type RiskLevel string

const (
	RiskHigh    RiskLevel = "High risk (trademark conflict found)"
	RiskLow     RiskLevel = "Low risk"
	RiskUnknown RiskLevel = "Unknown risk (trademark lookup failed)"
)

// DomainQuery is the inbound request body.
type DomainQuery struct {
	Domain string `json:"domain"`
}

// Keyword returns the part of domain before the first dot, or domain itself.
func Keyword(domain string) string {
	keyword, _, _ := strings.Cut(domain, ".")
	return keyword
}

// WhoisData holds the normalized registration fields.
type WhoisData struct {
	Registrar    string `json:"registrar"`
	CreationDate string `json:"creationDate"`
	Status       string `json:"status"`
}

// NewWhoisData builds WhoisData, replacing blank fields with UnknownValue.
func NewWhoisData(registrar, creationDate, status string) WhoisData {
	return WhoisData{
		Registrar:    orUnknown(registrar),
		CreationDate: orUnknown(creationDate),
		Status:       orUnknown(status),
	}
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return UnknownValue
	}
	return strings.TrimSpace(value)
}

// WhoisResult is either registration data or a failure message, never both.
type WhoisResult struct {
	data *WhoisData
	err  string
}

// WhoisOK wraps successful registration data.
func WhoisOK(data WhoisData) WhoisResult {
	return WhoisResult{data: &data}
}

// WhoisErr wraps a lookup failure.
func WhoisErr(message string) WhoisResult {
	return WhoisResult{err: message}
}

// Data returns the registration data and whether the lookup succeeded.
func (r WhoisResult) Data() (WhoisData, bool) {
	if r.data == nil {
		return WhoisData{}, false
	}
	return *r.data, true
}

// Err returns the failure message, empty on success.
func (r WhoisResult) Err() string {
	if r.data != nil {
		return ""
	}
	if r.err == "" {
		return WhoisFailedMessage
	}
	return r.err
}

// OK reports whether the lookup succeeded.
func (r WhoisResult) OK() bool {
	return r.data != nil
}

func (r WhoisResult) MarshalJSON() ([]byte, error) {
	if data, ok := r.Data(); ok {
		return json.Marshal(data)
	}
	return json.Marshal(errorBody{Error: r.Err()})
}

func (r *WhoisResult) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if raw, ok := fields["error"]; ok {
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return err
		}
		*r = WhoisErr(message)
		return nil
	}
	var data WhoisData
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	*r = WhoisOK(data)
	return nil
}

// TrademarkEntry is one matching trademark publication.
type TrademarkEntry struct {
	SerialNumber string `json:"serialNumber"`
	Mark         string `json:"mark"`
	Status       string `json:"status"`
}

// TrademarkResult is either a (possibly empty) list of entries or a failure message.
type TrademarkResult struct {
	entries []TrademarkEntry
	err     string
	failed  bool
}

// TrademarksOK wraps a successful search.
func TrademarksOK(entries []TrademarkEntry) TrademarkResult {
	if entries == nil {
		entries = []TrademarkEntry{}
	}
	return TrademarkResult{entries: entries}
}

// TrademarksErr wraps a search failure.
func TrademarksErr(message string) TrademarkResult {
	if message == "" {
		message = TrademarkFailedMessage
	}
	return TrademarkResult{err: message, failed: true}
}

// Entries returns the matches and whether the search succeeded.
func (r TrademarkResult) Entries() ([]TrademarkEntry, bool) {
	if r.failed {
		return nil, false
	}
	if r.entries == nil {
		return []TrademarkEntry{}, true
	}
	return r.entries, true
}

// Err returns the failure message, empty on success.
func (r TrademarkResult) Err() string {
	return r.err
}

// OK reports whether the search succeeded.
func (r TrademarkResult) OK() bool {
	return !r.failed
}

func (r TrademarkResult) MarshalJSON() ([]byte, error) {
	if entries, ok := r.Entries(); ok {
		return json.Marshal(entries)
	}
	return json.Marshal(errorBody{Error: r.err})
}

func (r *TrademarkResult) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var entries []TrademarkEntry
		if err := json.Unmarshal(b, &entries); err != nil {
			return err
		}
		*r = TrademarksOK(entries)
		return nil
	}
	var body errorBody
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	*r = TrademarksErr(body.Error)
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

// DomainCheckResponse is the combined result for one domain.
type DomainCheckResponse struct {
	Domain     string          `json:"domain"`
	Keyword    string          `json:"keyword"`
	Whois      WhoisResult     `json:"whois"`
	Trademarks TrademarkResult `json:"trademarks"`
	Risk       RiskLevel       `json:"risk"`
}
