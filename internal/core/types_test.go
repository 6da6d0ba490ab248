package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyword(t *testing.T) {
	cases := map[string]string{
		"example.com":     "example",
		"sub.example.com": "sub",
		"localhost":       "localhost",
		".com":            "",
		"trailing.":       "trailing",
	}
	for domain, want := range cases {
		assert.Equal(t, want, Keyword(domain), domain)
	}
}

func TestNewWhoisDataDefaultsUnknown(t *testing.T) {
	data := NewWhoisData("Example Registrar", "", "  ")
	assert.Equal(t, "Example Registrar", data.Registrar)
	assert.Equal(t, UnknownValue, data.CreationDate)
	assert.Equal(t, UnknownValue, data.Status)
}

func TestWhoisResultJSON(t *testing.T) {
	ok, err := json.Marshal(WhoisOK(NewWhoisData("Example Registrar", "1995-08-14", "active")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"registrar":"Example Registrar","creationDate":"1995-08-14","status":"active"}`, string(ok))

	failed, err := json.Marshal(WhoisErr(WhoisFailedMessage))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"WHOIS lookup failed"}`, string(failed))

	var decoded WhoisResult
	require.NoError(t, json.Unmarshal(failed, &decoded))
	assert.False(t, decoded.OK())
	assert.Equal(t, WhoisFailedMessage, decoded.Err())
}

func TestTrademarkResultJSON(t *testing.T) {
	empty, err := json.Marshal(TrademarksOK(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(empty))

	one, err := json.Marshal(TrademarksOK([]TrademarkEntry{{SerialNumber: "123", Mark: "EXAMPLE", Status: "Live"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"serialNumber":"123","mark":"EXAMPLE","status":"Live"}]`, string(one))

	failed, err := json.Marshal(TrademarksErr(TrademarkFailedMessage))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Trademark API failed"}`, string(failed))

	var decoded TrademarkResult
	require.NoError(t, json.Unmarshal(one, &decoded))
	entries, ok := decoded.Entries()
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "EXAMPLE", entries[0].Mark)
}

func TestClassifyRisk(t *testing.T) {
	hit := TrademarksOK([]TrademarkEntry{{SerialNumber: "1"}})

	assert.Equal(t, RiskHigh, ClassifyRisk(hit))
	assert.Equal(t, RiskLow, ClassifyRisk(TrademarksOK(nil)))
	assert.Equal(t, RiskLow, ClassifyRisk(TrademarksErr(TrademarkFailedMessage)))

	assert.Equal(t, RiskHigh, ClassifyRiskStrict(hit))
	assert.Equal(t, RiskLow, ClassifyRiskStrict(TrademarksOK(nil)))
	assert.Equal(t, RiskUnknown, ClassifyRiskStrict(TrademarksErr(TrademarkFailedMessage)))
}
