package output

import (
	"encoding/json"

	"github.com/brandguard/domainrisk/internal/core"
)

// JSONFormatter renders results exactly as the HTTP API does.
type JSONFormatter struct {
	Indent bool
}

// FormatCheck renders a check result as JSON.
func (f *JSONFormatter) FormatCheck(result *core.DomainCheckResponse) (string, error) {
	if result == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
