package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brandguard/domainrisk/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formatter renders domain check results.
type Formatter interface {
	FormatCheck(result *core.DomainCheckResponse) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// FormatCheckList renders several results. JSON output is a single array.
func FormatCheckList(format Format, results []*core.DomainCheckResponse) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	formatter := NewFormatter(format)
	separator := "\n\n"
	if format == FormatYAML {
		separator = "---\n"
	}

	rendered := make([]string, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		value, err := formatter.FormatCheck(result)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		rendered = append(rendered, value)
	}

	return strings.Join(rendered, separator), nil
}

// whoisCells returns registrar, created and status, or the failure message in every cell.
func whoisCells(result *core.DomainCheckResponse) (string, string, string) {
	data, ok := result.Whois.Data()
	if !ok {
		msg := result.Whois.Err()
		return msg, "-", "-"
	}
	return data.Registrar, data.CreationDate, data.Status
}
