package output

import (
	"gopkg.in/yaml.v3"

	"github.com/brandguard/domainrisk/internal/core"
)

// YAMLFormatter renders results as YAML with the same keys as the JSON API.
type YAMLFormatter struct{}

type yamlWhois struct {
	Registrar    string `yaml:"registrar,omitempty"`
	CreationDate string `yaml:"creationDate,omitempty"`
	Status       string `yaml:"status,omitempty"`
	Error        string `yaml:"error,omitempty"`
}

type yamlTrademark struct {
	SerialNumber string `yaml:"serialNumber"`
	Mark         string `yaml:"mark"`
	Status       string `yaml:"status"`
}

type yamlCheck struct {
	Domain     string    `yaml:"domain"`
	Keyword    string    `yaml:"keyword"`
	Whois      yamlWhois `yaml:"whois"`
	Trademarks any       `yaml:"trademarks"`
	Risk       string    `yaml:"risk"`
}

// FormatCheck renders a check result as a YAML document.
func (f *YAMLFormatter) FormatCheck(result *core.DomainCheckResponse) (string, error) {
	if result == nil {
		return "", nil
	}

	doc := yamlCheck{
		Domain:  result.Domain,
		Keyword: result.Keyword,
		Risk:    string(result.Risk),
	}

	if data, ok := result.Whois.Data(); ok {
		doc.Whois = yamlWhois{
			Registrar:    data.Registrar,
			CreationDate: data.CreationDate,
			Status:       data.Status,
		}
	} else {
		doc.Whois = yamlWhois{Error: result.Whois.Err()}
	}

	if entries, ok := result.Trademarks.Entries(); ok {
		marks := make([]yamlTrademark, 0, len(entries))
		for _, entry := range entries {
			marks = append(marks, yamlTrademark{
				SerialNumber: entry.SerialNumber,
				Mark:         entry.Mark,
				Status:       entry.Status,
			})
		}
		doc.Trademarks = marks
	} else {
		doc.Trademarks = map[string]string{"error": result.Trademarks.Err()}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
