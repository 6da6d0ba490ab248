package output

import (
	"fmt"
	"strings"

	"github.com/brandguard/domainrisk/internal/core"
)

// MarkdownFormatter renders results as a markdown section.
type MarkdownFormatter struct{}

// FormatCheck renders a check result as Markdown.
func (f *MarkdownFormatter) FormatCheck(result *core.DomainCheckResponse) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(result.Domain)))
	sb.WriteString(fmt.Sprintf("**Keyword**: %s\n\n", escapeMarkdownCell(result.Keyword)))

	registrar, created, status := whoisCells(result)
	sb.WriteString("| Registrar | Created | Status |\n")
	sb.WriteString("|-----------|---------|--------|\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n\n",
		escapeMarkdownCell(registrar),
		escapeMarkdownCell(created),
		escapeMarkdownCell(status),
	))

	entries, ok := result.Trademarks.Entries()
	switch {
	case !ok:
		sb.WriteString(fmt.Sprintf("Trademarks: %s\n", escapeMarkdownCell(result.Trademarks.Err())))
	case len(entries) == 0:
		sb.WriteString("Trademarks: none found\n")
	default:
		sb.WriteString("| Serial | Mark | Status |\n")
		sb.WriteString("|--------|------|--------|\n")
		for _, entry := range entries {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				escapeMarkdownCell(entry.SerialNumber),
				escapeMarkdownCell(entry.Mark),
				escapeMarkdownCell(entry.Status),
			))
		}
	}

	sb.WriteString(fmt.Sprintf("\n**Risk**: %s\n", result.Risk))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
