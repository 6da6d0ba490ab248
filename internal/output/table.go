package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/brandguard/domainrisk/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatCheck renders one check as a table of sources with the risk in the footer.
func (f *TableFormatter) FormatCheck(result *core.DomainCheckResponse) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("%s (keyword: %s)", result.Domain, result.Keyword)
	t.AppendHeader(table.Row{"Source", "Item", "Detail", "Status"})

	registrar, created, status := whoisCells(result)
	if result.Whois.OK() {
		t.AppendRow(table.Row{"whois", registrar, "created " + created, status})
	} else {
		t.AppendRow(table.Row{"whois", "-", registrar, "error"})
	}

	entries, ok := result.Trademarks.Entries()
	switch {
	case !ok:
		t.AppendRow(table.Row{"trademark", "-", result.Trademarks.Err(), "error"})
	case len(entries) == 0:
		t.AppendRow(table.Row{"trademark", "-", "no matching publications", "clear"})
	default:
		for _, entry := range entries {
			t.AppendRow(table.Row{"trademark", entry.Mark, "serial " + entry.SerialNumber, strings.ToLower(entry.Status)})
		}
	}

	t.AppendFooter(table.Row{"", "", "risk", string(result.Risk)})

	return t.Render(), nil
}
