package engine

import (
	"fmt"
	"strings"

	"povdash/internal/table"
)

// Columns of the indicator metadata table.
const (
	colLongDefinition = "Long definition"
	colUnit           = "Unit of measure"
	colPeriodicity    = "Periodicity"
	colSource         = "Source"
	colLimitations    = "Limitations and exceptions"
)

const noIndicatorDetails = "No details available on this indicator"

func fillNA(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// IndicatorDetails renders the metadata of an indicator as markdown.
func IndicatorDetails(series *table.Table, indicator string) string {
	if series == nil {
		return noIndicatorDetails
	}
	rows := FilterByEquality(series, ColIndicatorName, indicator)
	if rows.Len() == 0 {
		return noIndicatorDetails
	}

	limitations := strings.ReplaceAll(fillNA(rows.String(0, colLimitations), "N/A"), "\n\n", " ")

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", rows.String(0, ColIndicatorName))
	fmt.Fprintf(&b, "%s\n\n", rows.String(0, colLongDefinition))
	fmt.Fprintf(&b, "* **Unit of measure** %s\n", fillNA(rows.String(0, colUnit), "count"))
	fmt.Fprintf(&b, "* **Periodicity** %s\n", fillNA(rows.String(0, colPeriodicity), "N/A"))
	fmt.Fprintf(&b, "* **Source** %s\n\n", rows.String(0, colSource))
	fmt.Fprintf(&b, "### Limitations and exceptions:\n\n%s\n", limitations)
	return b.String()
}
