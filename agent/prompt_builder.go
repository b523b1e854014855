package agent

import (
	"fmt"
	"strings"
)

// BuildChartSpecPrompt builds the fixed-template prompt instructing the model
// to reply with only the chart specification JSON for the given query.
func BuildChartSpecPrompt(query string, columns []string) string {
	var b strings.Builder
	b.WriteString("You are a data visualization assistant.\n")
	fmt.Fprintf(&b, "Dataset columns: [%s].\n", strings.Join(columns, ", "))
	fmt.Fprintf(&b, "Based on this query: %q, return ONLY valid JSON (no explanation, no code).\n", query)
	b.WriteString("JSON must have keys: x, y, chart_type, and optional limit.\n")
	b.WriteString("\n")
	b.WriteString("Example:\n")
	b.WriteString("{\n")
	b.WriteString("  \"x\": \"toss_winner\",\n")
	b.WriteString("  \"y\": \"count\",\n")
	b.WriteString("  \"chart_type\": \"pie\"\n")
	b.WriteString("}\n")
	return b.String()
}
