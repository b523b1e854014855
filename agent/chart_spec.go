package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ChartSpec is the chart specification extracted from model output.
// Limit of 0 means no row limit was requested.
type ChartSpec struct {
	X         string `json:"x"`
	Y         string `json:"y"`
	ChartType string `json:"chart_type"`
	Limit     int    `json:"limit,omitempty"`
}

// ErrUnparseable signals that no JSON object could be extracted from the
// model output. The user should rephrase the query.
var ErrUnparseable = errors.New("no JSON object found in model output")

// Validate rejects specs missing any of the required keys.
func (s *ChartSpec) Validate() error {
	var missing []string
	if s.X == "" {
		missing = append(missing, "x")
	}
	if s.Y == "" {
		missing = append(missing, "y")
	}
	if s.ChartType == "" {
		missing = append(missing, "chart_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("model JSON must include x, y, and chart_type (missing: %s)", strings.Join(missing, ", "))
	}
	return nil
}

// PrettyJSON serializes the spec with two-space indentation for the report.
func (s *ChartSpec) PrettyJSON() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ParseChartSpec extracts a ChartSpec from raw model output. Model output is
// unreliable text, not a structured API response, so extraction is a
// prioritized list of strategies; the first one that yields valid JSON wins:
//  1. the whole trimmed text,
//  2. the interior of a ```json fenced block,
//  3. the span between the first '{' and the last '}'.
//
// All strategies failing returns ErrUnparseable. Never panics on any input.
func ParseChartSpec(raw string) (*ChartSpec, error) {
	strategies := []func(string) (string, bool){
		extractWhole,
		extractFenced,
		extractBraceSpan,
	}
	for _, extract := range strategies {
		candidate, ok := extract(raw)
		if !ok {
			continue
		}
		if spec, ok := decodeSpec(candidate); ok {
			return spec, nil
		}
	}
	return nil, ErrUnparseable
}

func extractWhole(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed != ""
}

// extractFenced returns the interior of the first ```json code fence.
func extractFenced(raw string) (string, bool) {
	const marker = "```json"
	start := strings.Index(raw, marker)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(marker):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

// extractBraceSpan returns the substring from the first '{' to the last '}'.
func extractBraceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// decodeSpec parses a candidate substring as a spec JSON object. The limit
// key is tolerated as either an integer or a float (models emit both).
func decodeSpec(candidate string) (*ChartSpec, bool) {
	candidate = strings.TrimSpace(candidate)
	// Only a JSON object counts; bare scalars like "null" decode without
	// error but carry no spec.
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}

	var aux struct {
		X         string      `json:"x"`
		Y         string      `json:"y"`
		ChartType string      `json:"chart_type"`
		Limit     json.Number `json:"limit"`
	}
	if err := json.Unmarshal([]byte(candidate), &aux); err != nil {
		return nil, false
	}

	spec := &ChartSpec{X: aux.X, Y: aux.Y, ChartType: aux.ChartType}
	if aux.Limit != "" {
		if n, err := aux.Limit.Int64(); err == nil {
			spec.Limit = int(n)
		} else if f, err := aux.Limit.Float64(); err == nil {
			spec.Limit = int(f)
		}
		if spec.Limit < 0 {
			spec.Limit = 0
		}
	}
	return spec, true
}
