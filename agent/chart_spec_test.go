package agent

import (
	"encoding/json"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestParseChartSpecPlainJSON(t *testing.T) {
	raw := `{"x":"toss_winner","y":"count","chart_type":"pie"}`
	spec, err := ParseChartSpec(raw)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	if spec.X != "toss_winner" || spec.Y != "count" || spec.ChartType != "pie" {
		t.Errorf("unexpected spec: %+v", spec)
	}
	if spec.Limit != 0 {
		t.Errorf("expected no limit, got %d", spec.Limit)
	}
}

func TestParseChartSpecWhitespacePadded(t *testing.T) {
	raw := "\n\t  {\"x\":\"winner\",\"y\":\"count\",\"chart_type\":\"bar\",\"limit\":10}  \n"
	spec, err := ParseChartSpec(raw)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	if spec.Limit != 10 {
		t.Errorf("expected limit 10, got %d", spec.Limit)
	}
}

func TestParseChartSpecFencedBlock(t *testing.T) {
	raw := "Here is the chart spec you asked for:\n```json\n{\"x\":\"team1\",\"y\":\"count\",\"chart_type\":\"bar\",\"limit\":5}\n```\nLet me know if you need anything else."
	spec, err := ParseChartSpec(raw)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	want := &ChartSpec{X: "team1", Y: "count", ChartType: "bar", Limit: 5}
	if *spec != *want {
		t.Errorf("fenced parse mismatch: got %+v, want %+v", spec, want)
	}

	// The fenced form must parse to the same object as the unwrapped JSON.
	unwrapped, err := ParseChartSpec(`{"x":"team1","y":"count","chart_type":"bar","limit":5}`)
	if err != nil {
		t.Fatalf("unwrapped parse failed: %v", err)
	}
	if *spec != *unwrapped {
		t.Errorf("fenced and unwrapped forms disagree: %+v vs %+v", spec, unwrapped)
	}
}

func TestParseChartSpecBraceSpan(t *testing.T) {
	raw := `Sure! Based on your query the spec is {"x":"player_of_match","y":"count","chart_type":"bar","limit":3} - happy charting.`
	spec, err := ParseChartSpec(raw)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	if spec.X != "player_of_match" || spec.Limit != 3 {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestParseChartSpecFloatLimit(t *testing.T) {
	spec, err := ParseChartSpec(`{"x":"city","y":"count","chart_type":"bar","limit":5.0}`)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	if spec.Limit != 5 {
		t.Errorf("expected limit 5, got %d", spec.Limit)
	}
}

func TestParseChartSpecFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not determine a chart for that query."},
		{"bare null", "null"},
		{"bare number", "42"},
		{"unclosed brace", `{"x":"team1","y":"count"`},
		{"reversed braces", `} nothing here {`},
		{"fence without json", "```\nnot a spec\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := ParseChartSpec(tc.raw)
			if !errors.Is(err, ErrUnparseable) {
				t.Fatalf("expected ErrUnparseable, got spec=%+v err=%v", spec, err)
			}
		})
	}
}

func TestParseChartSpecMalformedFenceFallsThrough(t *testing.T) {
	// The fence interior is broken but the brace span strategy still finds
	// the object.
	raw := "```json\nbroken\n```\n{\"x\":\"venue\",\"y\":\"count\",\"chart_type\":\"pie\"}"
	spec, err := ParseChartSpec(raw)
	if err != nil {
		t.Fatalf("ParseChartSpec failed: %v", err)
	}
	if spec.X != "venue" {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestChartSpecValidate(t *testing.T) {
	cases := []struct {
		name    string
		spec    ChartSpec
		wantErr bool
	}{
		{"complete", ChartSpec{X: "team1", Y: "count", ChartType: "bar"}, false},
		{"missing x", ChartSpec{Y: "count", ChartType: "bar"}, true},
		{"missing y", ChartSpec{X: "team1", ChartType: "bar"}, true},
		{"missing chart_type", ChartSpec{X: "team1", Y: "count"}, true},
		{"all missing", ChartSpec{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

// Feeding PrettyJSON back through the parser must reproduce the spec.
func TestChartSpecPrettyJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ident := rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`)
		original := &ChartSpec{
			X:         ident.Draw(t, "x"),
			Y:         ident.Draw(t, "y"),
			ChartType: rapid.SampledFrom([]string{"pie", "bar"}).Draw(t, "chart_type"),
			Limit:     rapid.IntRange(0, 100).Draw(t, "limit"),
		}

		restored, err := ParseChartSpec(original.PrettyJSON())
		if err != nil {
			t.Fatalf("round-trip parse failed: %v", err)
		}
		if *restored != *original {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", restored, original)
		}
	})
}

// Any valid spec object embedded in brace-free prose must be recovered.
func TestParseChartSpecEmbeddedObjectProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		spec := ChartSpec{
			X:         rapid.StringMatching(`[a-z_]{1,12}`).Draw(t, "x"),
			Y:         rapid.StringMatching(`[a-z_]{1,12}`).Draw(t, "y"),
			ChartType: rapid.SampledFrom([]string{"pie", "bar"}).Draw(t, "chart_type"),
			Limit:     rapid.IntRange(0, 50).Draw(t, "limit"),
		}
		payload, err := json.Marshal(spec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		prose := rapid.StringMatching(`[a-zA-Z0-9 .,:!]{0,40}`)
		raw := prose.Draw(t, "prefix") + string(payload) + prose.Draw(t, "suffix")

		parsed, err := ParseChartSpec(raw)
		if err != nil {
			t.Fatalf("parse failed for %q: %v", raw, err)
		}
		if parsed.X != spec.X || parsed.Y != spec.Y || parsed.ChartType != spec.ChartType {
			t.Fatalf("parse mismatch: got %+v, want %+v", parsed, spec)
		}
	})
}

// Inputs without a brace pair always return the failure signal, never panic.
func TestParseChartSpecNoBracesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.StringMatching(`[^{}]{0,200}`).Draw(t, "raw")
		if _, err := ParseChartSpec(raw); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("expected ErrUnparseable for %q, got %v", raw, err)
		}
	})
}
