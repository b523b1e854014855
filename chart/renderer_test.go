package chart

import (
	"bytes"
	"os"
	"testing"

	"odireport/dataset"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSeries() *dataset.Series {
	return &dataset.Series{
		XCol:     "toss_winner",
		ValueCol: "count",
		Rows: []dataset.Row{
			{Category: "India", Value: 3},
			{Category: "England", Value: 2},
			{Category: "Australia", Value: 1},
		},
	}
}

func TestRenderBarChart(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	path, err := r.Render(testSeries(), "bar", "Show toss wins by team")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("chart file unreadable: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("chart file is not a PNG")
	}
}

func TestRenderPieChart(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	path, err := r.Render(testSeries(), "pie", "Show total toss wins by team in a pie chart")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("chart file unreadable: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("chart file is not a PNG")
	}
}

func TestRenderUnknownTypeDefaultsToBar(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	path, err := r.Render(testSeries(), "histogram", "whatever")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	os.Remove(path)
}

func TestRenderEmptySeriesFails(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	if _, err := r.Render(&dataset.Series{}, "bar", "q"); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestRenderPieZeroTotalFails(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	series := &dataset.Series{Rows: []dataset.Row{{Category: "India", Value: 0}}}
	if _, err := r.Render(series, "pie", "q"); err == nil {
		t.Fatal("expected error for zero-total pie")
	}
}
