package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"odireport/dataset"
)

const (
	chartWidth  = 1024
	chartHeight = 640
)

// Renderer rasterizes aggregated series to PNG chart images.
type Renderer struct {
	OutDir string
	Log    func(string)
}

// NewRenderer creates a renderer writing chart images under outDir.
func NewRenderer(outDir string, logFunc func(string)) *Renderer {
	return &Renderer{OutDir: outDir, Log: logFunc}
}

func (r *Renderer) log(msg string) {
	if r.Log != nil {
		r.Log(msg)
	}
}

// Render draws the series as a pie chart when chartType is "pie", otherwise
// as a bar chart, titled with the raw query text. It writes a PNG under
// OutDir and returns its path; the caller owns deletion of the file.
func (r *Renderer) Render(series *dataset.Series, chartType, title string) (string, error) {
	if series == nil || len(series.Rows) == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chart dir: %w", err)
	}
	path := filepath.Join(r.OutDir, fmt.Sprintf("chart_%s.png", uuid.New().String()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(chartType, "pie") {
		err = renderPie(series, title, f)
	} else {
		err = renderBar(series, title, f)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("error creating chart: %w", err)
	}

	r.log(fmt.Sprintf("rendered %s chart: %s", chartType, path))
	return path, nil
}

func renderPie(series *dataset.Series, title string, f *os.File) error {
	total := 0.0
	for _, row := range series.Rows {
		total += row.Value
	}
	if total <= 0 {
		return fmt.Errorf("pie chart needs a positive value total")
	}

	values := make([]chart.Value, 0, len(series.Rows))
	for _, row := range series.Rows {
		if row.Value <= 0 {
			// zero-share slices render as degenerate wedges
			continue
		}
		values = append(values, chart.Value{Label: row.Category, Value: row.Value})
	}

	graph := chart.PieChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Values: values,
	}
	return graph.Render(chart.PNG, f)
}

func renderBar(series *dataset.Series, title string, f *os.File) error {
	bars := make([]chart.Value, 0, len(series.Rows))
	for _, row := range series.Rows {
		bars = append(bars, chart.Value{Label: row.Category, Value: row.Value})
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  barChartWidth(len(bars)),
		Height: chartHeight,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		BarWidth: 48,
		XAxis:    chart.Style{TextRotationDegrees: 45},
		Bars:     bars,
	}
	return graph.Render(chart.PNG, f)
}

// barChartWidth widens the canvas when many categories would crowd the axis.
func barChartWidth(bars int) int {
	w := bars * 72
	if w < chartWidth {
		return chartWidth
	}
	return w
}
