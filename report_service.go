package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"odireport/agent"
	"odireport/chart"
	"odireport/dataset"
	"odireport/export"
)

// ReportFileName is the download name of every generated report.
const ReportFileName = "ODI_Match_Report.pdf"

// ReportService orchestrates the four stages of a report request:
// model request, spec parse, aggregation, chart + PDF assembly. Each stage
// failure is terminal for the request; nothing is retried.
type ReportService struct {
	Requester *agent.SpecRequester
	Store     *dataset.Store
	Renderer  *chart.Renderer
	PDF       *export.PDFExportService
	Log       func(string)
}

// ReportResult is the finished report returned to the user.
type ReportResult struct {
	FileName       string
	Query          string
	Spec           *agent.ChartSpec
	RawModelOutput string
	PDFBytes       []byte
}

// PDFDataURI returns the PDF as a data URI for inline preview.
func (r *ReportResult) PDFDataURI() string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(r.PDFBytes)
}

func (s *ReportService) log(msg string) {
	if s.Log != nil {
		s.Log(msg)
	}
}

// GenerateReport runs one query through the whole pipeline. The temp chart
// image is removed on every path; its deletion failure is swallowed.
func (s *ReportService) GenerateReport(ctx context.Context, query string) (*ReportResult, error) {
	if query == "" {
		return nil, &ValidationError{Err: fmt.Errorf("query must not be empty")}
	}

	raw, err := s.Requester.RequestChartSpec(ctx, query, s.Store.Columns())
	if err != nil {
		return nil, WrapError("report", "RequestChartSpec", err)
	}

	spec, err := agent.ParseChartSpec(raw)
	if err != nil {
		return nil, WrapError("report", "ParseChartSpec", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, WrapError("report", "ValidateSpec", &ValidationError{Err: err})
	}
	s.log(fmt.Sprintf("parsed spec: x=%s y=%s chart_type=%s limit=%d", spec.X, spec.Y, spec.ChartType, spec.Limit))

	series, err := s.Store.Aggregate(spec.X, spec.Y, spec.Limit)
	if err != nil {
		return nil, WrapError("report", "Aggregate", &ValidationError{Err: err})
	}

	chartPath, err := s.Renderer.Render(series, spec.ChartType, query)
	if err != nil {
		return nil, WrapError("report", "RenderChart", err)
	}
	defer os.Remove(chartPath)

	png, err := os.ReadFile(chartPath)
	if err != nil {
		return nil, WrapError("report", "ReadChart", err)
	}

	pdf, err := s.PDF.BuildReport(export.ReportData{
		Query:      query,
		SpecJSON:   spec.PrettyJSON(),
		ChartPNG:   png,
		CodeSample: export.DefaultCodeSample,
	})
	if err != nil {
		return nil, WrapError("report", "BuildReport", err)
	}

	s.log(fmt.Sprintf("report generated for query %q (%d bytes)", query, len(pdf)))
	return &ReportResult{
		FileName:       ReportFileName,
		Query:          query,
		Spec:           spec,
		RawModelOutput: raw,
		PDFBytes:       pdf,
	}, nil
}
