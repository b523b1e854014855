package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReportTitle is the fixed document heading.
const ReportTitle = "ODI Cricket Match Report"

// ReportData carries everything the assembled PDF contains.
type ReportData struct {
	Query      string
	SpecJSON   string
	ChartPNG   []byte
	CodeSample string
}

// PDFExportService assembles the report document using maroto.
type PDFExportService struct{}

// NewPDFExportService creates a new PDF export service.
func NewPDFExportService() *PDFExportService {
	return &PDFExportService{}
}

// BuildReport composes the report PDF: heading, query text, pretty-printed
// spec JSON, chart image, and the illustrative code listing. All text is
// reduced to ASCII first; the byte buffer is returned for preview/download.
func (s *PDFExportService) BuildReport(data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()

	m := maroto.New(cfg)

	s.addHeader(m)
	s.addQuery(m, CleanText(data.Query))
	s.addSpecJSON(m, CleanText(data.SpecJSON))
	if len(data.ChartPNG) > 0 {
		s.addChart(m, data.ChartPNG)
	}
	s.addCodeSample(m, CleanText(data.CodeSample))

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

func (s *PDFExportService) addHeader(m core.Maroto) {
	m.AddRow(16,
		col.New(12).Add(
			text.New(ReportTitle, props.Text{
				Family: fontfamily.Arial,
				Size:   18,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Color:  &props.Color{Red: 13, Green: 110, Blue: 253},
			}),
		),
	)

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m.AddRow(8,
		col.New(12).Add(
			text.New("Generated: "+timestamp, props.Text{
				Family: fontfamily.Arial,
				Size:   9,
				Align:  align.Center,
				Color:  &props.Color{Red: 100, Green: 116, Blue: 139},
			}),
		),
	)

	m.AddRow(4)
}

func (s *PDFExportService) addQuery(m core.Maroto, query string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Query", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)
	m.AddRow(10,
		col.New(12).Add(
			text.New(query, props.Text{
				Family: fontfamily.Arial,
				Size:   10,
			}),
		),
	)
	m.AddRow(3)
}

func (s *PDFExportService) addSpecJSON(m core.Maroto, specJSON string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("JSON Output", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)
	for _, line := range strings.Split(strings.TrimRight(specJSON, "\n"), "\n") {
		m.AddRow(5,
			col.New(12).Add(
				text.New(line, props.Text{
					Family: fontfamily.Courier,
					Size:   9,
				}),
			),
		)
	}
	m.AddRow(3)
}

func (s *PDFExportService) addChart(m core.Maroto, png []byte) {
	m.AddRow(90,
		col.New(12).Add(
			image.NewFromBytes(png, extension.Png, props.Rect{
				Center:  true,
				Percent: 100,
			}),
		),
	)
	m.AddRow(4)
}

func (s *PDFExportService) addCodeSample(m core.Maroto, code string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Equivalent Python Code", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		m.AddRow(4,
			col.New(12).Add(
				text.New(line, props.Text{
					Family: fontfamily.Courier,
					Size:   8,
				}),
			),
		)
	}
}
