package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Document describes a multi-section PDF report.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
	Footer   string
}

// Section is one titled block of a Document: an optional key/value
// info table followed by an optional data table or free text.
type Section struct {
	Heading   string
	KeyValues [][2]string
	Table     *Dataset
	Text      string
}

// PDFExporter renders documents into tabular PDF reports.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title header and section blocks.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		e.renderSection(pdf, section)
	}

	if doc.Footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, doc.Footer, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderSection(pdf *gofpdf.Fpdf, section Section) {
	if section.Heading != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, section.Heading, "", 1, "", false, 0, "")
	}

	if len(section.KeyValues) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, kv := range section.KeyValues {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(50, 6, kv[0], "1", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(140, 6, kv[1], "1", 1, "", false, 0, "")
		}
		pdf.Ln(2)
	}

	if section.Table != nil && len(section.Table.Headers) > 0 {
		colWidth := 190.0 / float64(len(section.Table.Headers))
		pdf.SetFont("Arial", "B", 9)
		for _, header := range section.Table.Headers {
			pdf.CellFormat(colWidth, 7, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range section.Table.Rows {
			for _, header := range section.Table.Headers {
				pdf.CellFormat(colWidth, 6, row[header], "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(2)
	}

	if section.Text != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, section.Text, "", "", false)
		pdf.Ln(2)
	}
}
