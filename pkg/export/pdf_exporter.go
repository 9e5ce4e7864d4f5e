package export

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders fixed-layout text documents into a PDF.
type PDFExporter struct {
	fontSize   float64
	lineHeight float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{fontSize: 9, lineHeight: 4.5}
}

// RenderText lays out text line by line in Courier so column padding survives.
func (e *PDFExporter) RenderText(text, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Courier", "", e.fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		pdf.CellFormat(0, e.lineHeight, tr(scanner.Text()), "", 1, "L", false, 0, "")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan report text: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
