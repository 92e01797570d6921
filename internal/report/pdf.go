package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"CardioSense/internal/domain"
)

type rgb struct{ r, g, b int }

var (
	headerPurple   = rgb{139, 92, 246}
	forestGreen    = rgb{22, 163, 74}
	adviceBlue     = rgb{59, 130, 246}
	amberFill      = rgb{254, 243, 199}
	amberHeading   = rgb{146, 64, 14}
	amberBody      = rgb{120, 53, 15}
	footerGray     = rgb{107, 114, 128}
	textBlack      = rgb{0, 0, 0}
	pageWidthMM    = 210.0
	contentWidthMM = 182.0
)

// sectionColor picks the model-specific accent used for headings and table
// header fills, defaulting to the product purple.
func sectionColor(heading string) rgb {
	if heading == domain.ModelRandomForest+" Model" {
		return forestGreen
	}
	return headerPurple
}

// PDFRenderer renders a composed document into the fixed-layout PDF artifact.
type PDFRenderer struct{}

// Render produces the paginated report bytes. A document with no prediction
// section is a pipeline bug and fails loudly.
func (PDFRenderer) Render(doc domain.ReportDocument) ([]byte, error) {
	if len(doc.Predictions) == 0 {
		return nil, &IncompleteDocumentError{Reason: "document has no prediction section"}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	// Header band
	setFill(pdf, headerPurple)
	pdf.Rect(0, 0, pageWidthMM, 40, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(0, 12)
	pdf.CellFormat(pageWidthMM, 10, doc.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(pageWidthMM, 8, doc.Subtitle, "", 1, "C", false, 0, "")

	setText(pdf, textBlack)
	pdf.SetY(50)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Report Date: "+doc.GeneratedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(doc.PatientInfo) > 0 {
		writeHeading(pdf, "Patient Information", headerPurple)
		writeTable(pdf, "Field", "Details", doc.PatientInfo, headerPurple)
		pdf.Ln(6)
	}

	for _, section := range doc.Predictions {
		color := sectionColor(section.Heading)
		writeHeading(pdf, section.Heading, color)
		writeTable(pdf, "Metric", "Value", section.Rows, color)
		pdf.Ln(6)
	}

	writeHeading(pdf, "Recommendation", adviceBlue)
	pdf.SetFont("Helvetica", "", 11)
	if doc.AgreementNote != "" {
		pdf.MultiCell(contentWidthMM, 6, doc.AgreementNote, "", "L", false)
		pdf.Ln(2)
	}
	for i, rec := range doc.Recommendations {
		pdf.MultiCell(contentWidthMM, 6, fmt.Sprintf("%d. %s", i+1, rec), "", "L", false)
	}
	pdf.Ln(6)

	// Disclaimer block on an amber background
	setFill(pdf, amberFill)
	setText(pdf, amberHeading)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidthMM, 7, "  Disclaimer:", "", 1, "L", true, 0, "")
	setText(pdf, amberBody)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentWidthMM, 5, "  "+doc.Disclaimer, "", "L", true)

	// Footer with generation timestamp
	pdf.SetY(-20)
	setText(pdf, footerGray)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Generated by "+ProductName+" on "+doc.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *fpdf.Fpdf, text string, color rgb) {
	setText(pdf, color)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	setText(pdf, textBlack)
	pdf.Ln(1)
}

func writeTable(pdf *fpdf.Fpdf, keyHead, valueHead string, rows []domain.KeyValueRow, color rgb) {
	const keyWidth, valueWidth, rowHeight = 50.0, 132.0, 8.0

	setFill(pdf, color)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(keyWidth, rowHeight, keyHead, "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, valueHead, "1", 1, "L", true, 0, "")

	setText(pdf, textBlack)
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(keyWidth, rowHeight, row.Key, "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, row.Value, "1", 1, "L", false, 0, "")
	}
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
