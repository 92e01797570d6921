package report

import (
	"bytes"
	"testing"

	"CardioSense/internal/domain"
)

func renderableDoc(t *testing.T) domain.ReportDocument {
	t.Helper()

	doc, err := Compose(
		comparisonResult(false, true),
		domain.PersonalDetails{Name: "Jordan Reyes", Email: "jordan@example.com"},
		fixedNow,
	)
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	doc.AgreementNote = "Models disagree - consult a medical professional."
	return doc
}

func TestPDFRendererProducesDocument(t *testing.T) {
	t.Parallel()

	content, err := (PDFRenderer{}).Render(renderableDoc(t))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("empty PDF output")
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestPDFRendererRejectsEmptyDocument(t *testing.T) {
	t.Parallel()

	_, err := (PDFRenderer{}).Render(domain.ReportDocument{})
	assertIncomplete(t, err)
}

func TestXLSXRendererProducesWorkbook(t *testing.T) {
	t.Parallel()

	content, err := (XLSXRenderer{}).Render(renderableDoc(t))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("empty workbook output")
	}
	// XLSX workbooks are zip archives.
	if !bytes.HasPrefix(content, []byte("PK")) {
		t.Fatalf("output is not a workbook")
	}
}

func TestXLSXRendererRejectsEmptyDocument(t *testing.T) {
	t.Parallel()

	_, err := (XLSXRenderer{}).Render(domain.ReportDocument{})
	assertIncomplete(t, err)
}
