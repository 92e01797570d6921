package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"CardioSense/internal/domain"
)

// XLSXRenderer writes the same document as a flat two-column workbook, for
// users who want the numbers in a spreadsheet instead of the fixed PDF layout.
type XLSXRenderer struct{}

// Render produces the workbook bytes.
func (XLSXRenderer) Render(doc domain.ReportDocument) ([]byte, error) {
	if len(doc.Predictions) == 0 {
		return nil, &IncompleteDocumentError{Reason: "document has no prediction section"}
	}

	f := excelize.NewFile()
	// Don't defer Close before WriteToBuffer; the file must stay open.

	const sheetName = "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headingStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#EDE9FE"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 1
	writeRow := func(key, value string, styled bool) error {
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), key); err != nil {
			return err
		}
		if value != "" {
			if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), value); err != nil {
				return err
			}
		}
		if styled {
			if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headingStyle); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	write := func() error {
		if err := writeRow(doc.Title+" - "+doc.Subtitle, "", true); err != nil {
			return err
		}
		if err := writeRow("Report Date", doc.GeneratedAt.Format("2006-01-02"), false); err != nil {
			return err
		}
		row++

		if len(doc.PatientInfo) > 0 {
			if err := writeRow("Patient Information", "", true); err != nil {
				return err
			}
			for _, info := range doc.PatientInfo {
				if err := writeRow(info.Key, info.Value, false); err != nil {
					return err
				}
			}
			row++
		}

		for _, section := range doc.Predictions {
			if err := writeRow(section.Heading, "", true); err != nil {
				return err
			}
			for _, r := range section.Rows {
				if err := writeRow(r.Key, r.Value, false); err != nil {
					return err
				}
			}
			row++
		}

		if err := writeRow("Recommendation", "", true); err != nil {
			return err
		}
		if doc.AgreementNote != "" {
			if err := writeRow("Note", doc.AgreementNote, false); err != nil {
				return err
			}
		}
		for i, rec := range doc.Recommendations {
			if err := writeRow(fmt.Sprintf("%d.", i+1), rec, false); err != nil {
				return err
			}
		}
		row++

		if err := writeRow("Disclaimer", doc.Disclaimer, false); err != nil {
			return err
		}

		return f.SetColWidth(sheetName, "A", "A", 28)
	}

	if err := write(); err != nil {
		f.Close()
		return nil, fmt.Errorf("fill sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
