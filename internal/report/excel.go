package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campusio/intl-office/internal/core/port"
)

const dateLayout = "2006-01-02"

// ExcelGenerator renders office reports as xlsx workbooks.
type ExcelGenerator struct{}

// NewExcelGenerator constructs an ExcelGenerator.
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#4472C4", Style: 2},
		},
	})
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, title := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("set header cell: %w", err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// VisaWorkbook renders visa-extension rows into a workbook.
func (g *ExcelGenerator) VisaWorkbook(rows []port.VisaReportRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Visa Extensions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Applicant", "Email", "Department", "Passport", "Country", "Status", "Submitted", "Requested Until"}
	if err := writeHeader(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := []any{
			row.ID,
			row.ApplicantName,
			row.ApplicantEmail,
			row.Department,
			row.PassportNumber,
			row.Country,
			string(row.Status),
			formatDate(row.SubmittedAt),
			row.RequestedUntil.Format(dateLayout),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, fmt.Errorf("write visa row: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "I", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf, nil
}

// MOUWorkbook renders memorandum rows into a workbook.
func (g *ExcelGenerator) MOUWorkbook(rows []port.MOUReportRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Memoranda"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Partner", "Country", "Owner", "Status", "Proposed", "Signed"}
	if err := writeHeader(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := []any{
			row.ID,
			row.Title,
			row.PartnerName,
			row.PartnerCountry,
			row.OwnerName,
			string(row.Status),
			formatDate(row.ProposedAt),
			formatDate(row.SignedAt),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, fmt.Errorf("write mou row: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "H", 22); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf, nil
}
